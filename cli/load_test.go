package cli_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "loop.ch8")
	if err := os.WriteFile(name, []byte{0x12, 0x00}, 0o644); err != nil {
		t.Fatalf("WriteFile: %s.", err)
	}
	data, err := cli.Load(t.Context(), name)
	if err != nil {
		t.Fatalf("Load: %s.", err)
	}
	if !bytes.Equal(data, []byte{0x12, 0x00}) {
		t.Errorf("Data mismatch: %x", data)
	}

	if _, err := cli.LoadFile(filepath.Join(dir, "missing.ch8")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Missing file\nwant: %v\nhave: %v", os.ErrNotExist, err)
	}

	empty := filepath.Join(dir, "empty.ch8")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %s.", err)
	}
	if _, err := cli.LoadFile(empty); !errors.Is(err, vm.ErrEmptyProgram) {
		t.Errorf("Empty file\nwant: %v\nhave: %v", vm.ErrEmptyProgram, err)
	}

	big := filepath.Join(dir, "big.ch8")
	if err := os.WriteFile(big, make([]byte, op.MaxProgSize+1), 0o644); err != nil {
		t.Fatalf("WriteFile: %s.", err)
	}
	if _, err := cli.LoadFile(big); !errors.Is(err, vm.ErrProgramTooLarge) {
		t.Errorf("Oversized file\nwant: %v\nhave: %v", vm.ErrProgramTooLarge, err)
	}

	if _, err := cli.Load(t.Context(), ""); err == nil {
		t.Error("Empty source should fail")
	}
}

func TestLoadURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pong.ch8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0x00, 0xE0, 0x12, 0x02})
	})
	mux.HandleFunc("/big.ch8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, op.MaxProgSize+10))
	})
	mux.HandleFunc("/exact.ch8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, op.MaxProgSize))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	data, err := cli.Load(t.Context(), srv.URL+"/pong.ch8")
	if err != nil {
		t.Fatalf("Load: %s.", err)
	}
	if !bytes.Equal(data, []byte{0x00, 0xE0, 0x12, 0x02}) {
		t.Errorf("Data mismatch: %x", data)
	}

	if data, err := cli.LoadURL(t.Context(), srv.URL+"/exact.ch8"); err != nil || len(data) != op.MaxProgSize {
		t.Errorf("Exact fit: %d bytes, %v", len(data), err)
	}
	if _, err := cli.LoadURL(t.Context(), srv.URL+"/big.ch8"); !errors.Is(err, vm.ErrProgramTooLarge) {
		t.Errorf("Oversized download\nwant: %v\nhave: %v", vm.ErrProgramTooLarge, err)
	}
	if _, err := cli.LoadURL(t.Context(), srv.URL+"/missing.ch8"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Missing download should report the status: %v", err)
	}
}

func TestListGames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"tetris.ch8", "pong.ch8", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0x12, 0x00}, 0o644); err != nil {
			t.Fatalf("WriteFile: %s.", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %s.", err)
	}

	games, err := cli.ListGames(dir)
	if err != nil {
		t.Fatalf("ListGames: %s.", err)
	}
	if len(games) != 4 {
		t.Fatalf("Games: %v", games)
	}
	if games[0].Name != "pong.ch8" || games[1].Name != "tetris.ch8" {
		t.Errorf("Local games first and sorted: %v", games[:2])
	}
	for _, g := range games {
		data, err := cli.Load(t.Context(), g.Source)
		if err != nil {
			t.Errorf("Load %q: %s.", g.Source, err)
			continue
		}
		if _, err := vm.NewChip8(data, vm.Config{}); err != nil {
			t.Errorf("Boot %q: %s.", g.Name, err)
		}
	}

	games, err = cli.ListGames(filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("ListGames on missing dir: %s.", err)
	}
	if len(games) != 2 || !strings.HasPrefix(games[0].Source, cli.BundledPrefix) {
		t.Errorf("Bundled games: %v", games)
	}
}

func TestLoadBundledMissing(t *testing.T) {
	if _, err := cli.Load(t.Context(), cli.BundledPrefix+"nope.ch8"); err == nil {
		t.Error("Missing bundled game should fail")
	}
}
