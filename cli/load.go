package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.creack.net/chip8/assets"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// BundledPrefix marks a source as one of the embedded programs.
const BundledPrefix = "bundled:"

// DownloadTimeout bounds LoadURL when the context has no deadline.
const DownloadTimeout = 30 * time.Second

// Game is an entry of the start menu.
type Game struct {
	Name   string
	Source string // Accepted by Load.
}

// ListGames returns the programs found in dir, followed by the bundled ones.
// A missing dir is not an error.
func ListGames(dir string) ([]Game, error) {
	var games []Game
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read games dir: %w", err)
		}
		for _, elem := range entries {
			if !elem.Type().IsRegular() || strings.HasPrefix(elem.Name(), ".") {
				continue
			}
			games = append(games, Game{Name: elem.Name(), Source: filepath.Join(dir, elem.Name())})
		}
	}

	entries, err := assets.ROMs.ReadDir(assets.Dir)
	if err != nil {
		return nil, fmt.Errorf("read bundled games: %w", err)
	}
	for _, elem := range entries {
		games = append(games, Game{Name: elem.Name() + " (bundled)", Source: BundledPrefix + elem.Name()})
	}
	return games, nil
}

// IsURL reports whether source is fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads a program from a URL, a bundled name or a local path.
func Load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == "":
		return nil, errors.New("no program given")
	case IsURL(source):
		return LoadURL(ctx, source)
	case strings.HasPrefix(source, BundledPrefix):
		return LoadBundled(strings.TrimPrefix(source, BundledPrefix))
	default:
		return LoadFile(source)
	}
}

// LoadFile reads a local program.
func LoadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", name, err)
	}
	return checkSize(name, data)
}

// LoadBundled reads one of the embedded programs.
func LoadBundled(name string) ([]byte, error) {
	data, err := assets.ROMs.ReadFile(path.Join(assets.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled game %q: %w", name, err)
	}
	return checkSize(name, data)
}

// LoadURL downloads a program.
func LoadURL(ctx context.Context, url string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DownloadTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() // Best effort.

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %q: unexpected status %s", url, resp.Status)
	}
	// Read one extra byte to tell an exact fit from an oversized program.
	data, err := io.ReadAll(io.LimitReader(resp.Body, op.MaxProgSize+1))
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", url, err)
	}
	return checkSize(url, data)
}

func checkSize(name string, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%q: %w", name, vm.ErrEmptyProgram)
	}
	if len(data) > op.MaxProgSize {
		return nil, fmt.Errorf("%q: %w: max %d bytes", name, vm.ErrProgramTooLarge, op.MaxProgSize)
	}
	return data, nil
}
