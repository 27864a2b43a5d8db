package main

import (
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.creack.net/chip8/asm"
	"go.creack.net/chip8/disasm"
	"go.creack.net/chip8/op"
)

func run(input, output string, listing bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	buf, pr, err := asm.Compile(input, string(data))
	if err != nil {
		return fmt.Errorf("failed to compile: %w", err)
	}
	if listing {
		if err := disasm.Fprint(os.Stdout, disasm.Disasm(buf, op.ProgramOffset)); err != nil {
			return fmt.Errorf("failed to print listing: %w", err)
		}
		for _, name := range slices.Sorted(maps.Keys(pr.Labels)) {
			fmt.Printf("%-16s 0x%03x\n", name+":", pr.Labels[name])
		}
		return nil
	}

	if err := os.WriteFile(output, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func main() {
	log.SetFlags(0)
	output := flag.String("o", "", "output file, default to <input>.ch8")
	listing := flag.Bool("l", false, "print a listing, do not output compiled file")
	flag.Parse()
	input := flag.Arg(0)
	if input == "" {
		fmt.Fprintf(os.Stderr, "usage: %s <.s path> [options]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *output == "" {
		*output = strings.TrimSuffix(input, filepath.Ext(input)) + ".ch8"
	}

	if err := run(input, *output, *listing); err != nil {
		log.Fatalf("fail: %s.", err)
	}
}
