package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/disasm"
	"go.creack.net/chip8/op"
)

func main() {
	log.SetFlags(0)
	base := flag.String("base", strconv.FormatInt(op.ProgramOffset, 16), "load address, hexadecimal")
	flag.Parse()
	source := flag.Arg(0)
	if source == "" {
		tmp := strings.Split(os.Args[0], "/")
		binName := tmp[len(tmp)-1]
		fmt.Fprintf(os.Stderr, "usage: %s [options] <program path, url or bundled:name>\n", binName)
		flag.PrintDefaults()
		os.Exit(2)
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(*base, "0x"), 16, 16)
	if err != nil {
		log.Fatalf("Invalid base %q: %s.", *base, err)
	}

	program, err := cli.Load(context.Background(), source)
	if err != nil {
		log.Fatalf("Failed to load program: %s.", err)
	}
	if err := disasm.Fprint(os.Stdout, disasm.Disasm(program, uint16(addr))); err != nil {
		log.Fatalf("Failed to print listing: %s.", err)
	}
}
