package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dbgdata/internal/inspect"
)

func main() {
	snapshotDir := flag.String("snapshot", "", "Path to the snapshot directory")
	dump := flag.String("dump", "", "Hex dump a range, addr:len (e.g. 0x1000:64)")
	verbose := flag.Bool("v", false, "Log snapshot loading and session activity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: meminspect -snapshot DIR [-v] [-dump ADDR:LEN] [name:addr:type[:derefs] ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *snapshotDir == "" {
		fmt.Fprintln(os.Stderr, "meminspect: missing -snapshot directory")
		flag.Usage()
		os.Exit(1)
	}

	cfg := inspect.Config{
		SnapshotDir:  *snapshotDir,
		Verbose:      *verbose,
		OutputWriter: os.Stdout,
	}

	for _, spec := range flag.Args() {
		req, err := inspect.ParseRequest(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "meminspect: %v\n", err)
			os.Exit(1)
		}
		cfg.Requests = append(cfg.Requests, req)
	}

	if *dump != "" {
		addr, length, err := parseDump(*dump)
		if err != nil {
			fmt.Fprintf(os.Stderr, "meminspect: %v\n", err)
			os.Exit(1)
		}
		cfg.DumpAddr = addr
		cfg.DumpLen = length
	}

	if err := inspect.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "meminspect: %v\n", err)
		os.Exit(1)
	}
}

func parseDump(spec string) (uint64, int, error) {
	addrStr, lenStr, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, fmt.Errorf("bad dump spec %q: want addr:len", spec)
	}
	addr, err := strconv.ParseUint(addrStr, 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad dump spec %q: address: %v", spec, err)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil || length <= 0 {
		return 0, 0, fmt.Errorf("bad dump spec %q: length %q", spec, lenStr)
	}
	return addr, length, nil
}
