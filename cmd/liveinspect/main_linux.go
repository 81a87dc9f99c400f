//go:build linux

package main

import (
	"flag"
	"fmt"
	"os"

	"dbgdata/common"
	"dbgdata/data"
	"dbgdata/internal/inspect"
	"dbgdata/mem"
	"dbgdata/value"
)

func main() {
	pid := flag.Int("pid", 0, "Process to attach to")
	addrSize := flag.Int("addr_size", data.DefaultAddressByteSize, "Target pointer width in bytes (4 or 8)")
	verbose := flag.Bool("v", false, "Log session activity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: liveinspect -pid PID [-addr_size N] [-v] [name:addr:type[:derefs] ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *pid <= 0 {
		fmt.Fprintln(os.Stderr, "liveinspect: missing -pid")
		flag.Usage()
		os.Exit(1)
	}

	cfg := inspect.Config{Verbose: *verbose, OutputWriter: os.Stdout}
	for _, spec := range flag.Args() {
		req, err := inspect.ParseRequest(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "liveinspect: %v\n", err)
			os.Exit(1)
		}
		cfg.Requests = append(cfg.Requests, req)
	}

	logger := common.Logger(common.NewNoOpLogger())
	if *verbose {
		logger = common.NewStdLogger(common.SeverityDebug)
	}

	reader, err := mem.AttachProcess(*pid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "liveinspect: %v\n", err)
		os.Exit(1)
	}

	// The session owns the attachment; Close detaches.
	sess, err := value.NewSession(reader, data.DefaultByteOrder, *addrSize, logger)
	if err != nil {
		reader.Close()
		fmt.Fprintf(os.Stderr, "liveinspect: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	fmt.Printf("attached to pid %d\n", reader.Pid())
	if err := inspect.RunSession(cfg, sess); err != nil {
		fmt.Fprintf(os.Stderr, "liveinspect: %v\n", err)
		os.Exit(1)
	}
}
