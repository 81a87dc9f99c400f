//go:build linux

package mem

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// ptraceCall serializes ptrace requests onto one locked OS thread. The
// kernel rejects ptrace calls made from a thread other than the one that
// attached, so every request is funneled through the worker goroutine.
type ptraceCall struct {
	run  func() error
	done chan error
}

// PtraceReader implements Reader over a live traced process. The traced
// process must be stopped for reads to succeed; attaching stops it.
type PtraceReader struct {
	pid  int
	reqs chan ptraceCall
	quit chan struct{}
}

// AttachProcess attaches to pid with ptrace and waits for it to stop.
// The caller owns the attachment and must call Close to detach.
func AttachProcess(pid int) (*PtraceReader, error) {
	r := &PtraceReader{
		pid:  pid,
		reqs: make(chan ptraceCall),
		quit: make(chan struct{}),
	}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(r.quit)
		for call := range r.reqs {
			call.done <- call.run()
		}
	}()

	err := r.do(func() error {
		if err := unix.PtraceAttach(pid); err != nil {
			return err
		}
		var status unix.WaitStatus
		_, err := unix.Wait4(pid, &status, 0, nil)
		return err
	})
	if err != nil {
		close(r.reqs)
		<-r.quit
		return nil, fmt.Errorf("attach to pid %d: %w", pid, err)
	}
	return r, nil
}

// do runs fn on the pinned ptrace thread.
func (r *PtraceReader) do(fn func() error) error {
	done := make(chan error, 1)
	r.reqs <- ptraceCall{run: fn, done: done}
	return <-done
}

// ReadMemory implements Reader via PTRACE_PEEKDATA. Reads of unmapped
// addresses report ErrUnmappedAddress; a read that straddles the end of a
// mapping returns the bytes up to it.
func (r *PtraceReader) ReadMemory(addr uint64, p []byte) (int, error) {
	var count int
	err := r.do(func() error {
		n, err := unix.PtracePeekData(r.pid, uintptr(addr), p)
		count = n
		return err
	})
	if err != nil {
		if count == 0 {
			return 0, fmt.Errorf("%w: pid %d at 0x%X: %v", ErrUnmappedAddress, r.pid, addr, err)
		}
		// Partial read up to the end of a mapping.
		return count, nil
	}
	return count, nil
}

// Pid returns the traced process ID.
func (r *PtraceReader) Pid() int {
	return r.pid
}

// Close detaches from the process and releases the worker thread. The
// reader must not be used afterwards.
func (r *PtraceReader) Close() error {
	err := r.do(func() error {
		return unix.PtraceDetach(r.pid)
	})
	close(r.reqs)
	<-r.quit
	if err != nil {
		return fmt.Errorf("detach from pid %d: %w", r.pid, err)
	}
	return nil
}
