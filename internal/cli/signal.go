package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupted is the conventional exit code after Ctrl+C.
const ExitInterrupted = 130

// SignalHandler cancels a shared context on SIGINT/SIGTERM.
// A second signal exits immediately.
type SignalHandler struct {
	ctx    context.Context
	cancel context.CancelFunc
	sigCh  chan os.Signal
	out    io.Writer
	exit   func(int)
	once   sync.Once
	done   chan struct{}
}

// NewSignalHandler creates a signal handler with a cancellable context.
func NewSignalHandler() *SignalHandler {
	h := newSignalHandler(os.Stderr, os.Exit)
	signal.Notify(h.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go h.watch()
	return h
}

func newSignalHandler(out io.Writer, exit func(int)) *SignalHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &SignalHandler{
		ctx:    ctx,
		cancel: cancel,
		sigCh:  make(chan os.Signal, 1),
		out:    out,
		exit:   exit,
		done:   make(chan struct{}),
	}
}

// Context returns the handler's context, which is cancelled on shutdown.
func (h *SignalHandler) Context() context.Context {
	return h.ctx
}

// Shutdown cancels the context.
func (h *SignalHandler) Shutdown() {
	h.cancel()
}

func (h *SignalHandler) watch() {
	interrupted := false
	for {
		select {
		case <-h.sigCh:
			if interrupted {
				fmt.Fprintln(h.out, "\nForce quit")
				h.exit(ExitInterrupted)
				return
			}
			interrupted = true
			fmt.Fprintln(h.out, "\nInterrupted, closing relay connections (Ctrl+C again to force)")
			h.Shutdown()
		case <-h.done:
			return
		}
	}
}

// Stop releases resources and stops watching for signals.
func (h *SignalHandler) Stop() {
	h.once.Do(func() {
		signal.Stop(h.sigCh)
		close(h.done)
		h.cancel()
	})
}
