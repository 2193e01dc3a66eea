package ui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInterrupted is returned when Ctrl+C cancels a prompt or selector.
var ErrInterrupted = errors.New("interrupted")

// interruptScope ties one interactive prompt to the process signal context.
type interruptScope struct {
	ctx context.Context
}

var currentScope atomic.Pointer[interruptScope]

// SetContext installs the signal context every later prompt watches.
func SetContext(ctx context.Context) {
	currentScope.Store(&interruptScope{ctx: ctx})
}

// beginPrompt returns the scope for a new prompt, or ErrInterrupted when
// Ctrl+C has already fired.
func beginPrompt() (*interruptScope, error) {
	s := currentScope.Load()
	if s == nil {
		s = &interruptScope{ctx: context.Background()}
	}
	if s.ctx.Err() != nil {
		return nil, ErrInterrupted
	}
	return s, nil
}

func (s *interruptScope) done() <-chan struct{} {
	return s.ctx.Done()
}

// settle reports a failure that happened after Ctrl+C as ErrInterrupted,
// keeping the underlying cause in the message.
func (s *interruptScope) settle(err error) error {
	if err == nil || s.ctx.Err() == nil || errors.Is(err, ErrInterrupted) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInterrupted, err)
}
