package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func withSignalContext(t *testing.T) context.CancelFunc {
	t.Helper()
	_ = captureStatus(t, VerbNormal)
	ctx, cancel := context.WithCancel(context.Background())
	SetContext(ctx)
	t.Cleanup(func() {
		cancel()
		SetContext(context.Background())
	})
	return cancel
}

func TestPromptAfterInterrupt(t *testing.T) {
	cancel := withSignalContext(t)
	cancel()

	if _, err := prompt(strings.NewReader("yes\n"), "Continue? "); !errors.Is(err, ErrInterrupted) {
		t.Errorf("prompt: expected ErrInterrupted, got %v", err)
	}
	if _, err := Select("Pick", []SelectItem{{Label: "a"}}); !errors.Is(err, ErrInterrupted) {
		t.Errorf("Select: expected ErrInterrupted, got %v", err)
	}
}

func TestPromptInterruptedWhileWaiting(t *testing.T) {
	cancel := withSignalContext(t)
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	done := make(chan error, 1)
	go func() {
		_, err := prompt(r, "Handle: ")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("expected ErrInterrupted, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prompt kept waiting after interrupt")
	}
}

func TestPromptReadsLine(t *testing.T) {
	_ = withSignalContext(t)

	got, err := prompt(strings.NewReader("Gran\n"), "Handle: ")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if got != "Gran" {
		t.Errorf("got %q, want %q", got, "Gran")
	}
}

func TestScopeSettle(t *testing.T) {
	failure := errors.New("terminal gone")
	tests := []struct {
		name        string
		interrupted bool
		err         error
		wantNil     bool
		wantInt     bool
	}{
		{"no error", true, nil, true, false},
		{"error before interrupt", false, failure, false, false},
		{"error after interrupt", true, failure, false, true},
		{"already interrupted", true, ErrInterrupted, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.interrupted {
				cancel()
			}
			s := &interruptScope{ctx: ctx}

			got := s.settle(tt.err)
			if (got == nil) != tt.wantNil {
				t.Fatalf("settle(%v) = %v", tt.err, got)
			}
			if got == nil {
				return
			}
			if errors.Is(got, ErrInterrupted) != tt.wantInt {
				t.Errorf("settle(%v) = %v, interrupted=%v", tt.err, got, tt.wantInt)
			}
			if tt.err == failure && !strings.Contains(got.Error(), "terminal gone") {
				t.Errorf("cause lost: %v", got)
			}
		})
	}
}
