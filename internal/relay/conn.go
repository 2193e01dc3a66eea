// Package relay fans Sunday issues out to Nostr relays and gathers them back.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gonostr "github.com/nbd-wtf/go-nostr"
)

const (
	// DefaultPublishTimeout bounds each relay's publish attempt.
	DefaultPublishTimeout = 5 * time.Second

	// DefaultFetchTimeout bounds each relay's query.
	DefaultFetchTimeout = 3 * time.Second

	// DefaultLimit is the default number of issues requested from each relay.
	DefaultLimit = 30
)

var (
	// ErrEndpointUnreachable is returned when a relay cannot be dialed or the connection fails.
	ErrEndpointUnreachable = errors.New("relay unreachable")

	// ErrEndpointTimeout is returned when a relay does not answer within its timeout.
	ErrEndpointTimeout = errors.New("relay timed out")

	// ErrRejected is returned when a relay answers OK false.
	ErrRejected = errors.New("relay rejected event")
)

// Logger receives per-relay diagnostics as a verb and a detail line.
type Logger func(verb, detail string)

// Option configures a Publisher or Fetcher.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  Logger
}

// WithTimeout sets the per-relay timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(timeout time.Duration, opts []Option) options {
	o := options{
		timeout: timeout,
		logger:  func(string, string) {},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SetDebugOutput sends the relay client's own diagnostics, such as events
// dropped for a bad signature or OKs for unknown events, to w.
func SetDebugOutput(w io.Writer) {
	gonostr.InfoLogger.SetOutput(w)
}

// connect opens one relay connection within ctx. Relay NOTICEs go to the logger.
// The caller closes the relay.
func connect(ctx context.Context, url string, logger Logger) (*gonostr.Relay, error) {
	r, err := gonostr.RelayConnect(ctx, url, gonostr.WithNoticeHandler(func(notice string) {
		logger("Notice", fmt.Sprintf("%s: %s", url, notice))
	}))
	if err != nil {
		_ = r.Close()
		return nil, endpointError(ctx, url, err)
	}
	return r, nil
}

// endpointError classifies a transport failure as timeout or unreachable.
func endpointError(ctx context.Context, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrEndpointTimeout, url)
	}
	return fmt.Errorf("%w: %s: %v", ErrEndpointUnreachable, url, err)
}
