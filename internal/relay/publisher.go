package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lifeos/sunday/internal/nostr"
	gonostr "github.com/nbd-wtf/go-nostr"
)

var (
	// ErrPublishExhausted is returned when no relay accepted the event.
	ErrPublishExhausted = errors.New("no relay accepted the event")

	// ErrNoEndpoints is returned when publishing with no relays configured.
	ErrNoEndpoints = fmt.Errorf("%w: no relays configured", ErrPublishExhausted)
)

// Publisher handles publishing events to relays.
type Publisher struct {
	relayURLs []string
	opts      options
}

// NewPublisher creates a new publisher.
func NewPublisher(relayURLs []string, opts ...Option) *Publisher {
	return &Publisher{
		relayURLs: relayURLs,
		opts:      buildOptions(DefaultPublishTimeout, opts),
	}
}

// PublishResult contains the result of publishing to a single relay.
type PublishResult struct {
	RelayURL string
	Success  bool
	Error    error
}

// Publish sends the event to every relay at once and returns the URL of the
// first relay that accepts it. The remaining attempts are abandoned. When no
// relay accepts, the error wraps ErrPublishExhausted and every relay's error.
func (p *Publisher) Publish(ctx context.Context, event *gonostr.Event) (string, error) {
	if len(p.relayURLs) == 0 {
		return "", ErrNoEndpoints
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so late finishers never block after the race is decided.
	results := make(chan PublishResult, len(p.relayURLs))
	for _, url := range p.relayURLs {
		go func(url string) {
			results <- p.publishToRelay(ctx, url, event)
		}(url)
	}

	var errs []error
	for remaining := len(p.relayURLs); remaining > 0; remaining-- {
		result := <-results
		if result.Success {
			p.opts.logger("Accepted", fmt.Sprintf("%s by %s", nostr.ShortKey(event.ID), result.RelayURL))
			return result.RelayURL, nil
		}
		p.opts.logger("Failed", result.Error.Error())
		errs = append(errs, result.Error)
	}

	return "", fmt.Errorf("%w: %w", ErrPublishExhausted, errors.Join(errs...))
}

// publishToRelay publishes an event to a single relay and waits for its OK.
func (p *Publisher) publishToRelay(ctx context.Context, url string, event *gonostr.Event) PublishResult {
	result := PublishResult{RelayURL: url}

	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout)
	defer cancel()

	r, err := connect(ctx, url, p.opts.logger)
	if err != nil {
		result.Error = err
		return result
	}
	defer r.Close()

	err = r.Publish(ctx, *event)
	switch {
	case ctx.Err() != nil:
		result.Error = endpointError(ctx, url, ctx.Err())
	case !r.IsConnected():
		// Publish returns nil when the connection drops before any OK arrives.
		result.Error = endpointError(ctx, url, context.Cause(r.Context()))
	case err != nil:
		result.Error = fmt.Errorf("%w: %s: %s", ErrRejected, url, strings.TrimPrefix(err.Error(), "msg: "))
	default:
		result.Success = true
	}
	return result
}

// RelayURLs returns the configured relay URLs.
func (p *Publisher) RelayURLs() []string {
	return p.relayURLs
}
