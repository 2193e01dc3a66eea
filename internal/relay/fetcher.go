package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lifeos/sunday/internal/nostr"
	gonostr "github.com/nbd-wtf/go-nostr"
)

// subscriptionLabel prefixes the subscription ids sent to relays.
const subscriptionLabel = "sunday"

// Filter selects issues to fetch.
type Filter struct {
	Authors []string // empty means any author
	Limit   int      // per relay; DefaultLimit when zero
}

// toNostr builds the relay filter: kind 1 events tagged as Sunday issues.
func (f Filter) toNostr() gonostr.Filter {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	filter := gonostr.Filter{
		Kinds: []int{nostr.KindIssue},
		Tags:  gonostr.TagMap{"t": {nostr.IssueTag}},
		Limit: limit,
	}
	if len(f.Authors) > 0 {
		filter.Authors = f.Authors
	}
	return filter
}

// Fetcher queries relays for issues and merges what they return.
type Fetcher struct {
	relayURLs []string
	signer    nostr.Signer
	opts      options
}

// NewFetcher creates a fetcher. The signer verifies received events.
func NewFetcher(relayURLs []string, signer nostr.Signer, opts ...Option) *Fetcher {
	return &Fetcher{
		relayURLs: relayURLs,
		signer:    signer,
		opts:      buildOptions(DefaultFetchTimeout, opts),
	}
}

// Fetch queries every relay at once and waits until each one has sent EOSE,
// failed or timed out. Whatever arrived is merged newest first. Relay
// failures only shrink the result; Fetch never fails.
func (f *Fetcher) Fetch(ctx context.Context, filter Filter) []*nostr.Issue {
	nf := filter.toNostr()
	batches := make([][]*nostr.Issue, len(f.relayURLs))

	var wg sync.WaitGroup
	for i, url := range f.relayURLs {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			batches[i] = f.fetchFromRelay(ctx, url, nf)
		}(i, url)
	}
	wg.Wait()

	return nostr.MergeIssues(batches...)
}

// fetchFromRelay runs one subscription and returns the issues collected before
// EOSE, CLOSED, failure or timeout.
func (f *Fetcher) fetchFromRelay(ctx context.Context, url string, filter gonostr.Filter) []*nostr.Issue {
	var issues []*nostr.Issue

	ctx, cancel := context.WithTimeout(ctx, f.opts.timeout)
	defer cancel()

	r, err := connect(ctx, url, f.opts.logger)
	if err != nil {
		f.opts.logger("Failed", err.Error())
		return nil
	}
	defer r.Close()

	sub, err := r.Subscribe(ctx, gonostr.Filters{filter}, gonostr.WithLabel(subscriptionLabel))
	if err != nil {
		f.opts.logger("Failed", endpointError(ctx, url, err).Error())
		return nil
	}
	defer sub.Unsub()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				f.logEnded(ctx, url, r, sub, len(issues))
				return issues
			}
			issue, err := nostr.ParseIssue(f.signer, event)
			if err != nil {
				f.opts.logger("Dropped", fmt.Sprintf("%s: %v", url, err))
				continue
			}
			issues = append(issues, issue)

		case <-sub.EndOfStoredEvents:
			f.opts.logger("Fetched", fmt.Sprintf("%d issues from %s", len(issues), url))
			return issues

		case reason := <-sub.ClosedReason:
			f.opts.logger("Closed", fmt.Sprintf("%s: %s", url, reason))
			return issues

		case <-ctx.Done():
			f.logEnded(ctx, url, r, sub, len(issues))
			return issues
		}
	}
}

// logEnded reports why a subscription stopped before EOSE.
func (f *Fetcher) logEnded(ctx context.Context, url string, r *gonostr.Relay, sub *gonostr.Subscription, count int) {
	select {
	case reason := <-sub.ClosedReason:
		f.opts.logger("Closed", fmt.Sprintf("%s: %s", url, reason))
		return
	default:
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		f.opts.logger("Timeout", fmt.Sprintf("%s after %d issues", url, count))
	case !r.IsConnected():
		f.opts.logger("Failed", endpointError(ctx, url, context.Cause(r.Context())).Error())
	default:
		f.opts.logger("Failed", fmt.Sprintf("%s: subscription ended", url))
	}
}

// RelayURLs returns the configured relay URLs.
func (f *Fetcher) RelayURLs() []string {
	return f.relayURLs
}
