// Package exchange ties identity, contacts, signing and relays into the two
// operations the application exposes: publishing drafts and refreshing the feed.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeos/sunday/internal/contacts"
	"github.com/lifeos/sunday/internal/identity"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/relay"
	gonostr "github.com/nbd-wtf/go-nostr"
)

// Publisher broadcasts a signed event and returns the relay that accepted it.
type Publisher interface {
	Publish(ctx context.Context, event *gonostr.Event) (string, error)
}

// Fetcher gathers issues matching a filter from relays.
type Fetcher interface {
	Fetch(ctx context.Context, filter relay.Filter) []*nostr.Issue
}

// Option configures a Core.
type Option func(*Core)

// WithFeedLimit sets how many issues are requested from each relay.
func WithFeedLimit(n int) Option {
	return func(c *Core) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithClock overrides the time source used for issue timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Core) { c.now = now }
}

// Core is the exchange core.
type Core struct {
	identity *identity.Store
	book     *contacts.Book
	signer   nostr.Signer
	pub      Publisher
	fetch    Fetcher
	limit    int
	now      func() time.Time
}

// New creates the exchange core.
func New(ids *identity.Store, book *contacts.Book, signer nostr.Signer, pub Publisher, fetch Fetcher, opts ...Option) *Core {
	c := &Core{
		identity: ids,
		book:     book,
		signer:   signer,
		pub:      pub,
		fetch:    fetch,
		limit:    relay.DefaultLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publication is a signed issue and the relay that accepted it.
type Publication struct {
	Issue    *nostr.Issue
	RelayURL string
}

// PublishDrafts signs the drafts as one issue under the local identity and
// publishes it. On error nothing was accepted and the drafts should be kept.
func (c *Core) PublishDrafts(ctx context.Context, drafts []nostr.Item) (*Publication, error) {
	issue, err := c.Sign(drafts)
	if err != nil {
		return nil, err
	}

	relayURL, err := c.pub.Publish(ctx, issue.Event())
	if err != nil {
		return nil, err
	}
	return &Publication{Issue: issue, RelayURL: relayURL}, nil
}

// Sign builds the issue PublishDrafts would send, without sending it.
func (c *Core) Sign(drafts []nostr.Item) (*nostr.Issue, error) {
	id, err := c.identity.GetOrCreate()
	if err != nil {
		return nil, err
	}

	issue, err := nostr.SignIssue(c.signer, drafts, id.Handle, id.PrivateKey, c.now())
	if err != nil {
		return nil, fmt.Errorf("failed to sign issue: %w", err)
	}
	return issue, nil
}

// RefreshFeed fetches recent issues, newest first. With followingOnly the query
// is restricted to followed authors; following nobody yields an empty feed
// without contacting any relay. Relay failures only shrink the result.
func (c *Core) RefreshFeed(ctx context.Context, followingOnly bool) ([]*nostr.Issue, error) {
	filter := relay.Filter{Limit: c.limit}

	if followingOnly {
		keys, err := c.book.Keys()
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return []*nostr.Issue{}, nil
		}
		filter.Authors = keys
	}

	return c.fetch.Fetch(ctx, filter), nil
}
