// Package drafts keeps the pending items that make up the next issue.
package drafts

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/store"
)

const storeKey = "drafts"

var (
	// ErrInvalidItem is returned when adding an item that cannot be published.
	ErrInvalidItem = errors.New("invalid draft")

	// ErrNotFound is returned when no draft matches an id.
	ErrNotFound = errors.New("draft not found")

	// ErrAmbiguousID is returned when an id prefix matches several drafts.
	ErrAmbiguousID = errors.New("ambiguous draft id")
)

// Draft is a pending item awaiting publication.
type Draft struct {
	ID        string     `json:"id"`
	Item      nostr.Item `json:"item"`
	CreatedAt time.Time  `json:"created_at"`
}

// Queue is the persistent, ordered list of drafts.
type Queue struct {
	kv    store.Store
	now   func() time.Time
	newID func() string
	mu    sync.Mutex
}

// NewQueue creates a draft queue backed by kv.
func NewQueue(kv store.Store) *Queue {
	return &Queue{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add validates item and appends it to the queue.
func (q *Queue) Add(item nostr.Item) (Draft, error) {
	if err := Validate(item); err != nil {
		return Draft{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	drafts, err := q.load()
	if err != nil {
		return Draft{}, err
	}

	now := q.now()
	if item.Timestamp == 0 {
		item.Timestamp = now.UnixMilli()
	}
	d := Draft{ID: q.newID(), Item: item, CreatedAt: now.UTC()}

	if err := q.save(append(drafts, d)); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// List returns the drafts in the order they were added.
func (q *Queue) List() ([]Draft, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Items returns the queued items in order, ready for signing.
func (q *Queue) Items() ([]nostr.Item, error) {
	drafts, err := q.List()
	if err != nil {
		return nil, err
	}
	items := make([]nostr.Item, len(drafts))
	for i, d := range drafts {
		items[i] = d.Item
	}
	return items, nil
}

// Remove deletes the draft whose id starts with prefix.
func (q *Queue) Remove(prefix string) (Draft, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return Draft{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	drafts, err := q.load()
	if err != nil {
		return Draft{}, err
	}

	idx := -1
	for i, d := range drafts {
		if !strings.HasPrefix(d.ID, prefix) {
			continue
		}
		if idx >= 0 {
			return Draft{}, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
		}
		idx = i
	}
	if idx < 0 {
		return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}

	removed := drafts[idx]
	remaining := append(drafts[:idx:idx], drafts[idx+1:]...)
	if err := q.save(remaining); err != nil {
		return Draft{}, err
	}
	return removed, nil
}

// Clear empties the queue.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.kv.Delete(storeKey); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	return nil
}

// Validate checks that an item can be published.
func Validate(item nostr.Item) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItem, item.Kind)
	}
	if strings.TrimSpace(item.Content) == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidItem)
	}
	if item.Kind == nostr.ItemLink {
		if err := validateLink(item.Content); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}
	}
	return nil
}

func validateLink(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("link must have http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("link must have a host")
	}
	return nil
}

func (q *Queue) load() ([]Draft, error) {
	var drafts []Draft
	if _, err := store.GetJSON(q.kv, storeKey, &drafts); err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}
	if drafts == nil {
		drafts = []Draft{}
	}
	return drafts, nil
}

func (q *Queue) save(drafts []Draft) error {
	if err := store.PutJSON(q.kv, storeKey, drafts); err != nil {
		return fmt.Errorf("failed to save drafts: %w", err)
	}
	return nil
}
