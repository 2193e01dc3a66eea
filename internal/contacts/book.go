// Package contacts is the address book of followed identities.
package contacts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/store"
	"github.com/sahilm/fuzzy"
)

const storeKey = "contacts"

// Contact is a followed identity.
type Contact struct {
	PublicKey string    `json:"pubkey"`
	Handle    string    `json:"handle"`
	AddedAt   time.Time `json:"added_at"`
}

// Npub returns the bech32 encoding of the public key.
func (c Contact) Npub() string {
	return nostr.EncodePublicKey(c.PublicKey)
}

// Book stores contacts keyed by public key. A key appears at most once.
type Book struct {
	kv  store.Store
	now func() time.Time
	mu  sync.Mutex
}

// NewBook creates an address book backed by kv.
func NewBook(kv store.Store) *Book {
	return &Book{kv: kv, now: time.Now}
}

// List returns a snapshot of all contacts, oldest first.
func (b *Book) List() ([]Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

// Follow adds a contact. key may be hex or npub; an empty handle becomes
// "Anonymous". It reports false without error when the key is already followed.
func (b *Book) Follow(key, handle string) (bool, error) {
	pk, err := nostr.DecodePublicKey(key)
	if err != nil {
		return false, err
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		handle = nostr.DefaultHandle
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	contacts, err := b.load()
	if err != nil {
		return false, err
	}
	for _, c := range contacts {
		if c.PublicKey == pk {
			return false, nil
		}
	}

	contacts = append(contacts, Contact{PublicKey: pk, Handle: handle, AddedAt: b.now().UTC()})
	if err := b.save(contacts); err != nil {
		return false, err
	}
	return true, nil
}

// Unfollow removes the contact with the given key and returns the remaining
// contacts. Removing a key that is not followed changes nothing.
func (b *Book) Unfollow(key string) ([]Contact, error) {
	pk, err := nostr.DecodePublicKey(key)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	contacts, err := b.load()
	if err != nil {
		return nil, err
	}

	remaining := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.PublicKey != pk {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == len(contacts) {
		return remaining, nil
	}

	if err := b.save(remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}

// Keys returns the followed public keys.
func (b *Book) Keys() ([]string, error) {
	contacts, err := b.List()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(contacts))
	for i, c := range contacts {
		keys[i] = c.PublicKey
	}
	return keys, nil
}

// Search returns contacts whose handle fuzzily matches query, best match first.
// An empty query returns every contact.
func (b *Book) Search(query string) ([]Contact, error) {
	contacts, err := b.List()
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return contacts, nil
	}

	matches := fuzzy.FindFrom(query, handles(contacts))
	found := make([]Contact, len(matches))
	for i, m := range matches {
		found[i] = contacts[m.Index]
	}
	return found, nil
}

// handles adapts a contact list to fuzzy.Source.
type handles []Contact

func (h handles) String(i int) string { return h[i].Handle }
func (h handles) Len() int            { return len(h) }

func (b *Book) load() ([]Contact, error) {
	var contacts []Contact
	if _, err := store.GetJSON(b.kv, storeKey, &contacts); err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].AddedAt.Before(contacts[j].AddedAt)
	})
	if contacts == nil {
		contacts = []Contact{}
	}
	return contacts, nil
}

func (b *Book) save(contacts []Contact) error {
	if err := store.PutJSON(b.kv, storeKey, contacts); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}
	return nil
}
