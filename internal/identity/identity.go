// Package identity keeps the local user's signing keypair and display handle.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/store"
)

// DefaultHandle is given to a newly created identity.
const DefaultHandle = "Traveler"

// storeKey is where the identity lives in the store.
const storeKey = "identity"

// ErrInvalidHandle is returned when renaming to an empty handle.
var ErrInvalidHandle = errors.New("handle must not be empty")

// Identity is the local user's keypair and handle.
type Identity struct {
	PublicKey  string `json:"pubkey"`
	PrivateKey string `json:"privkey"`
	Handle     string `json:"handle"`
}

// Npub returns the bech32 encoding of the public key.
func (id *Identity) Npub() string {
	return nostr.EncodePublicKey(id.PublicKey)
}

// Store loads, creates and renames the persisted identity.
type Store struct {
	kv     store.Store
	signer nostr.Signer
	mu     sync.Mutex
}

// NewStore creates an identity store backed by kv.
func NewStore(kv store.Store, signer nostr.Signer) *Store {
	return &Store{kv: kv, signer: signer}
}

// GetOrCreate returns the persisted identity, creating and saving a fresh
// keypair with the default handle on first use.
func (s *Store) GetOrCreate() (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.load()
	if err != nil || id != nil {
		return id, err
	}

	sk := s.signer.GenerateKey()
	pk, err := s.signer.PublicKey(sk)
	if err != nil {
		return nil, err
	}

	id = &Identity{PublicKey: pk, PrivateKey: sk, Handle: DefaultHandle}
	if err := store.PutJSON(s.kv, storeKey, id); err != nil {
		return nil, fmt.Errorf("failed to save identity: %w", err)
	}
	return id, nil
}

// Rename sets a new handle. The handle is trimmed; an empty result is rejected
// and nothing is changed.
func (s *Store) Rename(handle string) (*Identity, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrInvalidHandle
	}

	id, err := s.GetOrCreate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	renamed := *id
	renamed.Handle = handle
	if err := store.PutJSON(s.kv, storeKey, &renamed); err != nil {
		return nil, fmt.Errorf("failed to save identity: %w", err)
	}
	return &renamed, nil
}

// load returns nil without error when no identity has been saved.
func (s *Store) load() (*Identity, error) {
	var id Identity
	found, err := store.GetJSON(s.kv, storeKey, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if !found {
		return nil, nil
	}
	if id.PrivateKey == "" || id.PublicKey == "" {
		return nil, fmt.Errorf("failed to load identity: %w", nostr.ErrInvalidKey)
	}
	if id.Handle == "" {
		id.Handle = DefaultHandle
	}
	return &id, nil
}
