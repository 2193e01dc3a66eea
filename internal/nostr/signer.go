package nostr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// ErrInvalidKey is returned when a public key is neither valid hex nor a valid npub.
var ErrInvalidKey = errors.New("invalid public key")

// Signer is the cryptographic capability consumed by the exchange core.
// Keys are hex encoded.
type Signer interface {
	// GenerateKey returns a new random private key.
	GenerateKey() string

	// PublicKey derives the public key for a private key.
	PublicKey(privateKey string) (string, error)

	// Sign fills in PubKey, ID and Sig of the event.
	Sign(event *nostr.Event, privateKey string) error

	// Verify reports whether the event id and signature are valid.
	Verify(event *nostr.Event) bool
}

// KeySigner signs with a local schnorr key (NIP-01).
type KeySigner struct{}

// NewKeySigner creates a signer backed by go-nostr.
func NewKeySigner() *KeySigner {
	return &KeySigner{}
}

func (KeySigner) GenerateKey() string {
	return nostr.GeneratePrivateKey()
}

func (KeySigner) PublicKey(privateKey string) (string, error) {
	pk, err := nostr.GetPublicKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to derive public key: %w", err)
	}
	return pk, nil
}

func (s KeySigner) Sign(event *nostr.Event, privateKey string) error {
	pk, err := s.PublicKey(privateKey)
	if err != nil {
		return err
	}
	event.PubKey = pk
	if err := event.Sign(privateKey); err != nil {
		return fmt.Errorf("failed to sign event: %w", err)
	}
	return nil
}

func (KeySigner) Verify(event *nostr.Event) bool {
	if event.ID != event.GetID() {
		return false
	}
	ok, err := event.CheckSignature()
	return err == nil && ok
}

// DecodePublicKey accepts a hex public key or an npub and returns the hex form.
func DecodePublicKey(input string) (string, error) {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, "npub1") {
		prefix, data, err := nip19.Decode(input)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if prefix != "npub" {
			return "", fmt.Errorf("%w: expected npub, got %s", ErrInvalidKey, prefix)
		}
		pk, ok := data.(string)
		if !ok || !nostr.IsValidPublicKey(pk) {
			return "", fmt.Errorf("%w: %s", ErrInvalidKey, input)
		}
		return pk, nil
	}

	pk := strings.ToLower(input)
	if len(pk) != 64 || !isValidHex(pk) || !nostr.IsValidPublicKey(pk) {
		return "", fmt.Errorf("%w: must be npub1... or 64 hex characters", ErrInvalidKey)
	}
	return pk, nil
}

// EncodePublicKey returns the npub form of a hex public key.
// Falls back to the hex key if encoding fails.
func EncodePublicKey(publicKey string) string {
	npub, err := nip19.EncodePublicKey(publicKey)
	if err != nil {
		return publicKey
	}
	return npub
}

// ShortKey abbreviates a key for display.
func ShortKey(key string) string {
	if len(key) <= 16 {
		return key
	}
	return key[:10] + "…" + key[len(key)-6:]
}

// isValidHex checks if a string is lowercase hexadecimal.
func isValidHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
