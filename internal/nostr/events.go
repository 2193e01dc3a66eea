// Package nostr handles Sunday issue events, signing and relay frames.
package nostr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/tidwall/gjson"
)

// Event kinds and tags used by Sunday.
const (
	KindIssue       = nostr.KindTextNote // Issues are plain text notes with a JSON body
	KindBlossomAuth = 24242              // Blossom upload authorization

	IssueTag  = "sunday-issue" // value of the "t" tag on every issue
	ClientTag = "LifeOS"       // value of the "client" tag
	AppName   = "Sunday/1.0"   // "app" field in the issue content

	DefaultHandle = "Anonymous"
)

var (
	// ErrMalformedEvent is returned when an event does not carry a valid issue.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrEmptyIssue is returned when signing an issue without items.
	ErrEmptyIssue = errors.New("issue has no items")
)

// ItemKind is the type of content carried by an Item.
type ItemKind string

const (
	ItemText  ItemKind = "text"
	ItemImage ItemKind = "image"
	ItemLink  ItemKind = "link"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	switch k {
	case ItemText, ItemImage, ItemLink:
		return true
	}
	return false
}

// ParseItemKind parses a kind name.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown item kind %q: must be text, image or link", s)
	}
	return k, nil
}

// Item is one piece of content inside an issue.
type Item struct {
	Kind      ItemKind `json:"type"`
	Content   string   `json:"content"`
	Caption   *string  `json:"caption,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"` // unix milliseconds
}

// CaptionText returns the caption or an empty string.
func (i Item) CaptionText() string {
	if i.Caption == nil {
		return ""
	}
	return *i.Caption
}

// IssueContent is the canonical JSON body of an issue event.
type IssueContent struct {
	Handle string `json:"handle"`
	Items  []Item `json:"items"`
	App    string `json:"app,omitempty"`
}

// Issue is a signed bundle of one author's items.
type Issue struct {
	ID        string
	Author    string
	Handle    string
	CreatedAt time.Time
	Items     []Item
	Signature string

	event *nostr.Event
}

// Event returns the signed envelope of the issue.
func (i *Issue) Event() *nostr.Event {
	return i.event
}

// BuildIssueEvent creates an unsigned issue event (kind 1).
func BuildIssueEvent(handle string, items []Item, pubkey string, createdAt time.Time) (*nostr.Event, error) {
	content, err := json.Marshal(IssueContent{
		Handle: handle,
		Items:  items,
		App:    AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue content: %w", err)
	}

	return &nostr.Event{
		Kind:      KindIssue,
		PubKey:    pubkey,
		CreatedAt: nostr.Timestamp(createdAt.Unix()),
		Tags: nostr.Tags{
			{"t", IssueTag},
			{"client", ClientTag},
		},
		Content: string(content),
	}, nil
}

// SignIssue bundles drafts into a signed issue. The drafts slice is copied and
// never modified; callers clear their queue only after a successful publish.
func SignIssue(signer Signer, drafts []Item, handle, privateKey string, now time.Time) (*Issue, error) {
	if len(drafts) == 0 {
		return nil, ErrEmptyIssue
	}

	items := make([]Item, len(drafts))
	copy(items, drafts)

	pubkey, err := signer.PublicKey(privateKey)
	if err != nil {
		return nil, err
	}

	event, err := BuildIssueEvent(handle, items, pubkey, now)
	if err != nil {
		return nil, err
	}
	if err := signer.Sign(event, privateKey); err != nil {
		return nil, err
	}

	return &Issue{
		ID:        event.ID,
		Author:    event.PubKey,
		Handle:    handle,
		CreatedAt: event.CreatedAt.Time(),
		Items:     items,
		Signature: event.Sig,
		event:     event,
	}, nil
}

// ParseIssue converts a received event into an issue. The signature must verify
// and the content must be a JSON object whose items field is an array. Entries
// that are not objects are skipped; fields of the wrong type are left zero.
func ParseIssue(signer Signer, event *nostr.Event) (*Issue, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: empty event", ErrMalformedEvent)
	}
	if !signer.Verify(event) {
		return nil, fmt.Errorf("%w: bad signature on %s", ErrMalformedEvent, event.ID)
	}

	if !gjson.Valid(event.Content) {
		return nil, fmt.Errorf("%w: content is not JSON", ErrMalformedEvent)
	}
	body := gjson.Parse(event.Content)
	if !body.IsObject() {
		return nil, fmt.Errorf("%w: content is not an object", ErrMalformedEvent)
	}
	rawItems := body.Get("items")
	if !rawItems.IsArray() {
		return nil, fmt.Errorf("%w: items is not an array", ErrMalformedEvent)
	}

	items := make([]Item, 0)
	rawItems.ForEach(func(_, value gjson.Result) bool {
		if item, ok := parseItem(value); ok {
			items = append(items, item)
		}
		return true
	})

	handle := ""
	if h := body.Get("handle"); h.Type == gjson.String {
		handle = strings.TrimSpace(h.Str)
	}
	if handle == "" {
		handle = DefaultHandle
	}

	return &Issue{
		ID:        event.ID,
		Author:    event.PubKey,
		Handle:    handle,
		CreatedAt: event.CreatedAt.Time(),
		Items:     items,
		Signature: event.Sig,
		event:     event,
	}, nil
}

// parseItem reads one entry of an items array. ok is false when it is not an object.
func parseItem(value gjson.Result) (Item, bool) {
	if !value.IsObject() {
		return Item{}, false
	}

	var item Item
	if v := value.Get("type"); v.Type == gjson.String {
		item.Kind = ItemKind(v.Str)
	}
	if v := value.Get("content"); v.Type == gjson.String {
		item.Content = v.Str
	}
	if v := value.Get("caption"); v.Type == gjson.String {
		caption := v.Str
		item.Caption = &caption
	}
	if v := value.Get("timestamp"); v.Type == gjson.Number {
		item.Timestamp = v.Int()
	}
	return item, true
}

// BuildBlossomAuthEvent creates a kind 24242 event for Blossom upload authorization.
func BuildBlossomAuthEvent(fileHash string, pubkey string, expiration time.Time) *nostr.Event {
	tags := nostr.Tags{
		{"t", "upload"},
		{"x", fileHash},
		{"expiration", strconv.FormatInt(expiration.Unix(), 10)},
	}

	return &nostr.Event{
		Kind:      KindBlossomAuth,
		PubKey:    pubkey,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Tags:      tags,
		Content:   "Upload " + fileHash,
	}
}
