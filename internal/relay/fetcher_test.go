package relay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/lifeos/sunday/internal/nostr"
	gonostr "github.com/nbd-wtf/go-nostr"
)

// storeRelay answers a REQ with the given events, then the extra raw frames,
// then EOSE when eose is set. The received filter is sent on filters if not nil.
func storeRelay(events []*gonostr.Event, extra [][]byte, eose bool, filters chan<- gonostr.Filter) handler {
	return func(ctx context.Context, c *websocket.Conn) {
		req, err := readReq(ctx, c)
		if err != nil {
			return
		}
		if filters != nil && len(req.Filters) > 0 {
			filters <- req.Filters[0]
		}
		for _, event := range events {
			if err := writeEnvelope(ctx, c, subEvent(req.SubscriptionID, event)); err != nil {
				return
			}
		}
		for _, data := range extra {
			if err := writeRaw(ctx, c, data); err != nil {
				return
			}
		}
		if eose {
			_ = writeEnvelope(ctx, c, gonostr.EOSEEnvelope(req.SubscriptionID))
		}
		drain(ctx, c)
	}
}

// issueEvent signs an issue event created at unix seconds ts.
func issueEvent(t *testing.T, sk string, text string, ts int64) *gonostr.Event {
	t.Helper()
	issue, err := nostr.SignIssue(nostr.NewKeySigner(), []nostr.Item{{Kind: nostr.ItemText, Content: text}}, "Tester", sk, time.Unix(ts, 0))
	if err != nil {
		t.Fatal(err)
	}
	return issue.Event()
}

// rawEvent signs an arbitrary kind-1 event.
func rawEvent(t *testing.T, sk, content string) *gonostr.Event {
	t.Helper()
	event := &gonostr.Event{
		Kind:      nostr.KindIssue,
		CreatedAt: gonostr.Now(),
		Tags:      gonostr.Tags{{"t", nostr.IssueTag}},
		Content:   content,
	}
	if err := nostr.NewKeySigner().Sign(event, sk); err != nil {
		t.Fatal(err)
	}
	return event
}

func TestFetchPartialFailure(t *testing.T) {
	sk := nostr.NewKeySigner().GenerateKey()
	good := startRelay(t, storeRelay([]*gonostr.Event{
		issueEvent(t, sk, "one", 100),
		issueEvent(t, sk, "two", 200),
	}, nil, true, nil))
	broken := startRelay(t, brokenRelay)

	f := NewFetcher([]string{good, broken, deadURL(t)}, nostr.NewKeySigner())
	issues := f.Fetch(context.Background(), Filter{})

	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Items[0].Content != "two" || issues[1].Items[0].Content != "one" {
		t.Errorf("issues not ordered newest first: %q, %q", issues[0].Items[0].Content, issues[1].Items[0].Content)
	}
}

func TestFetchMalformedEvents(t *testing.T) {
	signer := nostr.NewKeySigner()
	sk := signer.GenerateKey()

	wellFormed := issueEvent(t, sk, "keep me", 100)
	notIssue := rawEvent(t, sk, "just a regular note")
	noItems := rawEvent(t, sk, `{"handle":"x","items":"none"}`)
	tampered := issueEvent(t, sk, "original", 101)
	tampered.Content = `{"handle":"x","items":[]}`

	url := startRelay(t, storeRelay(
		[]*gonostr.Event{wellFormed, notIssue, noItems, tampered},
		[][]byte{[]byte(`garbage`), []byte(`["EVENT","sub_other",{}]`)},
		true, nil,
	))

	var mu sync.Mutex
	var dropped int
	logger := func(verb, detail string) {
		if verb == "Dropped" {
			mu.Lock()
			dropped++
			mu.Unlock()
		}
	}

	issues := NewFetcher([]string{url}, signer, WithLogger(logger)).Fetch(context.Background(), Filter{})
	if len(issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %d", len(issues))
	}
	if issues[0].ID != wellFormed.ID {
		t.Errorf("unexpected issue %s", issues[0].ID)
	}

	mu.Lock()
	defer mu.Unlock()
	if dropped != 2 {
		t.Errorf("expected the 2 signed non-issues to be logged, got %d drops", dropped)
	}
}

func TestFetchKeepsIssuesWithOddItems(t *testing.T) {
	sk := nostr.NewKeySigner().GenerateKey()
	odd := rawEvent(t, sk, `{"handle":"Gran","items":["a bare string",{"type":"text","content":"garden","timestamp":1700000000000.5}]}`)

	url := startRelay(t, storeRelay([]*gonostr.Event{odd}, nil, true, nil))

	issues := NewFetcher([]string{url}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})
	if len(issues) != 1 {
		t.Fatalf("expected the issue to be kept, got %d issues", len(issues))
	}
	if issues[0].Handle != "Gran" {
		t.Errorf("unexpected handle %q", issues[0].Handle)
	}
	if len(issues[0].Items) != 1 || issues[0].Items[0].Content != "garden" {
		t.Errorf("expected the one object item, got %+v", issues[0].Items)
	}
}

func TestFetchDedupAcrossRelays(t *testing.T) {
	sk := nostr.NewKeySigner().GenerateKey()
	shared := issueEvent(t, sk, "shared", 50)
	onlyB := issueEvent(t, sk, "only b", 60)

	a := startRelay(t, storeRelay([]*gonostr.Event{shared}, nil, true, nil))
	b := startRelay(t, storeRelay([]*gonostr.Event{shared, onlyB}, nil, true, nil))

	issues := NewFetcher([]string{a, b}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})
	if len(issues) != 2 {
		t.Fatalf("expected 2 unique issues, got %d", len(issues))
	}
	if issues[0].ID != onlyB.ID || issues[1].ID != shared.ID {
		t.Error("unexpected order after dedup")
	}
}

func TestFetchTimeoutKeepsPartialResults(t *testing.T) {
	sk := nostr.NewKeySigner().GenerateKey()
	event := issueEvent(t, sk, "before timeout", 10)

	// No EOSE: the fetcher must stop at its timeout.
	url := startRelay(t, storeRelay([]*gonostr.Event{event}, nil, false, nil))

	timeout := 300 * time.Millisecond
	start := time.Now()
	issues := NewFetcher([]string{url}, nostr.NewKeySigner(), WithTimeout(timeout)).Fetch(context.Background(), Filter{})
	elapsed := time.Since(start)

	if len(issues) != 1 || issues[0].ID != event.ID {
		t.Fatalf("expected the event sent before the timeout, got %d issues", len(issues))
	}
	if elapsed < timeout {
		t.Errorf("fetch returned before the timeout without EOSE: %v", elapsed)
	}
}

func TestFetchWaitsForAllRelays(t *testing.T) {
	sk := nostr.NewKeySigner().GenerateKey()
	slowEvent := issueEvent(t, sk, "slow", 2)
	fast := startRelay(t, storeRelay([]*gonostr.Event{issueEvent(t, sk, "fast", 1)}, nil, true, nil))
	slow := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		time.Sleep(200 * time.Millisecond)
		storeRelay([]*gonostr.Event{slowEvent}, nil, true, nil)(ctx, c)
	})

	issues := NewFetcher([]string{fast, slow}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})
	if len(issues) != 2 {
		t.Fatalf("expected results from both relays, got %d", len(issues))
	}
}

func TestFetchSendsFilter(t *testing.T) {
	filters := make(chan gonostr.Filter, 1)
	url := startRelay(t, storeRelay(nil, nil, true, filters))

	authors := []string{"f00d", "abc"}
	issues := NewFetcher([]string{url}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{Authors: authors, Limit: 7})
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %d", len(issues))
	}

	got := <-filters
	if len(got.Authors) != 2 || got.Authors[1] != "abc" {
		t.Errorf("unexpected authors %v", got.Authors)
	}
	if got.Limit != 7 {
		t.Errorf("expected limit 7, got %d", got.Limit)
	}
	if len(got.Kinds) != 1 || got.Kinds[0] != nostr.KindIssue {
		t.Errorf("unexpected kinds %v", got.Kinds)
	}
	if tags := got.Tags["t"]; len(tags) != 1 || tags[0] != nostr.IssueTag {
		t.Errorf("missing #t constraint: %v", got.Tags)
	}
}

func TestFetchDefaultFilter(t *testing.T) {
	filters := make(chan gonostr.Filter, 1)
	url := startRelay(t, storeRelay(nil, nil, true, filters))

	NewFetcher([]string{url}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})

	got := <-filters
	if len(got.Authors) != 0 {
		t.Errorf("expected no authors constraint, got %v", got.Authors)
	}
	if got.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, got.Limit)
	}
}

func TestFetchClosedSubscription(t *testing.T) {
	sk := nostr.NewKeySigner().GenerateKey()
	event := issueEvent(t, sk, "before close", 5)

	url := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		req, err := readReq(ctx, c)
		if err != nil {
			return
		}
		_ = writeEnvelope(ctx, c, subEvent(req.SubscriptionID, event))
		_ = writeEnvelope(ctx, c, gonostr.ClosedEnvelope{SubscriptionID: req.SubscriptionID, Reason: "error: shutting down"})
		drain(ctx, c)
	})

	start := time.Now()
	issues := NewFetcher([]string{url}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if time.Since(start) > 2*time.Second {
		t.Error("fetch waited for the timeout after CLOSED")
	}
}

func TestFetchSubscriptionLabel(t *testing.T) {
	ids := make(chan string, 1)
	url := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		req, err := readReq(ctx, c)
		if err != nil {
			return
		}
		ids <- req.SubscriptionID
		_ = writeEnvelope(ctx, c, gonostr.EOSEEnvelope(req.SubscriptionID))
		drain(ctx, c)
	})

	NewFetcher([]string{url}, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})

	if id := <-ids; !strings.HasSuffix(id, ":"+subscriptionLabel) {
		t.Errorf("unexpected subscription id %q", id)
	}
}

func TestFetchNoRelays(t *testing.T) {
	issues := NewFetcher(nil, nostr.NewKeySigner()).Fetch(context.Background(), Filter{})
	if issues == nil || len(issues) != 0 {
		t.Errorf("expected empty non-nil result, got %v", issues)
	}
}
