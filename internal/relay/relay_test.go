package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	gonostr "github.com/nbd-wtf/go-nostr"
)

// handler drives one fake relay connection.
type handler func(ctx context.Context, c *websocket.Conn)

// startRelay serves h over a websocket and returns its ws:// URL.
func startRelay(t *testing.T, h handler) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		h(context.Background(), c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// readEnvelope returns the next client message that decodes as an envelope.
func readEnvelope(ctx context.Context, c *websocket.Conn) (gonostr.Envelope, error) {
	parser := gonostr.NewMessageParser()
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return nil, err
		}
		if env, err := parser.ParseMessage(string(data)); err == nil && env != nil {
			return env, nil
		}
	}
}

// readReq waits for the client's REQ.
func readReq(ctx context.Context, c *websocket.Conn) (*gonostr.ReqEnvelope, error) {
	for {
		env, err := readEnvelope(ctx, c)
		if err != nil {
			return nil, err
		}
		if req, ok := env.(*gonostr.ReqEnvelope); ok {
			return req, nil
		}
	}
}

func writeEnvelope(ctx context.Context, c *websocket.Conn, env json.Marshaler) error {
	data, err := env.MarshalJSON()
	if err != nil {
		return err
	}
	return writeRaw(ctx, c, data)
}

func writeRaw(ctx context.Context, c *websocket.Conn, data []byte) error {
	return c.Write(ctx, websocket.MessageText, data)
}

// subEvent wraps event for delivery on subscription subID.
func subEvent(subID string, event *gonostr.Event) gonostr.EventEnvelope {
	return gonostr.EventEnvelope{SubscriptionID: &subID, Event: *event}
}

// drain reads until the client goes away.
func drain(ctx context.Context, c *websocket.Conn) {
	for {
		if _, _, err := c.Read(ctx); err != nil {
			return
		}
	}
}

// silentRelay accepts connections and never answers.
func silentRelay(ctx context.Context, c *websocket.Conn) {
	drain(ctx, c)
}

// okRelay answers every published event with OK after delay.
func okRelay(accepted bool, message string, delay time.Duration) handler {
	return func(ctx context.Context, c *websocket.Conn) {
		for {
			env, err := readEnvelope(ctx, c)
			if err != nil {
				return
			}
			event, ok := env.(*gonostr.EventEnvelope)
			if !ok {
				continue
			}
			time.Sleep(delay)
			if err := writeEnvelope(ctx, c, gonostr.OKEnvelope{EventID: event.ID, OK: accepted, Reason: message}); err != nil {
				return
			}
		}
	}
}

// brokenRelay closes every connection as soon as it opens.
func brokenRelay(ctx context.Context, c *websocket.Conn) {
	c.Close(websocket.StatusInternalError, "boom")
}

// hangupRelay reads the first message and drops the connection without answering.
func hangupRelay(ctx context.Context, c *websocket.Conn) {
	if _, err := readEnvelope(ctx, c); err != nil {
		return
	}
	c.CloseNow()
}

// deadURL returns a ws:// URL nobody listens on.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()
	return url
}
