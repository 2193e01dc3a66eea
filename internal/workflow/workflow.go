// Package workflow runs the sunday commands against local state and relays.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/lifeos/sunday/internal/blossom"
	"github.com/lifeos/sunday/internal/cli"
	"github.com/lifeos/sunday/internal/config"
	"github.com/lifeos/sunday/internal/contacts"
	"github.com/lifeos/sunday/internal/drafts"
	"github.com/lifeos/sunday/internal/exchange"
	"github.com/lifeos/sunday/internal/identity"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/relay"
	"github.com/lifeos/sunday/internal/store"
	"github.com/lifeos/sunday/internal/ui"
)

// ErrNothingToDo is returned when a command had no work, e.g. publishing
// with no drafts. Callers exit 0.
var ErrNothingToDo = errors.New("nothing to do")

// linkTitleTimeout bounds page title lookups for link drafts.
const linkTitleTimeout = 10 * time.Second

// App holds the wired components for one command invocation.
type App struct {
	opts *cli.Options
	cfg  *config.Config

	kv       store.Store
	signer   nostr.Signer
	identity *identity.Store
	book     *contacts.Book
	queue    *drafts.Queue
	core     *exchange.Core
	blossom  *blossom.Client
	http     *http.Client

	out         io.Writer // results for scripts
	interactive bool
}

// New opens local storage and wires the relay publisher and fetcher from cfg.
func New(opts *cli.Options, cfg *config.Config) (*App, error) {
	kv, err := store.Open(store.Kind(cfg.Storage), cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage in %s: %w", cfg.Storage, cfg.DataDir, err)
	}
	ui.Debugf("storage: %s in %s", cfg.Storage, cfg.DataDir)

	signer := nostr.NewKeySigner()
	relay.SetDebugOutput(ui.DebugWriter())
	logger := relay.WithLogger(ui.RelayLogger)
	pub := relay.NewPublisher(cfg.Relays, relay.WithTimeout(cfg.PublishTimeout), logger)
	fetch := relay.NewFetcher(cfg.Relays, signer, relay.WithTimeout(cfg.FetchTimeout), logger)

	return newApp(opts, cfg, kv, signer, pub, fetch), nil
}

func newApp(opts *cli.Options, cfg *config.Config, kv store.Store, signer nostr.Signer, pub exchange.Publisher, fetch exchange.Fetcher) *App {
	ids := identity.NewStore(kv, signer)
	book := contacts.NewBook(kv)

	limit := cfg.FeedLimit
	if opts.Feed.Limit > 0 {
		limit = opts.Feed.Limit
	}

	return &App{
		opts:        opts,
		cfg:         cfg,
		kv:          kv,
		signer:      signer,
		identity:    ids,
		book:        book,
		queue:       drafts.NewQueue(kv),
		core:        exchange.New(ids, book, signer, pub, fetch, exchange.WithFeedLimit(limit)),
		blossom:     blossom.NewClient(cfg.BlossomServer),
		http:        &http.Client{Timeout: linkTitleTimeout},
		out:         os.Stdout,
		interactive: ui.IsInteractive() && !opts.Global.Quiet,
	}
}

// Close releases local storage.
func (a *App) Close() error {
	return a.kv.Close()
}

// Run dispatches the parsed command.
func (a *App) Run(ctx context.Context) error {
	switch a.opts.Command {
	case cli.CommandIdentity:
		return a.runIdentity()
	case cli.CommandFollow:
		return a.runFollow()
	case cli.CommandUnfollow:
		return a.runUnfollow()
	case cli.CommandFollowing:
		return a.runFollowing()
	case cli.CommandDraft:
		return a.runDraft(ctx)
	case cli.CommandPublish:
		return a.runPublish(ctx)
	case cli.CommandFeed:
		return a.runFeed(ctx)
	default:
		return fmt.Errorf("%w: no command", cli.ErrUsage)
	}
}

// result writes one line of scriptable output.
func (a *App) result(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}
