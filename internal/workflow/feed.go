package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/ui"
)

// runFeed fetches recent issues and renders them, or prints raw events.
func (a *App) runFeed(ctx context.Context) error {
	following := a.opts.Feed.Following

	issues, err := WithSpinner(fmt.Sprintf("Asking %d relays", len(a.cfg.Relays)), func() ([]*nostr.Issue, error) {
		return a.core.RefreshFeed(ctx, following)
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(issues) == 0 {
		if following {
			keys, err := a.book.Keys()
			if err == nil && len(keys) == 0 {
				ui.Status("Feed", "you don't follow anyone yet; try "+ui.Code("sunday follow <npub>"))
				return nil
			}
		}
		ui.Status("Feed", "no issues found")
		return nil
	}
	ui.Status("Fetched", fmt.Sprintf("%d issues", len(issues)))

	if a.opts.Feed.Raw {
		for _, issue := range issues {
			data, err := json.Marshal(issue.Event())
			if err != nil {
				return fmt.Errorf("failed to encode event %s: %w", issue.ID, err)
			}
			a.result("%s", data)
		}
		return nil
	}

	known, err := a.knownHandles()
	if err != nil {
		return err
	}
	rendered, err := ui.RenderMarkdown(ui.FeedMarkdown(issues, known))
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, rendered)
	return nil
}

// knownHandles maps followed keys to the handles saved for them. Contacts
// saved without a handle keep the one their author chose.
func (a *App) knownHandles() (map[string]string, error) {
	list, err := a.book.List()
	if err != nil {
		return nil, err
	}
	known := make(map[string]string, len(list))
	for _, c := range list {
		if c.Handle != nostr.DefaultHandle {
			known[c.PublicKey] = c.Handle
		}
	}
	return known, nil
}
