package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/lifeos/sunday/internal/blossom"
	"github.com/lifeos/sunday/internal/exchange"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/relay"
	"github.com/lifeos/sunday/internal/ui"
)

// runPublish signs every draft into one issue and publishes it. Drafts are
// cleared only after a relay accepted the issue.
func (a *App) runPublish(ctx context.Context) error {
	items, err := a.queue.Items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		ui.WarningStatus("Skipped", "no drafts to publish; add one with "+ui.Code("sunday draft add <text>"))
		return ErrNothingToDo
	}

	if a.opts.Publish.DryRun {
		return a.dryRun(items)
	}

	items, err = a.uploadImages(ctx, items)
	if err != nil {
		return err
	}

	pub, err := WithSpinner(fmt.Sprintf("Publishing to %d relays", len(a.cfg.Relays)), func() (*exchange.Publication, error) {
		return a.core.PublishDrafts(ctx, items)
	})
	if err != nil {
		if errors.Is(err, relay.ErrPublishExhausted) && ctx.Err() == nil {
			return errors.New(ui.FormatError(
				"no relay accepted your issue",
				err.Error(),
				"your drafts were kept; check your connection or relays and publish again",
			))
		}
		return err
	}

	ui.Status("Published", fmt.Sprintf("%d items to %s", len(pub.Issue.Items), pub.RelayURL))
	if a.opts.Publish.Keep {
		ui.Detail("Kept", "drafts")
	} else if err := a.queue.Clear(); err != nil {
		ui.WarningStatus("Warning", "published, but drafts could not be cleared: "+err.Error())
	}
	a.result("%s", pub.Issue.ID)
	return nil
}

// dryRun prints the signed event without sending anything.
func (a *App) dryRun(items []nostr.Item) error {
	for _, item := range items {
		if item.Kind == nostr.ItemImage && blossom.IsLocalPath(item.Content) {
			ui.WarningStatus("Local", item.Content+" would be uploaded first")
		}
	}

	issue, err := a.core.Sign(items)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(issue.Event(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	ui.Status("Signed", fmt.Sprintf("issue %s, not published (dry run)", nostr.ShortKey(issue.ID)))
	a.result("%s", data)
	return nil
}

// uploadImages replaces local image paths with Blossom URLs in a copy of items.
// The queue keeps the paths; a retry after a failed publish finds the blobs
// already on the server.
func (a *App) uploadImages(ctx context.Context, items []nostr.Item) ([]nostr.Item, error) {
	var privateKey string
	out := make([]nostr.Item, len(items))
	copy(out, items)

	for i, item := range out {
		if item.Kind != nostr.ItemImage || !blossom.IsLocalPath(item.Content) {
			continue
		}
		if privateKey == "" {
			id, err := a.identity.GetOrCreate()
			if err != nil {
				return nil, err
			}
			privateKey = id.PrivateKey
		}

		img, err := blossom.OpenImage(item.Content)
		if err != nil {
			return nil, err
		}

		name := filepath.Base(img.Path)
		progress := ui.NewProgress("Uploading", img.Size)
		result, err := a.blossom.Upload(ctx, img, a.signer, privateKey, progress.Update)
		progress.Done()
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s to %s: %w", name, a.blossom.ServerURL(), err)
		}

		if result.Existed {
			ui.Detail("Exists", fmt.Sprintf("%s at %s", name, result.URL))
		} else {
			ui.Status("Uploaded", fmt.Sprintf("%s (%s)", name, ui.FormatBytes(result.Size)))
		}
		out[i].Content = result.URL
	}
	return out, nil
}
