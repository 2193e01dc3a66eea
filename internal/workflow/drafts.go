package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lifeos/sunday/internal/blossom"
	"github.com/lifeos/sunday/internal/cli"
	"github.com/lifeos/sunday/internal/drafts"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/ui"
)

func (a *App) runDraft(ctx context.Context) error {
	switch a.opts.Draft.Action {
	case cli.DraftAdd:
		return a.addDraft(ctx)
	case cli.DraftRemove:
		return a.removeDraft()
	case cli.DraftClear:
		return a.clearDrafts()
	default:
		return a.listDrafts()
	}
}

// addDraft queues one item. Local images are checked now and uploaded on publish.
func (a *App) addDraft(ctx context.Context) error {
	d := a.opts.Draft
	item := nostr.Item{Kind: d.Kind, Content: strings.TrimSpace(d.Content)}

	if d.Kind == nostr.ItemImage && blossom.IsLocalPath(item.Content) {
		img, err := blossom.OpenImage(item.Content)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(img.Path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", img.Path, err)
		}
		item.Content = abs
		ui.Detail("Image", fmt.Sprintf("%s, %s", img.ContentType, ui.FormatBytes(img.Size)))
	}

	caption := strings.TrimSpace(d.Caption)
	if caption == "" && d.FetchTitle {
		if err := drafts.Validate(item); err != nil {
			return err
		}
		title, err := WithSpinner("Fetching page title", func() (string, error) {
			return drafts.FetchTitle(ctx, a.http, item.Content)
		})
		if err != nil {
			ui.WarningStatus("No title", err.Error())
		} else {
			caption = title
		}
	}
	if caption != "" {
		item.Caption = &caption
	}

	draft, err := a.queue.Add(item)
	if err != nil {
		return err
	}
	ui.Status("Drafted", fmt.Sprintf("%s %s", item.Kind, draftLabel(draft)))
	a.result("%s", shortID(draft.ID))
	return nil
}

func (a *App) listDrafts() error {
	list, err := a.queue.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Status("Drafts", "none yet; add one with "+ui.Code("sunday draft add <text>"))
		return nil
	}
	for _, d := range list {
		a.result("%s  %-5s  %s", shortID(d.ID), d.Item.Kind, draftLabel(d))
	}
	return nil
}

// removeDraft removes the draft named by id prefix, or asks which one.
func (a *App) removeDraft() error {
	var prefix string
	if len(a.opts.Args) > 0 {
		prefix = a.opts.Args[0]
	} else {
		list, err := a.queue.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			ui.WarningStatus("Skipped", "no drafts")
			return ErrNothingToDo
		}
		if !a.interactive {
			return fmt.Errorf("%w: draft rm needs an id when not interactive", cli.ErrUsage)
		}
		items := make([]ui.SelectItem, len(list))
		for i, d := range list {
			items[i] = ui.SelectItem{Label: draftLabel(d), Note: string(d.Item.Kind)}
		}
		idx, err := ui.Select("Remove which draft?", items)
		if err != nil {
			return err
		}
		prefix = list[idx].ID
	}

	removed, err := a.queue.Remove(prefix)
	if err != nil {
		return err
	}
	ui.Status("Removed", draftLabel(removed))
	return nil
}

func (a *App) clearDrafts() error {
	list, err := a.queue.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return ErrNothingToDo
	}

	if !a.opts.Draft.Yes {
		if !a.interactive {
			return fmt.Errorf("%w: pass -y to clear drafts when not interactive", cli.ErrUsage)
		}
		ok, err := ui.Confirm(fmt.Sprintf("Discard %d drafts?", len(list)), false)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNothingToDo
		}
	}

	if err := a.queue.Clear(); err != nil {
		return err
	}
	ui.Status("Cleared", fmt.Sprintf("%d drafts", len(list)))
	return nil
}
