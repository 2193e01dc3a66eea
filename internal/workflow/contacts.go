package workflow

import (
	"fmt"
	"strings"

	"github.com/lifeos/sunday/internal/cli"
	"github.com/lifeos/sunday/internal/contacts"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/ui"
)

// runFollow adds args[0] to the address book, with the rest as its handle.
func (a *App) runFollow() error {
	key := a.opts.Args[0]
	handle := strings.Join(a.opts.Args[1:], " ")

	added, err := a.book.Follow(key, handle)
	if err != nil {
		return err
	}
	pk, _ := nostr.DecodePublicKey(key)
	if !added {
		ui.WarningStatus("Skipped", "already following "+contactNote(pk))
		return nil
	}
	if handle == "" {
		handle = nostr.DefaultHandle
	}
	ui.Status("Following", fmt.Sprintf("%s %s", ui.Handle(handle), ui.Dim(contactNote(pk))))
	return nil
}

// runUnfollow removes a contact, asking which one when no key is given.
func (a *App) runUnfollow() error {
	var key string
	if len(a.opts.Args) > 0 {
		key = a.opts.Args[0]
	} else {
		list, err := a.book.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			ui.WarningStatus("Skipped", "you don't follow anyone")
			return ErrNothingToDo
		}
		if !a.interactive {
			return fmt.Errorf("%w: unfollow needs a public key when not interactive", cli.ErrUsage)
		}
		idx, err := ui.Select("Unfollow whom?", contactItems(list))
		if err != nil {
			return err
		}
		key = list[idx].PublicKey
	}

	before, err := a.book.List()
	if err != nil {
		return err
	}
	remaining, err := a.book.Unfollow(key)
	if err != nil {
		return err
	}
	pk, _ := nostr.DecodePublicKey(key)
	if len(remaining) == len(before) {
		ui.WarningStatus("Skipped", "not following "+contactNote(pk))
		return nil
	}
	ui.Status("Unfollowed", fmt.Sprintf("%s (%d left)", contactNote(pk), len(remaining)))
	return nil
}

// runFollowing prints the address book, optionally filtered by a fuzzy search.
func (a *App) runFollowing() error {
	list, err := a.book.Search(a.opts.Following.Search)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		if a.opts.Following.Search != "" {
			ui.WarningStatus("No match", a.opts.Following.Search)
		} else {
			ui.Status("Following", "nobody yet; add someone with "+ui.Code("sunday follow <npub>"))
		}
		return nil
	}

	for _, c := range list {
		a.result("%-20s  %s  %s", c.Handle, c.Npub(), c.AddedAt.Local().Format("2006-01-02"))
	}
	return nil
}

func contactItems(list []contacts.Contact) []ui.SelectItem {
	items := make([]ui.SelectItem, len(list))
	for i, c := range list {
		items[i] = ui.SelectItem{Label: c.Handle, Note: contactNote(c.PublicKey)}
	}
	return items
}
