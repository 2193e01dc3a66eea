package workflow

import (
	"strings"
	"unicode/utf8"

	"github.com/lifeos/sunday/internal/drafts"
	"github.com/lifeos/sunday/internal/nostr"
	"github.com/lifeos/sunday/internal/ui"
)

// WithSpinner executes a function with spinner feedback.
// Returns the result and any error from the function.
func WithSpinner[T any](message string, fn func() (T, error)) (T, error) {
	spinner := ui.NewSpinner(message)
	spinner.Start()
	defer spinner.Stop()

	return fn()
}

// shortID abbreviates a draft id for display; Remove accepts any unique prefix.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// draftLabel is the one-line description of a draft used in lists and pickers.
func draftLabel(d drafts.Draft) string {
	label := d.Item.Content
	if c := d.Item.CaptionText(); c != "" {
		label += " (" + c + ")"
	}
	return truncateString(strings.Join(strings.Fields(label), " "), 60)
}

// contactNote is the dimmed picker note for a contact.
func contactNote(pubkey string) string {
	return nostr.ShortKey(nostr.EncodePublicKey(pubkey))
}

// truncateString truncates a string to maxLen runes, adding "…" if truncated.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-1]) + "…"
}
