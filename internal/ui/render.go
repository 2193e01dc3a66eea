package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/lifeos/sunday/internal/nostr"
	"golang.org/x/term"
)

const defaultWrap = 80

// IssueMarkdown renders one issue as markdown. known maps author keys to the
// handle saved in the address book; it wins over the handle the author chose.
func IssueMarkdown(issue *nostr.Issue, known map[string]string) string {
	var b strings.Builder

	handle := issue.Handle
	if h, ok := known[issue.Author]; ok && h != "" {
		handle = h
	}
	fmt.Fprintf(&b, "## %s\n\n", handle)
	fmt.Fprintf(&b, "*%s · %s*\n\n", issue.CreatedAt.Local().Format("Mon Jan 2 2006, 15:04"), nostr.ShortKey(nostr.EncodePublicKey(issue.Author)))

	for _, item := range issue.Items {
		switch item.Kind {
		case nostr.ItemImage:
			alt := item.CaptionText()
			if alt == "" {
				alt = "image"
			}
			fmt.Fprintf(&b, "- ![%s](%s)\n", alt, item.Content)
		case nostr.ItemLink:
			label := item.CaptionText()
			if label == "" {
				label = item.Content
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", label, item.Content)
		default:
			text := strings.ReplaceAll(strings.TrimSpace(item.Content), "\n", "\n  ")
			fmt.Fprintf(&b, "- %s\n", text)
			if c := item.CaptionText(); c != "" {
				fmt.Fprintf(&b, "  *%s*\n", c)
			}
		}
	}
	return b.String()
}

// FeedMarkdown renders a feed, one section per issue.
func FeedMarkdown(issues []*nostr.Issue, known map[string]string) string {
	sections := make([]string, len(issues))
	for i, issue := range issues {
		sections[i] = IssueMarkdown(issue, known)
	}
	return strings.Join(sections, "\n---\n\n")
}

// RenderMarkdown renders markdown for the terminal with glamour.
func RenderMarkdown(md string) (string, error) {
	style := "dark"
	if NoColor {
		style = "notty"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(terminalWidth()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render: %w", err)
	}
	return out, nil
}

// RelativeTime describes t relative to now, e.g. "3h ago".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("Jan 2")
	}
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWrap
	}
	if w > 100 {
		return 100
	}
	return w
}
