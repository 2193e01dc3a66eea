// Package help provides colorful CLI help output.
package help

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lifeos/sunday/internal/cli"
	"github.com/lifeos/sunday/internal/config"
	"github.com/lifeos/sunday/internal/ui"
)

// Color palette: amber headings, terracotta commands, warm greys
var (
	amber      = lipgloss.Color("215")
	terracotta = lipgloss.Color("173")
	grey       = lipgloss.Color("245")
	greyDark   = lipgloss.Color("242")
	white      = lipgloss.Color("252")
)

func render(c lipgloss.Color, bold bool, s string) string {
	if ui.NoColor {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Bold(bold).Render(s)
}

func heading(s string) string { return render(amber, true, s) }
func command(s string) string { return render(terracotta, false, s) }
func envVar(s string) string { return render(amber, false, s) }
func text(s string) string { return render(white, false, s) }
func note(s string) string { return render(greyDark, false, s) }
func exampleDesc(s string) string { return render(grey, false, s) }

// RootHelp returns the top-level --help output.
func RootHelp() string {
	var b strings.Builder

	b.WriteString(ui.RenderLogo())
	b.WriteString(text("Share a weekly issue of your life with the people who follow you, over Nostr relays") + "\n\n")

	b.WriteString(heading("USAGE") + "\n")
	b.WriteString("  " + command("sunday") + " [global flags] <command> [options]\n\n")

	b.WriteString(heading("COMMANDS") + "\n")
	writeFlag(&b, "identity", "Show or rename your identity (created on first use)")
	writeFlag(&b, "follow", "Add someone to your address book")
	writeFlag(&b, "unfollow", "Remove someone from your address book")
	writeFlag(&b, "following", "List or search the people you follow")
	writeFlag(&b, "draft", "Collect items for your next issue")
	writeFlag(&b, "publish", "Sign your drafts as one issue and send it to relays")
	writeFlag(&b, "feed", "Read the latest issues from relays")
	b.WriteString("\n")

	b.WriteString(heading("EXAMPLES") + "\n")
	writeExample(&b, "sunday identity --rename Ada", "Pick the handle shown on your issues")
	writeExample(&b, "sunday follow npub1... Mom", "Follow someone with a local nickname")
	writeExample(&b, "sunday draft add slept in, made pancakes", "Add a text item")
	writeExample(&b, "sunday draft add --image ./lake.jpg", "Add a photo (uploaded on publish)")
	writeExample(&b, "sunday publish", "Send your issue")
	writeExample(&b, "sunday feed --following", "Read issues from people you follow")
	b.WriteString("\n")

	b.WriteString(heading("ENVIRONMENT") + "\n")
	writeEnv(&b, config.EnvRelayURLs, "Comma-separated relay URLs (overrides config)")
	writeEnv(&b, config.EnvBlossomURL, "Image server (default: "+config.DefaultBlossomServer+")")
	writeEnv(&b, config.EnvDataDir, "Where identity, contacts and drafts are kept")
	writeEnv(&b, "NO_COLOR", "Disable colored output")
	b.WriteString("\n")

	writeGlobalFlags(&b)

	b.WriteString(heading("MORE INFO") + "\n")
	b.WriteString("  " + command("sunday <command> --help") + "  " + text("Detailed help for a command") + "\n")

	return b.String()
}

// IdentityHelp returns help for the identity subcommand.
func IdentityHelp() string {
	var b strings.Builder

	b.WriteString(commandTitle("sunday identity", "Show or rename your identity"))

	b.WriteString(heading("USAGE") + "\n")
	b.WriteString("  " + command("sunday identity") + " [--rename <handle>]\n\n")

	b.WriteString(note("  Your key pair is generated the first time any command needs it and") + "\n")
	b.WriteString(note("  stays in your data directory. Share the npub so others can follow you.") + "\n\n")

	b.WriteString(heading("OPTIONS") + "\n")
	writeFlag(&b, "--rename <handle>", "Change the handle shown on published issues")
	b.WriteString("\n")

	b.WriteString(heading("OUTPUT") + "\n")
	b.WriteString(note("  The npub is printed to stdout so it can be piped:") + "\n")
	b.WriteString("  " + command("sunday identity -q | pbcopy") + "\n")

	return b.String()
}

// ContactsHelp returns help for follow, unfollow and following.
func ContactsHelp() string {
	var b strings.Builder

	b.WriteString(commandTitle("sunday follow", "Manage your address book"))

	b.WriteString(heading("USAGE") + "\n")
	b.WriteString("  " + command("sunday follow") + " <npub|hex> [handle]\n")
	b.WriteString("  " + command("sunday unfollow") + " [npub|hex]\n")
	b.WriteString("  " + command("sunday following") + " [--search <query>]\n\n")

	b.WriteString(note("  Following someone twice keeps the first entry.") + "\n")
	b.WriteString(note("  Without a key, unfollow opens a picker.") + "\n")
	b.WriteString(note("  The handle is your own nickname for them and wins over theirs in the feed.") + "\n\n")

	b.WriteString(heading("OPTIONS") + "\n")
	writeFlag(&b, "-s, --search <query>", "Fuzzy-match handles (following)")
	b.WriteString("\n")

	b.WriteString(heading("EXAMPLES") + "\n")
	writeExample(&b, "sunday follow npub1... Grandpa", "Follow with a nickname")
	writeExample(&b, "sunday following -s gra", "Find Grandpa")
	writeExample(&b, "sunday unfollow", "Pick someone to remove")

	return b.String()
}

// DraftHelp returns help for the draft subcommand.
func DraftHelp() string {
	var b strings.Builder

	b.WriteString(commandTitle("sunday draft", "Collect items for your next issue"))

	b.WriteString(heading("USAGE") + "\n")
	b.WriteString("  " + command("sunday draft add") + " [--text|--image|--link] <content> [--caption <text>]\n")
	b.WriteString("  " + command("sunday draft list") + "\n")
	b.WriteString("  " + command("sunday draft rm") + " [id]\n")
	b.WriteString("  " + command("sunday draft clear") + " [-y]\n\n")

	b.WriteString(heading("ITEM FLAGS") + "\n")
	writeFlag(&b, "--text", "Plain text (default)")
	writeFlag(&b, "--image", "Image URL or local file")
	b.WriteString(strings.Repeat(" ", 28) + note("Local files are uploaded to the image server on publish") + "\n")
	writeFlag(&b, "--link", "A web page (http or https)")
	writeFlag(&b, "--caption <text>", "Caption shown under the item")
	writeFlag(&b, "--fetch-title", "Use the page title as caption (links)")
	b.WriteString("\n")

	b.WriteString(heading("OTHER FLAGS") + "\n")
	writeFlag(&b, "-y, --yes", "Skip the confirmation for clear")
	b.WriteString("\n")

	b.WriteString(heading("EXAMPLES") + "\n")
	writeExample(&b, "sunday draft add finally fixed the bike", "Text item")
	writeExample(&b, "sunday draft add --link https://... --fetch-title", "Link titled from the page")
	writeExample(&b, "sunday draft rm 0193", "Remove by id prefix")

	return b.String()
}

// PublishHelp returns help for the publish subcommand.
func PublishHelp() string {
	var b strings.Builder

	b.WriteString(commandTitle("sunday publish", "Send your drafts as one signed issue"))

	b.WriteString(heading("USAGE") + "\n")
	b.WriteString("  " + command("sunday publish") + " [--dry-run] [--keep]\n\n")

	b.WriteString(note("  The issue is sent to every configured relay at once. Publishing succeeds") + "\n")
	b.WriteString(note("  as soon as one relay accepts it; drafts are cleared only then.") + "\n\n")

	b.WriteString(heading("OPTIONS") + "\n")
	writeFlag(&b, "-n, --dry-run", "Sign and print the event JSON, send nothing")
	writeFlag(&b, "--keep", "Keep drafts after publishing")
	b.WriteString("\n")

	b.WriteString(heading("EXAMPLES") + "\n")
	writeExample(&b, "sunday publish", "Publish and clear drafts")
	writeExample(&b, "sunday publish -n -q | jq .content", "Inspect the signed event")

	return b.String()
}

// FeedHelp returns help for the feed subcommand.
func FeedHelp() string {
	var b strings.Builder

	b.WriteString(commandTitle("sunday feed", "Read the latest issues"))

	b.WriteString(heading("USAGE") + "\n")
	b.WriteString("  " + command("sunday feed") + " [--following] [--limit <n>] [--raw]\n\n")

	b.WriteString(note("  Every relay is asked in parallel; slow or broken relays only mean fewer") + "\n")
	b.WriteString(note("  results. Issues seen on several relays are shown once, newest first.") + "\n\n")

	b.WriteString(heading("OPTIONS") + "\n")
	writeFlag(&b, "-f, --following", "Only people in your address book")
	writeFlag(&b, "--limit <n>", fmt.Sprintf("Issues per relay (default: %d)", config.DefaultFeedLimit))
	writeFlag(&b, "--raw", "Print signed events as JSON lines")
	b.WriteString("\n")

	b.WriteString(heading("EXAMPLES") + "\n")
	writeExample(&b, "sunday feed -f", "What your people did this week")
	writeExample(&b, "sunday feed --raw | jq .pubkey", "Script over raw events")

	return b.String()
}

// HandleHelp writes help for cmd to w.
func HandleHelp(w io.Writer, cmd cli.Command) {
	switch cmd {
	case cli.CommandIdentity:
		fmt.Fprint(w, IdentityHelp())
	case cli.CommandFollow, cli.CommandUnfollow, cli.CommandFollowing:
		fmt.Fprint(w, ContactsHelp())
	case cli.CommandDraft:
		fmt.Fprint(w, DraftHelp())
	case cli.CommandPublish:
		fmt.Fprint(w, PublishHelp())
	case cli.CommandFeed:
		fmt.Fprint(w, FeedHelp())
	default:
		fmt.Fprint(w, RootHelp())
	}
}

func commandTitle(name, desc string) string {
	return render(terracotta, true, name) + " " + text("- "+desc) + "\n\n"
}

func writeGlobalFlags(b *strings.Builder) {
	b.WriteString(heading("GLOBAL FLAGS") + "\n")
	writeFlag(b, "--config <path>", "Config file (default: "+config.DefaultPath()+")")
	writeFlag(b, "--verbose", "Per-relay output (twice for debug)")
	writeFlag(b, "-q, --quiet", "Results and errors only")
	writeFlag(b, "--no-color", "Disable colored output")
	writeFlag(b, "-h, --help", "Show help")
	writeFlag(b, "-v, --version", "Show version")
	b.WriteString("\n")
}

// Helper to write a flag line
func writeFlag(b *strings.Builder, flag, desc string) {
	b.WriteString("  " + command(flag))
	// Pad to align descriptions (min 1 space)
	padding := 26 - len(flag)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(text(desc) + "\n")
}

func writeEnv(b *strings.Builder, name, desc string) {
	b.WriteString("  " + envVar(name))
	padding := 18 - len(name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(text(desc) + "\n")
}

// Helper to write an example line
func writeExample(b *strings.Builder, cmd, desc string) {
	b.WriteString("  " + command(cmd))
	// Pad to align descriptions
	padding := 44 - len(cmd)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(exampleDesc(desc) + "\n")
}
