// Package cli handles command-line interface concerns.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lifeos/sunday/internal/nostr"
)

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("invalid usage")

// Command represents the active subcommand.
type Command string

const (
	CommandNone      Command = ""
	CommandIdentity  Command = "identity"
	CommandFollow    Command = "follow"
	CommandUnfollow  Command = "unfollow"
	CommandFollowing Command = "following"
	CommandDraft     Command = "draft"
	CommandPublish   Command = "publish"
	CommandFeed      Command = "feed"
)

// DraftAction is the draft subcommand verb.
type DraftAction string

const (
	DraftAdd    DraftAction = "add"
	DraftList   DraftAction = "list"
	DraftRemove DraftAction = "rm"
	DraftClear  DraftAction = "clear"
)

// GlobalOptions holds flags available at root level and shared across subcommands.
type GlobalOptions struct {
	ConfigPath string
	Verbose    int // repeat --verbose for debug output
	Quiet      bool
	NoColor    bool
	Version    bool
	Help       bool
}

// IdentityOptions holds flags specific to the identity subcommand.
type IdentityOptions struct {
	Rename string
}

// FollowingOptions holds flags specific to the following subcommand.
type FollowingOptions struct {
	Search string
}

// DraftOptions holds flags specific to the draft subcommand.
type DraftOptions struct {
	Action     DraftAction
	Kind       nostr.ItemKind
	Content    string
	Caption    string
	FetchTitle bool
	Yes        bool
}

// PublishOptions holds flags specific to the publish subcommand.
type PublishOptions struct {
	DryRun bool
	Keep   bool // keep drafts after a successful publish
}

// FeedOptions holds flags specific to the feed subcommand.
type FeedOptions struct {
	Following bool
	Limit     int // 0 means the configured default
	Raw       bool
}

// Options holds all CLI configuration options.
type Options struct {
	Command Command
	Args    []string // Remaining positional arguments

	Global    GlobalOptions
	Identity  IdentityOptions
	Following FollowingOptions
	Draft     DraftOptions
	Publish   PublishOptions
	Feed      FeedOptions
}

// countFlag implements a repeatable boolean flag that counts occurrences.
type countFlag int

func (c *countFlag) String() string {
	return strconv.Itoa(int(*c))
}

func (c *countFlag) Set(value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if b {
		*c++
	}
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

// stderr is where flag parse errors go; replaced in tests.
var stderr io.Writer = os.Stderr

// ParseCommand parses command-line arguments (without the program name).
func ParseCommand(args []string) (*Options, error) {
	opts := &Options{}

	if len(args) == 0 {
		opts.Global.Help = true
		return opts, nil
	}

	// Global flags may precede the subcommand.
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		arg := args[0]
		args = args[1:]
		switch {
		case arg == "-h" || arg == "--help" || arg == "-help":
			opts.Global.Help = true
			opts.Args = args
			return opts, nil
		case arg == "-v" || arg == "--version" || arg == "-version":
			opts.Global.Version = true
			return opts, nil
		case arg == "--verbose":
			opts.Global.Verbose++
		case arg == "-q" || arg == "--quiet":
			opts.Global.Quiet = true
		case arg == "--no-color":
			opts.Global.NoColor = true
		case arg == "--config":
			if len(args) == 0 {
				return nil, fmt.Errorf("%w: --config requires a path", ErrUsage)
			}
			opts.Global.ConfigPath = args[0]
			args = args[1:]
		case strings.HasPrefix(arg, "--config="):
			opts.Global.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			return nil, fmt.Errorf("%w: unknown flag %s", ErrUsage, arg)
		}
	}

	if len(args) == 0 {
		opts.Global.Help = true
		return opts, nil
	}

	var err error
	switch Command(args[0]) {
	case CommandIdentity:
		opts.Command = CommandIdentity
		err = parseIdentityFlags(opts, args[1:])
	case CommandFollow:
		opts.Command = CommandFollow
		err = parseFollowFlags(opts, args[1:])
	case CommandUnfollow:
		opts.Command = CommandUnfollow
		err = parseUnfollowFlags(opts, args[1:])
	case CommandFollowing:
		opts.Command = CommandFollowing
		err = parseFollowingFlags(opts, args[1:])
	case CommandDraft:
		opts.Command = CommandDraft
		err = parseDraftFlags(opts, args[1:])
	case CommandPublish:
		opts.Command = CommandPublish
		err = parsePublishFlags(opts, args[1:])
	case CommandFeed:
		opts.Command = CommandFeed
		err = parseFeedFlags(opts, args[1:])
	case "help":
		opts.Global.Help = true
		if len(args) > 1 {
			opts.Command = Command(args[1])
		}
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	if err != nil {
		return nil, err
	}
	return opts, nil
}

// newFlagSet creates a flag set with the shared global flags registered.
func newFlagSet(name string, opts *Options, showHelp *bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}

	fs.StringVar(&opts.Global.ConfigPath, "config", opts.Global.ConfigPath, "Config file path")
	fs.Var((*countFlag)(&opts.Global.Verbose), "verbose", "Per-relay output (repeat for debug)")
	fs.BoolVar(&opts.Global.Quiet, "quiet", opts.Global.Quiet, "Results and errors only")
	fs.BoolVar(&opts.Global.Quiet, "q", opts.Global.Quiet, "Results and errors only (alias)")
	fs.BoolVar(&opts.Global.NoColor, "no-color", opts.Global.NoColor, "Disable colored output")
	fs.BoolVar(showHelp, "h", false, "Show help")
	fs.BoolVar(showHelp, "help", false, "Show help")
	return fs
}

// parse reorders and parses args, mapping flag errors to ErrUsage.
func parse(fs *flag.FlagSet, opts *Options, args []string, valuedFlags map[string]bool) (bool, error) {
	valued := map[string]bool{"--config": true, "-config": true}
	for k, v := range valuedFlags {
		valued[k] = v
	}
	if err := fs.Parse(reorderArgsForFlagSet(args, valued)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			opts.Global.Help = true
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	opts.Args = fs.Args()
	return true, nil
}

// parseIdentityFlags parses flags for the identity subcommand.
func parseIdentityFlags(opts *Options, args []string) error {
	var showHelp bool
	fs := newFlagSet("identity", opts, &showHelp)
	fs.StringVar(&opts.Identity.Rename, "rename", "", "Change the handle shown on published issues")

	ok, err := parse(fs, opts, args, map[string]bool{"--rename": true, "-rename": true})
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
		return nil
	}
	if len(opts.Args) > 0 {
		return fmt.Errorf("%w: identity takes no arguments", ErrUsage)
	}
	return nil
}

// parseFollowFlags parses flags for the follow subcommand.
func parseFollowFlags(opts *Options, args []string) error {
	var showHelp bool
	fs := newFlagSet("follow", opts, &showHelp)

	ok, err := parse(fs, opts, args, nil)
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
		return nil
	}
	if len(opts.Args) == 0 {
		return fmt.Errorf("%w: follow requires a public key (npub1... or hex)", ErrUsage)
	}
	return nil
}

// parseUnfollowFlags parses flags for the unfollow subcommand.
func parseUnfollowFlags(opts *Options, args []string) error {
	var showHelp bool
	fs := newFlagSet("unfollow", opts, &showHelp)

	ok, err := parse(fs, opts, args, nil)
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
	}
	return nil
}

// parseFollowingFlags parses flags for the following subcommand.
func parseFollowingFlags(opts *Options, args []string) error {
	var showHelp bool
	fs := newFlagSet("following", opts, &showHelp)
	fs.StringVar(&opts.Following.Search, "search", "", "Fuzzy-match handles")
	fs.StringVar(&opts.Following.Search, "s", "", "Fuzzy-match handles (alias)")

	ok, err := parse(fs, opts, args, map[string]bool{"--search": true, "-search": true, "-s": true})
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
	}
	return nil
}

// parseDraftFlags parses the draft action and its flags.
func parseDraftFlags(opts *Options, args []string) error {
	if len(args) == 0 {
		opts.Draft.Action = DraftList
		return nil
	}

	switch args[0] {
	case "add":
		opts.Draft.Action = DraftAdd
	case "list", "ls":
		opts.Draft.Action = DraftList
	case "rm", "remove":
		opts.Draft.Action = DraftRemove
	case "clear":
		opts.Draft.Action = DraftClear
	case "-h", "--help", "-help":
		opts.Global.Help = true
		return nil
	default:
		return fmt.Errorf("%w: unknown draft action %q (add, list, rm, clear)", ErrUsage, args[0])
	}

	var showHelp bool
	var text, image, link bool
	fs := newFlagSet("draft "+args[0], opts, &showHelp)
	fs.BoolVar(&text, "text", false, "Add a text item")
	fs.BoolVar(&image, "image", false, "Add an image (URL or local file)")
	fs.BoolVar(&link, "link", false, "Add a link")
	fs.StringVar(&opts.Draft.Caption, "caption", "", "Caption for the item")
	fs.BoolVar(&opts.Draft.FetchTitle, "fetch-title", false, "Use the page title as caption for links")
	fs.BoolVar(&opts.Draft.Yes, "y", false, "Skip confirmations")
	fs.BoolVar(&opts.Draft.Yes, "yes", false, "Skip confirmations (alias)")

	ok, err := parse(fs, opts, args[1:], map[string]bool{"--caption": true, "-caption": true})
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
		return nil
	}

	if opts.Draft.Action != DraftAdd {
		if text || image || link || opts.Draft.Caption != "" || opts.Draft.FetchTitle {
			return fmt.Errorf("%w: item flags only apply to draft add", ErrUsage)
		}
		return nil
	}

	kinds := 0
	opts.Draft.Kind = nostr.ItemText
	for _, k := range []struct {
		set  bool
		kind nostr.ItemKind
	}{{text, nostr.ItemText}, {image, nostr.ItemImage}, {link, nostr.ItemLink}} {
		if k.set {
			kinds++
			opts.Draft.Kind = k.kind
		}
	}
	if kinds > 1 {
		return fmt.Errorf("%w: choose one of --text, --image, --link", ErrUsage)
	}
	if opts.Draft.FetchTitle && opts.Draft.Kind != nostr.ItemLink {
		return fmt.Errorf("%w: --fetch-title requires --link", ErrUsage)
	}

	opts.Draft.Content = strings.Join(opts.Args, " ")
	if strings.TrimSpace(opts.Draft.Content) == "" {
		return fmt.Errorf("%w: draft add requires content", ErrUsage)
	}
	return nil
}

// parsePublishFlags parses flags for the publish subcommand.
func parsePublishFlags(opts *Options, args []string) error {
	var showHelp bool
	fs := newFlagSet("publish", opts, &showHelp)
	fs.BoolVar(&opts.Publish.DryRun, "dry-run", false, "Sign and print the issue without publishing")
	fs.BoolVar(&opts.Publish.DryRun, "n", false, "Sign and print the issue without publishing (alias)")
	fs.BoolVar(&opts.Publish.Keep, "keep", false, "Keep drafts after publishing")

	ok, err := parse(fs, opts, args, nil)
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
	}
	return nil
}

// parseFeedFlags parses flags for the feed subcommand.
func parseFeedFlags(opts *Options, args []string) error {
	var showHelp bool
	fs := newFlagSet("feed", opts, &showHelp)
	fs.BoolVar(&opts.Feed.Following, "following", false, "Only issues from people you follow")
	fs.BoolVar(&opts.Feed.Following, "f", false, "Only issues from people you follow (alias)")
	fs.IntVar(&opts.Feed.Limit, "limit", 0, "Maximum issues per relay")
	fs.BoolVar(&opts.Feed.Raw, "raw", false, "Print signed events as JSON lines")

	ok, err := parse(fs, opts, args, map[string]bool{"--limit": true, "-limit": true})
	if !ok || err != nil {
		return err
	}
	if showHelp {
		opts.Global.Help = true
		return nil
	}
	if opts.Feed.Limit < 0 {
		return fmt.Errorf("%w: --limit must be positive", ErrUsage)
	}
	return nil
}

// reorderArgsForFlagSet moves flags before positional arguments.
func reorderArgsForFlagSet(args []string, valuedFlags map[string]bool) []string {
	var flags, positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			flags = append(flags, arg)
			// Check if this flag takes a value
			if valuedFlags[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

// Verbosity maps the global flags to a ui verbosity level.
func (g GlobalOptions) Verbosity() int {
	if g.Quiet {
		return -1
	}
	return g.Verbose
}
