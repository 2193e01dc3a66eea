package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lifeos/sunday/internal/cli"
	"github.com/lifeos/sunday/internal/config"
	"github.com/lifeos/sunday/internal/help"
	"github.com/lifeos/sunday/internal/ui"
	"github.com/lifeos/sunday/internal/workflow"
)

var version = "dev"

func main() {
	// Set up signal handler first - this handles Ctrl+C globally
	sigHandler := cli.NewSignalHandler()

	exitCode := run(sigHandler)

	sigHandler.Stop()
	os.Exit(exitCode)
}

func run(sigHandler *cli.SignalHandler) int {
	ctx := sigHandler.Context()
	ui.SetContext(ctx)
	ui.SetVersion(version)

	opts, err := cli.ParseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error(), "", "run 'sunday --help' for usage"))
		return 2
	}

	if opts.Global.NoColor {
		ui.SetNoColor(true)
	}
	ui.SetVerbosity(opts.Global.Verbosity())

	if opts.Global.Help {
		help.HandleHelp(os.Stdout, opts.Command)
		return 0
	}
	if opts.Global.Version {
		fmt.Print(ui.RenderLogo())
		fmt.Printf("sunday version %s\n", version)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	app, err := workflow.New(opts, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		switch {
		case errors.Is(err, workflow.ErrNothingToDo), errors.Is(err, ui.ErrAborted):
			return 0
		case errors.Is(err, context.Canceled), errors.Is(err, ui.ErrInterrupted), ctx.Err() != nil:
			return cli.ExitInterrupted
		case errors.Is(err, cli.ErrUsage):
			fmt.Fprintln(os.Stderr, ui.FormatError(err.Error(), "", "run 'sunday "+string(opts.Command)+" --help' for usage"))
			return 2
		}
		msg := err.Error()
		if !strings.HasPrefix(msg, "Error:") {
			msg = "Error: " + msg
		}
		fmt.Fprintln(os.Stderr, msg)
		return 1
	}
	return 0
}

// loadConfig reads the config file, then applies environment overrides.
func loadConfig(opts *cli.Options) (*config.Config, error) {
	cfg, err := config.Load(opts.Global.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	source := cfg.Path
	if source == "" {
		source = "defaults"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", source, err)
	}
	ui.Debugf("config: %s, %d relays", source, len(cfg.Relays))
	return cfg, nil
}
