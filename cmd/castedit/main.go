// Package main is the entry point for castedit, an editor for asciicast v2
// recordings.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/castedit/internal/castfile"
	"github.com/dshills/castedit/internal/config"
	"github.com/dshills/castedit/internal/logging"
	"github.com/dshills/castedit/internal/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errSilent ends a command with a failing exit status and no message.
var errSilent = errors.New("silent failure")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// app holds state shared by all commands.
type app struct {
	configPath string
	logLevel   string

	stdout, stderr io.Writer

	cfg     config.Config
	log     *logging.Logger
	logFile *os.File
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "castedit",
		Short:         "Inspect and edit asciicast v2 recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to configuration file (TOML or YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.infoCommand(),
		a.catCommand(),
		a.grepCommand(),
		a.scriptCommand(),
		a.editCommand(),
	)
	return root
}

// setup loads configuration and creates the logger.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := make(map[string]any)
	if cmd.Flags().Changed("log-level") {
		overrides["logging.level"] = a.logLevel
	}
	cfg, err := config.Load(config.Options{
		Path:      a.configPath,
		Overrides: overrides,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	out := a.stderr
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.log = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: out,
		Prefix: "castedit",
	})
	a.log.WithField("command", cmd.Name()).Debug("configuration loaded")
	return nil
}

// open opens path with the configured save mode. A watcher is attached
// when watch is set and the configuration allows it. The returned func
// closes the file and its watcher.
func (a *app) open(path string, watch bool) (*castfile.CastFile, func(), error) {
	opts := []castfile.Option{
		castfile.WithLogger(a.log),
		castfile.WithAtomicSave(a.cfg.Save.Atomic),
	}
	var w *watcher.FSNotifyWatcher
	if watch && a.cfg.Editor.Watch {
		var err error
		if w, err = watcher.NewFSNotifyWatcher(); err != nil {
			a.log.Warn("file watching disabled: %v", err)
			w = nil
		} else {
			opts = append(opts, castfile.WithWatcher(w))
		}
	}
	f, err := castfile.Open(path, opts...)
	if err != nil {
		if w != nil {
			w.Close()
		}
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			a.log.Warn("closing %s: %v", path, err)
		}
		if w != nil {
			w.Close()
		}
	}, nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}
