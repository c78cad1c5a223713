// Package commands implements the flameup command line.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/lock"
	"github.com/raoulx24/flameup/internal/logging"
	"github.com/raoulx24/flameup/internal/worker"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// NewRootCmd builds the flameup command. A fresh command is built per
// invocation so tests never share flag state.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flameup [flags]",
		Short: "Directory snapshot backup utility",
		Long: `flameup copies a source directory into timestamped folders under a backup
root, keeps only the most recent ones, and can list, restore, or delete
individual backups. It runs once (--now) or continuously (--daemon).

The source directory comes from --path, or from the first line of the
config file (--config, default paths.txt) that is neither blank nor a
comment (#, //, --).`,
		Example: `  # Instant backup using paths.txt
  flameup --now

  # Instant backup of a specific path
  flameup --path /srv/photos --now

  # Run as a daemon with a 60 minute interval
  flameup --daemon --interval 60

  # List all backups
  flameup --list

  # Restore a backup
  flameup --restore Backup_2024-01-01_12-00-00 --restore-to /srv/restored

  # Delete a backup
  flameup --delete Backup_2024-01-01_12-00-00`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.NewUsageError(errors.Newf("unknown argument: %s", args[0]))
			}
			return nil
		},
		RunE: run,
	}

	config.BindFlags(cmd.Flags())
	cmd.SetVersionTemplate("flameup version {{.Version}}\n")
	cmd.SetFlagErrorFunc(flagError)
	return cmd
}

// Execute runs flameup with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// flagError maps flag parsing errors to exit codes. A flag given without
// its value is a missing argument and fails with ExitFailure; anything else
// is a usage error.
func flagError(_ *cobra.Command, err error) error {
	var missing *pflag.ValueRequiredError
	if errors.As(err, &missing) {
		return errors.NewFailure(err, "Run: flameup --help")
	}
	return errors.NewUsageError(err)
}

// PrintError writes err and its suggestion, if any, to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintln(w, exitErr.Suggestion)
	}
}

// app carries what every action needs.
type app struct {
	cfg    config.Config
	flags  *pflag.FlagSet
	out    io.Writer
	worker *worker.Worker
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return errors.NewFailure(err, "Check --settings and the FLAMEUP_* environment variables")
	}

	if cfg.Action() == config.ActionNone {
		_ = cmd.Help()
		return errors.NewExitError(errors.New("no action specified"), errors.ExitFailure)
	}
	if err := cfg.Validate(); err != nil {
		return errors.NewFailure(err, "Run: flameup --help")
	}

	logger, closer := logging.New(logging.Config{
		Level:  logging.LevelFromVerbose(cfg.Verbose),
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
		File:   cfg.LogFile,
	})
	defer closer.Close()
	ctx := logging.NewContext(cmd.Context(), logger)

	a := &app{
		cfg:    cfg,
		flags:  cmd.Flags(),
		out:    cmd.OutOrStdout(),
		worker: worker.New(logger, nil, nil),
	}

	switch cfg.Action() {
	case config.ActionList:
		return a.list(ctx)
	case config.ActionRestore:
		return a.restore(ctx)
	case config.ActionDelete:
		return a.delete(ctx)
	case config.ActionNow:
		return a.now(ctx)
	case config.ActionDaemon:
		return a.daemon(ctx)
	}
	return nil
}

// acquire takes the lock on root for the duration of one action.
func acquire(ctx context.Context, root string) (*lock.Lock, error) {
	lk, err := lock.Acquire(root)
	if err != nil {
		return nil, failure(err)
	}
	logging.FromContext(ctx).Debug("acquired lock", "path", lk.Path())
	return lk, nil
}

// success prints a result line, with a green check mark on color terminals.
func success(w io.Writer, format string, args ...any) {
	mark := "✓"
	if logging.SupportsColor(w) {
		mark = color.New(color.FgGreen).Sprint(mark)
	}
	fmt.Fprintf(w, mark+" "+format+"\n", args...)
}

// failure turns an operation error into an ExitError with a hint suited to
// its kind.
func failure(err error) error {
	switch {
	case errors.Is(err, errors.ErrSnapshotNotFound):
		return errors.NewFailure(err, "Run: flameup --list")
	case errors.Is(err, errors.ErrLocked):
		return errors.NewFailure(err, "Stop the other flameup instance or use a different --output")
	case errors.IsAny(err, errors.ErrSourceMissing, errors.ErrConfig):
		return errors.NewFailure(err, "Check --path or the config file given by --config")
	case errors.Is(err, errors.ErrSnapshotExists):
		return errors.NewFailure(err, "Wait a second and try again")
	}
	return errors.NewFailure(err, "")
}
