// Package config builds the immutable Config value every flameup operation
// consumes. Values are layered: built-in defaults, then an optional YAML
// settings file, then FLAMEUP_* environment variables, then command line
// flags.
package config

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/logging"
)

// ReloadMode selects how the daemon notices settings file changes.
type ReloadMode string

const (
	ReloadAuto     ReloadMode = "auto"
	ReloadPoll     ReloadMode = "poll"
	ReloadFsnotify ReloadMode = "fsnotify"
	ReloadOff      ReloadMode = "off"
)

func (m ReloadMode) Valid() bool {
	switch m {
	case ReloadAuto, ReloadPoll, ReloadFsnotify, ReloadOff:
		return true
	}
	return false
}

// Action is the operation a single invocation performs.
type Action string

const (
	ActionNone    Action = ""
	ActionList    Action = "list"
	ActionRestore Action = "restore"
	ActionDelete  Action = "delete"
	ActionNow     Action = "now"
	ActionDaemon  Action = "daemon"
)

type Config struct {
	SourcePath string
	ConfigFile string
	BackupRoot string
	MaxCount   int
	Interval   time.Duration
	Schedule   string

	List          bool
	Now           bool
	Daemon        bool
	RestoreName   string
	RestoreTarget string
	DeleteName    string

	Verbose      bool
	LogFormat    logging.Format
	LogFile      string
	SettingsFile string
	Reload       ReloadMode
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		ConfigFile: "paths.txt",
		BackupRoot: "CopiedFiles",
		MaxCount:   10,
		Interval:   30 * time.Minute,
		LogFormat:  logging.FormatText,
		Reload:     ReloadAuto,
	}
}

// Action returns the selected operation. When several action flags are set
// the first of list, restore, delete, now, daemon wins.
func (c Config) Action() Action {
	switch {
	case c.List:
		return ActionList
	case c.RestoreName != "":
		return ActionRestore
	case c.DeleteName != "":
		return ActionDelete
	case c.Now:
		return ActionNow
	case c.Daemon:
		return ActionDaemon
	}
	return ActionNone
}

// Validate checks the configuration once, so the rest of the program can
// rely on it. Every error is marked errors.ErrConfig.
func (c Config) Validate() error {
	var problems []string

	if c.MaxCount < 1 {
		problems = append(problems, "max must be at least 1")
	}
	if c.Interval <= 0 {
		problems = append(problems, "interval must be positive")
	}
	if strings.TrimSpace(c.BackupRoot) == "" {
		problems = append(problems, "output directory must not be empty")
	}
	if c.Action() == ActionNone {
		problems = append(problems, "no action given (use --list, --restore, --delete, --now or --daemon)")
	}
	if c.Action() == ActionRestore && c.RestoreTarget == "" {
		problems = append(problems, "--restore-to <path> is required when using --restore")
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			problems = append(problems, "invalid schedule "+quote(c.Schedule)+": "+err.Error())
		}
	}
	if !c.LogFormat.Valid() {
		problems = append(problems, "log format must be text or json, got "+quote(string(c.LogFormat)))
	}
	if !c.Reload.Valid() {
		problems = append(problems, "reload mode must be auto, poll, fsnotify or off, got "+quote(string(c.Reload)))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Mark(errors.Newf("invalid configuration: %s", strings.Join(problems, "; ")), errors.ErrConfig)
}

func quote(s string) string {
	return "\"" + s + "\""
}
