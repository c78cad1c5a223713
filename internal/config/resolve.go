package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/logging"
)

// EnvPrefix is prepended to every environment variable flameup reads.
const EnvPrefix = "FLAMEUP"

// Keys shared by flags, environment variables and the settings file.
const (
	KeyPath      = "path"
	KeyConfig    = "config"
	KeyOutput    = "output"
	KeyMax       = "max"
	KeyInterval  = "interval"
	KeySchedule  = "schedule"
	KeyDaemon    = "daemon"
	KeyNow       = "now"
	KeyList      = "list"
	KeyRestore   = "restore"
	KeyRestoreTo = "restore-to"
	KeyDelete    = "delete"
	KeyVerbose   = "verbose"
	KeySettings  = "settings"
	KeyLogFormat = "log-format"
	KeyLogFile   = "log-file"
	KeyReload    = "reload"
)

// layeredKeys may come from the environment. Action flags never do.
var layeredKeys = []string{
	KeyPath, KeyConfig, KeyOutput, KeyMax, KeyInterval, KeySchedule,
	KeyVerbose, KeySettings, KeyLogFormat, KeyLogFile, KeyReload,
}

// BindFlags registers the flameup flag surface on flags.
func BindFlags(flags *pflag.FlagSet) {
	d := Defaults()

	flags.StringP(KeyPath, "p", "", "source directory to back up (overrides the config file)")
	flags.StringP(KeyConfig, "c", d.ConfigFile, "file holding the source directory path")
	flags.StringP(KeyOutput, "o", d.BackupRoot, "backup output directory")
	flags.IntP(KeyMax, "m", d.MaxCount, "maximum number of backups to keep")
	flags.IntP(KeyInterval, "i", int(d.Interval/time.Minute), "backup interval in minutes for daemon mode")
	flags.String(KeySchedule, "", "cron expression for daemon mode (overrides --interval)")

	flags.BoolP(KeyDaemon, "d", false, "run continuously, taking a backup every interval")
	flags.BoolP(KeyNow, "n", false, "perform one backup and exit")
	flags.BoolP(KeyList, "l", false, "list available backups, newest first")
	flags.StringP(KeyRestore, "r", "", "restore the named backup")
	flags.String(KeyRestoreTo, "", "target path for --restore")
	flags.String(KeyDelete, "", "delete the named backup")

	flags.BoolP(KeyVerbose, "v", false, "log progress and evictions")
	flags.String(KeySettings, "", "YAML settings file")
	flags.String(KeyLogFormat, string(d.LogFormat), "log format: text or json")
	flags.String(KeyLogFile, "", "also write JSON logs to this file, rotated by size")
	flags.String(KeyReload, string(d.Reload), "settings reload in daemon mode: auto, poll, fsnotify or off")
}

// NewViper returns a viper instance layering defaults, FLAMEUP_* environment
// variables and flags. The settings file is merged later by Resolve.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range layeredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "binding environment for %s", key)
		}
	}

	d := Defaults()
	v.SetDefault(KeyConfig, d.ConfigFile)
	v.SetDefault(KeyOutput, d.BackupRoot)
	v.SetDefault(KeyMax, d.MaxCount)
	v.SetDefault(KeyInterval, int(d.Interval/time.Minute))
	v.SetDefault(KeyLogFormat, string(d.LogFormat))
	v.SetDefault(KeyReload, string(d.Reload))

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "binding flags")
		}
	}
	return v, nil
}

// Resolve merges settings into v (between defaults and the environment) and
// reads the final Config. It does not validate.
func Resolve(v *viper.Viper, settings *Settings) (Config, error) {
	if settings != nil {
		if err := v.MergeConfigMap(settings.values()); err != nil {
			return Config{}, errors.Mark(errors.Wrap(err, "merging settings"), errors.ErrConfig)
		}
	}

	return Config{
		SourcePath: v.GetString(KeyPath),
		ConfigFile: v.GetString(KeyConfig),
		BackupRoot: v.GetString(KeyOutput),
		MaxCount:   v.GetInt(KeyMax),
		Interval:   time.Duration(v.GetInt(KeyInterval)) * time.Minute,
		Schedule:   v.GetString(KeySchedule),

		List:          v.GetBool(KeyList),
		Now:           v.GetBool(KeyNow),
		Daemon:        v.GetBool(KeyDaemon),
		RestoreName:   v.GetString(KeyRestore),
		RestoreTarget: v.GetString(KeyRestoreTo),
		DeleteName:    v.GetString(KeyDelete),

		Verbose:      v.GetBool(KeyVerbose),
		LogFormat:    logging.Format(v.GetString(KeyLogFormat)),
		LogFile:      v.GetString(KeyLogFile),
		SettingsFile: v.GetString(KeySettings),
		Reload:       ReloadMode(v.GetString(KeyReload)),
	}, nil
}

// Load resolves a Config from parsed flags, the environment and the settings
// file named by --settings or FLAMEUP_SETTINGS. It is called again on every
// reload so that removed settings fall back to lower layers.
func Load(flags *pflag.FlagSet) (Config, error) {
	v, err := NewViper(flags)
	if err != nil {
		return Config{}, err
	}

	var settings *Settings
	if path := v.GetString(KeySettings); path != "" {
		settings, err = LoadSettings(path)
		if err != nil {
			return Config{}, err
		}
	}
	return Resolve(v, settings)
}
