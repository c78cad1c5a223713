package config

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/raoulx24/flameup/internal/errors"
)

// Settings mirrors the optional YAML settings file. Unset fields leave the
// lower layers untouched.
type Settings struct {
	Source     string `yaml:"source"`
	ConfigFile string `yaml:"configFile"`
	Output     string `yaml:"output"`
	Max        *int   `yaml:"max"`
	Interval   *int   `yaml:"interval"` // minutes
	Schedule   string `yaml:"schedule"`
	Verbose    *bool  `yaml:"verbose"`
	LogFormat  string `yaml:"logFormat"`
	LogFile    string `yaml:"logFile"`
	Reload     string `yaml:"reload"`
}

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

// LoadSettings reads the YAML settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading settings file"), errors.ErrConfig)
	}

	expanded := expandEnvVars(string(data))

	var s Settings
	if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing settings file %s", path), errors.ErrConfig)
	}
	return &s, nil
}

// values returns the fields that were set, keyed like the command line flags.
func (s *Settings) values() map[string]any {
	m := map[string]any{}
	setString := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	setString(KeyPath, s.Source)
	setString(KeyConfig, s.ConfigFile)
	setString(KeyOutput, s.Output)
	setString(KeySchedule, s.Schedule)
	setString(KeyLogFormat, s.LogFormat)
	setString(KeyLogFile, s.LogFile)
	setString(KeyReload, s.Reload)
	if s.Max != nil {
		m[KeyMax] = *s.Max
	}
	if s.Interval != nil {
		m[KeyInterval] = *s.Interval
	}
	if s.Verbose != nil {
		m[KeyVerbose] = *s.Verbose
	}
	return m
}
