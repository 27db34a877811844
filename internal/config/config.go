package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	KeySkipNative          = "skip-native"
	KeyPathLengthThreshold = "path-length-threshold"
	KeyDockerignore        = "dockerignore"
	KeyLogLevel            = "log-level"

	// EnvConfigPath overrides the settings file location
	EnvConfigPath = "ODOOUP_CONFIG"
)

var defaults = map[string]any{
	KeySkipNative:          true,
	KeyPathLengthThreshold: 5,
	KeyDockerignore:        ".dockerignore",
	KeyLogLevel:            "warn",
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Keys returns the valid setting keys, sorted
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Settings are the user's global odooup settings
type Settings struct {
	SkipNative          bool   `mapstructure:"skip-native"`
	PathLengthThreshold int    `mapstructure:"path-length-threshold"`
	Dockerignore        string `mapstructure:"dockerignore"`
	LogLevel            string `mapstructure:"log-level"`
}

// Dir returns the odooup directory under the user config dir
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "odooup"), nil
}

// Path returns the settings file path
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandPath(p)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix("odooup")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path. A missing file yields the defaults;
// ODOOUP_* environment variables override both.
func Load(path string) (*Settings, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &s, nil
}

// LoadGlobal loads settings from the default path
func LoadGlobal() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the settings to path
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for _, k := range Keys() {
		val, _ := s.value(k)
		v.Set(k, val)
	}
	return v.WriteConfigAs(path)
}

func (s *Settings) value(key string) (any, error) {
	switch key {
	case KeySkipNative:
		return s.SkipNative, nil
	case KeyPathLengthThreshold:
		return s.PathLengthThreshold, nil
	case KeyDockerignore:
		return s.Dockerignore, nil
	case KeyLogLevel:
		return s.LogLevel, nil
	}
	return nil, unknownKey(key)
}

// Get returns a setting formatted for display
func (s *Settings) Get(key string) (string, error) {
	v, err := s.value(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// Set validates and assigns a setting
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeySkipNative:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		s.SkipNative = b
	case KeyPathLengthThreshold:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		s.PathLengthThreshold = n
	case KeyDockerignore:
		if value == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
		s.Dockerignore = value
	case KeyLogLevel:
		value = strings.ToLower(value)
		valid := false
		for _, l := range logLevels {
			valid = valid || l == value
		}
		if !valid {
			return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(logLevels, ", "), value)
		}
		s.LogLevel = value
	default:
		return unknownKey(key)
	}
	return nil
}

// Unset restores a setting's default
func (s *Settings) Unset(key string) error {
	d, ok := defaults[key]
	if !ok {
		return unknownKey(key)
	}
	return s.Set(key, fmt.Sprint(d))
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %s\nValid keys: %s", key, strings.Join(Keys(), ", "))
}
