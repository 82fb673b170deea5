package interp

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/please-build/gcfg"

	"github.com/thought-machine/rcore/src/value"
)

// ConfigFileName is the name of the file session defaults are read from.
const ConfigFileName = ".rcoreconfig"

// A Config is the contents of a config file.
type Config struct {
	Options struct {
		Warn       int    `help:"Default value of options(warn)"`
		Digits     int    `help:"Default number of significant digits to print"`
		Scipen     int    `help:"Penalty applied when deciding to print in scientific notation"`
		Keepsource bool   `help:"Default value of options(keep.source)"`
		Outdec     string `help:"Decimal separator used when printing"`
	}
	Session struct {
		Locale        string `help:"Locale applied to all categories except LC_NUMERIC"`
		Seed          int64  `help:"Initial seed for the random number generator; 0 means random"`
		MaxVectorSize string `help:"Largest vector builtins will allocate, e.g. 1G"`
	}
	Env struct {
		Var []string `help:"Environment variables to set, as NAME=VALUE"`
	}
}

// DefaultConfig returns the config used when there's no file.
func DefaultConfig() *Config {
	config := &Config{}
	config.Options.Digits = 7
	config.Options.Outdec = "."
	config.Session.MaxVectorSize = "2G"
	return config
}

// ReadConfigFiles reads the given config files in order, later ones overriding earlier.
// It's not an error for any of them not to exist.
func ReadConfigFiles(filenames ...string) (*Config, error) {
	config := DefaultConfig()
	for _, filename := range filenames {
		if err := gcfg.ReadFileInto(config, filename); err != nil && os.IsNotExist(err) {
			continue
		} else if err != nil {
			return config, err
		}
		log.Debug("Read config from %s", filename)
	}
	return config, nil
}

// Apply applies this config to a session.
func (config *Config) Apply(s *Session) error {
	s.SetOption("warn", value.Num(float64(config.Options.Warn)))
	s.SetOption("digits", value.Int(config.Options.Digits))
	s.SetOption("scipen", value.Num(float64(config.Options.Scipen)))
	s.SetOption("keep.source", value.Bool(config.Options.Keepsource))
	s.SetOption("OutDec", value.Str(config.Options.Outdec))
	if config.Session.Locale != "" {
		s.SetLocale("LC_ALL", config.Session.Locale)
	}
	if config.Session.Seed != 0 {
		s.Seed(uint64(config.Session.Seed))
	}
	if config.Session.MaxVectorSize != "" {
		size, err := humanize.ParseBytes(config.Session.MaxVectorSize)
		if err != nil {
			return fmt.Errorf("invalid maxvectorsize: %w", err)
		}
		s.MaxVectorSize = size
	}
	for _, kv := range config.Env.Var {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid environment variable %q, must be NAME=VALUE", kv)
		}
		s.Setenv(k, v)
	}
	return nil
}
