package interp

import (
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/thought-machine/rcore/src/value"
)

// localeCategories are the categories Sys.getlocale reports, in order.
var localeCategories = []string{"LC_CTYPE", "LC_NUMERIC", "LC_TIME", "LC_COLLATE", "LC_MONETARY", "LC_MESSAGES"}

// A Session holds all the state that R treats as process-global: options, environment
// variables, the locale and the random number generator. Each interpreter has its own so
// nothing leaks between them and the real process environment is never modified.
type Session struct {
	Stdout io.Writer
	Stderr io.Writer
	// Args are the arguments commandArgs() returns after the program name.
	Args []string
	// MaxVectorSize caps the length of vectors that builtins will allocate.
	MaxVectorSize uint64
	// Now returns the current time; tests replace it to get stable results.
	Now func() time.Time

	options map[string]value.Value
	env     map[string]string
	locale  map[string]string
	rng     *rand.Rand
	src     *rand.PCGSource
}

// NewSession returns a session with R's default options, an environment copied from
// the process environment and a randomly seeded RNG.
func NewSession() *Session {
	s := &Session{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		MaxVectorSize: 1 << 31,
		Now:           time.Now,
		options:       defaultOptions(),
		env:           map[string]string{},
		locale:        map[string]string{},
		src:           &rand.PCGSource{},
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			s.env[k] = v
		}
	}
	loc := "C"
	if lang := s.env["LANG"]; lang != "" {
		loc = lang
	}
	for _, cat := range localeCategories {
		s.locale[cat] = loc
	}
	s.locale["LC_NUMERIC"] = "C"
	s.src.Seed(uint64(time.Now().UnixNano()))
	s.rng = rand.New(s.src)
	return s
}

func defaultOptions() map[string]value.Value {
	return map[string]value.Value{
		"warn":           value.Num(0),
		"digits":         value.Int(7),
		"scipen":         value.Num(0),
		"OutDec":         value.Str("."),
		"keep.source":    value.Bool(false),
		"expressions":    value.Int(5000),
		"nwarnings":      value.Int(50),
		"warning.length": value.Int(1000),
		"width":          value.Int(80),
		"encoding":       value.Str("native.enc"),
		"useFancyQuotes": value.Bool(false),
	}
}

// Option returns the value of an option, or nil if it isn't set.
func (s *Session) Option(name string) value.Value {
	return s.options[name]
}

// SetOption sets an option; setting it to NULL removes it. It returns the old value.
func (s *Session) SetOption(name string, v value.Value) value.Value {
	old, present := s.options[name]
	if !present {
		old = value.Null
	}
	if value.IsNull(v) {
		delete(s.options, name)
	} else {
		v.IncRef()
		s.options[name] = v
	}
	return old
}

// OptionNames returns the names of all set options, sorted.
func (s *Session) OptionNames() []string {
	names := maps.Keys(s.options)
	slices.Sort(names)
	return names
}

// intOption returns an option as an integer, or the default if it's unset or not numeric.
func (s *Session) intOption(name string, def int) int {
	switch v := s.options[name].(type) {
	case *value.Integer:
		if v.Len() > 0 && !v.IsNA(0) {
			return v.At(0)
		}
	case *value.Double:
		if v.Len() > 0 && !v.IsNA(0) {
			return int(v.At(0))
		}
	case *value.Logical:
		if v.Len() > 0 && !v.IsNA(0) && v.At(0) {
			return 1
		} else if v.Len() > 0 && !v.IsNA(0) {
			return 0
		}
	}
	return def
}

// Warn returns the current value of the warn option.
func (s *Session) Warn() int {
	return s.intOption("warn", 0)
}

// PrintOptions returns the options values are printed with.
func (s *Session) PrintOptions() value.PrintOptions {
	opts := value.DefaultPrintOptions()
	opts.Digits = s.intOption("digits", opts.Digits)
	opts.Scipen = s.intOption("scipen", opts.Scipen)
	opts.Width = s.intOption("width", opts.Width)
	return opts
}

// Getenv returns an environment variable and whether it is set.
func (s *Session) Getenv(name string) (string, bool) {
	v, present := s.env[name]
	return v, present
}

// Setenv sets an environment variable in this session only.
func (s *Session) Setenv(name, val string) {
	s.env[name] = val
}

// Unsetenv removes an environment variable from this session.
func (s *Session) Unsetenv(name string) {
	delete(s.env, name)
}

// EnvNames returns the names of all the session's environment variables, sorted.
func (s *Session) EnvNames() []string {
	names := maps.Keys(s.env)
	slices.Sort(names)
	return names
}

// Locale returns the setting of one locale category.
func (s *Session) Locale(category string) string {
	return s.locale[category]
}

// SetLocale sets one locale category, or all of them for "LC_ALL". It returns the new
// setting, or the empty string if the category isn't known.
func (s *Session) SetLocale(category, locale string) string {
	if category == "LC_ALL" {
		for _, cat := range localeCategories {
			if cat != "LC_NUMERIC" {
				s.locale[cat] = locale
			}
		}
		return s.LocaleString()
	} else if _, present := s.locale[category]; !present {
		return ""
	}
	s.locale[category] = locale
	return locale
}

// LocaleString returns the combined locale string Sys.getlocale() reports.
func (s *Session) LocaleString() string {
	parts := make([]string, len(localeCategories))
	for i, cat := range localeCategories {
		parts[i] = cat + "=" + s.locale[cat]
	}
	return strings.Join(parts, ";")
}

// Seed reseeds the random number generator.
func (s *Session) Seed(seed uint64) {
	s.src.Seed(seed)
}

// RNG returns the session's random number generator.
func (s *Session) RNG() *rand.Rand {
	return s.rng
}

// A Snapshot is a saved copy of a session's mutable state.
type Snapshot struct {
	options map[string]value.Value
	env     map[string]string
	locale  map[string]string
	rng     []byte
}

// Snapshot captures the session's state so it can be restored later.
func (s *Session) Snapshot() *Snapshot {
	rng, _ := s.src.MarshalBinary()
	log.Debug("Taking session snapshot (%d options, %d environment variables)", len(s.options), len(s.env))
	return &Snapshot{
		options: maps.Clone(s.options),
		env:     maps.Clone(s.env),
		locale:  maps.Clone(s.locale),
		rng:     rng,
	}
}

// Restore returns the session to the state captured in a snapshot.
func (s *Session) Restore(snap *Snapshot) {
	log.Debug("Restoring session snapshot")
	s.options = maps.Clone(snap.options)
	s.env = maps.Clone(snap.env)
	s.locale = maps.Clone(snap.locale)
	if err := s.src.UnmarshalBinary(snap.rng); err != nil {
		log.Warning("Failed to restore RNG state: %s", err)
	}
}
