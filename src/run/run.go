// Package run evaluates R scripts for the command line, each in its own interpreter.
package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/thought-machine/rcore/src/cli"
	"github.com/thought-machine/rcore/src/cli/logging"
	"github.com/thought-machine/rcore/src/interp"
	"github.com/thought-machine/rcore/src/metrics"
	"github.com/thought-machine/rcore/src/value"
)

var log = logging.Log

// A Format is how visible results are written out.
type Format int

// The output formats.
const (
	// Print uses print(), dispatching on class as the top level does.
	Print Format = iota
	// JSON writes one JSON document per result.
	JSON
	// Dump writes the Go structure of each result.
	Dump
)

// A Script is some source text to evaluate.
type Script struct {
	Name   string
	Source string
}

// Options control how scripts are run.
type Options struct {
	// Config is applied to each session; nil means the defaults.
	Config *interp.Config
	// Args are what commandArgs() returns.
	Args []string
	// Warn overrides the warn option from the config if set.
	Warn *int
	// MaxVectorSize overrides the config if nonzero.
	MaxVectorSize uint64
	Format        Format
	// NumThreads is the number of scripts evaluated at once.
	NumThreads int
	Metrics    *metrics.Metrics
}

// Scripts evaluates each script in a fresh interpreter, up to opts.NumThreads at once.
// Each script's output is written to stdout and stderr in order once they've all finished,
// so concurrent scripts never interleave. A failing script doesn't stop the others; the
// returned error aggregates every failure.
func Scripts(ctx context.Context, scripts []Script, opts Options, stdout, stderr io.Writer) error {
	outs := make([]bytes.Buffer, len(scripts))
	errs := make([]bytes.Buffer, len(scripts))
	results := make([]error, len(scripts))
	var failed int64
	g, ctx := errgroup.WithContext(ctx)
	if opts.NumThreads > 0 {
		g.SetLimit(opts.NumThreads)
	}
	for idx, script := range scripts {
		idx, script := idx, script
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := One(ctx, script, opts, &outs[idx], &errs[idx]); err != nil {
				atomic.AddInt64(&failed, 1)
				results[idx] = err
			}
			return nil
		})
	}
	var merr *multierror.Error
	if err := g.Wait(); err != nil {
		merr = multierror.Append(merr, err)
	}
	for idx := range scripts {
		if _, err := outs[idx].WriteTo(stdout); err != nil {
			return err
		}
		if _, err := errs[idx].WriteTo(stderr); err != nil {
			return err
		}
		if results[idx] != nil {
			merr = multierror.Append(merr, results[idx])
		}
	}
	log.Debug("Evaluated %d scripts, %d failed", len(scripts), failed)
	return merr.ErrorOrNil()
}

// One evaluates a single script, writing visible results to stdout and warnings to stderr.
func One(ctx context.Context, script Script, opts Options, stdout, stderr io.Writer) error {
	i, err := newInterpreter(opts, stdout, stderr)
	if err != nil {
		return fmt.Errorf("%s: %w", script.Name, err)
	}
	exprs, err := interp.SexpReader{}.Parse(script.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", script.Name, err)
	}
	for _, expr := range exprs {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := i.Eval(expr, nil)
		flushWarnings(i, stderr)
		if err != nil {
			return scriptError(script.Name, err)
		}
		if i.Visible() {
			if err := show(i, v, opts.Format, stdout); err != nil {
				return scriptError(script.Name, err)
			}
		}
	}
	return nil
}

func newInterpreter(opts Options, stdout, stderr io.Writer) (*interp.Interpreter, error) {
	session := interp.NewSession()
	session.Stdout = stdout
	session.Stderr = stderr
	session.Args = opts.Args
	config := opts.Config
	if config == nil {
		config = interp.DefaultConfig()
	}
	if err := config.Apply(session); err != nil {
		return nil, err
	}
	if opts.Warn != nil {
		session.SetOption("warn", value.Num(float64(*opts.Warn)))
	}
	if opts.MaxVectorSize != 0 {
		session.MaxVectorSize = opts.MaxVectorSize
	}
	i := interp.New(session)
	i.Metrics = opts.Metrics
	return i, nil
}

// scriptError names the script an error came from and appends any suggestion it carries.
func scriptError(name string, err error) error {
	if e, ok := err.(*interp.Error); ok && e.Suggestion != "" {
		return fmt.Errorf("%s: %w%s", name, err, e.Suggestion)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// show writes a visible result out in the requested format.
func show(i *interp.Interpreter, v value.Value, format Format, w io.Writer) error {
	switch format {
	case JSON:
		b, err := value.MarshalJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case Dump:
		config := spew.NewDefaultConfig()
		config.DisablePointerAddresses = true
		config.DisableCapacities = true
		config.Indent = "  "
		config.Fdump(w, v)
		return nil
	}
	return i.Print(v)
}

// flushWarnings writes out any deferred warnings the way R does after a top-level call.
func flushWarnings(i *interp.Interpreter, w io.Writer) {
	warnings := i.TakeWarnings()
	switch len(warnings) {
	case 0:
		return
	case 1:
		cli.Fprintf(w, "${YELLOW}Warning message:${RESET}\n%s\n", warnings[0])
	default:
		var b strings.Builder
		for n, warning := range warnings {
			fmt.Fprintf(&b, "%d: %s\n", n+1, warning)
		}
		cli.Fprintf(w, "${YELLOW}Warning messages:${RESET}\n%s", b.String())
	}
	log.Debug("Flushed %d deferred warnings", len(warnings))
}
