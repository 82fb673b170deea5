// Package main implements the rcore binary, which evaluates R language objects written
// as s-expressions.
package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/shlex"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/thought-machine/rcore/src/cli"
	"github.com/thought-machine/rcore/src/cli/logging"
	"github.com/thought-machine/rcore/src/interp"
	"github.com/thought-machine/rcore/src/metrics"
	"github.com/thought-machine/rcore/src/run"
)

var log = logging.Log

var opts = struct {
	Usage        string
	Verbosity    cli.Verbosity `short:"v" long:"verbosity" default:"warning" description:"Verbosity of output (higher number = more output)"`
	LogFile      string        `long:"log_file" description:"File to echo full logging output to"`
	LogFileLevel cli.Verbosity `long:"log_file_level" default:"debug" description:"Log level for file output"`
	NumThreads   int           `short:"n" long:"num_threads" default:"4" description:"Number of scripts to evaluate concurrently"`
	Config       []string      `short:"c" long:"config" description:"Additional config files to read, after .rcoreconfig in the current directory and home directory"`
	NoConfig     bool          `long:"no_config" description:"Don't read any config files"`
	Warn         int           `short:"w" long:"warn" description:"Value of options(warn); overrides config"`
	JSON         bool          `long:"json" description:"Print visible results as JSON"`
	Dump         bool          `long:"dump" description:"Dump the Go structure of visible results"`
	Args         string        `long:"args" description:"Arguments returned by commandArgs(), split shell-style"`
	Expr         string        `short:"e" long:"expr" description:"Evaluate this expression instead of reading files"`
	Colour       bool          `long:"colour" description:"Forces coloured output"`
	NoColour     bool          `long:"nocolour" description:"Forces colourless output"`

	MaxVectorSize cli.ByteSize `long:"max_vector_size" description:"Largest vector builtins will allocate, e.g. 1G; overrides config"`

	Metrics struct {
		File           string       `long:"metrics_file" description:"File to write Prometheus metrics to on exit"`
		PushGatewayURL cli.URL      `long:"push_gateway_url" description:"Prometheus pushgateway to send metrics to on exit"`
		PushTimeout    cli.Duration `long:"push_timeout" default:"5s" description:"Timeout for pushing metrics"`
		PushRetries    int          `long:"push_retries" default:"3" description:"Number of times to retry pushing metrics"`
	} `group:"Options controlling metrics"`

	Positional struct {
		Files cli.Filepaths `positional-arg-name:"files" description:"Scripts to evaluate; - reads standard input"`
	} `positional-args:"true"`
}{
	Usage: `
rcore evaluates R language objects written as s-expressions, e.g.

  (<- f (function (n) (if (<= n 1) 1 (* n (Recall (- n 1))))))
  (f 10)

Each file is evaluated in its own interpreter, and visible results are printed as R would.
`,
}

func main() {
	parser, _, err := cli.ParseFlags("rcore", &opts, os.Args)
	if err != nil {
		cli.Printf("${BOLD_RED}%s${RESET}\n", err)
		os.Exit(1)
	}
	if opts.Colour {
		cli.ShowColouredOutput = true
	} else if opts.NoColour {
		cli.ShowColouredOutput = false
	}
	cli.InitLogging(opts.Verbosity)
	if opts.LogFile != "" {
		cli.InitFileLogging(opts.LogFile, opts.LogFileLevel, false)
	}
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debug)); err != nil {
		log.Warning("Failed to set GOMAXPROCS: %s", err)
	}
	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	runOpts := run.Options{
		Config:        mustReadConfig(),
		Args:          mustSplitArgs(opts.Args),
		MaxVectorSize: uint64(opts.MaxVectorSize),
		NumThreads:    opts.NumThreads,
	}
	if parser.FindOptionByLongName("warn").IsSet() {
		runOpts.Warn = &opts.Warn
	}
	if opts.JSON {
		runOpts.Format = run.JSON
	} else if opts.Dump {
		runOpts.Format = run.Dump
	}
	if opts.Metrics.File != "" || opts.Metrics.PushGatewayURL != "" {
		runOpts.Metrics = metrics.New(nil)
		cli.AtExit(func() { reportMetrics(runOpts.Metrics) })
	}

	scripts, err := readScripts()
	if err != nil {
		log.Fatalf("%s", err)
	}
	start := time.Now()
	err = run.Scripts(ctx, scripts, runOpts, os.Stdout, stderr())
	log.Info("Evaluated %d scripts in %s", len(scripts), time.Since(start))
	cli.RunExitHandlers()
	if err != nil {
		cli.Printf("${BOLD_RED}%s${RESET}\n", err)
		os.Exit(1)
	}
}

// stderr returns where scripts' warnings and messages go.
func stderr() io.Writer {
	if cli.StdErrIsATerminal || opts.Colour {
		return os.Stderr
	}
	return cli.NewStripWriter(os.Stderr)
}

func readScripts() ([]run.Script, error) {
	if opts.Expr != "" {
		return []run.Script{{Name: "<expr>", Source: opts.Expr}}, nil
	}
	files := opts.Positional.Files.AsStrings()
	if len(files) == 0 {
		files = []string{"-"}
	}
	scripts := make([]run.Script, len(files))
	for i, file := range files {
		src, err := cli.ReadSource(file)
		if err != nil {
			return nil, err
		}
		scripts[i] = run.Script{Name: file, Source: src}
	}
	return scripts, nil
}

func mustReadConfig() *interp.Config {
	if opts.NoConfig {
		return interp.DefaultConfig()
	}
	files := []string{interp.ConfigFileName}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, interp.ConfigFileName))
	}
	config, err := interp.ReadConfigFiles(append(files, opts.Config...)...)
	if err != nil {
		log.Fatalf("Error reading config: %s", err)
	}
	return config
}

func mustSplitArgs(args string) []string {
	parts, err := shlex.Split(args)
	if err != nil {
		log.Fatalf("Invalid --args: %s", err)
	}
	return parts
}

func reportMetrics(m *metrics.Metrics) {
	if opts.Metrics.File != "" {
		if err := m.WriteToTextfile(opts.Metrics.File); err != nil {
			log.Warning("Failed to write metrics: %s", err)
		}
	}
	if opts.Metrics.PushGatewayURL != "" {
		if err := m.Push(opts.Metrics.PushGatewayURL.String(), time.Duration(opts.Metrics.PushTimeout), opts.Metrics.PushRetries); err != nil {
			log.Warning("%s", err)
		}
	}
}
