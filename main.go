package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/peterh/liner"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
	"github.com/sergev/pseudo/runtime"
)

const usage = "usage: pseudo [-astv] [-c config] [-e program] [file | -]"

var errUsage = errors.New("bad usage")

type options struct {
	step       bool
	trace      bool
	dumpAST    bool
	verbose    bool
	config     string
	program    string
	hasProgram bool
	args       []string
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func parseArgs(argv []string) (options, error) {
	var o options
	opts, optind, err := getopt.Getopts(argv, "ac:e:hstv")
	if err != nil {
		return o, err
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'a':
			o.dumpAST = true
		case 'c':
			o.config = opt.Value
		case 'e':
			o.program = opt.Value
			o.hasProgram = true
		case 'h':
			return o, errUsage
		case 's':
			o.step = true
		case 't':
			o.trace = true
		case 'v':
			o.verbose = true
		}
	}
	o.args = argv[optind:]
	if len(o.args) > 1 || (o.hasProgram && len(o.args) > 0) {
		return o, errUsage
	}
	return o, nil
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseArgs(argv)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "pseudo: %v\n", err)
		}
		fmt.Fprintln(stderr, usage)
		return 2
	}

	var cfg runtime.Config
	if o.config != "" {
		cfg, err = runtime.LoadConfig(o.config, false)
	} else {
		cfg, err = runtime.LoadConfig(runtime.DefaultConfigPath(), true)
	}
	if err != nil {
		fmt.Fprintf(stderr, "pseudo: %v\n", err)
		return 1
	}
	format, err := runtime.NewFormatter(cfg.Locale)
	if err != nil {
		fmt.Fprintf(stderr, "pseudo: %v\n", err)
		return 1
	}
	if cfg.Seed != nil {
		runtime.SeedRandom(*cfg.Seed)
	}

	level := slog.LevelWarn
	if o.verbose || cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	c := &console{
		reader: bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
		format: format,
		trace:  o.trace || cfg.Trace,
		runner: runtime.NewRunner(lang.WithLogger(logger), lang.WithStep(o.step || cfg.Step)),
		nextID: 1,
	}

	var src, name string
	switch {
	case o.hasProgram:
		src, name = o.program, "-e"
	case len(o.args) == 1 && o.args[0] == "-":
		data, err := io.ReadAll(c.reader)
		if err != nil {
			fmt.Fprintf(stderr, "pseudo: %v\n", err)
			return 1
		}
		src, name = string(data), "-"
	case len(o.args) == 1:
		name = o.args[0]
		if src, err = runtime.ReadSource(name); err != nil {
			fmt.Fprintf(stderr, "pseudo: %v\n", err)
			return 1
		}
	default:
		if o.dumpAST {
			fmt.Fprintln(stderr, "pseudo: -a needs a program")
			return 2
		}
		if isInteractive(stdin) {
			c.line = liner.NewLiner()
			defer c.line.Close()
			c.line.SetCtrlCAborts(true)
			runInteractiveREPL(c, replHistoryPath(cfg))
		} else {
			runBufferedREPL(c)
		}
		return 0
	}

	stmts, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintf(stderr, "pseudo: %s: %v\n", name, err)
		return 1
	}
	if o.dumpAST {
		out, err := parser.DumpYAML(stmts)
		if err != nil {
			fmt.Fprintf(stderr, "pseudo: %v\n", err)
			return 1
		}
		stdout.Write(out)
		return 0
	}

	if isInteractive(stdin) {
		c.line = liner.NewLiner()
		defer c.line.Close()
		c.line.SetCtrlCAborts(true)
	}
	c.nextID = parser.Renumber(stmts, 1)
	c.addSource(1, src)
	snap, err := c.execute(context.Background(), stmts)
	switch {
	case err == nil:
		if o.hasProgram {
			c.printResult(snap, stmts)
		}
		return 0
	case lang.IsCancelled(err):
		return 130
	default:
		fmt.Fprintf(stderr, "pseudo: %v\n", err)
		return 1
	}
}

func replHistoryPath(cfg runtime.Config) string {
	if cfg.History != "" {
		return cfg.History
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".pseudo_history")
}

func isInteractive(stdin io.Reader) bool {
	f, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
