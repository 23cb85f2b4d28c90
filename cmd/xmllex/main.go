package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jacoelho/xmllex"
	"github.com/jacoelho/xmllex/internal/config"
	"github.com/jacoelho/xmllex/internal/docstate"
	"github.com/jacoelho/xmllex/pkg/xmltoken"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	cmd := &command{stdout: stdout, stderr: stderr}
	err := cmd.app().Run(append([]string{"xmllex"}, args...))
	if err == nil {
		return 0
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := exit.Error(); msg != "" {
			if writeErr := writef(stderr, "error: %s\n", msg); writeErr != nil {
				return 1
			}
		}
		return exit.ExitCode()
	}
	if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
		return 1
	}
	return 2
}

type command struct {
	stdout  io.Writer
	stderr  io.Writer
	log     zerolog.Logger
	opts    xmllex.LexOptions
	stopCPU func() error
}

func (c *command) app() *cli.App {
	return &cli.App{
		Name:            "xmllex",
		Usage:           "Tokenize XML documents and report lexical errors",
		Writer:          c.stdout,
		ErrWriter:       c.stderr,
		HideHelpCommand: true,
		ExitErrHandler:  func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Usage:     "read settings from a YAML, TOML or JSON file",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every diagnostic",
			},
			&cli.StringFlag{
				Name:      "cpuprofile",
				Usage:     "write CPU profile to file",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:      "memprofile",
				Usage:     "write memory profile to file",
				TakesFile: true,
			},
		},
		Before: c.before,
		After:  c.after,
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() > 0 {
				return c.usage(ctx, fmt.Sprintf("unknown command %q", ctx.Args().First()), cli.ShowAppHelp)
			}
			return c.usage(ctx, "a command is required", cli.ShowAppHelp)
		},
		Commands: []*cli.Command{
			{
				Name:      "tokens",
				Usage:     "print every token of a document",
				ArgsUsage: "<document.xml>",
				Action:    c.tokens,
			},
			{
				Name:      "check",
				Usage:     "check that documents tokenize cleanly",
				ArgsUsage: "<document.xml>...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "jobs",
						Value: runtime.GOMAXPROCS(0),
						Usage: "number of documents checked concurrently",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "print tokenizer counters for each document",
					},
				},
				Action: c.check,
			},
		},
	}
}

func (c *command) before(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	level, err := cfg.Level()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if ctx.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	c.log = zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(c.stderr), NoColor: true}).
		Level(level).
		With().Timestamp().Logger()

	opts, err := cfg.LexOptions()
	if err != nil {
		return cli.Exit(fmt.Sprintf("config: %v", err), 1)
	}
	c.opts = opts.WithLogger(c.log)

	if path := ctx.String("cpuprofile"); path != "" {
		stop, err := startCPUProfile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("starting CPU profile: %v", err), 1)
		}
		c.stopCPU = stop
	}
	return nil
}

func (c *command) after(ctx *cli.Context) error {
	var errs []error
	if c.stopCPU != nil {
		if err := c.stopCPU(); err != nil {
			errs = append(errs, fmt.Errorf("stopping CPU profile: %w", err))
		}
		c.stopCPU = nil
	}
	if path := ctx.String("memprofile"); path != "" {
		if err := writeMemProfile(path); err != nil {
			errs = append(errs, fmt.Errorf("writing memory profile: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func (c *command) usage(ctx *cli.Context, msg string, help func(*cli.Context) error) error {
	if err := writef(c.stderr, "error: %s\n", msg); err != nil {
		return cli.Exit("", 1)
	}
	_ = help(ctx)
	return cli.Exit("", 2)
}

func (c *command) tokens(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return c.usage(ctx, "exactly one XML file argument is required", cli.ShowSubcommandHelp)
	}
	path := ctx.Args().First()
	lx, err := xmllex.Open(path, c.opts)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() {
		if err := lx.Close(); err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("close failed")
		}
	}()

	w := bufio.NewWriter(c.stdout)
	var tok xmllex.Token
	for lx.Next(&tok) {
		if err := writeln(w, tok.String()); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	if err := w.Flush(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if lx.Err() != nil {
		return cli.Exit(fmt.Sprintf("%s fails to tokenize", path), 1)
	}
	return nil
}

type fileReport struct {
	path     string
	err      error
	diags    []xmltoken.Diagnostic
	problems []docstate.Problem
	stats    xmltoken.Stats
}

func (r *fileReport) failed() bool {
	return r.err != nil || len(r.diags) > 0 || len(r.problems) > 0
}

func (c *command) check(ctx *cli.Context) error {
	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		return c.usage(ctx, "at least one XML file argument is required", cli.ShowSubcommandHelp)
	}
	jobs := ctx.Int("jobs")
	if jobs < 1 {
		return c.usage(ctx, "--jobs must be >= 1", cli.ShowSubcommandHelp)
	}

	reports := make([]fileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx.Context)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = checkFile(gctx, path, c.opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	failures := 0
	for i := range reports {
		r := &reports[i]
		if err := c.printReport(r, ctx.Bool("stats")); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		if r.failed() {
			failures++
		}
	}
	if failures > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d documents failed", failures, len(paths)), 1)
	}
	return nil
}

func checkFile(ctx context.Context, path string, opts xmllex.LexOptions) (report fileReport) {
	report.path = path
	lx, err := xmllex.Open(path, opts)
	if err != nil {
		report.err = err
		return report
	}
	defer func() {
		if err := lx.Close(); err != nil && report.err == nil {
			report.err = fmt.Errorf("close xml file %s: %w", path, err)
		}
	}()

	doc := docstate.New()
	var tok xmllex.Token
	for n := 0; lx.Next(&tok); n++ {
		if n%4096 == 0 && ctx.Err() != nil {
			report.err = ctx.Err()
			return report
		}
		doc.Observe(tok)
	}
	report.diags = lx.Errors()
	if lx.Err() == nil {
		report.problems = doc.Problems()
	}
	report.stats = lx.Stats()
	return report
}

func (c *command) printReport(r *fileReport, stats bool) error {
	if r.err != nil {
		if err := writef(c.stderr, "%s: %v\n", r.path, r.err); err != nil {
			return err
		}
	}
	for _, d := range r.diags {
		if err := writef(c.stderr, "%s: %s: %v\n", r.path, d.Severity, d); err != nil {
			return err
		}
	}
	for _, p := range r.problems {
		if err := writef(c.stderr, "%s: %v\n", r.path, p); err != nil {
			return err
		}
	}
	if r.failed() {
		if err := writef(c.stderr, "%s fails to tokenize\n", r.path); err != nil {
			return err
		}
	} else if err := writef(c.stdout, "%s is well-formed\n", r.path); err != nil {
		return err
	}
	if !stats || r.err != nil {
		return nil
	}
	s := r.stats
	return writef(c.stdout, "%s: %s tokens, %s read, text arena %s, tag arena %s, %d/%d tag buffers reused\n",
		r.path,
		humanize.Comma(int64(s.TokensEmitted)),
		humanize.IBytes(uint64(s.BytesConsumed)),
		humanize.IBytes(uint64(s.MaxTextArena)),
		humanize.IBytes(uint64(s.MaxTagArena)),
		s.BuffersReused,
		s.BuffersReused+s.BuffersAllocated,
	)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, errors.Join(fmt.Errorf("start cpu profile %s: %w", path, err), f.Close())
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Join(fmt.Errorf("write mem profile %s: %w", path, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
