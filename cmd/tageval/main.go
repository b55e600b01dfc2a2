package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/revelaction/tageval/config"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(ui).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "tageval: %v\n", err)
}

func newApp(ui UI) *cli.App {
	logger := zap.NewNop()

	return &cli.App{
		Name:      "tageval",
		Usage:     "evaluate a part-of-speech tagger against a CoNLL-U gold corpus",
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: fmt.Sprintf("YAML configuration file (env %s)", config.EnvConfig),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := zap.NewProductionConfig()
			if c.Bool("verbose") {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		After: func(c *cli.Context) error {
			_ = logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "sentences",
				Usage:     "print the sentences of the gold corpus",
				ArgsUsage: "[index]",
				Flags:     []cli.Flag{corpusFlag(), startFlag(), countFlag()},
				Action: func(c *cli.Context) error {
					opts, err := sentencesOptions(c)
					if err != nil {
						return err
					}
					return sentencesCommand(opts, ui)
				},
			},
			{
				Name:  "stat",
				Usage: "print corpus statistics",
				Flags: []cli.Flag{corpusFlag(), formatFlag()},
				Action: func(c *cli.Context) error {
					opts, err := statOptions(c)
					if err != nil {
						return err
					}
					return statCommand(opts, ui)
				},
			},
			{
				Name:  "eval",
				Usage: "tag every gold sentence and print the accuracy",
				Flags: concat([]cli.Flag{corpusFlag(), runsFlag(), saveFlag(), progressFlag()}, taggerFlags(), renderFlags()),
				Action: func(c *cli.Context) error {
					opts, err := evalOptions(c)
					if err != nil {
						return err
					}
					return evalCommand(c.Context, opts, logger, ui)
				},
			},
			{
				Name:  "matrix",
				Usage: "print and save the confusion matrix",
				Flags: concat([]cli.Flag{corpusFlag(), runsFlag(), runFlag(), outFlag(), outDirFlag(), progressFlag()}, taggerFlags(), renderFlags()),
				Action: func(c *cli.Context) error {
					opts, err := matrixOptions(c)
					if err != nil {
						return err
					}
					return matrixCommand(c.Context, opts, logger, ui)
				},
			},
			{
				Name:      "export",
				Usage:     "export the per token analysis of the gold corpus, or of the given text, as CSV",
				ArgsUsage: "[text]",
				Flags:     concat([]cli.Flag{corpusFlag(), outFlag(), outDirFlag()}, taggerFlags()),
				Action: func(c *cli.Context) error {
					opts, err := exportOptions(c)
					if err != nil {
						return err
					}
					return exportCommand(c.Context, opts, ui)
				},
			},
			{
				Name:      "analyze",
				Usage:     "tag a sentence",
				ArgsUsage: "<text>",
				Flags:     concat(taggerFlags(), renderFlags()),
				Action: func(c *cli.Context) error {
					opts, err := analyzeOptions(c)
					if err != nil {
						return err
					}
					return analyzeCommand(c.Context, opts, ui)
				},
			},
			{
				Name:      "batch",
				Usage:     "tag .txt files, one sentence per line, into <name>_analysis.csv files",
				ArgsUsage: "<file.txt|dir>",
				Flags:     concat([]cli.Flag{outFlag(), outDirFlag()}, taggerFlags()),
				Action: func(c *cli.Context) error {
					opts, err := batchOptions(c)
					if err != nil {
						return err
					}
					return batchCommand(c.Context, opts, logger, ui)
				},
			},
			{
				Name:  "serve",
				Usage: "serve the tagger and the evaluation over REST",
				Flags: concat([]cli.Flag{corpusFlag(), addrFlag()}, taggerFlags()),
				Action: func(c *cli.Context) error {
					opts, err := serveOptions(c)
					if err != nil {
						return err
					}
					return serveCommand(c.Context, opts, logger)
				},
			},
			{
				Name:  "menu",
				Usage: "interactive menu",
				Flags: concat([]cli.Flag{corpusFlag()}, taggerFlags(), renderFlags()),
				Action: func(c *cli.Context) error {
					opts, err := menuOptions(c)
					if err != nil {
						return err
					}
					return menuCommand(c.Context, opts, ui)
				},
			},
			{
				Name:      "runs",
				Usage:     "list the stored evaluation runs, or show one",
				ArgsUsage: "[id]",
				Flags:     concat([]cli.Flag{runsFlag()}, renderFlags()),
				Action: func(c *cli.Context) error {
					opts, err := runsOptions(c)
					if err != nil {
						return err
					}
					return runsCommand(opts, ui)
				},
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					return versionCommand(ui)
				},
			},
		},
	}
}
