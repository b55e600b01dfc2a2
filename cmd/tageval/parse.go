package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/tageval/config"
	"github.com/revelaction/tageval/render"
	"github.com/revelaction/tageval/tagger"
)

// Option structs for subcommands that have flags
type RenderOptions struct {
	Format  string
	NoColor bool
}

type SentencesOptions struct {
	Corpus string
	Start  int
	Count  int
	Index  *int // nil = not set
}

type StatOptions struct {
	Corpus string
	Format string
}

type EvalOptions struct {
	Config   config.Config
	Render   RenderOptions
	Save     bool
	Progress bool
}

type MatrixOptions struct {
	Config   config.Config
	Render   RenderOptions
	RunId    string
	Out      string
	Progress bool
}

type ExportOptions struct {
	Config config.Config
	Text   string // empty = export the gold corpus
	Out    string
}

type AnalyzeOptions struct {
	Config config.Config
	Render RenderOptions
	Text   string
}

type BatchOptions struct {
	Config config.Config
	Input  string
	Out    string
}

type ServeOptions struct {
	Config config.Config
}

type MenuOptions struct {
	Config config.Config
	Render RenderOptions
}

type RunsOptions struct {
	Runs   string
	Id     string
	Render RenderOptions
}

var errNoCorpus = errors.New("corpus path must be specified via --corpus or " + config.EnvCorpus)

func concat(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

func corpusFlag() cli.Flag {
	return &cli.StringFlag{Name: "corpus", Aliases: []string{"g"}, Usage: "gold CoNLL-U corpus (env " + config.EnvCorpus + ")"}
}

func startFlag() cli.Flag {
	return &cli.IntFlag{Name: "start", Usage: "first sentence to print"}
}

func countFlag() cli.Flag {
	return &cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 10, Usage: "number of sentences to print, 0 for all"}
}

func runsFlag() cli.Flag {
	return &cli.StringFlag{Name: "runs", Usage: "runs directory or SQLite file (env " + config.EnvRuns + ")"}
}

func runFlag() cli.Flag {
	return &cli.StringFlag{Name: "run", Usage: "show the matrix of a stored run instead of evaluating"}
}

func saveFlag() cli.Flag {
	return &cli.BoolFlag{Name: "save", Usage: "store the run in the runs repository"}
}

func progressFlag() cli.Flag {
	return &cli.BoolFlag{Name: "progress", Value: true, Usage: "show a progress bar while tagging"}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output CSV file"}
}

func outDirFlag() cli.Flag {
	return &cli.StringFlag{Name: "out-dir", Usage: "directory for generated CSV files"}
}

func addrFlag() cli.Flag {
	return &cli.StringFlag{Name: "addr", Usage: "listen address"}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: render.Defaultformat, Usage: "output format: " + strings.Join(render.SupportedFormats(), ", ")}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		formatFlag(),
		&cli.BoolFlag{Name: "no-color", Usage: "disable colors"},
	}
}

func taggerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "tagger", Aliases: []string{"t"}, Usage: "tagger kind: " + strings.Join(tagger.SupportedKinds(), ", ")},
		&cli.StringFlag{Name: "tagger-url", Usage: "analysis service URL (env " + config.EnvTaggerURL + ")"},
		&cli.StringFlag{Name: "predictions", Usage: "CoNLL-U file with the predicted analyses"},
		&cli.DurationFlag{Name: "timeout", Usage: "timeout of a single tagger call"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "sentences tagged concurrently"},
	}
}

// settings loads the configuration and applies the command flags on top.
func settings(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("corpus") {
		cfg.Corpus = c.String("corpus")
	}
	if c.IsSet("tagger-url") {
		cfg.Tagger.Kind = tagger.KindHTTP
		cfg.Tagger.URL = c.String("tagger-url")
	}
	if c.IsSet("predictions") {
		cfg.Tagger.Kind = tagger.KindFile
		cfg.Tagger.File = c.String("predictions")
	}
	if c.IsSet("tagger") {
		cfg.Tagger.Kind = c.String("tagger")
	}
	if c.IsSet("timeout") {
		cfg.Tagger.Timeout = c.Duration("timeout")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("runs") {
		cfg.Runs = c.String("runs")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("out-dir") {
		cfg.OutputDir = c.String("out-dir")
	}

	return cfg, cfg.Validate()
}

func renderOptions(c *cli.Context) (RenderOptions, error) {
	opts := RenderOptions{Format: c.String("format"), NoColor: c.Bool("no-color")}
	if !slices.Contains(render.SupportedFormats(), opts.Format) {
		return opts, fmt.Errorf("unknown format %q", opts.Format)
	}
	return opts, nil
}

func corpusSettings(c *cli.Context) (config.Config, error) {
	cfg, err := settings(c)
	if err != nil {
		return cfg, err
	}
	if cfg.Corpus == "" {
		return cfg, errNoCorpus
	}
	return cfg, nil
}

func sentencesOptions(c *cli.Context) (SentencesOptions, error) {
	cfg, err := corpusSettings(c)
	if err != nil {
		return SentencesOptions{}, err
	}

	opts := SentencesOptions{Corpus: cfg.Corpus, Start: c.Int("start"), Count: c.Int("count")}
	if opts.Start < 0 || opts.Count < 0 {
		return opts, errors.New("start and count must not be negative")
	}

	if c.Args().Present() {
		n, err := strconv.Atoi(c.Args().First())
		if err != nil {
			return opts, fmt.Errorf("invalid sentence index %q", c.Args().First())
		}
		opts.Index = &n
	}
	return opts, nil
}

func statOptions(c *cli.Context) (StatOptions, error) {
	cfg, err := corpusSettings(c)
	if err != nil {
		return StatOptions{}, err
	}
	format := c.String("format")
	if !slices.Contains(render.SupportedFormats(), format) {
		return StatOptions{}, fmt.Errorf("unknown format %q", format)
	}
	return StatOptions{Corpus: cfg.Corpus, Format: format}, nil
}

func evalOptions(c *cli.Context) (EvalOptions, error) {
	cfg, err := corpusSettings(c)
	if err != nil {
		return EvalOptions{}, err
	}
	ro, err := renderOptions(c)
	if err != nil {
		return EvalOptions{}, err
	}

	opts := EvalOptions{Config: cfg, Render: ro, Save: c.Bool("save"), Progress: c.Bool("progress")}
	if opts.Save && cfg.Runs == "" {
		return opts, errors.New("--save needs a runs repository via --runs or " + config.EnvRuns)
	}
	return opts, nil
}

func matrixOptions(c *cli.Context) (MatrixOptions, error) {
	runId := c.String("run")

	var cfg config.Config
	var err error
	if runId != "" {
		cfg, err = settings(c)
		if err == nil && cfg.Runs == "" {
			err = errors.New("--run needs a runs repository via --runs or " + config.EnvRuns)
		}
	} else {
		cfg, err = corpusSettings(c)
	}
	if err != nil {
		return MatrixOptions{}, err
	}

	ro, err := renderOptions(c)
	if err != nil {
		return MatrixOptions{}, err
	}

	return MatrixOptions{Config: cfg, Render: ro, RunId: runId, Out: c.String("out"), Progress: c.Bool("progress")}, nil
}

func exportOptions(c *cli.Context) (ExportOptions, error) {
	text := strings.Join(c.Args().Slice(), " ")

	var cfg config.Config
	var err error
	if text == "" {
		cfg, err = corpusSettings(c)
	} else {
		cfg, err = settings(c)
	}
	if err != nil {
		return ExportOptions{}, err
	}
	return ExportOptions{Config: cfg, Text: text, Out: c.String("out")}, nil
}

func analyzeOptions(c *cli.Context) (AnalyzeOptions, error) {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return AnalyzeOptions{}, errors.New("analyze needs a text")
	}

	cfg, err := settings(c)
	if err != nil {
		return AnalyzeOptions{}, err
	}
	ro, err := renderOptions(c)
	if err != nil {
		return AnalyzeOptions{}, err
	}
	return AnalyzeOptions{Config: cfg, Render: ro, Text: text}, nil
}

func batchOptions(c *cli.Context) (BatchOptions, error) {
	if c.NArg() != 1 {
		return BatchOptions{}, errors.New("batch needs exactly one input file or directory")
	}

	cfg, err := settings(c)
	if err != nil {
		return BatchOptions{}, err
	}
	return BatchOptions{Config: cfg, Input: c.Args().First(), Out: c.String("out")}, nil
}

func serveOptions(c *cli.Context) (ServeOptions, error) {
	cfg, err := corpusSettings(c)
	if err != nil {
		return ServeOptions{}, err
	}
	return ServeOptions{Config: cfg}, nil
}

func menuOptions(c *cli.Context) (MenuOptions, error) {
	cfg, err := corpusSettings(c)
	if err != nil {
		return MenuOptions{}, err
	}
	ro, err := renderOptions(c)
	if err != nil {
		return MenuOptions{}, err
	}
	return MenuOptions{Config: cfg, Render: ro}, nil
}

func runsOptions(c *cli.Context) (RunsOptions, error) {
	cfg, err := settings(c)
	if err != nil {
		return RunsOptions{}, err
	}
	if cfg.Runs == "" {
		return RunsOptions{}, errors.New("runs repository must be specified via --runs or " + config.EnvRuns)
	}
	ro, err := renderOptions(c)
	if err != nil {
		return RunsOptions{}, err
	}
	return RunsOptions{Runs: cfg.Runs, Id: c.Args().First(), Render: ro}, nil
}

func newRenderer(ui UI, opts RenderOptions) *render.Renderer {
	r := render.NewRenderer(ui.Out)
	r.HasColor = !opts.NoColor
	r.Format = opts.Format
	return r
}
