// Package menu is the interactive front end: a go-prompt loop over one
// loaded corpus and one tagger.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/render"
	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/stat"
	"github.com/revelaction/tageval/tagger"
)

const quit = "quit"

var commands = []prompt.Suggest{
	{Text: "eval", Description: "accuracy of the tagger on the corpus"},
	{Text: "matrix", Description: "confusion matrix and per label scores"},
	{Text: "show", Description: "show <n>: gold tokens of sentence n"},
	{Text: "export", Description: "export <path>: write the confusion matrix CSV"},
	{Text: "analyze", Description: "analyze <text>: tag a sentence"},
	{Text: "stat", Description: "corpus statistics"},
	{Text: "help", Description: "list commands"},
	{Text: quit, Description: "leave the menu"},
}

var errUsage = errors.New("usage")

type Handler struct {
	Corpus   sent.Corpus
	Tagger   tagger.Tagger
	Renderer *render.Renderer
	Opts     []eval.Option

	// last evaluation, reused by matrix and export
	report *eval.Report
}

func NewHandler(corpus sent.Corpus, tg tagger.Tagger, r *render.Renderer, opts ...eval.Option) *Handler {
	return &Handler{
		Corpus:   corpus,
		Tagger:   tg,
		Renderer: r,
		Opts:     opts,
	}
}

func (h *Handler) Run(ctx context.Context) error {

	fmt.Fprintf(h.Renderer.W, "%d sentences loaded. Ctrl+F: next Format, 🔧 help, quit\n", len(h.Corpus))

	// initialize prompt history
	history := []string{}

	for {
		in := prompt.Input("      📊 ", h.completer,
			prompt.OptionTitle("tageval menu"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(8),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextFormat()
					fmt.Println("Format set to: " + h.Renderer.Format)
				}}),
		)

		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		history = append(history, in)

		done, err := h.Execute(ctx, in)
		if err != nil {
			fmt.Fprintf(h.Renderer.W, "error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

// Execute runs one command line. It reports true when the menu should be
// left.
func (h *Handler) Execute(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case quit, "exit":
		return true, nil

	case "eval":
		report := h.evaluate(ctx)
		if err := h.Renderer.Result(report.Result, len(report.Diagnostics)); err != nil {
			return false, err
		}
		h.Renderer.Diagnostics(report.Diagnostics)

	case "matrix":
		report := h.lastReport(ctx)
		if err := h.Renderer.Matrix(report.Matrix); err != nil {
			return false, err
		}
		return false, h.Renderer.Scores(report.Matrix.Scores())

	case "show":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("%w: show <n>", errUsage)
		}
		if n < 0 || n >= len(h.Corpus) {
			return false, fmt.Errorf("sentence %d out of range [0, %d)", n, len(h.Corpus))
		}
		h.Renderer.Sentence(h.Corpus[n], fmt.Sprintf("%d ", n))
		h.Renderer.Tokens(h.Corpus[n])

	case "export":
		if arg == "" {
			return false, fmt.Errorf("%w: export <path>", errUsage)
		}
		report := h.lastReport(ctx)
		err := render.SaveFile(arg, func(w io.Writer) error {
			return render.WriteConfusionMatrix(w, report.Matrix)
		})
		if err != nil {
			return false, err
		}
		fmt.Fprintf(h.Renderer.W, "Confusion matrix saved to %s\n", arg)

	case "analyze":
		if arg == "" {
			return false, fmt.Errorf("%w: analyze <text>", errUsage)
		}
		tokens, err := h.Tagger.Tag(ctx, arg)
		if err != nil {
			return false, fmt.Errorf("analysis failed: %w", err)
		}
		h.Renderer.Tokens(sent.Sentence(tokens))

	case "stat":
		sh := stat.NewHandler()
		sh.Aggregate(h.Corpus)
		st := sh.Get()
		fmt.Fprintf(h.Renderer.W, "sentences: %d\ntokens: %d\ntokens per sentence: %d\n", st.NumSentences, st.NumTokens, st.TokensPerSentenceMean)
		for _, pc := range st.PosRanking() {
			fmt.Fprintf(h.Renderer.W, "%8s %d\n", pc.Pos, pc.Count)
		}

	case "help":
		for _, c := range commands {
			fmt.Fprintf(h.Renderer.W, "%-8s %s\n", c.Text, c.Description)
		}

	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}

	return false, nil
}

func (h *Handler) evaluate(ctx context.Context) eval.Report {
	report := eval.Run(ctx, h.Corpus, h.Tagger, h.Opts...)
	h.report = &report
	return report
}

func (h *Handler) lastReport(ctx context.Context) eval.Report {
	if h.report == nil {
		return h.evaluate(ctx)
	}
	return *h.report
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	befCursor := in.TextBeforeCursor()
	if befCursor == "" || strings.Contains(befCursor, " ") {
		return []prompt.Suggest{}
	}
	return prompt.FilterHasPrefix(commands, in.GetWordBeforeCursor(), true)
}
