// Package server exposes the tagger and the evaluation over REST.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/render"
	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/tagger"
)

const maxBodySize = 1 << 20

// BatchInput is the request body of POST /batch.
type BatchInput struct {
	Sentences []string `json:"sentences"`
}

// BatchOutput is the response body of POST /batch. Analyses keep the input
// order; failed sentences are listed in Skipped.
type BatchOutput struct {
	Analyses []tagger.SentenceAnalysis `json:"analyses"`
	Skipped  []eval.Diagnostic         `json:"skipped"`
}

// EvaluateOutput is the response body of GET /evaluate.
type EvaluateOutput struct {
	Result      eval.Result       `json:"result"`
	Skipped     int               `json:"skipped"`
	Diagnostics []eval.Diagnostic `json:"diagnostics"`
}

// MatrixOutput is the JSON form of GET /confusion-matrix.
type MatrixOutput struct {
	Labels []string    `json:"labels"`
	Matrix eval.Matrix `json:"matrix"`
}

type Server struct {
	corpus   string
	tagger   tagger.Tagger
	opts     []eval.Option
	logger   *zap.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	mux      *http.ServeMux
}

// New builds a server evaluating tg against the corpus file at corpus. The
// corpus is read on every evaluation request.
func New(corpus string, tg tagger.Tagger, logger *zap.Logger, opts ...eval.Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	s := &Server{
		corpus:   corpus,
		tagger:   metrics.Instrument(tg),
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		registry: reg,
		mux:      http.NewServeMux(),
	}

	s.route("POST /analyze", s.handleAnalyze)
	s.route("POST /batch", s.handleBatch)
	s.route("GET /evaluate", s.handleEvaluate)
	s.route("GET /confusion-matrix", s.handleConfusionMatrix)
	s.route("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr), zap.String("corpus", s.corpus))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) route(pattern string, h http.HandlerFunc) {
	name := pattern[strings.IndexByte(pattern, ' ')+1:]
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, onHeader: func(code int) {
			s.metrics.RecordRequest(name, code)
		}}
		h(rec, r)
		if !rec.wroteHeader {
			rec.WriteHeader(http.StatusOK)
		}
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in tagger.TextInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeError(w, http.StatusBadRequest, errors.New("text must not be empty"))
		return
	}

	tokens, err := s.tagger.Tag(r.Context(), in.Text)
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("analysis failed: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, tagger.NewSentenceAnalysis(in.Text, tokens))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var in BatchInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out := BatchOutput{
		Analyses: make([]tagger.SentenceAnalysis, 0, len(in.Sentences)),
		Skipped:  []eval.Diagnostic{},
	}
	for i, text := range in.Sentences {
		tokens, err := s.tagger.Tag(r.Context(), text)
		if err != nil {
			s.logger.Warn("sentence skipped", zap.Int("sentence", i), zap.Error(err))
			out.Skipped = append(out.Skipped, eval.Diagnostic{Index: i, Text: text, Err: err})
			continue
		}
		out.Analyses = append(out.Analyses, tagger.NewSentenceAnalysis(text, tokens))
	}
	s.metrics.RecordSkipped(len(out.Skipped))

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}

	diags := report.Diagnostics
	if diags == nil {
		diags = []eval.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, EvaluateOutput{
		Result:      report.Result,
		Skipped:     len(diags),
		Diagnostics: diags,
	})
}

func (s *Server) handleConfusionMatrix(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if err := render.WriteConfusionMatrix(w, report.Matrix); err != nil {
			s.logger.Warn("writing matrix", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, MatrixOutput{Labels: report.Matrix.Labels(), Matrix: report.Matrix})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// run loads the corpus and evaluates it. On failure the error response is
// already written.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (eval.Report, bool) {
	corpus, err := s.loadCorpus()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, conllu.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return eval.Report{}, false
	}

	report := eval.Run(r.Context(), corpus, s.tagger, s.opts...)
	for _, d := range report.Diagnostics {
		s.logger.Warn("sentence skipped", zap.Int("sentence", d.Index), zap.Error(d.Err))
	}
	s.metrics.RecordSkipped(len(report.Diagnostics))

	s.logger.Info("evaluation done",
		zap.Int("sentences", len(corpus)),
		zap.Int("total", report.Result.Total),
		zap.Float64("accuracy", report.Result.Accuracy))
	return report, true
}

func (s *Server) loadCorpus() (sent.Corpus, error) {
	return conllu.Load(s.corpus)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// statusRecorder reports the status code once, before any byte of the
// response is sent.
type statusRecorder struct {
	http.ResponseWriter
	onHeader    func(code int)
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.onHeader(code)
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}
