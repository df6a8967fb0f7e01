// Package relay serves the analysis endpoint: it accepts a decision, asks
// the upstream model through an Analyzer, and answers with a single JSON
// document carrying permissive CORS headers.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/helmcode/neuropath/pkg/model"
)

const (
	// AnalyzePath is the primary route.
	AnalyzePath = "/analyze-decision"
	// FunctionsPath keeps the hosted-functions URL layout working.
	FunctionsPath = "/functions/v1/analyze-decision"
	HealthPath    = "/healthz"

	maxBodyBytes = 64 << 10
)

// Analyzer produces a result for one request.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
}

// Option configures the relay handler.
type Option func(*config)

type config struct {
	logger  *zap.Logger
	limiter *RateLimiter
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRateLimiter enables per-IP inbound limiting.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *config) { c.limiter = rl }
}

// New returns the full relay handler: routes wrapped in request ID,
// recovery, access logging, CORS and optional rate limiting.
func New(a Analyzer, opts ...Option) http.Handler {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &analyzeHandler{analyzer: a, logger: cfg.logger}

	mux := http.NewServeMux()
	mux.Handle(AnalyzePath, h)
	mux.Handle(FunctionsPath, h)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var next http.Handler = mux
	if cfg.limiter != nil {
		next = cfg.limiter.Middleware(next)
	}
	next = withCORS(next)
	next = withAccessLog(cfg.logger, next)
	next = withRecover(cfg.logger, next)
	return withRequestID(next)
}

type analyzeHandler struct {
	analyzer Analyzer
	logger   *zap.Logger
}

func (h *analyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.AnalysisRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, model.MsgInvalidBody)
		return
	}

	logger := h.logger.With(zap.String("request_id", RequestIDFrom(r.Context())))

	if err := req.Validate(); err != nil {
		writeFailure(w, logger, err)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		logger.Warn("analyze-decision failed", zap.String("kind", string(model.KindOf(err))), zap.Error(err))
		writeFailure(w, logger, err)
		return
	}

	logger.Info("analyze-decision complete", zap.Int("outcomes", len(result.Outcomes)))
	writeJSON(w, http.StatusOK, result)
}
