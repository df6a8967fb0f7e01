package analyzer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/neuropath/pkg/llm"
	"github.com/helmcode/neuropath/pkg/model"
	"github.com/helmcode/neuropath/pkg/parser"
	"github.com/helmcode/neuropath/pkg/prompts"
)

const DefaultTimeout = 60 * time.Second

// Analyzer turns an AnalysisRequest into an AnalysisResult with one upstream call.
type Analyzer struct {
	llm     llm.LLM
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTimeout bounds each upstream call.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func New(l llm.LLM, opts ...Option) *Analyzer {
	a := &Analyzer{llm: l, logger: zap.NewNop(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromSettings builds the upstream client through the llm factory.
func NewFromSettings(s llm.Settings, opts ...Option) (*Analyzer, error) {
	l, err := llm.NewFactory().CreateLLM(s)
	if err != nil {
		return nil, model.NewError(model.KindConfig, err.Error(), err)
	}
	if s.Timeout > 0 {
		opts = append([]Option{WithTimeout(s.Timeout)}, opts...)
	}
	return New(l, opts...), nil
}

// Model reports the upstream model identifier.
func (a *Analyzer) Model() string {
	return a.llm.Model()
}

// Analyze validates req, asks the model and parses its reply. Every
// returned error is a *model.Error.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.SystemPrompt},
		{Role: llm.RoleUser, Content: prompts.BuildUserMessage(req)},
	}

	start := time.Now()
	raw, err := a.llm.Chat(ctx, messages)
	if err != nil {
		return nil, a.classify(ctx, err)
	}
	a.logger.Debug("upstream replied",
		zap.String("model", a.llm.Model()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(raw)))

	result, err := parser.ParseAnalysis(raw)
	if err != nil {
		a.logger.Error("failed to parse AI response", zap.Error(err), zap.String("raw", raw))
		return nil, model.NewError(model.KindParse, model.MsgParse, err)
	}
	return result, nil
}

func (a *Analyzer) classify(ctx context.Context, err error) error {
	var se *llm.StatusError
	var ne net.Error
	switch {
	case errors.As(err, &se):
		switch se.StatusCode {
		case http.StatusTooManyRequests:
			a.logger.Warn("upstream rate limited", zap.Int("status", se.StatusCode))
			return model.NewError(model.KindRateLimited, model.MsgRateLimited, err)
		case http.StatusPaymentRequired:
			a.logger.Warn("upstream quota exceeded", zap.Int("status", se.StatusCode))
			return model.NewError(model.KindQuotaExceeded, model.MsgQuotaExceeded, err)
		default:
			a.logger.Error("AI gateway error", zap.Int("status", se.StatusCode), zap.String("body", se.Body))
			return model.NewError(model.KindUpstream, model.MsgUpstream, err)
		}
	case errors.Is(err, llm.ErrEmptyResponse):
		a.logger.Error("no response from AI")
		return model.NewError(model.KindParse, model.MsgEmptyResponse, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &ne) && ne.Timeout():
		a.logger.Error("upstream timed out", zap.Duration("timeout", a.timeout), zap.Error(err))
		return model.NewError(model.KindTimeout, model.MsgTimeout, err)
	default:
		a.logger.Error("AI gateway request failed", zap.Error(err))
		return model.NewError(model.KindUpstream, model.MsgUpstream, err)
	}
}
