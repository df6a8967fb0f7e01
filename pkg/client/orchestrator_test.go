package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/helmcode/neuropath/pkg/analyzer"
	"github.com/helmcode/neuropath/pkg/llm"
	"github.com/helmcode/neuropath/pkg/llm/llmtest"
	"github.com/helmcode/neuropath/pkg/model"
	"github.com/helmcode/neuropath/pkg/relay"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startRelay serves the real relay handler backed by fake.
func startRelay(t *testing.T, fake *llmtest.Scripted) *HTTPRelay {
	t.Helper()
	srv := httptest.NewServer(relay.New(analyzer.New(fake)))
	hc := srv.Client()
	t.Cleanup(func() {
		hc.CloseIdleConnections()
		srv.Close()
	})
	return NewHTTPRelay(srv.URL + relay.AnalyzePath).WithHTTPClient(hc)
}

type phaseRecorder struct {
	mu     sync.Mutex
	phases []Phase
}

func (p *phaseRecorder) observe(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phases = append(p.phases, s.Phase)
}

func (p *phaseRecorder) get() []Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Phase(nil), p.phases...)
}

func TestAnalyze_EndToEndSuccess(t *testing.T) {
	rec := &phaseRecorder{}
	o := New(startRelay(t, llmtest.New(llmtest.Reply{Text: llmtest.FencedReply})), WithObserver(rec.observe))

	assert.Equal(t, PhaseIdle, o.State().Phase)

	result, err := o.Analyze(context.Background(), "Should I move cities for a new job?", "", "family, career growth")
	require.NoError(t, err)
	assert.Len(t, result.Outcomes, 3)

	assert.Equal(t, []Phase{PhaseLoading, PhaseDone}, rec.get())
	st := o.State()
	assert.False(t, st.Loading())
	assert.Empty(t, st.Error)
	assert.Same(t, result, st.Result)
}

func TestAnalyze_ErrorMessages(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.Reply
		want  string
	}{
		{"rate limit", llmtest.Reply{Err: &llm.StatusError{StatusCode: http.StatusTooManyRequests}}, MsgRateLimited},
		{"quota", llmtest.Reply{Err: &llm.StatusError{StatusCode: http.StatusPaymentRequired}}, MsgUnavailable},
		{"upstream passthrough", llmtest.Reply{Err: &llm.StatusError{StatusCode: http.StatusInternalServerError}}, model.MsgUpstream},
		{"parse passthrough", llmtest.Reply{Text: "not json"}, model.MsgParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &phaseRecorder{}
			o := New(startRelay(t, llmtest.New(tt.reply)), WithObserver(rec.observe))

			result, err := o.Analyze(context.Background(), "Should I move cities for a new job?", "", "")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			st := o.State()
			assert.Equal(t, PhaseIdle, st.Phase)
			assert.Equal(t, tt.want, st.Error)
			assert.Equal(t, []Phase{PhaseLoading, PhaseIdle}, rec.get())
		})
	}
}

func TestAnalyze_ValidationPassthrough(t *testing.T) {
	fake := llmtest.New()
	o := New(startRelay(t, fake))

	_, err := o.Analyze(context.Background(), "", "context only", "")
	require.Error(t, err)
	assert.Equal(t, model.MsgDecisionRequired, o.State().Error)
	assert.Empty(t, fake.Calls())
}

func TestAnalyze_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o := New(NewHTTPRelay(url))
	_, err := o.Analyze(context.Background(), "decide", "", "")
	require.Error(t, err)
	assert.Equal(t, MsgFailed, err.Error())
	assert.Equal(t, MsgFailed, o.State().Error)
	assert.False(t, o.State().Loading())
}

func TestAnalyze_NonJSONResponseIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	hc := srv.Client()
	defer func() {
		hc.CloseIdleConnections()
		srv.Close()
	}()

	o := New(NewHTTPRelay(srv.URL).WithHTTPClient(hc))
	_, err := o.Analyze(context.Background(), "decide", "", "")
	assert.Equal(t, MsgFailed, err.Error())
}

func TestAnalyze_RejectsOverlap(t *testing.T) {
	fake := llmtest.New()
	fake.Block = make(chan struct{})

	loading := make(chan struct{}, 1)
	o := New(startRelay(t, fake), WithObserver(func(s State) {
		if s.Loading() {
			loading <- struct{}{}
		}
	}))

	done := make(chan error, 1)
	go func() {
		_, err := o.Analyze(context.Background(), "first", "", "")
		done <- err
	}()
	<-loading

	_, err := o.Analyze(context.Background(), "second", "", "")
	assert.ErrorIs(t, err, ErrInFlight)
	assert.True(t, o.State().Loading(), "rejected call must not touch state")

	o.Reset()
	assert.True(t, o.State().Loading(), "reset is ignored while loading")

	close(fake.Block)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseDone, o.State().Phase)
}

func TestAnalyze_Cancel(t *testing.T) {
	fake := llmtest.New()
	fake.Block = make(chan struct{})
	defer close(fake.Block)

	ctx, cancel := context.WithCancel(context.Background())
	o := New(startRelay(t, fake), WithObserver(func(s State) {
		if s.Loading() {
			cancel()
		}
	}))

	_, err := o.Analyze(ctx, "decide", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, MsgFailed, o.State().Error)
	assert.False(t, o.State().Loading())
}

func TestReset_AfterResult(t *testing.T) {
	o := New(startRelay(t, llmtest.New()))

	_, err := o.Analyze(context.Background(), "decide", "", "")
	require.NoError(t, err)
	require.NotNil(t, o.State().Result)

	o.Reset()
	assert.Equal(t, State{}, o.State())
}

func TestReset_AfterError(t *testing.T) {
	o := New(startRelay(t, llmtest.New(llmtest.Reply{Err: &llm.StatusError{StatusCode: 429}})))

	_, err := o.Analyze(context.Background(), "decide", "", "")
	require.Error(t, err)

	o.Reset()
	assert.Equal(t, State{}, o.State())
}
