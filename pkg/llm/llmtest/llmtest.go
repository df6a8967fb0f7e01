// Package llmtest provides a scripted LLM and canned replies for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/helmcode/neuropath/pkg/llm"
)

// ValidReply is a well-formed model reply with exactly three outcomes.
const ValidReply = `{
  "summary": "Moving trades proximity to family for faster career growth.",
  "outcomes": [
    {"title": "Career takes off", "likelihood": "high", "timeframe": "1-2 years",
     "narrative": "You settle in quickly and **thrive**.",
     "tradeoffs": ["Less time with family", "Higher cost of living"],
     "insights": ["Growth compounds early"],
     "actionItems": ["Negotiate relocation support", "Schedule visits home"]},
    {"title": "Balanced middle path", "likelihood": "medium", "timeframe": "6 months",
     "narrative": "Some wins, some losses.",
     "tradeoffs": ["Higher rent"], "insights": ["Networks matter"], "actionItems": ["Visit before committing"]},
    {"title": "Isolation bites", "likelihood": "low", "timeframe": "Immediate",
     "narrative": "The move is harder than expected.",
     "tradeoffs": ["Loneliness"], "insights": ["Support is undervalued"], "actionItems": ["Plan monthly trips home"]}
  ]
}`

// FencedReply wraps ValidReply in a markdown code fence.
const FencedReply = "```json\n" + ValidReply + "\n```"

// Reply is one scripted Chat answer.
type Reply struct {
	Text string
	Err  error
}

// Scripted returns its replies in order and records every call. When the
// script runs out the last reply repeats.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   [][]llm.Message
	// Block, when set, makes Chat wait for it to close or ctx to end.
	Block chan struct{}
}

func New(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, messages)
	idx := len(s.calls) - 1
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if len(s.replies) == 0 {
		return ValidReply, nil
	}
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	r := s.replies[idx]
	return r.Text, r.Err
}

func (s *Scripted) Model() string { return "scripted" }

// Calls returns the message lists Chat was invoked with.
func (s *Scripted) Calls() [][]llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]llm.Message, len(s.calls))
	copy(out, s.calls)
	return out
}
