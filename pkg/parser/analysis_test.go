package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/neuropath/pkg/model"
)

const validReply = `{
  "summary": "Moving trades proximity to family for faster career growth.",
  "outcomes": [
    {"title": "Career takes off", "likelihood": "high", "timeframe": "1-2 years",
     "narrative": "You settle in quickly.\n\n` + "```" + `\nnot a fence\n` + "```" + `",
     "tradeoffs": ["Less time with family"], "insights": ["Growth compounds"], "actionItems": ["Negotiate relocation"]},
    {"title": "Balanced middle path", "likelihood": "medium", "timeframe": "6 months",
     "narrative": "Some wins, some losses.",
     "tradeoffs": ["Higher rent"], "insights": ["Networks matter"], "actionItems": ["Visit first"]},
    {"title": "Isolation bites", "likelihood": "low", "timeframe": "Immediate",
     "narrative": "The move is harder than expected.",
     "tradeoffs": ["Loneliness"], "insights": ["Support is undervalued"], "actionItems": ["Plan monthly trips home"]}
  ]
}`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n ", `{"a":1}`},
		{"single line", "```json {\"a\":1}```", `{"a":1}`},
		{"unfenced", `  {"a":1}  `, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripFences(got), "stripping must be idempotent")
		})
	}
}

func TestParseAnalysis_FencedMatchesUnfenced(t *testing.T) {
	plain, err := ParseAnalysis(validReply)
	require.NoError(t, err)

	fenced, err := ParseAnalysis("```json\n" + validReply + "\n```")
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	assert.Len(t, plain.Outcomes, OutcomeCount)
	assert.Equal(t, model.LikelihoodHigh, plain.Outcomes[0].Likelihood)
	assert.Contains(t, plain.Outcomes[0].Narrative, "not a fence")
	assert.Equal(t, []string{"Negotiate relocation"}, plain.Outcomes[0].ActionItems)
}

func TestParseAnalysis_Rejects(t *testing.T) {
	cut := strings.Index(validReply, `,
    {"title": "Isolation bites"`)
	require.Positive(t, cut)
	twoOutcomes := validReply[:cut] + "\n  ]\n}"

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"only fences", "```json\n```"},
		{"invalid json", `{"summary": "x", "outcomes": [`},
		{"prose", "Sure! Here is your analysis."},
		{"trailing garbage", validReply + ` {"again": true}`},
		{"bad likelihood", strings.Replace(validReply, `"likelihood": "low"`, `"likelihood": "certain"`, 1)},
		{"empty tradeoffs", strings.Replace(validReply, `"tradeoffs": ["Higher rent"]`, `"tradeoffs": []`, 1)},
		{"missing summary", strings.Replace(validReply, `"summary"`, `"synopsis"`, 1)},
		{"two outcomes", twoOutcomes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result *model.AnalysisResult
			var err error
			require.NotPanics(t, func() { result, err = ParseAnalysis(tt.raw) })
			assert.Nil(t, result)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.raw, pe.Raw)
		})
	}
}

func TestParseAnalysis_FourOutcomesRejected(t *testing.T) {
	extra := `,
    {"title": "Wildcard", "likelihood": "low", "timeframe": "5 years",
     "narrative": "Something else entirely.",
     "tradeoffs": ["Unknown"], "insights": ["Unknown"], "actionItems": ["Wait"]}
  ]
}`
	four := strings.TrimSuffix(validReply, "\n  ]\n}") + extra

	_, err := ParseAnalysis(four)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}
