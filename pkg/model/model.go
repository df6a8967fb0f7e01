package model

import "strings"

// AnalysisRequest is what the user submits for a single analysis.
type AnalysisRequest struct {
	Decision   string `json:"decision" yaml:"decision"`
	Context    string `json:"context,omitempty" yaml:"context,omitempty"`
	Priorities string `json:"priorities,omitempty" yaml:"priorities,omitempty"`
}

// Validate checks the only hard requirement on a request: a decision.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.Decision) == "" {
		return NewError(KindValidation, MsgDecisionRequired, nil)
	}
	return nil
}

type Likelihood string

const (
	LikelihoodHigh   Likelihood = "high"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodLow    Likelihood = "low"
)

type Outcome struct {
	Title       string     `json:"title" yaml:"title"`
	Likelihood  Likelihood `json:"likelihood" yaml:"likelihood"`
	Timeframe   string     `json:"timeframe" yaml:"timeframe"`
	Narrative   string     `json:"narrative" yaml:"narrative"`
	Tradeoffs   []string   `json:"tradeoffs" yaml:"tradeoffs"`
	Insights    []string   `json:"insights" yaml:"insights"`
	ActionItems []string   `json:"actionItems" yaml:"actionItems"`
}

type AnalysisResult struct {
	Summary  string    `json:"summary" yaml:"summary"`
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

// ErrorResponse is the wire shape of every failed relay response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}
