package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/helmcode/neuropath/pkg/model"
)

// OutcomeCount is the number of outcomes a reply must carry.
const OutcomeCount = 3

const analysisSchemaURL = "https://neuropath.local/schemas/analysis-result.schema.json"

var analysisSchemaJSON = fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["summary", "outcomes"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "outcomes": {
      "type": "array",
      "minItems": %[1]d,
      "maxItems": %[1]d,
      "items": {"$ref": "#/$defs/outcome"}
    }
  },
  "$defs": {
    "text": {"type": "string", "minLength": 1},
    "list": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/text"}},
    "outcome": {
      "type": "object",
      "required": ["title", "likelihood", "timeframe", "narrative", "tradeoffs", "insights", "actionItems"],
      "properties": {
        "title": {"$ref": "#/$defs/text"},
        "likelihood": {"enum": ["high", "medium", "low"]},
        "timeframe": {"$ref": "#/$defs/text"},
        "narrative": {"$ref": "#/$defs/text"},
        "tradeoffs": {"$ref": "#/$defs/list"},
        "insights": {"$ref": "#/$defs/list"},
        "actionItems": {"$ref": "#/$defs/list"}
      }
    }
  }
}`, OutcomeCount)

var (
	schemaOnce     sync.Once
	analysisSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(analysisSchemaURL, strings.NewReader(analysisSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("analysis schema load failed: %w", err)
			return
		}
		analysisSchema, schemaErr = c.Compile(analysisSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("analysis schema compile failed: %w", schemaErr)
		}
	})
	return analysisSchema, schemaErr
}

// ParseError carries the raw model text that could not be turned into a result.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse analysis: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ParseAnalysis strips fences from raw, validates it against the result
// schema and decodes it.
func ParseAnalysis(raw string) (*model.AnalysisResult, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("empty content")}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("trailing data after JSON object")}
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	var result model.AnalysisResult
	if err := json.NewDecoder(bytes.NewReader([]byte(cleaned))).Decode(&result); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return &result, nil
}

var (
	openFence  = regexp.MustCompile("^```[a-zA-Z0-9_-]*[ \t]*\r?\n?")
	closeFence = regexp.MustCompile("\r?\n?```$")
)

// StripFences removes a markdown code fence wrapping the whole text, such as
// ```json ... ```. Fences inside the payload are kept.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = openFence.ReplaceAllString(cleaned, "")
	cleaned = closeFence.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
