// Package ai provides the language-model classification capability.
package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("language model is not available")
	ErrInvalidResponse = errors.New("invalid model response")
)

// Request describes one link to classify.
type Request struct {
	Title      string
	URL        string
	PageText   string   // optional scraped page text, may be empty
	Categories []string // allowed categories, constrains model output
}

// Result is the parsed model output for one link.
type Result struct {
	Categories []string `json:"categories"`
	Summary    string   `json:"summary"`
}

// ProgressPhase identifies what a progress event reports on.
type ProgressPhase string

const (
	PhaseDownload ProgressPhase = "download"
	PhaseLoad     ProgressPhase = "load"
)

// ProgressEvent reports model download/load progress for UI display only.
// No correctness depends on any event being delivered.
type ProgressEvent struct {
	Phase     ProgressPhase
	Completed int64
	Total     int64
}

// Session is one model conversation. Sessions are stateful and not safe
// for concurrent use; callers classify through one session at a time.
type Session interface {
	Classify(ctx context.Context, req Request) (*Result, error)
	Close() error
}

// Classifier opens model sessions.
type Classifier interface {
	// Open creates a new session. Progress events are sent non-blocking
	// to progress when it is non-nil.
	Open(ctx context.Context, progress chan<- ProgressEvent) (Session, error)
}

// buildPrompt renders the classification prompt for a request.
func buildPrompt(req Request) string {
	title := req.Title
	if title == "" {
		title = "Untitled"
	}

	prompt := fmt.Sprintf(`Analyze the following bookmark and classify it.
Title: %q
URL: %q

Choose ONE or MORE relevant categories from the required enum list and provide a one-sentence summary.
Your response MUST be a JSON object matching the required schema.`, title, req.URL)

	if req.PageText != "" {
		prompt += fmt.Sprintf("\n\nPage content:\n%s", req.PageText)
	}
	return prompt
}

// jsonSchema constrains model output to the classification shape.
type jsonSchema struct {
	Type                 string                `json:"type"`
	Properties           map[string]schemaProp `json:"properties"`
	Required             []string              `json:"required"`
	AdditionalProperties bool                  `json:"additionalProperties"`
}

type schemaProp struct {
	Type        string      `json:"type"`
	Items       *schemaProp `json:"items,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Description string      `json:"description,omitempty"`
}

// classificationSchema builds the output schema for the given category list.
func classificationSchema(categories []string) jsonSchema {
	return jsonSchema{
		Type: "object",
		Properties: map[string]schemaProp{
			"categories": {
				Type:        "array",
				Items:       &schemaProp{Type: "string", Enum: categories},
				Description: "An array of one or more relevant categories for this bookmark.",
			},
			"summary": {Type: "string"},
		},
		Required:             []string{"categories", "summary"},
		AdditionalProperties: false,
	}
}
