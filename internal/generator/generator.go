// Package generator produces backend projects by delegating content
// synthesis to an external generative model constrained to a file-map
// output schema. There is no templating or rendering here; the engineering
// surface is the contract around the model call.
package generator

import (
	"context"
	"fmt"

	"github.com/sheriax/autobackend.ai-backend/internal/prompt"
)

// FailureKind classifies why a generation attempt produced no project.
type FailureKind string

const (
	// FailureAuth covers missing or rejected credentials.
	FailureAuth FailureKind = "auth"
	// FailureUpstream covers transport errors and non-2xx upstream replies.
	FailureUpstream FailureKind = "upstream"
	// FailureOutput covers replies that do not conform to the file map
	// schema, including empty projects.
	FailureOutput FailureKind = "output"
)

// GenerationError reports a failed generation attempt. The kind lets
// callers log the failure class without parsing error text.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator is the capability boundary for project generation. An
// implementation returns either a non-empty conforming Project or a
// *GenerationError; it never returns a partially populated project.
type Generator interface {
	GenerateProject(ctx context.Context, p prompt.Prompt, schema *Schema) (Project, error)
	VerifyAccess(ctx context.Context) error
}

// Schema declares the reply shape the model must produce, in the OpenAPI
// schema dialect the Gemini API accepts.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// FileMapSchema describes the required reply: a flat JSON object mapping
// relative file paths to complete file contents.
func FileMapSchema() *Schema {
	return &Schema{
		Type:        "object",
		Description: "Flat mapping of relative file path to complete file content.",
	}
}
