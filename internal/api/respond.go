package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sheriax/autobackend.ai-backend/internal/generator"
	"github.com/sheriax/autobackend.ai-backend/internal/openapi"
)

// Metadata describes a generated project: where it came from and what is in
// it. Files lists the project's paths in the order the model produced them.
type Metadata struct {
	APITitle    string   `json:"apiTitle"`
	APIVersion  string   `json:"apiVersion"`
	GeneratedAt string   `json:"generatedAt"`
	FileCount   int      `json:"fileCount"`
	Files       []string `json:"files"`
}

// GenerateResponse is the success envelope for POST /generate.
type GenerateResponse struct {
	Success  bool              `json:"success"`
	Metadata Metadata          `json:"metadata"`
	Files    generator.Project `json:"files"`
}

// ErrorResponse is the failure envelope shared by every route. Validation
// failures carry Details; generation and unexpected failures carry Message
// and Timestamp instead.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Details   openapi.Issues `json:"details,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func successResponse(doc openapi.Document, project generator.Project, at time.Time) GenerateResponse {
	return GenerateResponse{
		Success: true,
		Metadata: Metadata{
			APITitle:    doc.Info.Title,
			APIVersion:  doc.Info.Version,
			GeneratedAt: at.UTC().Format(time.RFC3339),
			FileCount:   project.Len(),
			Files:       project.Paths(),
		},
		Files: project,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidationError(w http.ResponseWriter, issues openapi.Issues) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid OpenAPI specification",
		Details: issues,
	})
}

// writeGenerationError reports a failed generation with a generic message.
// The cause is not client-correctable, so no detail beyond the timestamp is
// exposed; the handler logs the underlying error.
func writeGenerationError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:     "Generation failed",
		Message:   "the model did not produce a project for this specification",
		Timestamp: now(),
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
