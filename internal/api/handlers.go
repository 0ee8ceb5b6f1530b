package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sheriax/autobackend.ai-backend/internal/config"
	"github.com/sheriax/autobackend.ai-backend/internal/generator"
	"github.com/sheriax/autobackend.ai-backend/internal/middleware"
	"github.com/sheriax/autobackend.ai-backend/internal/openapi"
	"github.com/sheriax/autobackend.ai-backend/internal/prompt"
)

// Root greets callers so a bare GET / confirms the service is up.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "AutoBackend API is running",
		})
	}
}

// Health reports liveness.
func Health(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":      "ok",
			"timestamp":   now(),
			"environment": cfg.Environment,
		})
	}
}

// Generate runs the pipeline for one request: decode, validate, build the
// prompt, invoke the model once, assemble the response. Requests are
// independent; nothing is shared or retried.
func Generate(gen generator.Generator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := decodeDocument(w, r)
		if err != nil {
			writeValidationError(w, openapi.Issues{{Field: "document", Message: err.Error()}})
			return
		}

		doc, issues := openapi.Validate(raw)
		if len(issues) > 0 {
			writeValidationError(w, issues)
			return
		}

		p, err := prompt.Build(doc)
		if err != nil {
			logger.Error().Str("rid", middleware.RequestIDFrom(r.Context())).Err(err).Msg("prompt build failed")
			writeGenerationError(w)
			return
		}

		start := time.Now()
		project, err := gen.GenerateProject(r.Context(), p, generator.FileMapSchema())
		var evt *zerolog.Event
		if err != nil {
			evt = logger.Error().Err(err)
		} else {
			evt = logger.Info()
		}
		evt.Str("rid", middleware.RequestIDFrom(r.Context())).
			Str("api_title", doc.Info.Title).
			Str("prompt_version", prompt.Version).
			Dur("dur_ms", time.Since(start)).
			Msg("generate")
		if err != nil {
			writeGenerationError(w)
			return
		}

		writeJSON(w, http.StatusOK, successResponse(doc, project, time.Now()))
	}
}

// SampleSpec serves a known-good document callers can feed straight back
// into POST /generate.
func SampleSpec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, openapi.Sample())
	}
}

// TestAPI confirms the configured credential can reach the model.
func TestAPI(gen generator.Generator, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := gen.VerifyAccess(r.Context()); err != nil {
			logger.Error().Str("rid", middleware.RequestIDFrom(r.Context())).Err(err).Msg("gemini unreachable")
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:     "Gemini API unreachable",
				Message:   "the configured credential could not reach the model",
				Timestamp: now(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"model":     cfg.GeminiModel,
			"timestamp": now(),
		})
	}
}

// RouteNotFound is the catch-all for unmatched paths and methods.
func RouteNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Route not found"})
	}
}

// maxDocumentBytes caps how much of a request body /generate will read.
const maxDocumentBytes = 4 << 20

// decodeDocument reads the request body as JSON, or as YAML when the
// Content-Type says so, into an unstructured value for validation. Bodies
// over maxDocumentBytes are rejected before parsing.
func decodeDocument(w http.ResponseWriter, r *http.Request) (any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("request body is too large")
		}
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("request body is empty")
	}

	if isYAML(r.Header.Get("Content-Type")) {
		var v any
		if err := yaml.Unmarshal(body, &v); err != nil {
			return nil, errors.New("request body must be valid YAML")
		}
		return yamlToJSONValue(v), nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, errors.New("request body must be valid JSON")
	}
	return v, nil
}

func isYAML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return true
	}
	return false
}

// yamlToJSONValue rewrites YAML-decoded values into the shapes the JSON
// validator and encoder expect. YAML allows non-string mapping keys (an
// unquoted status code like 200: decodes as an int), so keys are stringified.
func yamlToJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = yamlToJSONValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = yamlToJSONValue(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = yamlToJSONValue(t[i])
		}
		return t
	default:
		return v
	}
}
