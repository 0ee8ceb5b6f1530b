package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriax/autobackend.ai-backend/internal/api"
	"github.com/sheriax/autobackend.ai-backend/internal/config"
	"github.com/sheriax/autobackend.ai-backend/internal/generator"
	"github.com/sheriax/autobackend.ai-backend/internal/openapi"
	"github.com/sheriax/autobackend.ai-backend/internal/prompt"
)

const minimalSpec = `{"openapi":"3.0.0","info":{"title":"Blog","version":"1.0.0"},"paths":{}}`

// stubGenerator substitutes the model behind the capability boundary.
type stubGenerator struct {
	project   generator.Project
	genErr    error
	verifyErr error

	calls     int
	gotPrompt prompt.Prompt
	gotSchema *generator.Schema
}

func (s *stubGenerator) GenerateProject(_ context.Context, p prompt.Prompt, schema *generator.Schema) (generator.Project, error) {
	s.calls++
	s.gotPrompt = p
	s.gotSchema = schema
	if s.genErr != nil {
		return generator.Project{}, s.genErr
	}
	return s.project, nil
}

func (s *stubGenerator) VerifyAccess(context.Context) error { return s.verifyErr }

type panicGenerator struct{}

func (panicGenerator) GenerateProject(context.Context, prompt.Prompt, *generator.Schema) (generator.Project, error) {
	panic("synthesis exploded")
}

func (panicGenerator) VerifyAccess(context.Context) error { return nil }

func newTestServer(t *testing.T, gen generator.Generator) http.Handler {
	t.Helper()
	return newTestServerWithLogger(t, gen, zerolog.Nop())
}

func newTestServerWithLogger(t *testing.T, gen generator.Generator, logger zerolog.Logger) http.Handler {
	t.Helper()
	cfg := config.Config{
		Port:         3000,
		Environment:  "test",
		GeminiAPIKey: "key",
		GeminiModel:  "gemini-2.5-flash",
	}
	srv, err := api.NewServer(cfg, gen, logger)
	require.NoError(t, err)
	return srv.Router
}

func doRequest(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, h, method, path, "application/json", body)
}

func TestGenerateSuccess(t *testing.T) {
	gen := &stubGenerator{project: generator.NewProject(
		generator.File{Path: "package.json", Content: "{}"},
		generator.File{Path: "src/index.ts", Content: "// entry"},
	)}
	h := newTestServer(t, gen)

	rec := doJSON(t, h, http.MethodPost, "/generate", minimalSpec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Success  bool `json:"success"`
		Metadata struct {
			APITitle    string   `json:"apiTitle"`
			APIVersion  string   `json:"apiVersion"`
			GeneratedAt string   `json:"generatedAt"`
			FileCount   int      `json:"fileCount"`
			Files       []string `json:"files"`
		} `json:"metadata"`
		Files generator.Project `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "Blog", resp.Metadata.APITitle)
	assert.Equal(t, "1.0.0", resp.Metadata.APIVersion)
	assert.Equal(t, 2, resp.Metadata.FileCount)

	wantFiles := []string{"package.json", "src/index.ts"}
	if diff := cmp.Diff(wantFiles, resp.Metadata.Files); diff != "" {
		t.Errorf("metadata.files mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantFiles, resp.Files.Paths()); diff != "" {
		t.Errorf("files key order mismatch (-want +got):\n%s", diff)
	}

	_, err := time.Parse(time.RFC3339, resp.Metadata.GeneratedAt)
	assert.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.NotEmpty(t, gen.gotPrompt.System)
	assert.Contains(t, gen.gotPrompt.User, `"title": "Blog"`)
	require.NotNil(t, gen.gotSchema)
	assert.Equal(t, "object", gen.gotSchema.Type)
}

func TestGenerateRejectsWrongMajorVersion(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestServer(t, gen)

	body := `{"openapi":"2.0","info":{"title":"X","version":"1"},"paths":{}}`
	rec := doJSON(t, h, http.MethodPost, "/generate", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid OpenAPI specification", resp.Error)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "openapi", resp.Details[0].Field)
	assert.Contains(t, resp.Details[0].Message, "3.<minor>.<patch>")

	assert.Zero(t, gen.calls)
}

func TestGenerateRejectsUnreadableBodies(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "malformed json", contentType: "application/json", body: `{"openapi":`},
		{name: "empty body", contentType: "application/json", body: ""},
		{name: "malformed yaml", contentType: "application/yaml", body: "\tnope: ["},
		{name: "document is an array", contentType: "application/json", body: `[1,2]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{}
			h := newTestServer(t, gen)

			rec := doRequest(t, h, http.MethodPost, "/generate", tc.contentType, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error   string `json:"error"`
				Details []struct {
					Field string `json:"field"`
				} `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid OpenAPI specification", resp.Error)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, "document", resp.Details[0].Field)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestGenerateRejectsOversizedBody(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestServer(t, gen)

	body := `{"openapi":"` + strings.Repeat("3", 5<<20) + `"}`
	rec := doJSON(t, h, http.MethodPost, "/generate", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid OpenAPI specification", resp.Error)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "document", resp.Details[0].Field)
	assert.Contains(t, resp.Details[0].Message, "too large")
	assert.Zero(t, gen.calls)
}

func TestGenerateFailureEnvelope(t *testing.T) {
	kinds := []generator.FailureKind{
		generator.FailureAuth,
		generator.FailureUpstream,
		generator.FailureOutput,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			gen := &stubGenerator{genErr: &generator.GenerationError{
				Kind: kind,
				Err:  errors.New("secret upstream detail"),
			}}
			h := newTestServer(t, gen)

			rec := doJSON(t, h, http.MethodPost, "/generate", minimalSpec)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Generation failed", resp["error"])
			assert.NotEmpty(t, resp["message"])

			_, hasFiles := resp["files"]
			assert.False(t, hasFiles, "failure responses must not carry a files key")

			ts, _ := resp["timestamp"].(string)
			_, err := time.Parse(time.RFC3339, ts)
			assert.NoError(t, err)

			assert.NotContains(t, rec.Body.String(), "secret upstream detail")
		})
	}
}

func TestGenerateLogsOneOutcomePerRequest(t *testing.T) {
	testCases := []struct {
		name      string
		gen       *stubGenerator
		wantLevel string
		wantErr   string
	}{
		{
			name: "success logs info",
			gen: &stubGenerator{project: generator.NewProject(
				generator.File{Path: "package.json", Content: "{}"},
			)},
			wantLevel: "info",
		},
		{
			name: "failure logs error with the failure kind",
			gen: &stubGenerator{genErr: &generator.GenerationError{
				Kind: generator.FailureUpstream,
				Err:  errors.New("boom"),
			}},
			wantLevel: "error",
			wantErr:   "generation failed (upstream)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newTestServerWithLogger(t, tc.gen, zerolog.New(&buf))

			doJSON(t, h, http.MethodPost, "/generate", minimalSpec)

			var outcomes []map[string]any
			for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(line, &entry))
				if entry["message"] == "generate" {
					outcomes = append(outcomes, entry)
				}
			}
			require.Len(t, outcomes, 1)

			entry := outcomes[0]
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.Equal(t, "Blog", entry["api_title"])
			assert.NotEmpty(t, entry["rid"])
			if tc.wantErr != "" {
				assert.Contains(t, entry["error"], tc.wantErr)
			} else {
				assert.NotContains(t, entry, "error")
			}
		})
	}
}

func TestGenerateAcceptsYAMLBody(t *testing.T) {
	gen := &stubGenerator{project: generator.NewProject(
		generator.File{Path: "package.json", Content: "{}"},
	)}
	h := newTestServer(t, gen)

	const yamlSpec = `openapi: 3.0.0
info:
  title: Blog
  version: 1.0.0
paths:
  /posts:
    get:
      responses:
        200:
          description: ok
`
	rec := doRequest(t, h, http.MethodPost, "/generate", "application/yaml", yamlSpec)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Metadata struct {
			APITitle string `json:"apiTitle"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Blog", resp.Metadata.APITitle)

	// the unquoted 200 status key must reach the model as a JSON string key
	assert.Contains(t, gen.gotPrompt.User, `"200"`)
}

func TestRootEndpoint(t *testing.T) {
	h := newTestServer(t, &stubGenerator{})

	rec := doRequest(t, h, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["message"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &stubGenerator{})

	rec := doRequest(t, h, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "test", resp["environment"])
	_, err := time.Parse(time.RFC3339, resp["timestamp"])
	assert.NoError(t, err)
}

func TestSampleSpecIsValidGenerateInput(t *testing.T) {
	h := newTestServer(t, &stubGenerator{})

	rec := doRequest(t, h, http.MethodGet, "/sample-spec", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	_, issues := openapi.Validate(raw)
	assert.Empty(t, issues)
}

func TestTestAPIEndpoint(t *testing.T) {
	t.Run("credential works", func(t *testing.T) {
		h := newTestServer(t, &stubGenerator{})

		rec := doRequest(t, h, http.MethodGet, "/test-api", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, "gemini-2.5-flash", resp["model"])
	})

	t.Run("credential rejected", func(t *testing.T) {
		gen := &stubGenerator{verifyErr: &generator.GenerationError{
			Kind: generator.FailureAuth,
			Err:  errors.New("bad key"),
		}}
		h := newTestServer(t, gen)

		rec := doRequest(t, h, http.MethodGet, "/test-api", "", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Gemini API unreachable", resp["error"])
		_, err := time.Parse(time.RFC3339, resp["timestamp"])
		assert.NoError(t, err)
	})
}

func TestUnmatchedRoutesReturnJSON404(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nope"},
		{name: "wrong method on health", method: http.MethodPost, path: "/health"},
		{name: "wrong method on generate", method: http.MethodGet, path: "/generate"},
		{name: "delete on generate", method: http.MethodDelete, path: "/generate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, &stubGenerator{})

			rec := doRequest(t, h, tc.method, tc.path, "", "")
			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Route not found", resp["error"])
		})
	}
}

func TestHandlerPanicBecomesJSON500(t *testing.T) {
	h := newTestServer(t, panicGenerator{})

	rec := doJSON(t, h, http.MethodPost, "/generate", minimalSpec)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp["error"])
	assert.NotContains(t, rec.Body.String(), "synthesis exploded")
}

func TestNewServerRequiresGenerator(t *testing.T) {
	_, err := api.NewServer(config.Config{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestCORSAllowsBrowserCallers(t *testing.T) {
	h := newTestServer(t, &stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
