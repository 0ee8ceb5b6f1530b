package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/sheriax/autobackend.ai-backend/internal/auth"
	"github.com/sheriax/autobackend.ai-backend/internal/config"
	"github.com/sheriax/autobackend.ai-backend/internal/prompt"
)

const (
	// temperature favors reproducible, conventional output over creative
	// variation. Not a determinism guarantee.
	temperature     = 0.2
	maxOutputTokens = 8192
)

// GeminiClient calls the Gemini Generative Language API over HTTP. It
// authenticates with an API key or an OAuth token source, picked at
// construction from the configuration.
type GeminiClient struct {
	log    zerolog.Logger
	apiKey string
	tokens oauth2.TokenSource
	model  string
	base   string

	httpClient *http.Client
}

var _ Generator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from the configuration. It fails when no
// usable credential is present.
func NewGeminiClient(ctx context.Context, cfg config.Config, log zerolog.Logger) (*GeminiClient, error) {
	c := &GeminiClient{
		log:        log,
		model:      cfg.GeminiModel,
		base:       strings.TrimSuffix(cfg.GeminiBaseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	switch {
	case cfg.GeminiAPIKey != "":
		c.apiKey = cfg.GeminiAPIKey
	case cfg.GoogleCredentialsJSON != "":
		ts, err := auth.TokenSource(ctx, []byte(cfg.GoogleCredentialsJSON))
		if err != nil {
			return nil, err
		}
		c.tokens = ts
	default:
		return nil, errors.New("no gemini credential configured")
	}
	return c, nil
}

// GenerateProject sends one generateContent call and decodes the reply into
// a Project. A single attempt is made; retry policy belongs to callers.
func (g *GeminiClient) GenerateProject(ctx context.Context, p prompt.Prompt, schema *Schema) (Project, error) {
	reqBody := generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: p.System}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: p.User}}}},
		GenerationConfig: &generationConfig{
			Temperature:      temperature,
			MaxOutputTokens:  maxOutputTokens,
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}

	raw, err := g.callGenerateContent(ctx, reqBody)
	if err != nil {
		return Project{}, err
	}

	text, err := extractText(raw)
	if err != nil {
		return Project{}, &GenerationError{Kind: FailureOutput, Err: err}
	}

	var project Project
	if err := json.Unmarshal([]byte(text), &project); err != nil {
		return Project{}, &GenerationError{
			Kind: FailureOutput,
			Err:  fmt.Errorf("response does not match the file map schema: %w", err),
		}
	}
	if project.Len() == 0 {
		return Project{}, &GenerationError{
			Kind: FailureOutput,
			Err:  errors.New("model returned an empty project"),
		}
	}

	g.log.Info().Str("model", g.model).Int("files", project.Len()).Msg("gemini generation complete")
	return project, nil
}

// VerifyAccess confirms the credential is usable with a cheap authenticated
// call against the models list endpoint.
func (g *GeminiClient) VerifyAccess(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/v1beta/models", nil)
	if err != nil {
		return &GenerationError{Kind: FailureUpstream, Err: err}
	}
	if err := g.authorize(req); err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &GenerationError{Kind: FailureUpstream, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &GenerationError{Kind: FailureAuth, Err: fmt.Errorf("gemini rejected the credential: %s", resp.Status)}
	case resp.StatusCode >= 300:
		return &GenerationError{Kind: FailureUpstream, Err: fmt.Errorf("gemini http error: %s", resp.Status)}
	}
	return nil
}

// --- HTTP helpers ---

func (g *GeminiClient) callGenerateContent(ctx context.Context, payload any) ([]byte, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.base, g.model)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &GenerationError{Kind: FailureUpstream, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &GenerationError{Kind: FailureUpstream, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if err := g.authorize(req); err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Kind: FailureUpstream, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{Kind: FailureUpstream, Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &GenerationError{Kind: FailureAuth, Err: fmt.Errorf("gemini rejected the credential: %s", resp.Status)}
	case resp.StatusCode >= 300:
		return nil, &GenerationError{Kind: FailureUpstream, Err: fmt.Errorf("gemini http error: %s body=%s", resp.Status, truncate(string(b), 512))}
	}
	return b, nil
}

// authorize attaches the configured credential to req. OAuth tokens go in
// the Authorization header, API keys in x-goog-api-key.
func (g *GeminiClient) authorize(req *http.Request) error {
	if g.tokens != nil {
		tok, err := g.tokens.Token()
		if err != nil {
			return &GenerationError{Kind: FailureAuth, Err: err}
		}
		tok.SetAuthHeader(req)
		return nil
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	return nil
}

// --- response mapping ---

// extractText pulls the first candidate's text part.
//
// Gemini response shape (v1beta):
// {"candidates":[{"content":{"parts":[{"text":"..."}]}}]}
func extractText(raw []byte) (string, error) {
	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response contains no candidates")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// --- wire types (v1beta generateContent) ---

type generateContentRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}
