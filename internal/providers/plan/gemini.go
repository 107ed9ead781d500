package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coach-server/internal/domain"
)

const geminiDefaultTimeout = 60 * time.Second

// GeminiOptions configures a Gemini-backed generator.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// Fallback is consulted when no API key is configured or the API call
	// fails. Keyless local and CI environments run entirely on the fallback.
	Fallback Generator
}

// GeminiGenerator calls the Gemini generateContent API with a task
// instruction and returns the model's JSON reply.
type GeminiGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	client      *http.Client
	fallback    Generator
	instruction string
}

// NewProgramGenerator builds the long-form training program generator.
func NewProgramGenerator(opts GeminiOptions) *GeminiGenerator {
	return newGeminiGenerator(opts, programInstruction)
}

// NewRecommendationGenerator builds the daily recommendation generator.
func NewRecommendationGenerator(opts GeminiOptions) *GeminiGenerator {
	return newGeminiGenerator(opts, recommendationInstruction)
}

func newGeminiGenerator(opts GeminiOptions, instruction string) *GeminiGenerator {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	model := opts.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiGenerator{
		apiKey:      opts.APIKey,
		model:       model,
		baseURL:     baseURL,
		client:      client,
		fallback:    opts.Fallback,
		instruction: instruction,
	}
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate invokes the model once. On any API failure the configured fallback
// is used; without a fallback the error is wrapped in ErrGeneratorFailure so
// callers never see transport detail.
func (g *GeminiGenerator) Generate(ctx context.Context, snapshot json.RawMessage) (json.RawMessage, error) {
	if g.apiKey == "" {
		return g.fallbackOrError(ctx, snapshot, fmt.Errorf("api key missing"))
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: g.instruction + "\n\nInput:\n" + string(snapshot)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.6,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return g.fallbackOrError(ctx, snapshot, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return g.fallbackOrError(ctx, snapshot, fmt.Errorf("status %d", resp.StatusCode))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return g.fallbackOrError(ctx, snapshot, err)
	}
	text := firstCandidateText(decoded)
	if text == "" {
		return g.fallbackOrError(ctx, snapshot, fmt.Errorf("empty candidate"))
	}

	cleaned := stripCodeFences(text)
	if !json.Valid([]byte(cleaned)) {
		return g.fallbackOrError(ctx, snapshot, fmt.Errorf("non-json candidate"))
	}
	return json.RawMessage(cleaned), nil
}

func (g *GeminiGenerator) fallbackOrError(ctx context.Context, snapshot json.RawMessage, cause error) (json.RawMessage, error) {
	if g.fallback != nil {
		return g.fallback.Generate(ctx, snapshot)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, cause)
}

func firstCandidateText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

// stripCodeFences removes a surrounding markdown fence the model sometimes
// emits despite the JSON response mime type.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
