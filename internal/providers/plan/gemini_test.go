package plan

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"coach-server/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func geminiReply(text string) *http.Response {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}}},
		},
	})
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(string(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGeminiGeneratorParsesCandidate(t *testing.T) {
	gen := NewRecommendationGenerator(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if !strings.Contains(r.URL.Path, ":generateContent") {
				t.Fatalf("unexpected path: %s", r.URL.Path)
			}
			return geminiReply(`{"focus":"pull","exercises":[{"name":"Row","sets":3,"reps":"8"}]}`), nil
		})},
	})

	raw, err := gen.Generate(context.Background(), json.RawMessage(`{"goal":"strength"}`))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	var rec domain.Recommendation
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode recommendation: %v", err)
	}
	if rec.Focus != "pull" {
		t.Fatalf("focus = %q, want pull", rec.Focus)
	}
}

func TestGeminiGeneratorStripsCodeFences(t *testing.T) {
	gen := NewRecommendationGenerator(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return geminiReply("```json\n{\"focus\":\"legs\",\"exercises\":[]}\n```"), nil
		})},
	})

	raw, err := gen.Generate(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("output is not valid JSON: %s", raw)
	}
}

func TestGeminiGeneratorFallsBackOnTransportError(t *testing.T) {
	gen := NewProgramGenerator(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
		Fallback: NewStaticProgramGenerator(),
	})

	raw, err := gen.Generate(context.Background(), json.RawMessage(`{"goal":"strength","days_per_week":3}`))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	var program domain.TrainingProgram
	if err := json.Unmarshal(raw, &program); err != nil {
		t.Fatalf("decode fallback program: %v", err)
	}
	if err := program.Validate(); err != nil {
		t.Fatalf("fallback program is invalid: %v", err)
	}
}

func TestGeminiGeneratorMissingKeyUsesFallback(t *testing.T) {
	called := false
	gen := NewProgramGenerator(GeminiOptions{
		Fallback: GeneratorFunc(func(ctx context.Context, snapshot json.RawMessage) (json.RawMessage, error) {
			called = true
			return json.RawMessage(`{}`), nil
		}),
	})

	if _, err := gen.Generate(context.Background(), json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !called {
		t.Fatal("fallback was not invoked")
	}
}

func TestGeminiGeneratorWithoutFallbackWrapsError(t *testing.T) {
	gen := NewProgramGenerator(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusServiceUnavailable, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})},
	})

	_, err := gen.Generate(context.Background(), json.RawMessage(`{}`))
	if !errors.Is(err, domain.ErrGeneratorFailure) {
		t.Fatalf("error = %v, want ErrGeneratorFailure", err)
	}
}
