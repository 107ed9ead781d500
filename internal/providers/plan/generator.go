// Package plan wraps the external generation model behind a single
// side-effect-free interface: a fully-resolved input snapshot in, a
// structured JSON payload or an error out. Callers treat the generator as a
// pure, possibly slow, possibly failing function.
package plan

import (
	"context"
	"encoding/json"
)

// Generator produces a structured payload from an input snapshot.
type Generator interface {
	Generate(ctx context.Context, snapshot json.RawMessage) (json.RawMessage, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, snapshot json.RawMessage) (json.RawMessage, error)

func (f GeneratorFunc) Generate(ctx context.Context, snapshot json.RawMessage) (json.RawMessage, error) {
	return f(ctx, snapshot)
}

const programInstruction = `You are a strength and conditioning coach. Given the
JSON input describing a client's goal, weekly availability, experience level,
equipment, and injuries, produce a complete multi-week training program. Reply
with JSON only, matching this shape:
{"title": string, "weeks": number, "days": [{"name": string, "focus": string,
"exercises": [{"name": string, "sets": number, "reps": string,
"rest_seconds": number, "notes": string}]}], "notes": string}`

const recommendationInstruction = `You are a strength and conditioning coach.
Given the JSON input describing a client's profile and recent training, suggest
a single session for today. Reply with JSON only, matching this shape:
{"focus": string, "exercises": [{"name": string, "sets": number,
"reps": string, "rest_seconds": number}], "notes": string}`
