package plan

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"coach-server/internal/domain"
)

// StaticProgramGenerator produces a deterministic training program without
// calling any external model. It serves keyless environments and acts as the
// Gemini fallback; identical input always yields identical output.
type StaticProgramGenerator struct{}

func NewStaticProgramGenerator() *StaticProgramGenerator {
	return &StaticProgramGenerator{}
}

var focusRotation = map[string][]string{
	"strength":        {"squat", "bench press", "deadlift", "overhead press"},
	"hypertrophy":     {"push", "pull", "legs", "upper body", "lower body"},
	"endurance":       {"intervals", "tempo", "long effort", "recovery"},
	"weight_loss":     {"full body circuit", "conditioning", "strength", "steady cardio"},
	"general_fitness": {"full body", "conditioning", "mobility", "strength"},
}

var exercisePool = map[string][]domain.ProgramExercise{
	"squat":          {{Name: "back squat", Sets: 5, Reps: "5", RestSeconds: 180}, {Name: "leg press", Sets: 3, Reps: "10", RestSeconds: 120}},
	"bench press":    {{Name: "bench press", Sets: 5, Reps: "5", RestSeconds: 180}, {Name: "incline dumbbell press", Sets: 3, Reps: "10", RestSeconds: 120}},
	"deadlift":       {{Name: "deadlift", Sets: 3, Reps: "5", RestSeconds: 240}, {Name: "barbell row", Sets: 3, Reps: "8", RestSeconds: 120}},
	"overhead press": {{Name: "overhead press", Sets: 5, Reps: "5", RestSeconds: 180}, {Name: "lateral raise", Sets: 3, Reps: "12", RestSeconds: 90}},
	"default":        {{Name: "goblet squat", Sets: 3, Reps: "10", RestSeconds: 90}, {Name: "push-up", Sets: 3, Reps: "12", RestSeconds: 60}, {Name: "inverted row", Sets: 3, Reps: "10", RestSeconds: 90}},
}

func (s *StaticProgramGenerator) Generate(_ context.Context, snapshot json.RawMessage) (json.RawMessage, error) {
	var req domain.ProgramRequest
	if err := json.Unmarshal(snapshot, &req); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	days := req.DaysPerWeek
	if days < 1 {
		days = 3
	}
	goal := req.Goal
	rotation, ok := focusRotation[goal]
	if !ok {
		goal = "general_fitness"
		rotation = focusRotation[goal]
	}

	titler := cases.Title(language.Und)
	program := domain.TrainingProgram{
		Title: fmt.Sprintf("%d-Day %s Program", days, titler.String(goal)),
		Weeks: 4,
		Notes: "Progress loads conservatively; repeat the block if recovery lags.",
	}
	for i := 0; i < days; i++ {
		focus := rotation[i%len(rotation)]
		exercises, ok := exercisePool[focus]
		if !ok {
			exercises = exercisePool["default"]
		}
		program.Days = append(program.Days, domain.ProgramDay{
			Name:      fmt.Sprintf("Day %d", i+1),
			Focus:     focus,
			Exercises: namedCopy(exercises, titler),
		})
	}
	return json.Marshal(program)
}

// StaticRecommendationGenerator is the deterministic counterpart for the
// daily recommendation path.
type StaticRecommendationGenerator struct{}

func NewStaticRecommendationGenerator() *StaticRecommendationGenerator {
	return &StaticRecommendationGenerator{}
}

func (s *StaticRecommendationGenerator) Generate(_ context.Context, snapshot json.RawMessage) (json.RawMessage, error) {
	var ctx struct {
		Goal         string `json:"goal"`
		LastActivity string `json:"last_activity"`
	}
	// Snapshot fields are advisory here; a partial decode still produces a
	// usable session.
	_ = json.Unmarshal(snapshot, &ctx)

	goal := ctx.Goal
	rotation, ok := focusRotation[goal]
	if !ok {
		rotation = focusRotation["general_fitness"]
	}
	focus := rotation[0]
	if ctx.LastActivity == focus && len(rotation) > 1 {
		focus = rotation[1]
	}
	exercises, ok := exercisePool[focus]
	if !ok {
		exercises = exercisePool["default"]
	}

	titler := cases.Title(language.Und)
	rec := domain.Recommendation{
		Focus:     focus,
		Exercises: namedCopy(exercises, titler),
		Notes:     "Warm up thoroughly and stop two reps short of failure.",
	}
	return json.Marshal(rec)
}

func namedCopy(exercises []domain.ProgramExercise, titler cases.Caser) []domain.ProgramExercise {
	out := make([]domain.ProgramExercise, len(exercises))
	for i, ex := range exercises {
		out[i] = ex
		out[i].Name = titler.String(ex.Name)
	}
	return out
}
