package domain

import (
	"errors"
	"fmt"
)

// ProgramRequest is the validated payload for a training program generation
// job. Validation tags define the submission schema; anything failing them is
// rejected before a job row exists.
type ProgramRequest struct {
	Goal           string   `json:"goal" validate:"required,oneof=strength hypertrophy endurance weight_loss general_fitness"`
	DaysPerWeek    int      `json:"days_per_week" validate:"required,min=1,max=7"`
	Experience     string   `json:"experience" validate:"required,oneof=beginner intermediate advanced"`
	SessionMinutes int      `json:"session_minutes" validate:"omitempty,min=15,max=180"`
	Equipment      []string `json:"equipment" validate:"omitempty,dive,oneof=barbell dumbbell kettlebell machine bodyweight bands"`
	Injuries       []string `json:"injuries" validate:"omitempty,dive,max=120"`
	Locale         string   `json:"locale" validate:"omitempty,oneof=en id"`
}

// ProgramExercise is one prescribed movement inside a training day.
type ProgramExercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"rest_seconds,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ProgramDay is a single session of a training week.
type ProgramDay struct {
	Name      string            `json:"name"`
	Focus     string            `json:"focus"`
	Exercises []ProgramExercise `json:"exercises"`
}

// TrainingProgram is the structured result of a completed generation job.
// The worker validates generator output against this shape before marking a
// job completed; unvalidatable output fails the job instead.
type TrainingProgram struct {
	Title string       `json:"title"`
	Weeks int          `json:"weeks"`
	Days  []ProgramDay `json:"days"`
	Notes string       `json:"notes,omitempty"`
}

// Validate checks the minimal structural contract of a generated program.
func (p *TrainingProgram) Validate() error {
	if p == nil {
		return errors.New("program is empty")
	}
	if p.Title == "" {
		return errors.New("program title is empty")
	}
	if len(p.Days) == 0 {
		return errors.New("program has no training days")
	}
	for i, day := range p.Days {
		if len(day.Exercises) == 0 {
			return fmt.Errorf("day %d has no exercises", i+1)
		}
		for j, ex := range day.Exercises {
			if ex.Name == "" {
				return fmt.Errorf("day %d exercise %d has no name", i+1, j+1)
			}
			if ex.Sets <= 0 {
				return fmt.Errorf("day %d exercise %d has invalid sets", i+1, j+1)
			}
		}
	}
	return nil
}
