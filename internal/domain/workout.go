package domain

import "time"

// WorkoutEntry is one logged training session.
type WorkoutEntry struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Activity        string    `json:"activity" validate:"required,max=80"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1,max=600"`
	Intensity       string    `json:"intensity" validate:"omitempty,oneof=easy moderate hard"`
	Notes           string    `json:"notes" validate:"omitempty,max=2000"`
	PerformedAt     time.Time `json:"performed_at"`
	CreatedAt       time.Time `json:"created_at"`
}
