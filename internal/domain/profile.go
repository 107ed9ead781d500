package domain

import "time"

// Profile holds the onboarding answers for one user. It is the mutable
// upstream of program requests; generation jobs never re-read it after
// submission because the submitted snapshot is authoritative.
type Profile struct {
	OwnerID     string   `json:"owner_id"`
	Goal        string   `json:"goal" validate:"omitempty,oneof=strength hypertrophy endurance weight_loss general_fitness"`
	Experience  string   `json:"experience" validate:"omitempty,oneof=beginner intermediate advanced"`
	DaysPerWeek int      `json:"days_per_week" validate:"omitempty,min=1,max=7"`
	Equipment   []string `json:"equipment" validate:"omitempty,dive,oneof=barbell dumbbell kettlebell machine bodyweight bands"`
	BirthYear   int      `json:"birth_year" validate:"omitempty,min=1920,max=2020"`
	UpdatedAt   time.Time `json:"updated_at"`
}
