package domain

// Recommendation is the lightweight, high-frequency generation payload served
// from the recommendation cache (e.g. "what should I train today").
type Recommendation struct {
	Focus     string            `json:"focus"`
	Exercises []ProgramExercise `json:"exercises"`
	Notes     string            `json:"notes,omitempty"`
}
