package models

// DefaultReviewCategories is the rubric used when the caller does not
// supply one.
var DefaultReviewCategories = []string{
	"Problem Understanding",
	"Correctness & Edge Cases",
	"Complexity",
	"Code Quality",
	"Testing Strategy",
	"Communication",
}

// Review is the structured grading object produced on demand from a session
// snapshot. It has no lifecycle of its own and is never persisted.
type Review struct {
	Overall         float64          `json:"overall"`
	Categories      []ReviewCategory `json:"categories"`
	Strengths       []string         `json:"strengths"`
	Issues          []string         `json:"issues"`
	Recommendations []string         `json:"recommendations"`
	Summary         string           `json:"summary"`
}

// ReviewCategory scores one rubric dimension in [0,10].
type ReviewCategory struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale,omitempty"`
}

// ReviewFallback is returned when the model output cannot be parsed into a
// Review even after recovery; callers can still render the raw text.
type ReviewFallback struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
}
