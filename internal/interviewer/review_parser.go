package interviewer

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/zhikangxie107/intr.vu/internal/models"
)

// ParseReview turns raw model output into a Review. Strict JSON first; if
// the model wrapped the object in prose or code fences, a balanced-object
// scan recovers it. Scores are clamped to [0,10] and rounded to one
// decimal. On total failure the second return value carries the raw text.
func ParseReview(text string) (*models.Review, *models.ReviewFallback) {
	candidate := strings.TrimSpace(text)

	var review models.Review
	if err := json.Unmarshal([]byte(candidate), &review); err != nil {
		extracted, ok := extractJSONObject(candidate)
		if !ok {
			return nil, &models.ReviewFallback{
				Error: "review output is not valid JSON",
				Raw:   text,
			}
		}
		if err := json.Unmarshal([]byte(extracted), &review); err != nil {
			return nil, &models.ReviewFallback{
				Error: "recovered JSON object did not match the review schema",
				Raw:   text,
			}
		}
	}

	if review.Summary == "" && len(review.Categories) == 0 {
		return nil, &models.ReviewFallback{
			Error: "review output parsed but carries no content",
			Raw:   text,
		}
	}

	clampReview(&review)
	return &review, nil
}

func clampReview(r *models.Review) {
	r.Overall = clampScore(r.Overall)
	for i := range r.Categories {
		r.Categories[i].Score = clampScore(r.Categories[i].Score)
	}
}

// clampScore bounds a score to [0,10] at one decimal of precision.
func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return math.Round(s*10) / 10
}

// extractJSONObject returns the first balanced top-level JSON object in
// text, skipping brace characters inside strings.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
