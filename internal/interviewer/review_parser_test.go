package interviewer

import (
	"strings"
	"testing"
)

const validReview = `{
	"overall": 7.5,
	"categories": [
		{"name": "Correctness & Edge Cases", "score": 8, "rationale": "solid"},
		{"name": "Communication", "score": 6.24}
	],
	"strengths": ["clear thinking"],
	"issues": ["missed overflow case"],
	"recommendations": ["practice edge cases"],
	"summary": "good attempt"
}`

func TestParseReviewStrict(t *testing.T) {
	review, fallback := ParseReview(validReview)
	if fallback != nil {
		t.Fatalf("unexpected fallback: %+v", fallback)
	}
	if review.Overall != 7.5 {
		t.Fatalf("overall = %v", review.Overall)
	}
	if len(review.Categories) != 2 || review.Categories[0].Score != 8 {
		t.Fatalf("unexpected categories: %+v", review.Categories)
	}
	if review.Categories[1].Score != 6.2 {
		t.Fatalf("expected one-decimal rounding, got %v", review.Categories[1].Score)
	}
	if review.Summary != "good attempt" {
		t.Fatalf("summary = %q", review.Summary)
	}
}

func TestParseReviewRecoversWrappedObject(t *testing.T) {
	wrapped := "Here is my assessment:\n```json\n" + validReview + "\n```\nHope that helps."
	review, fallback := ParseReview(wrapped)
	if fallback != nil {
		t.Fatalf("unexpected fallback: %+v", fallback)
	}
	if review.Overall != 7.5 {
		t.Fatalf("overall = %v", review.Overall)
	}
}

func TestParseReviewHandlesBracesInsideStrings(t *testing.T) {
	tricky := `noise {"overall": 5, "summary": "braces } inside { strings \" stay"} trailing`
	review, fallback := ParseReview(tricky)
	if fallback != nil {
		t.Fatalf("unexpected fallback: %+v", fallback)
	}
	if !strings.Contains(review.Summary, "braces } inside { strings") {
		t.Fatalf("summary mangled: %q", review.Summary)
	}
}

func TestParseReviewClampsScores(t *testing.T) {
	out := `{"overall": 14.2, "summary": "x", "categories": [{"name": "a", "score": -3}]}`
	review, fallback := ParseReview(out)
	if fallback != nil {
		t.Fatalf("unexpected fallback: %+v", fallback)
	}
	if review.Overall != 10 {
		t.Fatalf("overall not clamped: %v", review.Overall)
	}
	if review.Categories[0].Score != 0 {
		t.Fatalf("negative score not clamped: %v", review.Categories[0].Score)
	}
}

func TestParseReviewFallback(t *testing.T) {
	for _, raw := range []string{
		"the candidate did fine overall",
		"{\"overall\": 5, \"summary\": ", // truncated object
		"{}",                             // empty object
	} {
		review, fallback := ParseReview(raw)
		if review != nil {
			t.Fatalf("expected fallback for %q, got review %+v", raw, review)
		}
		if fallback == nil || fallback.Raw != raw {
			t.Fatalf("fallback must carry the raw text: %+v", fallback)
		}
	}
}
