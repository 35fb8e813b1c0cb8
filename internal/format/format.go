package format

import (
	"strings"
	"unicode/utf8"

	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/questions"
)

// Truncated text gets this marker appended so the model can tell a message
// was cut.
const ellipsis = "…"

// ChatOptions bound the rendered transcript block.
type ChatOptions struct {
	KeepLastN    int
	CharCap      int
	PerMsgCap    int
	AllowedRoles []models.Role
}

// Chat renders the most recent transcript entries as "- ROLE: content"
// lines under a hard character cap. Lines are included newest-first until
// the next whole line would exceed CharCap, then restored to chronological
// order; a line is never split. Empty input yields an empty string.
func Chat(entries []models.ChatEntry, opts ChatOptions) string {
	if len(entries) == 0 {
		return ""
	}

	allowed := func(r models.Role) bool {
		if len(opts.AllowedRoles) == 0 {
			return true
		}
		for _, a := range opts.AllowedRoles {
			if r == a {
				return true
			}
		}
		return false
	}

	filtered := make([]models.ChatEntry, 0, len(entries))
	for _, e := range entries {
		if allowed(e.Role) {
			filtered = append(filtered, e)
		}
	}
	if opts.KeepLastN > 0 && len(filtered) > opts.KeepLastN {
		filtered = filtered[len(filtered)-opts.KeepLastN:]
	}

	lines := make([]string, 0, len(filtered))
	for _, e := range filtered {
		content := e.Content
		if opts.PerMsgCap > 0 && len(content) > opts.PerMsgCap {
			content = cut(content, opts.PerMsgCap) + ellipsis
		}
		lines = append(lines, "- "+strings.ToUpper(string(e.Role))+": "+content)
	}

	if opts.CharCap <= 0 {
		return strings.Join(lines, "\n")
	}

	// Greedy from the newest line backward; whole lines only.
	kept := make([]string, 0, len(lines))
	total := 0
	for i := len(lines) - 1; i >= 0; i-- {
		cost := len(lines[i])
		if len(kept) > 0 {
			cost++ // joining newline
		}
		if total+cost > opts.CharCap {
			break
		}
		total += cost
		kept = append(kept, lines[i])
	}

	// kept is newest-first; restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}

// Question renders the problem statement into a bounded block: title,
// difficulty, constraints, description, and up to two examples. If the
// rendered block exceeds charCap only the trailing charCap characters are
// kept.
func Question(q *questions.Question, charCap int) string {
	if q == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Question: " + q.Data.Title + "\n")
	if q.Meta.Difficulty != "" {
		b.WriteString("Difficulty: " + q.Meta.Difficulty + "\n")
	}
	if len(q.Data.Constraints) > 0 {
		b.WriteString("Constraints: " + strings.Join(q.Data.Constraints, "; ") + "\n")
	}
	if len(q.Data.Description) > 0 {
		b.WriteString(strings.Join(q.Data.Description, "\n") + "\n")
	}
	for i, ex := range q.Data.Examples {
		if i >= 2 {
			break
		}
		b.WriteString("Example: " + ex.Input + " -> " + ex.Output + "\n")
	}

	return Tail(strings.TrimRight(b.String(), "\n"), charCap)
}

// Tail returns at most the last max bytes of text, or text unchanged when
// it already fits. The cut never lands inside a multi-byte rune.
func Tail(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}
	start := len(text) - max
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}

// cut truncates s to at most max bytes without splitting a rune.
func cut(s string, max int) string {
	if max >= len(s) {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
