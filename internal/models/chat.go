package models

import "strings"

// Role is a normalized chat participant label.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// NormalizeRole collapses arbitrary role strings to the two roles the
// transcript supports. Anything that is not "user" (case-insensitive) is an
// assistant turn; this also absorbs client labels like "interviwer".
func NormalizeRole(raw string) Role {
	if strings.ToLower(strings.TrimSpace(raw)) == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// ChatEntry is a single transcript turn.
type ChatEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewChatEntry normalizes the role and trims content at the ingestion
// boundary so downstream formatting never re-normalizes.
func NewChatEntry(role, content string) ChatEntry {
	return ChatEntry{
		Role:    NormalizeRole(role),
		Content: strings.TrimSpace(content),
	}
}
