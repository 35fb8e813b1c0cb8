package models

import (
	"encoding/json"
	"time"
)

// SessionStatus is the lifecycle state of an interview session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusPaused    SessionStatus = "PAUSED"
	StatusCompleted SessionStatus = "COMPLETED"
)

// Session represents one candidate's attempt at one interview question.
// ChatLog is stored as a JSON column; ActiveKey is set to
// username + "\x00" + questionName while the session is ACTIVE or PAUSED and
// cleared on completion, so the unique index guarantees at most one live
// session per (username, questionName) pair even under concurrent creates.
type Session struct {
	ID           string        `gorm:"primaryKey" json:"id"`
	Username     string        `gorm:"not null;index" json:"username"`
	QuestionName string        `gorm:"not null;index" json:"questionName"`
	Status       SessionStatus `gorm:"not null" json:"status"`
	CodeContent  string        `gorm:"type:text" json:"codeContent"`
	ChatLogRaw   []byte        `gorm:"column:chat_log;type:text" json:"-"`
	ActiveKey    *string       `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (Session) TableName() string { return "sessions" }

// ChatLog decodes the stored transcript. A missing or empty column decodes
// to an empty slice, never nil-panics.
func (s *Session) ChatLog() ([]ChatEntry, error) {
	if len(s.ChatLogRaw) == 0 {
		return []ChatEntry{}, nil
	}
	var entries []ChatEntry
	if err := json.Unmarshal(s.ChatLogRaw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SetChatLog encodes entries into the stored transcript column.
func (s *Session) SetChatLog(entries []ChatEntry) error {
	if entries == nil {
		entries = []ChatEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	s.ChatLogRaw = raw
	return nil
}

// MarshalJSON renders the session with its decoded chat log, matching the
// wire shape clients expect.
func (s Session) MarshalJSON() ([]byte, error) {
	entries, err := s.ChatLog()
	if err != nil {
		entries = []ChatEntry{}
	}
	type alias Session
	return json.Marshal(struct {
		alias
		ChatLog []ChatEntry `json:"chatLog"`
	}{alias(s), entries})
}

// ActiveKeyFor builds the uniqueness key guarding live sessions.
func ActiveKeyFor(username, questionName string) string {
	return username + "\x00" + questionName
}
