package models

import "strings"

// ChatEntryInput is a raw transcript turn as supplied by clients, before
// role normalization.
type ChatEntryInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CreateSessionRequest struct {
	Username     string `json:"username"`
	QuestionName string `json:"questionName"`
}

func (r *CreateSessionRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.QuestionName) == "" {
		return &ErrorResponse{
			Code:    "missing_fields",
			Message: "username and questionName are required",
		}
	}
	return nil
}

// CompleteSessionRequest accepts either a session id or a
// (username, questionName) pair.
type CompleteSessionRequest struct {
	SessionID    string `json:"sessionId"`
	Username     string `json:"username"`
	QuestionName string `json:"questionName"`
}

func (r *CompleteSessionRequest) Validate() error {
	if r.SessionID == "" && (r.Username == "" || r.QuestionName == "") {
		return &ErrorResponse{
			Code:    "missing_fields",
			Message: "provide sessionId or (username and questionName)",
		}
	}
	return nil
}

type UploadCodeRequest struct {
	SessionID   string  `json:"sessionId"`
	CodeContent *string `json:"codeContent"`
}

func (r *UploadCodeRequest) Validate() error {
	if r.SessionID == "" || r.CodeContent == nil {
		return &ErrorResponse{
			Code:    "missing_fields",
			Message: "sessionId and codeContent are required",
		}
	}
	return nil
}

type AppendChatRequest struct {
	SessionID string          `json:"sessionId"`
	Prompt    *ChatEntryInput `json:"prompt"`
	Response  *ChatEntryInput `json:"response"`
}

func (r *AppendChatRequest) Validate() error {
	if r.SessionID == "" || r.Prompt == nil || r.Response == nil {
		return &ErrorResponse{
			Code:    "missing_fields",
			Message: "sessionId, prompt, and response are required",
		}
	}
	if strings.TrimSpace(r.Prompt.Content) == "" || strings.TrimSpace(r.Response.Content) == "" {
		return &ErrorResponse{
			Code:    "empty_content",
			Message: "prompt and response content must not be empty",
		}
	}
	return nil
}

type AskRequest struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

func (r *AskRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "sessionId is required"}
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return &ErrorResponse{Code: "missing_prompt", Message: "prompt is required"}
	}
	return nil
}

type ReviewRequest struct {
	SessionID  string   `json:"sessionId"`
	Categories []string `json:"categories,omitempty"`
}

func (r *ReviewRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "sessionId is required"}
	}
	for _, c := range r.Categories {
		if strings.TrimSpace(c) == "" {
			return &ErrorResponse{Code: "empty_category", Message: "categories must not contain empty names"}
		}
	}
	return nil
}

type TTSRequest struct {
	Text         string `json:"text"`
	VoiceID      string `json:"voiceId,omitempty"`
	ModelID      string `json:"modelId,omitempty"`
	Format       string `json:"format,omitempty"`
	Latency      *int   `json:"latency,omitempty"`
	PrependNotes bool   `json:"prependNotes,omitempty"`
}

func (r *TTSRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ErrorResponse{Code: "missing_text", Message: "text is required"}
	}
	if r.Latency != nil && (*r.Latency < 0 || *r.Latency > 4) {
		return &ErrorResponse{Code: "invalid_latency", Message: "latency must be between 0 and 4"}
	}
	return nil
}

type RunCodeRequest struct {
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
	Stdin        string `json:"stdin,omitempty"`
}

func (r *RunCodeRequest) Validate() error {
	if r.Script == "" {
		return &ErrorResponse{Code: "missing_script", Message: "script is required"}
	}
	if r.Language == "" {
		return &ErrorResponse{Code: "missing_language", Message: "language is required"}
	}
	return nil
}
