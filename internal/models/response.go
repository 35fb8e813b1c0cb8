package models

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}

// AskResponse carries the interviewer's reply plus usage metadata.
type AskResponse struct {
	Answer   string      `json:"answer"`
	Usage    TokenUsage  `json:"usage"`
	Metadata AskMetadata `json:"metadata"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type AskMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

// ReviewResponse wraps either a parsed review or the fallback payload.
type ReviewResponse struct {
	SessionID string          `json:"sessionId"`
	Question  string          `json:"question"`
	Review    *Review         `json:"review,omitempty"`
	Fallback  *ReviewFallback `json:"fallback,omitempty"`
	Usage     TokenUsage      `json:"usage"`
}

// TranscriptionResponse is the STT result.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// RunCodeResponse mirrors the remote executor's result fields.
type RunCodeResponse struct {
	Output     string `json:"output"`
	StatusCode int    `json:"statusCode"`
	Memory     string `json:"memory,omitempty"`
	CPUTime    string `json:"cpuTime,omitempty"`
}
