package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]Role{
		"user":       RoleUser,
		"User":       RoleUser,
		" USER ":     RoleUser,
		"assistant":  RoleAssistant,
		"interviwer": RoleAssistant,
		"system":     RoleAssistant,
		"":           RoleAssistant,
	}
	for in, want := range cases {
		if got := NormalizeRole(in); got != want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewChatEntryTrimsContent(t *testing.T) {
	entry := NewChatEntry("Interviwer", "  hello there  ")
	if entry.Role != RoleAssistant {
		t.Fatalf("expected assistant role, got %q", entry.Role)
	}
	if entry.Content != "hello there" {
		t.Fatalf("expected trimmed content, got %q", entry.Content)
	}
}

func TestSessionChatLogRoundTrip(t *testing.T) {
	s := &Session{ID: "s1", Status: StatusActive}

	entries, err := s.ChatLog()
	if err != nil {
		t.Fatalf("ChatLog on empty column: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty transcript, got %d entries", len(entries))
	}

	if err := s.SetChatLog([]ChatEntry{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}); err != nil {
		t.Fatalf("SetChatLog: %v", err)
	}

	entries, err = s.ChatLog()
	if err != nil {
		t.Fatalf("ChatLog: %v", err)
	}
	if len(entries) != 2 || entries[0].Role != RoleUser || entries[1].Content != "hello" {
		t.Fatalf("unexpected transcript: %+v", entries)
	}
}

func TestSessionMarshalIncludesChatLog(t *testing.T) {
	s := Session{ID: "s1", Username: "alice", QuestionName: "Two Sum", Status: StatusActive}
	if err := s.SetChatLog([]ChatEntry{{Role: RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("SetChatLog: %v", err)
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"chatLog":[{"role":"user","content":"hi"}]`) {
		t.Fatalf("chatLog missing from payload: %s", raw)
	}
	if strings.Contains(string(raw), "activeKey") || strings.Contains(string(raw), "ActiveKey") {
		t.Fatalf("internal active key leaked into payload: %s", raw)
	}
}

func TestRequestValidation(t *testing.T) {
	code := "print(1)"
	latencyBad := 7

	cases := []struct {
		name    string
		req     interface{ Validate() error }
		wantErr bool
	}{
		{"create ok", &CreateSessionRequest{Username: "alice", QuestionName: "Two Sum"}, false},
		{"create missing question", &CreateSessionRequest{Username: "alice"}, true},
		{"complete by id", &CompleteSessionRequest{SessionID: "s1"}, false},
		{"complete by pair", &CompleteSessionRequest{Username: "alice", QuestionName: "Two Sum"}, false},
		{"complete missing both", &CompleteSessionRequest{Username: "alice"}, true},
		{"upload ok", &UploadCodeRequest{SessionID: "s1", CodeContent: &code}, false},
		{"upload nil code", &UploadCodeRequest{SessionID: "s1"}, true},
		{"append ok", &AppendChatRequest{SessionID: "s1", Prompt: &ChatEntryInput{Role: "user", Content: "hi"}, Response: &ChatEntryInput{Role: "interviwer", Content: "hello"}}, false},
		{"append missing response", &AppendChatRequest{SessionID: "s1", Prompt: &ChatEntryInput{Content: "hi"}}, true},
		{"ask ok", &AskRequest{SessionID: "s1", Prompt: "how?"}, false},
		{"ask blank prompt", &AskRequest{SessionID: "s1", Prompt: "   "}, true},
		{"review ok", &ReviewRequest{SessionID: "s1"}, false},
		{"review empty category", &ReviewRequest{SessionID: "s1", Categories: []string{" "}}, true},
		{"tts ok", &TTSRequest{Text: "hello"}, false},
		{"tts bad latency", &TTSRequest{Text: "hello", Latency: &latencyBad}, true},
		{"run ok", &RunCodeRequest{Script: "print(1)", Language: "python3"}, false},
		{"run missing language", &RunCodeRequest{Script: "print(1)"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
