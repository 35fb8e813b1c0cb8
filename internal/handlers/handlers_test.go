package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/repositories"
	"github.com/zhikangxie107/intr.vu/internal/speech"
	"github.com/zhikangxie107/intr.vu/internal/testhelpers"
)

// recorderDriver records which sessions the handlers started and stopped
// polling for.
type recorderDriver struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (d *recorderDriver) Start(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = append(d.started, id)
}

func (d *recorderDriver) Stop(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = append(d.stopped, id)
}

type mockInterviewer struct {
	askFn    func(ctx context.Context, sessionID, prompt string) (*models.AskResponse, error)
	reviewFn func(ctx context.Context, sessionID string, categories []string) (*models.ReviewResponse, error)
}

func (m *mockInterviewer) Ask(ctx context.Context, sessionID, prompt string) (*models.AskResponse, error) {
	if m.askFn == nil {
		return &models.AskResponse{Answer: "mock answer"}, nil
	}
	return m.askFn(ctx, sessionID, prompt)
}

func (m *mockInterviewer) Review(ctx context.Context, sessionID string, categories []string) (*models.ReviewResponse, error) {
	if m.reviewFn == nil {
		return &models.ReviewResponse{SessionID: sessionID}, nil
	}
	return m.reviewFn(ctx, sessionID, categories)
}

type mockSynthesizer struct {
	synthesizeFn func(ctx context.Context, sr speech.SynthesisRequest) ([]byte, error)
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, sr speech.SynthesisRequest) ([]byte, error) {
	if m.synthesizeFn == nil {
		return []byte("audio"), nil
	}
	return m.synthesizeFn(ctx, sr)
}

type mockTranscriber struct {
	transcribeFn func(ctx context.Context, filename string, audio io.Reader) (*models.TranscriptionResponse, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (*models.TranscriptionResponse, error) {
	if m.transcribeFn == nil {
		return &models.TranscriptionResponse{Text: "mock text"}, nil
	}
	return m.transcribeFn(ctx, filename, audio)
}

type mockRunner struct {
	runFn func(ctx context.Context, script, language, versionIndex, stdin string) (*models.RunCodeResponse, error)
}

func (m *mockRunner) Run(ctx context.Context, script, language, versionIndex, stdin string) (*models.RunCodeResponse, error) {
	if m.runFn == nil {
		return &models.RunCodeResponse{Output: "ok", StatusCode: 200}, nil
	}
	return m.runFn(ctx, script, language, versionIndex, stdin)
}

func newSessionFixture(t *testing.T) (*SessionHandler, *repositories.SessionRepository, *recorderDriver) {
	t.Helper()
	repo := repositories.NewSessionRepository(testhelpers.SetupTestDB(t))
	driver := &recorderDriver{}
	return NewSessionHandler(repo, driver, zap.NewNop()), repo, driver
}

// sessionRouter wires the session handler exactly the way the real routes
// do, so URL params resolve in tests.
func sessionRouter(h *SessionHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/api/v1/session/{id}", h.GetHandler)
	router.Delete("/api/v1/session/{id}", h.DeleteHandler)
	return router
}

func postJSON(t *testing.T, handler http.Handler, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}
