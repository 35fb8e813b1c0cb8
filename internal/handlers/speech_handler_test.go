package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/speech"
)

func ttsRoute(h *SpeechHandler) http.Handler {
	return middleware.ValidateRequest[*models.TTSRequest]()(http.HandlerFunc(h.TTSHandler))
}

func TestTTSHandler(t *testing.T) {
	var gotReq speech.SynthesisRequest
	tts := &mockSynthesizer{
		synthesizeFn: func(ctx context.Context, sr speech.SynthesisRequest) ([]byte, error) {
			gotReq = sr
			return []byte("mp3-data"), nil
		},
	}
	h := NewSpeechHandler(tts, &mockTranscriber{}, zap.NewNop())

	latency := 1
	rec := postJSON(t, ttsRoute(h), "/api/v1/speech/tts", models.TTSRequest{
		Text:         "Hello candidate",
		Latency:      &latency,
		PrependNotes: true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.String() != "mp3-data" {
		t.Fatalf("audio body not streamed")
	}
	if gotReq.Text != "Hello candidate" || !gotReq.PrependNotes || gotReq.Latency == nil || *gotReq.Latency != 1 {
		t.Fatalf("request not forwarded: %+v", gotReq)
	}
}

func TestTTSHandlerValidation(t *testing.T) {
	h := NewSpeechHandler(&mockSynthesizer{}, &mockTranscriber{}, zap.NewNop())

	rec := postJSON(t, ttsRoute(h), "/api/v1/speech/tts", models.TTSRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing text, got %d", rec.Code)
	}

	bad := 9
	rec = postJSON(t, ttsRoute(h), "/api/v1/speech/tts", models.TTSRequest{Text: "hi", Latency: &bad})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range latency, got %d", rec.Code)
	}
}

func TestTTSHandlerUpstreamFailure(t *testing.T) {
	tts := &mockSynthesizer{
		synthesizeFn: func(context.Context, speech.SynthesisRequest) ([]byte, error) {
			return nil, &speech.UpstreamError{Service: "tts", Status: http.StatusTooManyRequests}
		},
	}
	h := NewSpeechHandler(tts, &mockTranscriber{}, zap.NewNop())

	rec := postJSON(t, ttsRoute(h), "/api/v1/speech/tts", models.TTSRequest{Text: "hi"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeBody[models.ErrorResponse](t, rec); body.Code != "speech_error" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func multipartAudio(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("fake-audio"))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestSTTHandler(t *testing.T) {
	stt := &mockTranscriber{
		transcribeFn: func(ctx context.Context, filename string, audio io.Reader) (*models.TranscriptionResponse, error) {
			if filename != "answer.webm" {
				t.Errorf("unexpected filename %q", filename)
			}
			return &models.TranscriptionResponse{Text: "I would sort first"}, nil
		},
	}
	h := NewSpeechHandler(&mockSynthesizer{}, stt, zap.NewNop())

	body, contentType := multipartAudio(t, "file", "answer.webm")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech/stt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	http.HandlerFunc(h.STTHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if got := decodeBody[models.TranscriptionResponse](t, rec); got.Text != "I would sort first" {
		t.Fatalf("unexpected transcription %q", got.Text)
	}
}

func TestSTTHandlerRejectsMissingFile(t *testing.T) {
	h := NewSpeechHandler(&mockSynthesizer{}, &mockTranscriber{}, zap.NewNop())

	body, contentType := multipartAudio(t, "wrong_field", "a.webm")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech/stt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	http.HandlerFunc(h.STTHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file field, got %d", rec.Code)
	}
}
