package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/speech"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

// Synthesizer and Transcriber are the vendor client surfaces.
type Synthesizer interface {
	Synthesize(ctx context.Context, sr speech.SynthesisRequest) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*models.TranscriptionResponse, error)
}

const maxAudioUpload = 25 << 20

type SpeechHandler struct {
	tts    Synthesizer
	stt    Transcriber
	logger *zap.Logger
}

func NewSpeechHandler(tts Synthesizer, stt Transcriber, logger *zap.Logger) *SpeechHandler {
	return &SpeechHandler{tts: tts, stt: stt, logger: logger}
}

// TTSHandler synthesizes speech and streams the MP3 back.
func (h *SpeechHandler) TTSHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TTSRequest](r)

	audio, err := h.tts.Synthesize(r.Context(), speech.SynthesisRequest{
		Text:         req.Text,
		VoiceID:      req.VoiceID,
		ModelID:      req.ModelID,
		Format:       req.Format,
		Latency:      req.Latency,
		PrependNotes: req.PrependNotes,
	})
	if err != nil {
		h.writeSpeechError(w, err, "Failed to synthesize speech")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// STTHandler accepts a multipart audio upload under the "file" field and
// returns the transcription.
func (h *SpeechHandler) STTHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_upload",
			Message: "Expected a multipart audio upload",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_file",
			Message: "file field is required",
		})
		return
	}
	defer file.Close()

	out, err := h.stt.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		h.writeSpeechError(w, err, "Failed to transcribe audio")
		return
	}
	utils.JSON(w, http.StatusOK, out)
}

func (h *SpeechHandler) writeSpeechError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, speech.ErrEmptyText) {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_text",
			Message: "text is required",
		})
		return
	}

	var uerr *speech.UpstreamError
	if errors.As(err, &uerr) {
		h.logger.Error("speech upstream error",
			zap.String("service", uerr.Service),
			zap.Int("status", uerr.Status))
	} else {
		h.logger.Error("speech request failed", zap.Error(err))
	}
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "speech_error",
		Message: message,
	})
}
