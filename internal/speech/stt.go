package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/config"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

// STTClient transcribes audio through a Whisper-style transcription
// endpoint.
type STTClient struct {
	cfg    config.STTConfig
	http   *http.Client
	logger *zap.Logger
}

func NewSTTClient(cfg config.STTConfig, logger *zap.Logger) *STTClient {
	return &STTClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// Transcribe uploads the audio file and returns the recognized text.
func (c *STTClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (*models.TranscriptionResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("buffering audio upload: %w", err)
	}
	if err := mw.WriteField("model", c.cfg.Model); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{Service: "stt", Status: resp.StatusCode, Body: string(detail)}
	}

	var out models.TranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	c.logger.Debug("transcription completed", zap.Int("chars", len(out.Text)))
	return &out, nil
}
