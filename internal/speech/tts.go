package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/config"
)

var ErrEmptyText = errors.New("text must not be empty")

// UpstreamError carries the vendor's status code so handlers can
// distinguish quota and auth failures from our own.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream returned %d: %s", e.Service, e.Status, e.Body)
}

// SynthesisRequest is one TTS call. Zero-valued fields fall back to the
// configured defaults.
type SynthesisRequest struct {
	Text         string
	VoiceID      string
	ModelID      string
	Format       string
	Latency      *int
	PrependNotes bool
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// TTSClient synthesizes speech through an ElevenLabs-style streaming
// endpoint. Synthesized audio is cached in Redis keyed by voice, model,
// format and text, so repeated interviewer lines do not burn quota.
type TTSClient struct {
	cfg    config.TTSConfig
	http   *http.Client
	cache  *redis.Client
	logger *zap.Logger
}

// NewTTSClient builds a client; cache may be nil to disable caching.
func NewTTSClient(cfg config.TTSConfig, cache *redis.Client, logger *zap.Logger) *TTSClient {
	return &TTSClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		cache:  cache,
		logger: logger,
	}
}

// Synthesize returns MP3 audio for the request.
func (c *TTSClient) Synthesize(ctx context.Context, sr SynthesisRequest) ([]byte, error) {
	if sr.Text == "" {
		return nil, ErrEmptyText
	}

	voiceID := defaultStr(sr.VoiceID, c.cfg.VoiceID)
	modelID := defaultStr(sr.ModelID, c.cfg.ModelID)
	format := defaultStr(sr.Format, c.cfg.OutputFormat)
	latency := c.cfg.Latency
	if sr.Latency != nil {
		latency = *sr.Latency
	}

	spoken := sr.Text
	if sr.PrependNotes && c.cfg.Notes != "" {
		spoken = c.cfg.Notes + " " + sr.Text
	}

	key := cacheKey(voiceID, modelID, format, spoken)
	if c.cache != nil {
		if audio, err := c.cache.Get(ctx, key).Bytes(); err == nil {
			c.logger.Debug("tts cache hit", zap.String("key", key))
			return audio, nil
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("tts cache read failed", zap.Error(err))
		}
	}

	body, err := json.Marshal(ttsRequest{
		Text:    spoken,
		ModelID: modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.4,
			SimilarityBoost: 0.7,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", c.cfg.BaseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("optimize_streaming_latency", strconv.Itoa(latency))
	q.Set("output_format", format)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{Service: "tts", Status: resp.StatusCode, Body: string(detail)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tts audio: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, audio, c.cfg.CacheTTL).Err(); err != nil {
			c.logger.Warn("tts cache write failed", zap.Error(err))
		}
	}
	return audio, nil
}

func cacheKey(voiceID, modelID, format, spoken string) string {
	h := sha256.Sum256([]byte(voiceID + "|" + modelID + "|" + format + "|" + spoken))
	return "tts:" + hex.EncodeToString(h[:])
}

func defaultStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
