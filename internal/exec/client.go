package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/config"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

// UpstreamError carries the executor's status code so handlers can map it.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("executor returned %d: %s", e.Status, e.Body)
}

type executeRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
	Stdin        string `json:"stdin,omitempty"`
}

// Client runs candidate code through a JDoodle-style remote executor.
// Credentials travel in the request body, which is why they never appear
// in the public API surface.
type Client struct {
	cfg    config.ExecConfig
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.ExecConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Run executes script and returns the executor's output verbatim.
func (c *Client) Run(ctx context.Context, script, language, versionIndex, stdin string) (*models.RunCodeResponse, error) {
	body, err := json.Marshal(executeRequest{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Script:       script,
		Language:     language,
		VersionIndex: versionIndex,
		Stdin:        stdin,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/execute", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(detail)}
	}

	var out models.RunCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding execute response: %w", err)
	}

	c.logger.Debug("code executed",
		zap.String("language", language),
		zap.Int("status_code", out.StatusCode),
		zap.String("cpu_time", out.CPUTime))
	return &out, nil
}
