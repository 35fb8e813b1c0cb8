package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/zhikangxie107/intr.vu/internal/llm"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

// Client is a Gemini chat-completion backend.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Generate runs one chat-completion request.
func (c *Client) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	startTime := time.Now()

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	genCfg := &genai.GenerateContentConfig{
		StopSequences: req.StopSequences,
	}
	if req.System != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = genai.Ptr(int64(req.MaxOutputTokens))
	}
	if req.JSONOutput {
		genCfg.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, genCfg)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate completion",
			Err:      err,
		}
	}
	if result == nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	resp := &llm.Response{
		Text:           text,
		Model:          c.config.Model,
		ProcessingTime: int(time.Since(startTime).Milliseconds()),
	}
	if usage := result.UsageMetadata; usage != nil {
		resp.Usage = models.TokenUsage{
			TotalTokens: int(usage.TotalTokenCount),
		}
		if usage.PromptTokenCount != nil {
			resp.Usage.PromptTokens = int(*usage.PromptTokenCount)
		}
		if usage.CandidatesTokenCount != nil {
			resp.Usage.CompletionTokens = int(*usage.CandidatesTokenCount)
		}
	}
	return resp, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}
