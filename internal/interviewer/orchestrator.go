package interviewer

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/format"
	"github.com/zhikangxie107/intr.vu/internal/llm"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/prompts"
	"github.com/zhikangxie107/intr.vu/internal/questions"
)

var ErrEmptyPrompt = errors.New("prompt must not be empty")

// SessionStore is the read surface the orchestrator needs. Asking never
// writes: callers record the exchange themselves afterwards, which lets the
// periodic progress prompts skip recording if they want to.
type SessionStore interface {
	Get(id string) (*models.Session, error)
}

// ContextCaps bound the assembled context block.
type ContextCaps struct {
	ChatKeepLastN int
	ChatCharCap   int
	ChatPerMsgCap int
	QuestionCap   int
	CodeCap       int
}

// DefaultAskCaps keeps ask latency low; the model only needs the recent
// exchange window.
var DefaultAskCaps = ContextCaps{
	ChatKeepLastN: 12,
	ChatCharCap:   4000,
	ChatPerMsgCap: 400,
	QuestionCap:   1800,
	CodeCap:       6000,
}

// DefaultReviewCaps are wider: grading wants the whole arc of the session.
var DefaultReviewCaps = ContextCaps{
	ChatKeepLastN: 40,
	ChatCharCap:   12000,
	ChatPerMsgCap: 700,
	QuestionCap:   2400,
	CodeCap:       16000,
}

// Orchestrator assembles bounded context blocks and drives the LLM for the
// ask and review flows.
type Orchestrator struct {
	sessions SessionStore
	catalog  *questions.Catalog
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger

	askCaps    ContextCaps
	reviewCaps ContextCaps

	temperature     float64
	maxOutputTokens int
}

type Option func(*Orchestrator)

func WithAskCaps(caps ContextCaps) Option {
	return func(o *Orchestrator) { o.askCaps = caps }
}

func WithReviewCaps(caps ContextCaps) Option {
	return func(o *Orchestrator) { o.reviewCaps = caps }
}

func WithSampling(temperature float64, maxOutputTokens int) Option {
	return func(o *Orchestrator) {
		o.temperature = temperature
		o.maxOutputTokens = maxOutputTokens
	}
}

func NewOrchestrator(sessions SessionStore, catalog *questions.Catalog, provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions:        sessions,
		catalog:         catalog,
		provider:        provider,
		prompts:         pm,
		logger:          logger,
		askCaps:         DefaultAskCaps,
		reviewCaps:      DefaultReviewCaps,
		temperature:     0.2,
		maxOutputTokens: 120,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ask sends one context-assembled completion request and returns the
// interviewer's reply. It does not touch the transcript.
func (o *Orchestrator) Ask(ctx context.Context, sessionID, prompt string) (*models.AskResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	session, question, entries, err := o.loadContext(sessionID)
	if err != nil {
		return nil, err
	}

	rendered, err := o.prompts.BuildPrompt("interviewer", "default", map[string]string{
		"Question": format.Question(question, o.askCaps.QuestionCap),
		"Chat":     format.Chat(entries, o.chatOptions(o.askCaps)),
		"Code":     format.Tail(session.CodeContent, o.askCaps.CodeCap),
		"Prompt":   prompt,
	})
	if err != nil {
		return nil, err
	}
	system, err := o.prompts.System("interviewer")
	if err != nil {
		return nil, err
	}

	resp, err := o.provider.Generate(ctx, &llm.Request{
		System:          system,
		Messages:        []llm.Message{{Role: models.RoleUser, Content: rendered}},
		Temperature:     o.temperature,
		MaxOutputTokens: o.maxOutputTokens,
		StopSequences:   []string{"\n\n"},
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("ask completed",
		zap.String("session_id", sessionID),
		zap.String("provider", o.provider.GetProviderName()),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("processing_time_ms", resp.ProcessingTime))

	return &models.AskResponse{
		Answer: strings.TrimSpace(resp.Text),
		Usage:  resp.Usage,
		Metadata: models.AskMetadata{
			ProcessingTime: resp.ProcessingTime,
			Provider:       o.provider.GetProviderName(),
			Model:          resp.Model,
		},
	}, nil
}

// Review grades the session against the rubric. Parsing is strict first,
// then a balanced-object scan of the raw text; if both fail the response
// carries a fallback payload instead of an error.
func (o *Orchestrator) Review(ctx context.Context, sessionID string, categories []string) (*models.ReviewResponse, error) {
	if len(categories) == 0 {
		categories = models.DefaultReviewCategories
	}

	session, question, entries, err := o.loadContext(sessionID)
	if err != nil {
		return nil, err
	}

	rendered, err := o.prompts.BuildPrompt("review", "default", map[string]string{
		"Categories": strings.Join(categories, ", "),
		"Question":   format.Question(question, o.reviewCaps.QuestionCap),
		"Chat":       format.Chat(entries, o.chatOptions(o.reviewCaps)),
		"Code":       format.Tail(session.CodeContent, o.reviewCaps.CodeCap),
	})
	if err != nil {
		return nil, err
	}
	system, err := o.prompts.System("review")
	if err != nil {
		return nil, err
	}

	resp, err := o.provider.Generate(ctx, &llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: models.RoleUser, Content: rendered}},
		Temperature: o.temperature,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, err
	}

	result := &models.ReviewResponse{
		SessionID: sessionID,
		Question:  session.QuestionName,
		Usage:     resp.Usage,
	}

	review, fallback := ParseReview(resp.Text)
	if fallback != nil {
		o.logger.Warn("review output did not parse",
			zap.String("session_id", sessionID),
			zap.String("error", fallback.Error))
		result.Fallback = fallback
		return result, nil
	}
	result.Review = review
	return result, nil
}

func (o *Orchestrator) loadContext(sessionID string) (*models.Session, *questions.Question, []models.ChatEntry, error) {
	session, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	question, err := o.catalog.Get(session.QuestionName)
	if err != nil {
		return nil, nil, nil, err
	}
	entries, err := session.ChatLog()
	if err != nil {
		// A corrupt transcript should not block asking; proceed without it.
		o.logger.Warn("discarding corrupt chat log", zap.String("session_id", sessionID), zap.Error(err))
		entries = nil
	}
	return session, question, entries, nil
}

func (o *Orchestrator) chatOptions(caps ContextCaps) format.ChatOptions {
	return format.ChatOptions{
		KeepLastN:    caps.ChatKeepLastN,
		CharCap:      caps.ChatCharCap,
		PerMsgCap:    caps.ChatPerMsgCap,
		AllowedRoles: []models.Role{models.RoleUser, models.RoleAssistant},
	}
}
