package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/models"
)

// GreetingPrompt opens the interview as soon as polling starts;
// ProgressPrompt is what the interviewer is asked on every later tick.
const (
	GreetingPrompt = "Greet the candidate and ask them to describe their approach to solving the problem so far."
	ProgressPrompt = "Ask me a question about my code progress."
)

// Asker is the slice of the orchestrator the poller drives.
type Asker interface {
	Ask(ctx context.Context, sessionID, prompt string) (*models.AskResponse, error)
}

// SessionStore reads session state and records the prompted exchange.
type SessionStore interface {
	Get(id string) (*models.Session, error)
	AppendExchange(id string, userEntry, assistantEntry models.ChatEntryInput) (*models.Session, error)
}

type pollState struct {
	cancel   context.CancelFunc
	inFlight bool
}

// Poller runs one ticker goroutine per active session, asking the
// interviewer for a progress question on each tick and appending the
// exchange to the transcript. A tick is skipped while a previous request
// is still in flight, and the loop cancels itself once the session leaves
// ACTIVE.
type Poller struct {
	asker    Asker
	sessions SessionStore
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	active map[string]*pollState
}

func New(asker Asker, sessions SessionStore, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		asker:    asker,
		sessions: sessions,
		interval: interval,
		logger:   logger,
		active:   make(map[string]*pollState),
	}
}

// Start begins polling sessionID. Starting an already-polled session is a
// no-op, so resume can call it unconditionally.
func (p *Poller) Start(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[sessionID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.active[sessionID] = &pollState{cancel: cancel}

	// The interview opens with a greeting instead of waiting a full
	// interval for the first tick.
	go func() {
		if !p.tick(ctx, sessionID, GreetingPrompt) {
			p.Stop(sessionID)
			return
		}
		p.loop(ctx, sessionID)
	}()

	p.logger.Info("polling started", zap.String("session_id", sessionID))
}

// Stop cancels polling for sessionID if it is running.
func (p *Poller) Stop(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if state, ok := p.active[sessionID]; ok {
		state.cancel()
		delete(p.active, sessionID)
		p.logger.Info("polling stopped", zap.String("session_id", sessionID))
	}
}

// StopAll cancels every loop; used at shutdown.
func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, state := range p.active {
		state.cancel()
		delete(p.active, id)
	}
}

// Polling reports whether sessionID currently has a loop.
func (p *Poller) Polling(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[sessionID]
	return ok
}

func (p *Poller) loop(ctx context.Context, sessionID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Each tick runs off the loop goroutine so a slow upstream
			// call never blocks cancellation; claim drops overlapping
			// ticks instead.
			go func() {
				if !p.tick(ctx, sessionID, ProgressPrompt) {
					p.Stop(sessionID)
				}
			}()
		}
	}
}

// tick runs one poll cycle and reports whether the loop should continue.
func (p *Poller) tick(ctx context.Context, sessionID, prompt string) bool {
	if !p.claim(sessionID) {
		return true
	}
	defer p.release(sessionID)

	session, err := p.sessions.Get(sessionID)
	if err != nil {
		p.logger.Warn("poll target gone", zap.String("session_id", sessionID), zap.Error(err))
		return false
	}
	if session.Status != models.StatusActive {
		p.logger.Info("session no longer active, cancelling poll",
			zap.String("session_id", sessionID),
			zap.String("status", string(session.Status)))
		return false
	}

	resp, err := p.asker.Ask(ctx, sessionID, prompt)
	if err != nil {
		// Transient upstream failures should not kill the loop.
		p.logger.Warn("progress ask failed", zap.String("session_id", sessionID), zap.Error(err))
		return ctx.Err() == nil
	}

	if _, err := p.sessions.AppendExchange(sessionID,
		models.ChatEntryInput{Role: string(models.RoleUser), Content: prompt},
		models.ChatEntryInput{Role: string(models.RoleAssistant), Content: resp.Answer},
	); err != nil {
		p.logger.Warn("recording progress exchange failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return true
}

// claim marks a tick in flight; a false return means the previous tick is
// still running and this one is skipped.
func (p *Poller) claim(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.active[sessionID]
	if !ok || state.inFlight {
		return false
	}
	state.inFlight = true
	return true
}

func (p *Poller) release(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if state, ok := p.active[sessionID]; ok {
		state.inFlight = false
	}
}
