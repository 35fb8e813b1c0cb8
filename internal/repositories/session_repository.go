package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zhikangxie107/intr.vu/internal/models"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotCompleted = errors.New("session must be COMPLETED before deletion")
	ErrSessionCompleted    = errors.New("session is COMPLETED and no longer accepts updates")
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// CreateOrResume returns the live (ACTIVE or PAUSED) session for the pair,
// creating one if none exists. Resuming a PAUSED session flips it back to
// ACTIVE. The unique index on active_key makes the insert race-safe: two
// concurrent creates for the same pair collapse onto one row via
// ON CONFLICT DO NOTHING plus a re-read. The second return value reports
// whether a new session was created.
func (r *SessionRepository) CreateOrResume(username, questionName string) (*models.Session, bool, error) {
	key := models.ActiveKeyFor(username, questionName)

	var existing models.Session
	err := r.DB.Where("active_key = ?", key).First(&existing).Error
	if err == nil {
		session, rerr := r.reactivate(&existing)
		return session, false, rerr
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("session lookup failed: %w", err)
	}

	session := &models.Session{
		ID:           uuid.NewString(),
		Username:     username,
		QuestionName: questionName,
		Status:       models.StatusActive,
		CodeContent:  "",
		ChatLogRaw:   []byte("[]"),
		ActiveKey:    &key,
	}

	res := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "active_key"}},
		DoNothing: true,
	}).Create(session)
	if res.Error != nil {
		return nil, false, fmt.Errorf("session insert failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race; the winner's row is the session.
		if err := r.DB.Where("active_key = ?", key).First(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("session lookup after conflict failed: %w", err)
		}
		winner, rerr := r.reactivate(&existing)
		return winner, false, rerr
	}

	return session, true, nil
}

// reactivate moves a PAUSED session back to ACTIVE when it is picked up
// again, so sweeper-paused sessions resume polling and completion-by-status
// works. Any other state passes through untouched.
func (r *SessionRepository) reactivate(session *models.Session) (*models.Session, error) {
	if session.Status != models.StatusPaused {
		return session, nil
	}
	if err := r.DB.Model(session).Update("status", models.StatusActive).Error; err != nil {
		return nil, fmt.Errorf("session reactivation failed: %w", err)
	}
	session.Status = models.StatusActive
	return session, nil
}

// Get loads a session by id.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	var session models.Session
	err := r.DB.First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return &session, nil
}

// Complete marks a session COMPLETED. Completing an already-COMPLETED
// session is a no-op returning the current record. Either a session id or a
// (username, questionName) pair selects the target; for a pair, the live
// session wins over old completed rows.
func (r *SessionRepository) Complete(id, username, questionName string) (*models.Session, error) {
	var session *models.Session
	var err error

	if id != "" {
		session, err = r.Get(id)
	} else {
		session, err = r.findByPair(username, questionName)
	}
	if err != nil {
		return nil, err
	}

	if session.Status == models.StatusCompleted {
		return session, nil
	}

	session.Status = models.StatusCompleted
	session.ActiveKey = nil
	if err := r.DB.Model(session).Updates(map[string]interface{}{
		"status":     models.StatusCompleted,
		"active_key": nil,
	}).Error; err != nil {
		return nil, fmt.Errorf("session completion failed: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) findByPair(username, questionName string) (*models.Session, error) {
	key := models.ActiveKeyFor(username, questionName)

	var session models.Session
	err := r.DB.Where("active_key = ?", key).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	err = r.DB.Where("username = ? AND question_name = ?", username, questionName).
		Order("created_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return &session, nil
}

// Delete hard-deletes a COMPLETED session and returns the deleted snapshot.
// Deleting a session in any other state fails with ErrSessionNotCompleted
// and leaves the record untouched.
func (r *SessionRepository) Delete(id string) (*models.Session, error) {
	session, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusCompleted {
		return nil, ErrSessionNotCompleted
	}
	if err := r.DB.Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("session delete failed: %w", err)
	}
	return session, nil
}

// UploadCode overwrites the session's code wholesale (last write wins).
func (r *SessionRepository) UploadCode(id, code string) (*models.Session, error) {
	session, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusCompleted {
		return nil, ErrSessionCompleted
	}

	session.CodeContent = code
	if err := r.DB.Model(session).Update("code_content", code).Error; err != nil {
		return nil, fmt.Errorf("code upload failed: %w", err)
	}
	return session, nil
}

// AppendExchange appends one user/assistant pair to the transcript. Roles
// are normalized and content trimmed at this boundary, so the stored log
// always alternates user/assistant in even-length steps.
func (r *SessionRepository) AppendExchange(id string, userEntry, assistantEntry models.ChatEntryInput) (*models.Session, error) {
	session, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusCompleted {
		return nil, ErrSessionCompleted
	}

	entries, err := session.ChatLog()
	if err != nil {
		return nil, fmt.Errorf("corrupt chat log on session %s: %w", id, err)
	}

	userRole := userEntry.Role
	if userRole == "" {
		userRole = string(models.RoleUser)
	}
	assistantRole := assistantEntry.Role
	if assistantRole == "" {
		assistantRole = string(models.RoleAssistant)
	}
	entries = append(entries,
		models.NewChatEntry(userRole, userEntry.Content),
		models.NewChatEntry(assistantRole, assistantEntry.Content),
	)

	if err := session.SetChatLog(entries); err != nil {
		return nil, fmt.Errorf("chat log encoding failed: %w", err)
	}
	if err := r.DB.Model(session).Update("chat_log", session.ChatLogRaw).Error; err != nil {
		return nil, fmt.Errorf("chat append failed: %w", err)
	}
	return session, nil
}

// PauseStale flips ACTIVE sessions with no writes since the cutoff to
// PAUSED. Used by the maintenance sweeper.
func (r *SessionRepository) PauseStale(cutoff time.Time) (int64, error) {
	res := r.DB.Model(&models.Session{}).
		Where("status = ? AND updated_at <= ?", models.StatusActive, cutoff).
		Update("status", models.StatusPaused)
	if res.Error != nil {
		return 0, fmt.Errorf("stale session pause failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeCompleted removes COMPLETED sessions older than the cutoff.
func (r *SessionRepository) PurgeCompleted(cutoff time.Time) (int64, error) {
	res := r.DB.Where("status = ? AND updated_at <= ?", models.StatusCompleted, cutoff).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("completed session purge failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
