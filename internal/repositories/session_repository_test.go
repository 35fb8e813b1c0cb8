package repositories

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/testhelpers"
)

func newRepo(t *testing.T) *SessionRepository {
	t.Helper()
	return NewSessionRepository(testhelpers.SetupTestDB(t))
}

func TestCreateOrResume(t *testing.T) {
	repo := newRepo(t)

	s, created, err := repo.CreateOrResume("alice", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}
	if !created {
		t.Fatalf("expected a new session")
	}
	if s.Status != models.StatusActive {
		t.Fatalf("expected ACTIVE, got %s", s.Status)
	}
	if s.CodeContent != "" {
		t.Fatalf("expected empty code")
	}
	entries, err := s.ChatLog()
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty transcript, got %v (%v)", entries, err)
	}

	t.Run("resume returns same session", func(t *testing.T) {
		again, created, err := repo.CreateOrResume("alice", "Two Sum")
		if err != nil {
			t.Fatalf("CreateOrResume: %v", err)
		}
		if created {
			t.Fatalf("expected resume, not create")
		}
		if again.ID != s.ID {
			t.Fatalf("expected id %s, got %s", s.ID, again.ID)
		}
	})

	t.Run("different question gets its own session", func(t *testing.T) {
		other, created, err := repo.CreateOrResume("alice", "Valid Parentheses")
		if err != nil {
			t.Fatalf("CreateOrResume: %v", err)
		}
		if !created || other.ID == s.ID {
			t.Fatalf("expected a distinct session")
		}
	})

	t.Run("completion frees the pair", func(t *testing.T) {
		if _, err := repo.Complete(s.ID, "", ""); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		fresh, created, err := repo.CreateOrResume("alice", "Two Sum")
		if err != nil {
			t.Fatalf("CreateOrResume after completion: %v", err)
		}
		if !created || fresh.ID == s.ID {
			t.Fatalf("expected a brand-new session after completion")
		}
	})
}

func TestCompleteIsIdempotent(t *testing.T) {
	repo := newRepo(t)
	s, _, err := repo.CreateOrResume("bob", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}

	first, err := repo.Complete(s.ID, "", "")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if first.Status != models.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", first.Status)
	}

	second, err := repo.Complete(s.ID, "", "")
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if second.ID != first.ID || second.Status != models.StatusCompleted {
		t.Fatalf("expected the same COMPLETED record, got %+v", second)
	}
}

func TestCompleteByPair(t *testing.T) {
	repo := newRepo(t)
	s, _, err := repo.CreateOrResume("carol", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}

	done, err := repo.Complete("", "carol", "Two Sum")
	if err != nil {
		t.Fatalf("Complete by pair: %v", err)
	}
	if done.ID != s.ID || done.Status != models.StatusCompleted {
		t.Fatalf("unexpected result: %+v", done)
	}

	if _, err := repo.Complete("", "carol", "No Such Question"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteRequiresCompletion(t *testing.T) {
	repo := newRepo(t)
	s, _, err := repo.CreateOrResume("dan", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}

	if _, err := repo.Delete(s.ID); !errors.Is(err, ErrSessionNotCompleted) {
		t.Fatalf("expected ErrSessionNotCompleted, got %v", err)
	}
	// record untouched
	if got, err := repo.Get(s.ID); err != nil || got.Status != models.StatusActive {
		t.Fatalf("record changed by rejected delete: %+v (%v)", got, err)
	}

	if _, err := repo.Complete(s.ID, "", ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	deleted, err := repo.Delete(s.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != s.ID {
		t.Fatalf("expected deleted snapshot of %s, got %s", s.ID, deleted.ID)
	}
	if _, err := repo.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestUploadCodeRoundTrip(t *testing.T) {
	repo := newRepo(t)
	s, _, err := repo.CreateOrResume("erin", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}

	code := "def two_sum(nums, target):\n    return []\n"
	if _, err := repo.UploadCode(s.ID, code); err != nil {
		t.Fatalf("UploadCode: %v", err)
	}

	got, err := repo.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CodeContent != code {
		t.Fatalf("code round trip failed: %q", got.CodeContent)
	}

	t.Run("rejected after completion", func(t *testing.T) {
		if _, err := repo.Complete(s.ID, "", ""); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if _, err := repo.UploadCode(s.ID, "x"); !errors.Is(err, ErrSessionCompleted) {
			t.Fatalf("expected ErrSessionCompleted, got %v", err)
		}
	})
}

func TestAppendExchange(t *testing.T) {
	repo := newRepo(t)
	s, _, err := repo.CreateOrResume("frank", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}

	updated, err := repo.AppendExchange(s.ID,
		models.ChatEntryInput{Role: "user", Content: "hi"},
		models.ChatEntryInput{Role: "interviwer", Content: "hello"},
	)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	entries, err := updated.ChatLog()
	if err != nil {
		t.Fatalf("ChatLog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected transcript length 2, got %d", len(entries))
	}
	if entries[0].Role != models.RoleUser || entries[0].Content != "hi" {
		t.Fatalf("unexpected user entry: %+v", entries[0])
	}
	if entries[1].Role != models.RoleAssistant || entries[1].Content != "hello" {
		t.Fatalf("role typo not normalized: %+v", entries[1])
	}

	t.Run("always grows by two", func(t *testing.T) {
		updated, err := repo.AppendExchange(s.ID,
			models.ChatEntryInput{Content: "  second question  "},
			models.ChatEntryInput{Role: "ASSISTANT", Content: "answer"},
		)
		if err != nil {
			t.Fatalf("AppendExchange: %v", err)
		}
		entries, _ := updated.ChatLog()
		if len(entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(entries))
		}
		if entries[2].Role != models.RoleUser || entries[2].Content != "second question" {
			t.Fatalf("default role/trim not applied: %+v", entries[2])
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.AppendExchange("nope",
			models.ChatEntryInput{Content: "hi"}, models.ChatEntryInput{Content: "yo"})
		if !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestMaintenanceSweeps(t *testing.T) {
	repo := newRepo(t)

	active, _, err := repo.CreateOrResume("gail", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}
	done, _, err := repo.CreateOrResume("gail", "Valid Parentheses")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}
	if _, err := repo.Complete(done.ID, "", ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	paused, err := repo.PauseStale(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PauseStale: %v", err)
	}
	if paused != 1 {
		t.Fatalf("expected 1 paused session, got %d", paused)
	}
	if got, _ := repo.Get(active.ID); got.Status != models.StatusPaused {
		t.Fatalf("expected PAUSED, got %s", got.Status)
	}

	purged, err := repo.PurgeCompleted(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PurgeCompleted: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged session, got %d", purged)
	}
	if _, err := repo.Get(done.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected completed session purged, got %v", err)
	}
}

func TestResumeReactivatesPausedSession(t *testing.T) {
	repo := newRepo(t)

	s, _, err := repo.CreateOrResume("hana", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}

	if _, err := repo.PauseStale(time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("PauseStale: %v", err)
	}
	if got, _ := repo.Get(s.ID); got.Status != models.StatusPaused {
		t.Fatalf("expected PAUSED, got %s", got.Status)
	}

	resumed, created, err := repo.CreateOrResume("hana", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}
	if created {
		t.Fatalf("expected resume, not create")
	}
	if resumed.ID != s.ID {
		t.Fatalf("expected id %s, got %s", s.ID, resumed.ID)
	}
	if resumed.Status != models.StatusActive {
		t.Fatalf("resume must reactivate, got %s", resumed.Status)
	}

	// Persisted, not just the returned struct.
	if got, _ := repo.Get(s.ID); got.Status != models.StatusActive {
		t.Fatalf("reactivation not stored, got %s", got.Status)
	}
}

// TestCreateOrResumeLostRace drives the conflict branch deterministically:
// a create callback inserts a competing row for the same pair after
// CreateOrResume's lookup misses but before its own insert, so the insert
// hits ON CONFLICT DO NOTHING and the re-read must return the winner.
func TestCreateOrResumeLostRace(t *testing.T) {
	repo := newRepo(t)
	key := models.ActiveKeyFor("ivan", "Two Sum")

	injected := false
	err := repo.DB.Callback().Create().Before("gorm:create").Register("competing_create", func(tx *gorm.DB) {
		if injected {
			return
		}
		injected = true
		winner := models.Session{
			ID:           "winner-id",
			Username:     "ivan",
			QuestionName: "Two Sum",
			Status:       models.StatusActive,
			ChatLogRaw:   []byte("[]"),
			ActiveKey:    &key,
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&winner).Error; err != nil {
			t.Errorf("injecting competing session: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("registering callback: %v", err)
	}

	s, created, err := repo.CreateOrResume("ivan", "Two Sum")
	if err != nil {
		t.Fatalf("CreateOrResume: %v", err)
	}
	if created {
		t.Fatalf("losing the race must report resume, not create")
	}
	if s.ID != "winner-id" {
		t.Fatalf("expected the winner's session, got %s", s.ID)
	}

	var count int64
	if err := repo.DB.Model(&models.Session{}).Where("active_key = ?", key).Count(&count).Error; err != nil {
		t.Fatalf("counting sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single live session for the pair, got %d", count)
	}
}
