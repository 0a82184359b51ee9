package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/utilities"

	logger "lingotrail-backend/pkg/logging"
)

// SessionService is the state machine over one timed attempt:
// in_progress -> completed (aggregates progress) or abandoned (no progress).
// Expiry is lazy: an in_progress session past its deadline becomes abandoned
// on the next touch.
type SessionService interface {
	OpenSession(userID, exerciseID uint) (*model.Session, error)
	// PeekSession reads the stored row without applying state transitions.
	// Cheap path for ownership checks ahead of the stateful operations.
	PeekSession(sessionID string) (*model.Session, error)
	GetSession(sessionID string) (*model.Session, *AttemptView, error)
	GetAnswers(sessionID string) ([]model.SessionAnswer, error)
	SubmitAnswer(sessionID string, itemID uint, answer string, timeSpentSeconds int) (*model.SessionAnswer, *model.Session, error)
	CompleteSession(sessionID string) (*model.Session, *model.UserProgress, error)
	AbandonSession(sessionID string) (*model.Session, error)
	SweepExpired() (int, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	stepRepo    repository.StepRepository
	catalog     CatalogService
	progress    ProgressService
	locks       *utilities.KeyedMutex
	ttl         time.Duration
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	stepRepo repository.StepRepository,
	catalog CatalogService,
	progress ProgressService,
	locks *utilities.KeyedMutex,
	ttl time.Duration,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		stepRepo:    stepRepo,
		catalog:     catalog,
		progress:    progress,
		locks:       locks,
		ttl:         ttl,
	}
}

func sessionLockKey(sessionID string) string {
	return "session:" + sessionID
}

// OpenSession creates an independent in_progress attempt. Repeated opens for
// the same (user, exercise) are retries and always allowed.
func (s *sessionService) OpenSession(userID, exerciseID uint) (*model.Session, error) {
	exercise, err := s.catalog.GetExerciseByID(exerciseID)
	if err != nil {
		return nil, err
	}
	step, err := s.stepRepo.GetStepByID(exercise.TrailStepID)
	if err != nil {
		return nil, fmt.Errorf("%w: trail step %d", ErrNotFound, exercise.TrailStepID)
	}

	now := time.Now()
	deadline := now.Add(s.ttl)
	if step.TimeLimitSeconds > 0 {
		limit := now.Add(time.Duration(step.TimeLimitSeconds) * time.Second)
		if limit.Before(deadline) {
			deadline = limit
		}
	}

	session := &model.Session{
		SessionID:      uuid.NewString(),
		UserID:         userID,
		ExerciseID:     exercise.ID,
		TrailStepID:    exercise.TrailStepID,
		TotalQuestions: len(exercise.ContentIDList()),
		Score:          0,
		Status:         model.SessionInProgress,
		CreatedAt:      now,
		ExpiresAt:      deadline,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	logger.Info("opened session %s for user %d on exercise %d (%d questions)",
		session.SessionID, userID, exerciseID, session.TotalQuestions)
	return session, nil
}

func (s *sessionService) PeekSession(sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	return session, nil
}

func (s *sessionService) GetSession(sessionID string) (*model.Session, *AttemptView, error) {
	key := sessionLockKey(sessionID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	session, err := s.loadWithLazyExpiry(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.SessionInProgress {
		return session, nil, nil
	}

	exercise, err := s.catalog.GetExerciseByID(session.ExerciseID)
	if err != nil {
		// The exercise was replaced under the live attempt. The session can
		// still be completed or abandoned, just not viewed.
		return session, nil, nil
	}
	view, err := s.catalog.BuildAttemptView(exercise)
	if err != nil {
		return nil, nil, err
	}
	return session, view, nil
}

func (s *sessionService) GetAnswers(sessionID string) ([]model.SessionAnswer, error) {
	session, err := s.sessionRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	return s.sessionRepo.GetAnswers(session.ID)
}

// SubmitAnswer grades one item and folds it into the session score. Submitting
// the same item twice overwrites: the score reflects only the latest answer.
func (s *sessionService) SubmitAnswer(sessionID string, itemID uint, answer string, timeSpentSeconds int) (*model.SessionAnswer, *model.Session, error) {
	key := sessionLockKey(sessionID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	session, err := s.loadWithLazyExpiry(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireInProgress(session); err != nil {
		return nil, nil, err
	}

	exercise, err := s.catalog.GetExerciseByID(session.ExerciseID)
	if err != nil {
		// Content edits replace the exercise row, so an attempt opened
		// against the old one stops taking answers.
		return nil, nil, fmt.Errorf("%w: session %s: its exercise was replaced",
			ErrSessionClosed, session.SessionID)
	}
	view, err := s.catalog.BuildAttemptView(exercise)
	if err != nil {
		return nil, nil, err
	}

	correct, expected, ok := view.Grade(itemID, answer)
	if !ok {
		return nil, nil, validationErrorf("item %d is not part of exercise %d", itemID, exercise.ID)
	}

	logged := &model.SessionAnswer{
		SessionID:        session.ID,
		ItemID:           itemID,
		UserAnswer:       answer,
		ExpectedAnswer:   expected.Primary,
		IsCorrect:        correct,
		TimeSpentSeconds: timeSpentSeconds,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.sessionRepo.UpsertAnswer(tx, logged); err != nil {
			return err
		}
		_, correctCount, err := s.sessionRepo.CountAnswers(tx, session.ID)
		if err != nil {
			return err
		}
		session.Score = computeScore(int(correctCount), session.TotalQuestions)
		return s.sessionRepo.Save(tx, session)
	})
	if err != nil {
		return nil, nil, err
	}
	return logged, session, nil
}

// CompleteSession finalizes the attempt and synchronously records progress in
// the same transaction: either both land or neither does.
func (s *sessionService) CompleteSession(sessionID string) (*model.Session, *model.UserProgress, error) {
	key := sessionLockKey(sessionID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	session, err := s.loadWithLazyExpiry(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireInProgress(session); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	completionTime := int(now.Sub(session.CreatedAt).Seconds())

	var progress *model.UserProgress
	err = db.Transaction(func(tx *gorm.DB) error {
		_, correctCount, err := s.sessionRepo.CountAnswers(tx, session.ID)
		if err != nil {
			return err
		}
		session.Score = computeScore(int(correctCount), session.TotalQuestions)
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		if err := s.sessionRepo.Save(tx, session); err != nil {
			return err
		}
		progress, err = s.progress.RecordCompletion(tx, session.UserID, session.TrailStepID, session.Score, completionTime)
		return err
	})
	if err != nil {
		// Roll back the in-memory transition alongside the transaction.
		session.Status = model.SessionInProgress
		session.CompletedAt = nil
		return nil, nil, err
	}

	utilities.GlobalEventBus.Publish(utilities.EventSessionCompleted, utilities.SessionCompletedEvent{
		SessionID:   session.SessionID,
		UserID:      session.UserID,
		TrailStepID: session.TrailStepID,
		Score:       session.Score,
	})
	logger.Info("session %s completed with score %d (%d attempts on step %d)",
		session.SessionID, session.Score, progress.Attempts, session.TrailStepID)
	return session, progress, nil
}

// AbandonSession is the explicit cancellation path: the attempt ends without
// touching progress.
func (s *sessionService) AbandonSession(sessionID string) (*model.Session, error) {
	key := sessionLockKey(sessionID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	session, err := s.sessionRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if session.Status != model.SessionInProgress {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionClosed, sessionID, session.Status)
	}

	if err := s.markAbandoned(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SweepExpired eagerly marks overdue in_progress sessions abandoned. Optional:
// lazy expiry alone keeps the contract; the sweep only helps reporting.
func (s *sessionService) SweepExpired() (int, error) {
	sessions, err := s.sessionRepo.ListExpiredInProgress(time.Now())
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range sessions {
		key := sessionLockKey(sessions[i].SessionID)
		s.locks.Lock(key)
		// Re-read under the lock; a racing complete may have finalized it.
		current, err := s.sessionRepo.GetBySessionID(sessions[i].SessionID)
		if err == nil && current.Status == model.SessionInProgress && !current.ExpiresAt.After(time.Now()) {
			if err := s.markAbandoned(current); err == nil {
				swept++
			}
		}
		s.locks.Unlock(key)
	}
	if swept > 0 {
		logger.Info("expiry sweep abandoned %d overdue sessions", swept)
	}
	return swept, nil
}

// loadWithLazyExpiry fetches a session and applies the passive expire
// transition: in_progress past expires_at is persisted as abandoned before
// the caller sees it. Must be called with the session lock held.
func (s *sessionService) loadWithLazyExpiry(sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if session.Status == model.SessionInProgress && !time.Now().Before(session.ExpiresAt) {
		if err := s.markAbandoned(session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *sessionService) markAbandoned(session *model.Session) error {
	session.Status = model.SessionAbandoned
	err := db.Transaction(func(tx *gorm.DB) error {
		return s.sessionRepo.Save(tx, session)
	})
	if err != nil {
		session.Status = model.SessionInProgress
		return err
	}
	utilities.GlobalEventBus.Publish(utilities.EventSessionAbandoned, session.SessionID)
	return nil
}

func requireInProgress(session *model.Session) error {
	switch session.Status {
	case model.SessionInProgress:
		return nil
	case model.SessionAbandoned:
		if !time.Now().Before(session.ExpiresAt) {
			return fmt.Errorf("%w: session %s", ErrSessionExpired, session.SessionID)
		}
		return fmt.Errorf("%w: session %s was abandoned", ErrSessionClosed, session.SessionID)
	default:
		return fmt.Errorf("%w: session %s is %s", ErrSessionClosed, session.SessionID, session.Status)
	}
}

// computeScore maps answered-correct counts onto 0-100. Integer division
// truncates partial credit; the all-correct case is exactly 100, and a
// degenerate zero-question exercise completes at 100.
func computeScore(correct, total int) int {
	if total == 0 {
		return 100
	}
	if correct >= total {
		return 100
	}
	return correct * 100 / total
}
