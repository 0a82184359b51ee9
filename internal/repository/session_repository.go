package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
)

type SessionRepository interface {
	Create(session *model.Session) error
	GetBySessionID(sessionID string) (*model.Session, error)
	Save(tx *gorm.DB, session *model.Session) error
	UpsertAnswer(tx *gorm.DB, answer *model.SessionAnswer) error
	GetAnswers(sessionID uint) ([]model.SessionAnswer, error)
	CountAnswers(tx *gorm.DB, sessionID uint) (total int64, correct int64, err error)
	ListExpiredInProgress(now time.Time) ([]model.Session, error)
	DeleteByTrailStep(tx *gorm.DB, trailStepID uint) error
}

type sessionRepository struct{}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) Create(session *model.Session) error {
	return db.GetDB().Create(session).Error
}

func (r *sessionRepository) GetBySessionID(sessionID string) (*model.Session, error) {
	var session model.Session
	err := db.GetDB().Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, errors.New("session not found")
	}
	return &session, nil
}

func (r *sessionRepository) Save(tx *gorm.DB, session *model.Session) error {
	return tx.Save(session).Error
}

// UpsertAnswer records one submitted answer, overwriting any earlier answer
// for the same item so resubmission never double-counts.
func (r *sessionRepository) UpsertAnswer(tx *gorm.DB, answer *model.SessionAnswer) error {
	var existing model.SessionAnswer
	err := tx.Where("session_id = ? AND item_id = ?", answer.SessionID, answer.ItemID).
		First(&existing).Error
	if err == nil {
		existing.UserAnswer = answer.UserAnswer
		existing.ExpectedAnswer = answer.ExpectedAnswer
		existing.IsCorrect = answer.IsCorrect
		existing.TimeSpentSeconds = answer.TimeSpentSeconds
		*answer = existing
		return tx.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(answer).Error
}

func (r *sessionRepository) GetAnswers(sessionID uint) ([]model.SessionAnswer, error) {
	var answers []model.SessionAnswer
	err := db.GetDB().Where("session_id = ?", sessionID).
		Order("item_id asc").Find(&answers).Error
	return answers, err
}

func (r *sessionRepository) CountAnswers(tx *gorm.DB, sessionID uint) (int64, int64, error) {
	var total, correct int64
	if err := tx.Model(&model.SessionAnswer{}).
		Where("session_id = ?", sessionID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := tx.Model(&model.SessionAnswer{}).
		Where("session_id = ? AND is_correct = ?", sessionID, true).
		Count(&correct).Error; err != nil {
		return 0, 0, err
	}
	return total, correct, nil
}

func (r *sessionRepository) ListExpiredInProgress(now time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := db.GetDB().
		Where("status = ? AND expires_at <= ?", model.SessionInProgress, now).
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) DeleteByTrailStep(tx *gorm.DB, trailStepID uint) error {
	var sessions []model.Session
	if err := tx.Where("trail_step_id = ?", trailStepID).Find(&sessions).Error; err != nil {
		return err
	}
	for i := range sessions {
		if err := tx.Where("session_id = ?", sessions[i].ID).
			Delete(&model.SessionAnswer{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("trail_step_id = ?", trailStepID).Delete(&model.Session{}).Error
}
