package repository

import (
	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
)

type ProgressRepository interface {
	GetByUserAndStep(tx *gorm.DB, userID, trailStepID uint) (*model.UserProgress, error)
	Create(tx *gorm.DB, progress *model.UserProgress) error
	Save(tx *gorm.DB, progress *model.UserProgress) error
	GetByUser(userID uint) ([]model.UserProgress, error)
	GetByUserAndCategory(userID, categoryID uint) ([]model.UserProgress, error)
	DeleteByTrailStep(tx *gorm.DB, trailStepID uint) error
}

type progressRepository struct{}

func NewProgressRepository() ProgressRepository {
	return &progressRepository{}
}

func (r *progressRepository) GetByUserAndStep(tx *gorm.DB, userID, trailStepID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := tx.Where("user_id = ? AND trail_step_id = ?", userID, trailStepID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) Create(tx *gorm.DB, progress *model.UserProgress) error {
	return tx.Create(progress).Error
}

func (r *progressRepository) Save(tx *gorm.DB, progress *model.UserProgress) error {
	return tx.Save(progress).Error
}

func (r *progressRepository) GetByUser(userID uint) ([]model.UserProgress, error) {
	var progress []model.UserProgress
	err := db.GetDB().Where("user_id = ?", userID).
		Order("trail_step_id asc").Find(&progress).Error
	return progress, err
}

func (r *progressRepository) GetByUserAndCategory(userID, categoryID uint) ([]model.UserProgress, error) {
	var progress []model.UserProgress
	err := db.GetDB().
		Joins("JOIN trail_steps ON trail_steps.id = user_progresses.trail_step_id").
		Where("user_progresses.user_id = ? AND trail_steps.category_id = ?", userID, categoryID).
		Order("trail_steps.step_number asc").
		Find(&progress).Error
	return progress, err
}

func (r *progressRepository) DeleteByTrailStep(tx *gorm.DB, trailStepID uint) error {
	return tx.Where("trail_step_id = ?", trailStepID).Delete(&model.UserProgress{}).Error
}
