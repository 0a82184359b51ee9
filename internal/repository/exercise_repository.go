package repository

import (
	"errors"

	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
)

type ExerciseRepository interface {
	GetByTrailStep(trailStepID uint) (*model.Exercise, error)
	GetByID(id uint) (*model.Exercise, error)
	Create(tx *gorm.DB, exercise *model.Exercise) error
	DeleteByTrailStep(tx *gorm.DB, trailStepID uint) error
	// ReplaceForStep deletes the step's current exercise and attaches a new
	// one in a single transaction. Content id lists are immutable under a
	// live step, so edits go through here rather than updates in place.
	ReplaceForStep(tx *gorm.DB, trailStepID uint, exercise *model.Exercise) error
}

type exerciseRepository struct{}

func NewExerciseRepository() ExerciseRepository {
	return &exerciseRepository{}
}

func (r *exerciseRepository) GetByTrailStep(trailStepID uint) (*model.Exercise, error) {
	var exercise model.Exercise
	err := db.GetDB().Where("trail_step_id = ?", trailStepID).First(&exercise).Error
	if err != nil {
		return nil, errors.New("exercise not found")
	}
	return &exercise, nil
}

func (r *exerciseRepository) GetByID(id uint) (*model.Exercise, error) {
	var exercise model.Exercise
	err := db.GetDB().Where("id = ?", id).First(&exercise).Error
	if err != nil {
		return nil, errors.New("exercise not found")
	}
	return &exercise, nil
}

func (r *exerciseRepository) Create(tx *gorm.DB, exercise *model.Exercise) error {
	return tx.Create(exercise).Error
}

func (r *exerciseRepository) DeleteByTrailStep(tx *gorm.DB, trailStepID uint) error {
	return tx.Where("trail_step_id = ?", trailStepID).Delete(&model.Exercise{}).Error
}

func (r *exerciseRepository) ReplaceForStep(tx *gorm.DB, trailStepID uint, exercise *model.Exercise) error {
	if err := r.DeleteByTrailStep(tx, trailStepID); err != nil {
		return err
	}
	exercise.TrailStepID = trailStepID
	return tx.Create(exercise).Error
}
