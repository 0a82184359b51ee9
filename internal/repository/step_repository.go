package repository

import (
	"errors"

	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
)

type StepRepository interface {
	GetStepsByCategory(categoryID uint) ([]model.TrailStep, error)
	GetStepByID(id uint) (*model.TrailStep, error)
	CountByCategory(categoryID uint) (int64, error)
	CreateStep(tx *gorm.DB, step *model.TrailStep) error
	DeleteStep(tx *gorm.DB, id uint) error
	ShiftUpFrom(tx *gorm.DB, categoryID uint, position int) error
	ShiftDownAfter(tx *gorm.DB, categoryID uint, position int) error
}

type stepRepository struct{}

func NewStepRepository() StepRepository {
	return &stepRepository{}
}

func (r *stepRepository) GetStepsByCategory(categoryID uint) ([]model.TrailStep, error) {
	var steps []model.TrailStep
	err := db.GetDB().Where("category_id = ?", categoryID).
		Order("step_number asc").Find(&steps).Error
	return steps, err
}

func (r *stepRepository) GetStepByID(id uint) (*model.TrailStep, error) {
	var step model.TrailStep
	err := db.GetDB().Where("id = ?", id).First(&step).Error
	if err != nil {
		return nil, errors.New("trail step not found")
	}
	return &step, nil
}

func (r *stepRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := db.GetDB().Model(&model.TrailStep{}).
		Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *stepRepository) CreateStep(tx *gorm.DB, step *model.TrailStep) error {
	return tx.Create(step).Error
}

func (r *stepRepository) DeleteStep(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.TrailStep{}, id).Error
}

// ShiftUpFrom increments step_number for every step at or past position,
// walking in descending order so the per-category uniqueness constraint never
// sees a transient collision.
func (r *stepRepository) ShiftUpFrom(tx *gorm.DB, categoryID uint, position int) error {
	var steps []model.TrailStep
	if err := tx.Where("category_id = ? AND step_number >= ?", categoryID, position).
		Order("step_number desc").Find(&steps).Error; err != nil {
		return err
	}
	for i := range steps {
		if err := tx.Model(&model.TrailStep{}).Where("id = ?", steps[i].ID).
			Update("step_number", steps[i].StepNumber+1).Error; err != nil {
			return err
		}
	}
	return nil
}

// ShiftDownAfter decrements step_number for every step past position, walking
// in ascending order to close the gap left by a removal.
func (r *stepRepository) ShiftDownAfter(tx *gorm.DB, categoryID uint, position int) error {
	var steps []model.TrailStep
	if err := tx.Where("category_id = ? AND step_number > ?", categoryID, position).
		Order("step_number asc").Find(&steps).Error; err != nil {
		return err
	}
	for i := range steps {
		if err := tx.Model(&model.TrailStep{}).Where("id = ?", steps[i].ID).
			Update("step_number", steps[i].StepNumber-1).Error; err != nil {
			return err
		}
	}
	return nil
}
