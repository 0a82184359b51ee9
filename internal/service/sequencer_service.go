package service

import (
	"fmt"

	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/utilities"

	logger "lingotrail-backend/pkg/logging"
)

// StepDraft carries everything needed to create a step and its exercise in
// one insertion.
type StepDraft struct {
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	PassingScore     int    `json:"passing_score"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	ContentIDs       []uint `json:"content_ids"`
	Instructions     string `json:"instructions"`
	MissingWordCount int    `json:"missing_word_count"`
}

// ExerciseDraft carries the replaceable parts of a step's exercise. The kind
// stays with the step.
type ExerciseDraft struct {
	ContentIDs       []uint `json:"content_ids"`
	Instructions     string `json:"instructions"`
	MissingWordCount int    `json:"missing_word_count"`
}

type SequencerService interface {
	ListSteps(categoryID uint) ([]model.TrailStep, error)
	InsertStepAt(categoryID uint, position int, draft StepDraft) (*model.TrailStep, error)
	RemoveStep(stepID uint) error
	ReorderAfter(categoryID, afterStepID uint, draft StepDraft) (*model.TrailStep, error)
	ReplaceExercise(stepID uint, draft ExerciseDraft) (*model.Exercise, error)
}

type sequencerService struct {
	stepRepo     repository.StepRepository
	exerciseRepo repository.ExerciseRepository
	sessionRepo  repository.SessionRepository
	progressRepo repository.ProgressRepository
	contentRepo  repository.ContentRepository
	locks        *utilities.KeyedMutex
}

func NewSequencerService(
	stepRepo repository.StepRepository,
	exerciseRepo repository.ExerciseRepository,
	sessionRepo repository.SessionRepository,
	progressRepo repository.ProgressRepository,
	contentRepo repository.ContentRepository,
	locks *utilities.KeyedMutex,
) SequencerService {
	return &sequencerService{
		stepRepo:     stepRepo,
		exerciseRepo: exerciseRepo,
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		contentRepo:  contentRepo,
		locks:        locks,
	}
}

func categoryLockKey(categoryID uint) string {
	return fmt.Sprintf("category:%d", categoryID)
}

func (s *sequencerService) ListSteps(categoryID uint) ([]model.TrailStep, error) {
	if _, err := s.contentRepo.GetCategory(categoryID); err != nil {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	return s.stepRepo.GetStepsByCategory(categoryID)
}

// InsertStepAt places a new step at position, shifting every step at or past
// it up by one. The shift runs in descending step order inside one
// transaction so the contiguous 1..N invariant holds at every observable
// point.
func (s *sequencerService) InsertStepAt(categoryID uint, position int, draft StepDraft) (*model.TrailStep, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if _, err := s.contentRepo.GetCategory(categoryID); err != nil {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}

	key := categoryLockKey(categoryID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	count, err := s.stepRepo.CountByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > int(count)+1 {
		return nil, validationErrorf("invalid position %d: must be between 1 and %d", position, count+1)
	}

	step := &model.TrailStep{
		CategoryID:       categoryID,
		Name:             draft.Name,
		Kind:             draft.Kind,
		StepNumber:       position,
		PassingScore:     draft.PassingScore,
		TimeLimitSeconds: draft.TimeLimitSeconds,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.stepRepo.ShiftUpFrom(tx, categoryID, position); err != nil {
			return fmt.Errorf("%w: renumbering failed: %v", ErrConflict, err)
		}
		if err := s.stepRepo.CreateStep(tx, step); err != nil {
			return fmt.Errorf("%w: step insert failed: %v", ErrConflict, err)
		}
		exercise := &model.Exercise{
			TrailStepID:      step.ID,
			Kind:             draft.Kind,
			ContentIDs:       model.JoinIDs(draft.ContentIDs),
			Instructions:     draft.Instructions,
			MissingWordCount: draft.MissingWordCount,
		}
		return s.exerciseRepo.Create(tx, exercise)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("inserted step %d (%s) at position %d in category %d",
		step.ID, step.Kind, position, categoryID)
	return step, nil
}

// RemoveStep deletes a step, cascades its exercise, session history, and
// progress rows, then closes the numbering gap.
func (s *sequencerService) RemoveStep(stepID uint) error {
	step, err := s.stepRepo.GetStepByID(stepID)
	if err != nil {
		return fmt.Errorf("%w: trail step %d", ErrNotFound, stepID)
	}

	key := categoryLockKey(step.CategoryID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.exerciseRepo.DeleteByTrailStep(tx, stepID); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByTrailStep(tx, stepID); err != nil {
			return err
		}
		if err := s.progressRepo.DeleteByTrailStep(tx, stepID); err != nil {
			return err
		}
		if err := s.stepRepo.DeleteStep(tx, stepID); err != nil {
			return err
		}
		return s.stepRepo.ShiftDownAfter(tx, step.CategoryID, step.StepNumber)
	})
	if err != nil {
		return err
	}

	utilities.GlobalEventBus.Publish(utilities.EventStepRemoved, stepID)
	logger.Info("removed step %d from category %d (was position %d)",
		stepID, step.CategoryID, step.StepNumber)
	return nil
}

// ReorderAfter inserts a new step immediately after an existing one.
func (s *sequencerService) ReorderAfter(categoryID, afterStepID uint, draft StepDraft) (*model.TrailStep, error) {
	after, err := s.stepRepo.GetStepByID(afterStepID)
	if err != nil {
		return nil, fmt.Errorf("%w: trail step %d", ErrNotFound, afterStepID)
	}
	if after.CategoryID != categoryID {
		return nil, validationErrorf("step %d does not belong to category %d", afterStepID, categoryID)
	}
	return s.InsertStepAt(categoryID, after.StepNumber+1, draft)
}

// ReplaceExercise swaps out a step's exercise content. Content id lists are
// immutable in place: the old exercise row is deleted and a fresh one attached
// to the step, all in one transaction.
func (s *sequencerService) ReplaceExercise(stepID uint, draft ExerciseDraft) (*model.Exercise, error) {
	step, err := s.stepRepo.GetStepByID(stepID)
	if err != nil {
		return nil, fmt.Errorf("%w: trail step %d", ErrNotFound, stepID)
	}
	if draft.MissingWordCount < 0 {
		return nil, validationErrorf("missing word count must not be negative")
	}

	key := categoryLockKey(step.CategoryID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	exercise := &model.Exercise{
		Kind:             step.Kind,
		ContentIDs:       model.JoinIDs(draft.ContentIDs),
		Instructions:     draft.Instructions,
		MissingWordCount: draft.MissingWordCount,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return s.exerciseRepo.ReplaceForStep(tx, stepID, exercise)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("replaced exercise for step %d (%s): now %d content items",
		stepID, step.Kind, len(draft.ContentIDs))
	return exercise, nil
}

func validateDraft(draft StepDraft) error {
	if draft.Name == "" {
		return validationErrorf("step name must not be empty")
	}
	if !model.KnownKind(draft.Kind) {
		return validationErrorf("unknown exercise kind %q", draft.Kind)
	}
	if draft.PassingScore < 0 || draft.PassingScore > 100 {
		return validationErrorf("passing score %d out of range 0-100", draft.PassingScore)
	}
	if draft.TimeLimitSeconds < 0 {
		return validationErrorf("time limit must not be negative")
	}
	if draft.Kind == model.KindFillBlanks && draft.MissingWordCount < 0 {
		return validationErrorf("missing word count must not be negative")
	}
	return nil
}
