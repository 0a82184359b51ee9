package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/utilities"
)

// StepProgress pairs a trail step with the caller's recorded outcome on it,
// if any.
type StepProgress struct {
	Step     model.TrailStep     `json:"step"`
	Progress *model.UserProgress `json:"progress,omitempty"`
}

// ProgressOverview holds the metrics for the progress report.
type ProgressOverview struct {
	TotalSteps     int     `json:"total_steps"`
	CompletedSteps int     `json:"completed_steps"`
	TotalAttempts  int     `json:"total_attempts"`
	AverageScore   float64 `json:"average_score"`
	BestScore      int     `json:"best_score"`
}

type ProgressService interface {
	// RecordCompletion folds one finalized session into the durable
	// per-(user, step) progress row. It must run inside the same
	// transaction as the session's complete transition.
	RecordCompletion(tx *gorm.DB, userID, trailStepID uint, score, completionTimeSeconds int) (*model.UserProgress, error)
	GetUserProgress(userID uint) ([]model.UserProgress, error)
	GetUserProgressByCategory(userID, categoryID uint) ([]StepProgress, error)
	Overview(userID uint) (*ProgressOverview, error)
}

type progressService struct {
	progressRepo repository.ProgressRepository
	stepRepo     repository.StepRepository
	locks        *utilities.KeyedMutex
}

func NewProgressService(
	progressRepo repository.ProgressRepository,
	stepRepo repository.StepRepository,
	locks *utilities.KeyedMutex,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		stepRepo:     stepRepo,
		locks:        locks,
	}
}

func progressLockKey(userID, trailStepID uint) string {
	return fmt.Sprintf("progress:%d:%d", userID, trailStepID)
}

func (s *progressService) RecordCompletion(tx *gorm.DB, userID, trailStepID uint, score, completionTimeSeconds int) (*model.UserProgress, error) {
	step, err := s.stepRepo.GetStepByID(trailStepID)
	if err != nil {
		return nil, fmt.Errorf("%w: trail step %d", ErrNotFound, trailStepID)
	}
	if step.PassingScore < 0 || step.PassingScore > 100 {
		return nil, fmt.Errorf("%w: step %d has passing score %d outside 0-100",
			ErrIntegrity, trailStepID, step.PassingScore)
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: session score %d outside 0-100", ErrIntegrity, score)
	}

	key := progressLockKey(userID, trailStepID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.progressRepo.GetByUserAndStep(tx, userID, trailStepID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		created := &model.UserProgress{
			UserID:                userID,
			TrailStepID:           trailStepID,
			Score:                 score,
			CompletionTimeSeconds: &completionTimeSeconds,
			Completed:             score >= step.PassingScore,
			Attempts:              1,
		}
		if err := s.progressRepo.Create(tx, created); err != nil {
			return nil, err
		}
		return created, nil
	}

	existing.Attempts++
	// Best score is monotonic: recorded mastery never regresses. The
	// completion time follows the best score; on a tie the faster time wins.
	if score > existing.Score {
		existing.Score = score
		existing.CompletionTimeSeconds = &completionTimeSeconds
	} else if score == existing.Score {
		if existing.CompletionTimeSeconds == nil || completionTimeSeconds < *existing.CompletionTimeSeconds {
			existing.CompletionTimeSeconds = &completionTimeSeconds
		}
	}
	if score >= step.PassingScore {
		existing.Completed = true
	}
	if err := s.progressRepo.Save(tx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *progressService) GetUserProgress(userID uint) ([]model.UserProgress, error) {
	return s.progressRepo.GetByUser(userID)
}

// GetUserProgressByCategory returns every step in the category paired with
// the user's progress row where one exists.
func (s *progressService) GetUserProgressByCategory(userID, categoryID uint) ([]StepProgress, error) {
	steps, err := s.stepRepo.GetStepsByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	rows, err := s.progressRepo.GetByUserAndCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}
	byStep := make(map[uint]model.UserProgress, len(rows))
	for _, row := range rows {
		byStep[row.TrailStepID] = row
	}

	out := make([]StepProgress, 0, len(steps))
	for _, step := range steps {
		entry := StepProgress{Step: step}
		if row, ok := byStep[step.ID]; ok {
			p := row
			entry.Progress = &p
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *progressService) Overview(userID uint) (*ProgressOverview, error) {
	rows, err := s.progressRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	overview := &ProgressOverview{TotalSteps: len(rows)}
	var scoreSum int
	for _, row := range rows {
		if row.Completed {
			overview.CompletedSteps++
		}
		overview.TotalAttempts += row.Attempts
		scoreSum += row.Score
		if row.Score > overview.BestScore {
			overview.BestScore = row.Score
		}
	}
	if len(rows) > 0 {
		overview.AverageScore = float64(scoreSum) / float64(len(rows))
	}
	return overview, nil
}
