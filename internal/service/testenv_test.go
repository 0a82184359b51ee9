package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/utilities"
)

// testEnv wires the full service stack over a throwaway sqlite database.
type testEnv struct {
	conn         *gorm.DB
	stepRepo     repository.StepRepository
	exerciseRepo repository.ExerciseRepository
	sessionRepo  repository.SessionRepository
	progressRepo repository.ProgressRepository
	contentRepo  repository.ContentRepository
	sequencer    SequencerService
	catalog      CatalogService
	progress     ProgressService
	sessions     SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lingotrail.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Vocabulary{},
		&model.Sentence{},
		&model.TrailStep{},
		&model.Exercise{},
		&model.Session{},
		&model.SessionAnswer{},
		&model.UserProgress{},
	))
	db.SetDB(conn)

	env := &testEnv{
		conn:         conn,
		stepRepo:     repository.NewStepRepository(),
		exerciseRepo: repository.NewExerciseRepository(),
		sessionRepo:  repository.NewSessionRepository(),
		progressRepo: repository.NewProgressRepository(),
		contentRepo:  repository.NewContentRepository(),
	}
	locks := utilities.NewKeyedMutex()
	env.sequencer = NewSequencerService(env.stepRepo, env.exerciseRepo, env.sessionRepo, env.progressRepo, env.contentRepo, locks)
	env.catalog = NewCatalogService(env.exerciseRepo, env.contentRepo)
	env.progress = NewProgressService(env.progressRepo, env.stepRepo, locks)
	env.sessions = NewSessionService(env.sessionRepo, env.stepRepo, env.catalog, env.progress, locks, time.Hour)
	return env
}

func (e *testEnv) seedCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Language: "es", Difficulty: 1}
	require.NoError(t, e.contentRepo.CreateCategory(category))
	return category
}

// seedVocab creates n vocabulary rows word{i} -> meaning{i}.
func (e *testEnv) seedVocab(t *testing.T, categoryID uint, n int) []model.Vocabulary {
	t.Helper()
	vocab := make([]model.Vocabulary, n)
	for i := 0; i < n; i++ {
		vocab[i] = model.Vocabulary{
			CategoryID:  categoryID,
			Word:        fmt.Sprintf("word%d", i+1),
			Translation: fmt.Sprintf("meaning%d", i+1),
		}
		require.NoError(t, e.contentRepo.CreateVocabulary(&vocab[i]))
	}
	return vocab
}

// appendVocabStep appends a matching step over the given vocabulary and
// returns the step with its exercise.
func (e *testEnv) appendVocabStep(t *testing.T, categoryID uint, vocab []model.Vocabulary, passingScore int) (*model.TrailStep, *model.Exercise) {
	t.Helper()
	ids := make([]uint, len(vocab))
	for i := range vocab {
		ids[i] = vocab[i].ID
	}
	count, err := e.stepRepo.CountByCategory(categoryID)
	require.NoError(t, err)

	step, err := e.sequencer.InsertStepAt(categoryID, int(count)+1, StepDraft{
		Name:         fmt.Sprintf("step-%d", count+1),
		Kind:         model.KindVocabularyMatching,
		PassingScore: passingScore,
		ContentIDs:   ids,
	})
	require.NoError(t, err)

	exercise, err := e.catalog.GetExercise(step.ID)
	require.NoError(t, err)
	return step, exercise
}

// stepNumbers returns the category's step numbers in listing order.
func (e *testEnv) stepNumbers(t *testing.T, categoryID uint) []int {
	t.Helper()
	steps, err := e.sequencer.ListSteps(categoryID)
	require.NoError(t, err)
	numbers := make([]int, len(steps))
	for i, step := range steps {
		numbers[i] = step.StepNumber
	}
	return numbers
}

// backdateExpiry forces a session's deadline into the past.
func (e *testEnv) backdateExpiry(t *testing.T, sessionID string) {
	t.Helper()
	err := e.conn.Model(&model.Session{}).
		Where("session_id = ?", sessionID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	require.NoError(t, err)
}
