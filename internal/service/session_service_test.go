package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingotrail-backend/internal/model"
)

func TestOpenSession_InitialState(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 3)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, model.SessionInProgress, session.Status)
	assert.Equal(t, 3, session.TotalQuestions)
	assert.Equal(t, 0, session.Score)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))

	// A second open for the same exercise is an independent attempt.
	retry, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	assert.NotEqual(t, session.SessionID, retry.SessionID)
}

func TestOpenSession_UnknownExercise(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.OpenSession(1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAnswer_AllCorrectScoresHundred(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 4)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)

	for i, v := range vocab {
		answer, updated, err := env.sessions.SubmitAnswer(session.SessionID, v.ID, v.Translation, 5)
		require.NoError(t, err)
		assert.True(t, answer.IsCorrect)
		// 1/4 truncates to 25, 2/4 to 50, 3/4 to 75, all correct is 100.
		assert.Equal(t, (i+1)*100/4, updated.Score)
	}

	final, _, err := env.sessions.GetSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 100, final.Score)
}

func TestSubmitAnswer_ResubmissionCountsLatestOnly(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 2)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)

	_, updated, err := env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Score)

	// Overwriting with a wrong answer pulls the item back out of the count.
	answer, updated, err := env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, "wrong", 5)
	require.NoError(t, err)
	assert.False(t, answer.IsCorrect)
	assert.Equal(t, 0, updated.Score)

	// And correcting it again restores exactly one counted answer.
	_, updated, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Score)

	answers, err := env.sessions.GetAnswers(session.SessionID)
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}

func TestSubmitAnswer_UnknownItem(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)

	_, _, err = env.sessions.SubmitAnswer(session.SessionID, 9999, "whatever", 5)
	assert.True(t, IsValidation(err))
}

func TestSubmitAnswer_AfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	env.backdateExpiry(t, session.SessionID)

	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expiry was persisted, not just observed.
	stored, _, err := env.sessions.GetSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, stored.Status)
}

func TestSubmitAnswer_AfterExerciseReplaced(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 2)
	step, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	require.NoError(t, err)

	_, err = env.sequencer.ReplaceExercise(step.ID, ExerciseDraft{ContentIDs: []uint{vocab[1].ID}})
	require.NoError(t, err)

	// The old attempt stops taking answers.
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[1].ID, vocab[1].Translation, 5)
	assert.ErrorIs(t, err, ErrSessionClosed)

	// It can still be read (sans view) and finalized against the answer log.
	stored, view, err := env.sessions.GetSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, stored.Status)
	assert.Nil(t, view)

	completed, _, err := env.sessions.CompleteSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 50, completed.Score)
}

func TestPeekSession_NoStateTransition(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	env.backdateExpiry(t, session.SessionID)

	// Peek serves the bare row without triggering the expiry transition.
	peeked, err := env.sessions.PeekSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), peeked.UserID)
	assert.Equal(t, model.SessionInProgress, peeked.Status)

	_, err = env.sessions.PeekSession("no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)

	// The stateful read still applies it.
	stored, _, err := env.sessions.GetSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, stored.Status)
}

func TestGetSession_LazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	env.backdateExpiry(t, session.SessionID)

	stored, view, err := env.sessions.GetSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, stored.Status)
	assert.Nil(t, view)
}

func TestCompleteSession_RecordsProgressAtomically(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 2)
	step, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(7, exercise.ID)
	require.NoError(t, err)
	for _, v := range vocab {
		_, _, err := env.sessions.SubmitAnswer(session.SessionID, v.ID, v.Translation, 5)
		require.NoError(t, err)
	}

	completed, progress, err := env.sessions.CompleteSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, completed.Status)
	assert.Equal(t, 100, completed.Score)
	require.NotNil(t, completed.CompletedAt)

	require.NotNil(t, progress)
	assert.Equal(t, uint(7), progress.UserID)
	assert.Equal(t, step.ID, progress.TrailStepID)
	assert.Equal(t, 100, progress.Score)
	assert.Equal(t, 1, progress.Attempts)
	assert.True(t, progress.Completed)

	// Completing twice is rejected.
	_, _, err = env.sessions.CompleteSession(session.SessionID)
	assert.ErrorIs(t, err, ErrSessionClosed)

	// And no further answers are accepted.
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCompleteSession_PartialAnswersCountMissingAsWrong(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 3)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	require.NoError(t, err)
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[1].ID, vocab[1].Translation, 5)
	require.NoError(t, err)

	completed, _, err := env.sessions.CompleteSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 66, completed.Score)
}

func TestCompleteSession_ZeroQuestionExercise(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	step, _ := env.appendVocabStep(t, category.ID, vocab, 70)

	// Force an empty exercise; openable and completable at score 100.
	require.NoError(t, env.conn.Model(&model.Exercise{}).
		Where("trail_step_id = ?", step.ID).
		Update("content_ids", "").Error)
	exercise, err := env.catalog.GetExercise(step.ID)
	require.NoError(t, err)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.TotalQuestions)

	completed, progress, err := env.sessions.CompleteSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 100, completed.Score)
	assert.True(t, progress.Completed)
}

func TestAbandonSession_LeavesNoProgress(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 2)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	require.NoError(t, err)

	abandoned, err := env.sessions.AbandonSession(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, abandoned.Status)

	rows, err := env.progress.GetUserProgress(1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Abandoning a closed session is rejected.
	_, err = env.sessions.AbandonSession(session.SessionID)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSweepExpired_MarksOnlyOverdueSessions(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	stale, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	fresh, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	env.backdateExpiry(t, stale.SessionID)

	swept, err := env.sessions.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	staleStored, _, err := env.sessions.GetSession(stale.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, staleStored.Status)

	freshStored, _, err := env.sessions.GetSession(fresh.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, freshStored.Status)

	// An idle sweep finds nothing further.
	swept, err = env.sessions.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}
