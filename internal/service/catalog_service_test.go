package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingotrail-backend/internal/model"
)

func TestBuildAttemptView_PreservesContentOrder(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 3)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	view, err := env.catalog.BuildAttemptView(exercise)
	require.NoError(t, err)
	require.Len(t, view.Items, 3)
	for i, item := range view.Items {
		assert.Equal(t, vocab[i].ID, item.ItemID)
		assert.Equal(t, vocab[i].Word, item.Prompt)
		expected, ok := view.ExpectedFor(item.ItemID)
		require.True(t, ok)
		assert.Equal(t, vocab[i].Translation, expected.Primary)
	}
}

func TestBuildAttemptView_SkipsMissingContent(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 2)
	step, _ := env.appendVocabStep(t, category.ID, vocab, 70)

	// Delete one referenced row out from under the exercise.
	require.NoError(t, env.conn.Delete(&model.Vocabulary{}, vocab[0].ID).Error)

	exercise, err := env.catalog.GetExercise(step.ID)
	require.NoError(t, err)
	view, err := env.catalog.BuildAttemptView(exercise)
	require.NoError(t, err)

	// The view is still served, minus the dangling reference.
	require.Len(t, view.Items, 1)
	assert.Equal(t, vocab[1].ID, view.Items[0].ItemID)
	_, ok := view.ExpectedFor(vocab[0].ID)
	assert.False(t, ok)
}

func TestBuildAttemptView_ReverseKindSwapsDirection(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)

	step, err := env.sequencer.InsertStepAt(category.ID, 1, StepDraft{
		Name:         "reverse",
		Kind:         model.KindVocabularyMatchingReverse,
		PassingScore: 70,
		ContentIDs:   []uint{vocab[0].ID},
	})
	require.NoError(t, err)

	exercise, err := env.catalog.GetExercise(step.ID)
	require.NoError(t, err)
	view, err := env.catalog.BuildAttemptView(exercise)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, vocab[0].Translation, view.Items[0].Prompt)

	correct, _, ok := view.Grade(vocab[0].ID, vocab[0].Word)
	require.True(t, ok)
	assert.True(t, correct)
	correct, _, _ = view.Grade(vocab[0].ID, vocab[0].Translation)
	assert.False(t, correct)
}

func TestBuildAttemptView_SynonymsAccepted(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	word := model.Vocabulary{
		CategoryID:  category.ID,
		Word:        "casa",
		Translation: "house",
		Synonyms:    "home, household",
	}
	require.NoError(t, env.contentRepo.CreateVocabulary(&word))

	step, err := env.sequencer.InsertStepAt(category.ID, 1, StepDraft{
		Name:         "synonyms",
		Kind:         model.KindVocabularyMatching,
		PassingScore: 70,
		ContentIDs:   []uint{word.ID},
	})
	require.NoError(t, err)

	exercise, err := env.catalog.GetExercise(step.ID)
	require.NoError(t, err)
	view, err := env.catalog.BuildAttemptView(exercise)
	require.NoError(t, err)

	for _, answer := range []string{"house", "home", "Household"} {
		correct, _, ok := view.Grade(word.ID, answer)
		require.True(t, ok)
		assert.True(t, correct, "answer %q", answer)
	}
	correct, _, _ := view.Grade(word.ID, "apartment")
	assert.False(t, correct)
}

func TestBuildAttemptView_SentenceKind(t *testing.T) {
	env := newTestEnv(t)
	category := env.seedCategory(t, "Basics")
	sentence := model.Sentence{
		CategoryID:   category.ID,
		Text:         "voy a la estación",
		MaskedText:   "voy a la [MASK]",
		MissingWords: "estación",
	}
	require.NoError(t, env.contentRepo.CreateSentence(&sentence))

	step, err := env.sequencer.InsertStepAt(category.ID, 1, StepDraft{
		Name:             "blanks",
		Kind:             model.KindFillBlanks,
		PassingScore:     70,
		ContentIDs:       []uint{sentence.ID},
		MissingWordCount: 1,
	})
	require.NoError(t, err)

	exercise, err := env.catalog.GetExercise(step.ID)
	require.NoError(t, err)
	view, err := env.catalog.BuildAttemptView(exercise)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "voy a la [MASK]", view.Items[0].Prompt)

	correct, _, ok := view.Grade(sentence.ID, "estación")
	require.True(t, ok)
	assert.True(t, correct)
	correct, _, _ = view.Grade(sentence.ID, "la estación")
	assert.False(t, correct, "spanish articles are not stripped")
}
