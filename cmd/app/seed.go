package main

import (
	"fmt"

	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/internal/service"

	logger "lingotrail-backend/pkg/logging"
)

// seedContent populates an empty database with starter categories, content,
// and trail steps. Steps go through the sequencer's public contract, so
// reseeding and backfills use the same renumbering path as runtime inserts.
// Idempotent: a database that already has categories is left untouched.
func seedContent(contentRepo repository.ContentRepository, sequencer service.SequencerService, passingScore int) error {
	count, err := contentRepo.CountCategories()
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("seed skipped: %d categories already present", count)
		return nil
	}

	basics := &model.Category{Name: "Everyday Basics", Language: "es", Difficulty: 1}
	if err := contentRepo.CreateCategory(basics); err != nil {
		return err
	}
	travel := &model.Category{Name: "Travel", Language: "es", Difficulty: 2}
	if err := contentRepo.CreateCategory(travel); err != nil {
		return err
	}

	basicsVocab := []model.Vocabulary{
		{CategoryID: basics.ID, Word: "hola", Translation: "hello", Synonyms: "hi,hey"},
		{CategoryID: basics.ID, Word: "gracias", Translation: "thank you", Synonyms: "thanks"},
		{CategoryID: basics.ID, Word: "por favor", Translation: "please"},
		{CategoryID: basics.ID, Word: "adiós", Translation: "goodbye", Synonyms: "bye"},
		{CategoryID: basics.ID, Word: "sí", Translation: "yes"},
		{CategoryID: basics.ID, Word: "no", Translation: "no"},
	}
	for i := range basicsVocab {
		if err := contentRepo.CreateVocabulary(&basicsVocab[i]); err != nil {
			return err
		}
	}

	travelVocab := []model.Vocabulary{
		{CategoryID: travel.ID, Word: "aeropuerto", Translation: "airport"},
		{CategoryID: travel.ID, Word: "tren", Translation: "train"},
		{CategoryID: travel.ID, Word: "billete", Translation: "ticket"},
		{CategoryID: travel.ID, Word: "equipaje", Translation: "luggage", Synonyms: "baggage"},
	}
	for i := range travelVocab {
		if err := contentRepo.CreateVocabulary(&travelVocab[i]); err != nil {
			return err
		}
	}

	basicsSentences := []model.Sentence{
		{
			CategoryID:   basics.ID,
			Text:         "Hola, ¿cómo estás?",
			MaskedText:   "[MASK], ¿cómo estás?",
			MissingWords: "hola",
		},
		{
			CategoryID:   basics.ID,
			Text:         "Muchas gracias por tu ayuda.",
			MaskedText:   "Muchas [MASK] por tu ayuda.",
			MissingWords: "gracias",
		},
	}
	for i := range basicsSentences {
		if err := contentRepo.CreateSentence(&basicsSentences[i]); err != nil {
			return err
		}
	}

	travelSentences := []model.Sentence{
		{
			CategoryID:   travel.ID,
			Text:         "El tren sale del andén dos.",
			MaskedText:   "El [MASK] sale del andén dos.",
			MissingWords: "tren",
		},
	}
	for i := range travelSentences {
		if err := contentRepo.CreateSentence(&travelSentences[i]); err != nil {
			return err
		}
	}

	vocabIDs := func(vocab []model.Vocabulary) []uint {
		ids := make([]uint, len(vocab))
		for i := range vocab {
			ids[i] = vocab[i].ID
		}
		return ids
	}
	sentenceIDs := func(sentences []model.Sentence) []uint {
		ids := make([]uint, len(sentences))
		for i := range sentences {
			ids[i] = sentences[i].ID
		}
		return ids
	}

	basicsSteps := []service.StepDraft{
		{
			Name:         "Greetings: word match",
			Kind:         model.KindVocabularyMatching,
			PassingScore: passingScore,
			ContentIDs:   vocabIDs(basicsVocab),
			Instructions: "Match each Spanish word to its English meaning.",
		},
		{
			Name:             "Greetings: flashcards",
			Kind:             model.KindVocabularyFlashcards,
			PassingScore:     passingScore,
			TimeLimitSeconds: 300,
			ContentIDs:       vocabIDs(basicsVocab[:4]),
			Instructions:     "Type the English meaning for each card.",
		},
		{
			Name:             "Greetings: fill the blanks",
			Kind:             model.KindFillBlanks,
			PassingScore:     passingScore,
			ContentIDs:       sentenceIDs(basicsSentences),
			Instructions:     "Fill in the missing word.",
			MissingWordCount: 1,
		},
	}
	for i, draft := range basicsSteps {
		if _, err := sequencer.InsertStepAt(basics.ID, i+1, draft); err != nil {
			return fmt.Errorf("failed to seed step %q: %w", draft.Name, err)
		}
	}

	travelSteps := []service.StepDraft{
		{
			Name:         "Transport words",
			Kind:         model.KindVocabularyMatchingReverse,
			PassingScore: passingScore,
			ContentIDs:   vocabIDs(travelVocab),
			Instructions: "Type the Spanish word for each English meaning.",
		},
		{
			Name:             "At the station",
			Kind:             model.KindSentenceCompletion,
			PassingScore:     passingScore,
			TimeLimitSeconds: 180,
			ContentIDs:       sentenceIDs(travelSentences),
			Instructions:     "Complete each sentence.",
		},
	}
	for i, draft := range travelSteps {
		if _, err := sequencer.InsertStepAt(travel.ID, i+1, draft); err != nil {
			return fmt.Errorf("failed to seed step %q: %w", draft.Name, err)
		}
	}

	logger.Info("seeded %d categories with starter trails", 2)
	return nil
}
