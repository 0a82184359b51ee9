package service

import (
	"fmt"
	"strings"

	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/utilities"

	logger "lingotrail-backend/pkg/logging"
)

// AttemptItem is one prompt served to the client. The expected answer stays
// server-side in the view's answer key.
type AttemptItem struct {
	ItemID uint   `json:"item_id"`
	Prompt string `json:"prompt"`
}

// AttemptView is the resolved, gradable form of one exercise: ordered prompt
// items plus the correct-answer key.
type AttemptView struct {
	Exercise     *model.Exercise
	Instructions string
	Items        []AttemptItem
	answers      map[uint]ExpectedAnswer
	matcher      AnswerMatcher
}

// ExpectedFor returns the grading key for an item, if the item belongs to
// this exercise.
func (v *AttemptView) ExpectedFor(itemID uint) (ExpectedAnswer, bool) {
	expected, ok := v.answers[itemID]
	return expected, ok
}

// Grade checks a submitted answer against the item's expected answer.
func (v *AttemptView) Grade(itemID uint, answer string) (correct bool, expected ExpectedAnswer, ok bool) {
	expected, ok = v.answers[itemID]
	if !ok {
		return false, expected, false
	}
	return v.matcher(expected, answer), expected, true
}

type CatalogService interface {
	GetExercise(trailStepID uint) (*model.Exercise, error)
	GetExerciseByID(exerciseID uint) (*model.Exercise, error)
	BuildAttemptView(exercise *model.Exercise) (*AttemptView, error)
}

type catalogService struct {
	exerciseRepo repository.ExerciseRepository
	contentRepo  repository.ContentRepository
}

func NewCatalogService(exerciseRepo repository.ExerciseRepository, contentRepo repository.ContentRepository) CatalogService {
	return &catalogService{
		exerciseRepo: exerciseRepo,
		contentRepo:  contentRepo,
	}
}

func (s *catalogService) GetExercise(trailStepID uint) (*model.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByTrailStep(trailStepID)
	if err != nil {
		return nil, fmt.Errorf("%w: no exercise for trail step %d", ErrNotFound, trailStepID)
	}
	return exercise, nil
}

func (s *catalogService) GetExerciseByID(exerciseID uint) (*model.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(exerciseID)
	if err != nil {
		return nil, fmt.Errorf("%w: exercise %d", ErrNotFound, exerciseID)
	}
	return exercise, nil
}

// BuildAttemptView resolves the exercise's content ids against the content
// store. Missing ids are excluded from the view, never fatal; the omission is
// logged and reported on the event bus.
func (s *catalogService) BuildAttemptView(exercise *model.Exercise) (*AttemptView, error) {
	ids := exercise.ContentIDList()
	view := &AttemptView{
		Exercise:     exercise,
		Instructions: exercise.Instructions,
		answers:      make(map[uint]ExpectedAnswer, len(ids)),
		matcher:      matcherForKind(exercise.Kind),
	}

	var missing []uint
	if model.VocabularyKind(exercise.Kind) {
		vocab, err := s.contentRepo.GetVocabulariesByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve vocabulary content: %w", err)
		}
		byID := make(map[uint]model.Vocabulary, len(vocab))
		for _, v := range vocab {
			byID[v.ID] = v
		}
		for _, id := range ids {
			v, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			prompt, expected := vocabularyPrompt(exercise.Kind, v)
			view.Items = append(view.Items, AttemptItem{ItemID: id, Prompt: prompt})
			view.answers[id] = expected
		}
	} else {
		sentences, err := s.contentRepo.GetSentencesByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve sentence content: %w", err)
		}
		byID := make(map[uint]model.Sentence, len(sentences))
		for _, sn := range sentences {
			byID[sn.ID] = sn
		}
		for _, id := range ids {
			sn, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			view.Items = append(view.Items, AttemptItem{ItemID: id, Prompt: sn.MaskedText})
			view.answers[id] = ExpectedAnswer{Primary: sn.MissingWords}
		}
	}

	if len(missing) > 0 {
		logger.Warn("exercise %d (%s) references %d missing content ids: %v",
			exercise.ID, exercise.Kind, len(missing), missing)
		utilities.GlobalEventBus.Publish(utilities.EventContentMissing, utilities.ContentMissingEvent{
			ExerciseID: exercise.ID,
			Kind:       exercise.Kind,
			MissingIDs: missing,
		})
	}

	return view, nil
}

// vocabularyPrompt picks the prompt/answer direction for a vocabulary kind.
func vocabularyPrompt(kind string, v model.Vocabulary) (string, ExpectedAnswer) {
	synonyms := splitCSV(v.Synonyms)
	switch kind {
	case model.KindVocabularyMatchingReverse:
		// Translation shown, source word expected.
		return v.Translation, ExpectedAnswer{Primary: v.Word}
	default:
		return v.Word, ExpectedAnswer{Primary: v.Translation, Alternatives: synonyms}
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
