package service

import (
	"strings"

	"lingotrail-backend/internal/model"
)

// ExpectedAnswer is the grading key for one attempt item: the primary answer
// plus any accepted alternatives.
type ExpectedAnswer struct {
	Primary      string
	Alternatives []string
}

// AnswerMatcher decides whether a submitted answer satisfies the expected one.
// The matching strategy is a pluggable policy keyed by exercise kind.
type AnswerMatcher func(expected ExpectedAnswer, answer string) bool

// normalizeAnswer lowercases, trims, and collapses interior whitespace and
// comma separators so matching is case- and whitespace-insensitive.
func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

func exactMatch(expected ExpectedAnswer, answer string) bool {
	return normalizeAnswer(answer) == normalizeAnswer(expected.Primary)
}

// synonymMatch accepts the primary answer or any listed synonym.
func synonymMatch(expected ExpectedAnswer, answer string) bool {
	if exactMatch(expected, answer) {
		return true
	}
	got := normalizeAnswer(answer)
	for _, alt := range expected.Alternatives {
		if got == normalizeAnswer(alt) {
			return true
		}
	}
	return false
}

// blankMatch compares like exactMatch but also tolerates a leading article on
// either side, since blanked words are often quoted with one.
func blankMatch(expected ExpectedAnswer, answer string) bool {
	if synonymMatch(expected, answer) {
		return true
	}
	return stripArticle(normalizeAnswer(answer)) == stripArticle(normalizeAnswer(expected.Primary))
}

func stripArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}

// matcherForKind returns the grading policy for an exercise kind.
func matcherForKind(kind string) AnswerMatcher {
	switch kind {
	case model.KindVocabularyMatching, model.KindVocabularyMatchingReverse,
		model.KindVocabularyPairing, model.KindVocabularyFlashcards:
		return synonymMatch
	case model.KindFillBlanks, model.KindSentenceCompletion:
		return blankMatch
	default:
		return exactMatch
	}
}
