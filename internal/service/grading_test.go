package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lingotrail-backend/internal/model"
)

func TestNormalizeAnswer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hola", "hola"},
		{"  hola  ", "hola"},
		{"buenos   dias", "buenos dias"},
		{"uno,dos, tres", "uno dos tres"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeAnswer(tc.in), "input %q", tc.in)
	}
}

func TestSynonymMatch(t *testing.T) {
	expected := ExpectedAnswer{Primary: "hello", Alternatives: []string{"hi", "hey there"}}

	assert.True(t, synonymMatch(expected, "hello"))
	assert.True(t, synonymMatch(expected, "  HELLO "))
	assert.True(t, synonymMatch(expected, "hi"))
	assert.True(t, synonymMatch(expected, "Hey   There"))
	assert.False(t, synonymMatch(expected, "howdy"))
	assert.False(t, synonymMatch(expected, ""))
}

func TestBlankMatch_ToleratesArticles(t *testing.T) {
	expected := ExpectedAnswer{Primary: "station"}

	assert.True(t, blankMatch(expected, "station"))
	assert.True(t, blankMatch(expected, "the station"))
	assert.True(t, blankMatch(expected, "A Station"))
	assert.False(t, blankMatch(expected, "stations"))

	withArticle := ExpectedAnswer{Primary: "the station"}
	assert.True(t, blankMatch(withArticle, "station"))
	assert.True(t, blankMatch(withArticle, "an station"))
}

func TestMatcherForKind(t *testing.T) {
	synonymKinds := []string{
		model.KindVocabularyMatching,
		model.KindVocabularyMatchingReverse,
		model.KindVocabularyPairing,
		model.KindVocabularyFlashcards,
	}
	expected := ExpectedAnswer{Primary: "casa", Alternatives: []string{"hogar"}}
	for _, kind := range synonymKinds {
		assert.True(t, matcherForKind(kind)(expected, "hogar"), "kind %s", kind)
	}

	blankKinds := []string{model.KindFillBlanks, model.KindSentenceCompletion}
	for _, kind := range blankKinds {
		assert.True(t, matcherForKind(kind)(ExpectedAnswer{Primary: "dog"}, "the dog"), "kind %s", kind)
	}

	// Unknown kinds fall back to exact matching without synonyms.
	unknown := matcherForKind("something_else")
	assert.True(t, unknown(expected, "casa"))
	assert.False(t, unknown(expected, "hogar"))
}
