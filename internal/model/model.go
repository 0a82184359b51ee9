package model

import (
	"strconv"
	"strings"
	"time"
)

// Exercise kinds. Each trail step owns exactly one exercise of one kind.
const (
	KindVocabularyMatching        = "vocabulary_matching"
	KindVocabularyMatchingReverse = "vocabulary_matching_reverse"
	KindVocabularyPairing         = "vocabulary_pairing"
	KindVocabularyFlashcards      = "vocabulary_flashcards"
	KindSentenceCompletion        = "sentence_completion"
	KindFillBlanks                = "fill_blanks"
)

// Session statuses.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// VocabularyKind reports whether a kind resolves its content ids against the
// vocabularies table (as opposed to sentences).
func VocabularyKind(kind string) bool {
	switch kind {
	case KindVocabularyMatching, KindVocabularyMatchingReverse,
		KindVocabularyPairing, KindVocabularyFlashcards:
		return true
	}
	return false
}

func KnownKind(kind string) bool {
	return VocabularyKind(kind) || kind == KindSentenceCompletion || kind == KindFillBlanks
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"password,omitempty"` // Exclude from JSON responses
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is an immutable content root; steps are ordered inside it.
type Category struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	Language   string    `json:"language" gorm:"not null"`
	Difficulty int       `json:"difficulty" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Vocabulary struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CategoryID  uint      `json:"category_id" gorm:"index;not null"`
	Word        string    `json:"word" gorm:"not null"`
	Translation string    `json:"translation" gorm:"not null"`
	Synonyms    string    `json:"synonyms"` // comma-separated accepted alternatives
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Sentence struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryID   uint      `json:"category_id" gorm:"index;not null"`
	Text         string    `json:"text" gorm:"not null"`
	MaskedText   string    `json:"masked_text"`   // sentence with [MASK] placeholders
	MissingWords string    `json:"missing_words"` // comma-separated, in placeholder order
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TrailStep is one ordered unit of a learning path. StepNumber is 1-based and
// contiguous per category; only the sequencer mutates it.
type TrailStep struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	CategoryID       uint      `json:"category_id" gorm:"index:idx_category_step,unique;not null"`
	Name             string    `json:"name" gorm:"not null"`
	Kind             string    `json:"kind" gorm:"not null"`
	StepNumber       int       `json:"step_number" gorm:"index:idx_category_step,unique;not null"`
	PassingScore     int       `json:"passing_score" gorm:"not null"`
	TimeLimitSeconds int       `json:"time_limit_seconds"` // 0 = untimed
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Exercise binds ordered content to a trail step. ContentIDs is immutable once
// the step is live; edits create a new exercise and repoint the step.
type Exercise struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	TrailStepID      uint      `json:"trail_step_id" gorm:"uniqueIndex;not null"`
	Kind             string    `json:"kind" gorm:"not null"`
	ContentIDs       string    `json:"content_ids" gorm:"not null"` // comma-separated, ordered
	Instructions     string    `json:"instructions"`
	MissingWordCount int       `json:"missing_word_count"` // fill_blanks only
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ContentIDList parses the ordered content id list.
func (e *Exercise) ContentIDList() []uint {
	return SplitIDs(e.ContentIDs)
}

// Session is a single timed attempt at one exercise by one user.
type Session struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	SessionID      string     `json:"session_id" gorm:"uniqueIndex;not null"`
	UserID         uint       `json:"user_id" gorm:"index;not null"`
	ExerciseID     uint       `json:"exercise_id" gorm:"not null"`
	TrailStepID    uint       `json:"trail_step_id" gorm:"index;not null"`
	TotalQuestions int        `json:"total_questions" gorm:"not null"`
	Score          int        `json:"score" gorm:"not null;default:0"`
	Status         string     `json:"status" gorm:"not null;default:'in_progress'"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"not null"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SessionAnswer is the per-item answer log for one session. One row per
// (session, item); resubmission overwrites.
type SessionAnswer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	SessionID        uint      `json:"session_id" gorm:"index:idx_session_item,unique;not null"`
	ItemID           uint      `json:"item_id" gorm:"index:idx_session_item,unique;not null"`
	UserAnswer       string    `json:"user_answer"`
	ExpectedAnswer   string    `json:"expected_answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserProgress is the durable best-known outcome for a user on one step.
// Exactly one row per (user, step).
type UserProgress struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	UserID                uint      `json:"user_id" gorm:"index:idx_user_step,unique;not null"`
	TrailStepID           uint      `json:"trail_step_id" gorm:"index:idx_user_step,unique;not null"`
	Score                 int       `json:"score" gorm:"not null"`
	CompletionTimeSeconds *int      `json:"completion_time_seconds,omitempty"`
	Completed             bool      `json:"completed" gorm:"not null"`
	Attempts              int       `json:"attempts" gorm:"not null"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// SplitIDs parses a comma-separated id list, skipping malformed entries.
func SplitIDs(s string) []uint {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

// JoinIDs renders an ordered id list in the storage format.
func JoinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
