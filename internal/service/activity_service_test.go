package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingotrail-backend/utilities"
)

func TestActivityService_RecordsBusEvents(t *testing.T) {
	bus := utilities.NewEventBus()
	activity := NewActivityService(bus)

	bus.Publish(utilities.EventSessionCompleted, utilities.SessionCompletedEvent{
		SessionID:   "s-1",
		UserID:      1,
		TrailStepID: 2,
		Score:       100,
	})
	bus.Publish(utilities.EventSessionAbandoned, "s-2")
	bus.Publish(utilities.EventStepRemoved, uint(7))
	bus.Publish(utilities.EventContentMissing, utilities.ContentMissingEvent{
		ExerciseID: 3,
		Kind:       "vocabulary_matching",
		MissingIDs: []uint{9},
	})

	// Dispatch is asynchronous.
	require.Eventually(t, func() bool {
		counts := activity.Counts()
		return counts[utilities.EventSessionCompleted] == 1 &&
			counts[utilities.EventSessionAbandoned] == 1 &&
			counts[utilities.EventStepRemoved] == 1 &&
			counts[utilities.EventContentMissing] == 1
	}, time.Second, 10*time.Millisecond)

	entries := activity.Recent(10)
	require.Len(t, entries, 4)
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Detail)
		assert.False(t, entry.At.IsZero())
	}
}

func TestActivityService_IgnoresUnexpectedPayloads(t *testing.T) {
	bus := utilities.NewEventBus()
	activity := NewActivityService(bus)

	bus.Publish(utilities.EventSessionCompleted, "not an event struct")
	bus.Publish(utilities.EventStepRemoved, "not a step id")

	// Give the dispatch goroutines a moment; nothing should be recorded.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, activity.Recent(10))
}

func TestActivityService_RecentLimit(t *testing.T) {
	bus := utilities.NewEventBus()
	activity := NewActivityService(bus)

	for i := 0; i < 5; i++ {
		bus.Publish(utilities.EventSessionAbandoned, "s")
	}
	require.Eventually(t, func() bool {
		return activity.Counts()[utilities.EventSessionAbandoned] == 5
	}, time.Second, 10*time.Millisecond)

	assert.Len(t, activity.Recent(3), 3)
	assert.Len(t, activity.Recent(0), 5)
}

func TestActivityService_ObservesSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	activity := NewActivityService(utilities.GlobalEventBus)

	category := env.seedCategory(t, "Basics")
	vocab := env.seedVocab(t, category.ID, 1)
	_, exercise := env.appendVocabStep(t, category.ID, vocab, 70)

	session, err := env.sessions.OpenSession(1, exercise.ID)
	require.NoError(t, err)
	_, _, err = env.sessions.SubmitAnswer(session.SessionID, vocab[0].ID, vocab[0].Translation, 5)
	require.NoError(t, err)
	_, _, err = env.sessions.CompleteSession(session.SessionID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return activity.Counts()[utilities.EventSessionCompleted] >= 1
	}, time.Second, 10*time.Millisecond)
}
