package service

import (
	"fmt"
	"sync"
	"time"

	"lingotrail-backend/utilities"

	logger "lingotrail-backend/pkg/logging"
)

// ActivityEntry is one engine event in the rolling activity feed.
type ActivityEntry struct {
	Event  string    `json:"event"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// ActivityService consumes the engine's event bus and keeps per-event counters
// plus a bounded feed of recent activity for the ops surface. Handlers run on
// the bus's dispatch goroutines.
type ActivityService interface {
	Recent(limit int) []ActivityEntry
	Counts() map[string]int
}

const activityFeedSize = 100

type activityService struct {
	mu      sync.Mutex
	entries []ActivityEntry
	counts  map[string]int
}

// NewActivityService subscribes to the engine events on the given bus.
func NewActivityService(bus *utilities.EventBus) ActivityService {
	s := &activityService{counts: make(map[string]int)}
	bus.Subscribe(utilities.EventSessionCompleted, s.onSessionCompleted)
	bus.Subscribe(utilities.EventSessionAbandoned, s.onSessionAbandoned)
	bus.Subscribe(utilities.EventContentMissing, s.onContentMissing)
	bus.Subscribe(utilities.EventStepRemoved, s.onStepRemoved)
	return s
}

func (s *activityService) onSessionCompleted(data interface{}) {
	ev, ok := data.(utilities.SessionCompletedEvent)
	if !ok {
		return
	}
	s.record(utilities.EventSessionCompleted,
		fmt.Sprintf("user %d scored %d on step %d (session %s)",
			ev.UserID, ev.Score, ev.TrailStepID, ev.SessionID))
}

func (s *activityService) onSessionAbandoned(data interface{}) {
	sessionID, ok := data.(string)
	if !ok {
		return
	}
	s.record(utilities.EventSessionAbandoned, fmt.Sprintf("session %s abandoned", sessionID))
}

func (s *activityService) onContentMissing(data interface{}) {
	ev, ok := data.(utilities.ContentMissingEvent)
	if !ok {
		return
	}
	logger.Warn("exercise %d (%s) is being served without %d content items",
		ev.ExerciseID, ev.Kind, len(ev.MissingIDs))
	s.record(utilities.EventContentMissing,
		fmt.Sprintf("exercise %d (%s) missing content ids %v", ev.ExerciseID, ev.Kind, ev.MissingIDs))
}

func (s *activityService) onStepRemoved(data interface{}) {
	stepID, ok := data.(uint)
	if !ok {
		return
	}
	s.record(utilities.EventStepRemoved, fmt.Sprintf("step %d removed", stepID))
}

func (s *activityService) record(event, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[event]++
	s.entries = append(s.entries, ActivityEntry{Event: event, Detail: detail, At: time.Now()})
	if len(s.entries) > activityFeedSize {
		s.entries = s.entries[len(s.entries)-activityFeedSize:]
	}
}

// Recent returns up to limit entries, oldest first.
func (s *activityService) Recent(limit int) []ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]ActivityEntry, limit)
	copy(out, s.entries[len(s.entries)-limit:])
	return out
}

func (s *activityService) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}
