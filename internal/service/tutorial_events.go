package service

import (
	"context"
	"encoding/json"
	"time"

	"tutorials/internal/model"
)

type EventType string

const (
	EventTutorialCreated EventType = "tutorial.created"
	EventTutorialUpdated EventType = "tutorial.updated"
	// EventTutorialDeleted reports a delete request for TutorialID. Deletes are
	// idempotent, so it is also sent when no tutorial had that id.
	EventTutorialDeleted EventType = "tutorial.deleted"
	// EventTutorialsCleared is sent for every delete-all, even on an empty store.
	EventTutorialsCleared EventType = "tutorial.cleared"
)

// TutorialEvent is the payload published after a tutorial changes.
// TutorialID is zero for EventTutorialsCleared.
type TutorialEvent struct {
	Type       EventType       `json:"type"`
	TutorialID int64           `json:"tutorial_id,omitempty"`
	Tutorial   *model.Tutorial `json:"tutorial,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

var now = time.Now

func newTutorialEvent(typ EventType, id int64, t *model.Tutorial) TutorialEvent {
	return TutorialEvent{Type: typ, TutorialID: id, Tutorial: t, OccurredAt: now().UTC()}
}

// publish never fails the caller; the write already happened.
func (s *tutorialService) publish(ctx context.Context, event TutorialEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode tutorial event")
		return
	}

	msgID, err := s.publisher.Publish(ctx, s.topic, payload)
	if err != nil {
		s.logger.Error().Err(err).
			Str("event_type", string(event.Type)).
			Int64("tutorial_id", event.TutorialID).
			Msg("Failed to publish tutorial event")
		return
	}
	if msgID != "" {
		s.logger.Debug().Str("message_id", msgID).Str("event_type", string(event.Type)).Msg("Tutorial event published")
	}
}
