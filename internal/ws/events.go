package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAnalysisCompleted EventType = "analysis.completed"
	EventSessionStarted    EventType = "session.started"
	EventSessionEnded      EventType = "session.ended"
	EventStreamResult      EventType = "stream.result"
)

type Event struct {
	UserID    uuid.UUID   `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
