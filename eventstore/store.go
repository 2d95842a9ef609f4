// Package eventstore persists audit events as versioned streams with
// optimistic concurrency. Two implementations share one contract: an
// in-memory store for tests and short-lived tooling, and a SQLite store
// (modernc.org/sqlite) for a durable trail.
package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrConcurrencyConflict is returned by Append when the expected version
// does not match the stream's current version.
var ErrConcurrencyConflict = errors.New("eventstore: concurrency conflict")

// Event is one persisted record. Version is assigned by the store on
// append, starting at 0 per stream.
type Event struct {
	ID        string          `json:"id"`
	StreamID  string          `json:"stream_id"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates an unversioned event with a fresh ID. data is stored as
// JSON; pass nil for an event with no payload.
func NewEvent(streamID, eventType string, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("eventstore: marshaling event data: %w", err)
		}
		raw = b
	}
	return &Event{
		ID:        uuid.NewString(),
		StreamID:  streamID,
		Type:      eventType,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// EventFilter selects events for ReadAll. Zero fields match everything.
type EventFilter struct {
	StreamID string   // only this stream
	Types    []string // only these event types
}

func (f EventFilter) matches(e *Event) bool {
	if f.StreamID != "" && e.StreamID != f.StreamID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Store is an append-only event stream store.
type Store interface {
	// Append adds events to a stream. expectedVersion is the version of the
	// last event already in the stream (-1 for a new stream); a mismatch
	// fails with ErrConcurrencyConflict. Returns the version of the last
	// appended event.
	Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error)

	// Read returns a stream's events from fromVersion on, in version order.
	Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error)

	// ReadAll returns every event matching the filter, in append order.
	ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error)

	// StreamVersion returns the version of the stream's last event, or -1
	// when the stream does not exist.
	StreamVersion(ctx context.Context, streamID string) (int, error)

	// DeleteStream removes a stream and all its events.
	DeleteStream(ctx context.Context, streamID string) error

	// Close releases the store's resources.
	Close() error
}
