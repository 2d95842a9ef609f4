package eventstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pflow-xyz/go-multitoken/journal"
)

// Recorder is a journal.Sink that persists every audit event into one
// store stream, turning the in-process audit trail into a durable one.
// Versions follow the journal's append order.
type Recorder struct {
	store    Store
	streamID string
}

// NewRecorder creates a recorder writing to streamID in store.
func NewRecorder(store Store, streamID string) *Recorder {
	return &Recorder{store: store, streamID: streamID}
}

// Append implements journal.Sink.
func (r *Recorder) Append(ev journal.Event) error {
	stored, err := NewEvent(r.streamID, string(ev.Type), ev)
	if err != nil {
		return err
	}
	ctx := context.Background()
	version, err := r.store.StreamVersion(ctx, r.streamID)
	if err != nil {
		return err
	}
	_, err = r.store.Append(ctx, r.streamID, version, []*Event{stored})
	return err
}

// Journal reads the recorded stream back as journal events.
func (r *Recorder) Journal() ([]journal.Event, error) {
	stored, err := r.store.Read(context.Background(), r.streamID, 0)
	if err != nil {
		return nil, err
	}
	return DecodeJournal(stored)
}

// DecodeJournal converts stored events back into journal events.
func DecodeJournal(stored []*Event) ([]journal.Event, error) {
	out := make([]journal.Event, 0, len(stored))
	for _, ev := range stored {
		var jev journal.Event
		if err := unmarshalEvent(ev, &jev); err != nil {
			return nil, err
		}
		out = append(out, jev)
	}
	return out, nil
}

func unmarshalEvent(ev *Event, out *journal.Event) error {
	if err := json.Unmarshal(ev.Data, out); err != nil {
		return fmt.Errorf("eventstore: decoding event %s: %w", ev.ID, err)
	}
	return nil
}

var _ journal.Sink = (*Recorder)(nil)
