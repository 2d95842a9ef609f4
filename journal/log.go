package journal

import (
	"sync"
	"time"
)

// Log is the in-memory audit trail: an ordered append-only slice of
// events. Append assigns sequence numbers, so the log is the authority on
// event order. Safe for concurrent use.
type Log struct {
	mu     sync.RWMutex
	events []Event
	seq    uint64
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append stamps the event with the next sequence number and the current
// time (unless the caller set one) and stores it. It never fails.
func (l *Log) Append(ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	ev.Seq = l.seq
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	l.events = append(l.events, ev)
	return nil
}

// Events returns a copy of the log in append order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Multi fans one event out to several sinks. The first failure stops the
// fan-out and is returned; earlier sinks keep the event.
type Multi []Sink

// Append delivers the event to every sink in order.
func (m Multi) Append(ev Event) error {
	for _, sink := range m {
		if err := sink.Append(ev); err != nil {
			return err
		}
	}
	return nil
}
