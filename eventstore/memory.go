package eventstore

import (
	"context"
	"sync"
)

// MemoryStore keeps streams in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	order   []*Event // global append order for ReadAll
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	current := len(stream) - 1
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, ev := range events {
		version++
		stored := *ev
		stored.StreamID = streamID
		stored.Version = version
		stream = append(stream, &stored)
		s.order = append(s.order, &stored)
	}
	s.streams[streamID] = stream
	return version, nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	if fromVersion < 0 {
		fromVersion = 0
	}
	if fromVersion >= len(stream) {
		return nil, nil
	}
	out := make([]*Event, len(stream)-fromVersion)
	copy(out, stream[fromVersion:])
	return out, nil
}

// ReadAll implements Store.
func (s *MemoryStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, ev := range s.order {
		if filter.matches(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// StreamVersion implements Store.
func (s *MemoryStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[streamID]) - 1, nil
}

// DeleteStream implements Store.
func (s *MemoryStore) DeleteStream(ctx context.Context, streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.streams, streamID)
	kept := s.order[:0]
	for _, ev := range s.order {
		if ev.StreamID != streamID {
			kept = append(kept, ev)
		}
	}
	s.order = kept
	return nil
}

// Close implements Store. It is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
