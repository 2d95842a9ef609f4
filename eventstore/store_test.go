package eventstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-multitoken/journal"
)

// runStoreTests exercises the Store contract against any implementation.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	mustEvent := func(t *testing.T, streamID, eventType string, data any) *Event {
		t.Helper()
		ev, err := NewEvent(streamID, eventType, data)
		if err != nil {
			t.Fatalf("NewEvent failed: %v", err)
		}
		return ev
	}

	t.Run("append and read", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		events := []*Event{
			mustEvent(t, "ledger", "Created", map[string]any{"id": 1}),
			mustEvent(t, "ledger", "TransferSingle", map[string]any{"amount": "100"}),
		}
		version, err := s.Append(ctx, "ledger", -1, events)
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if version != 1 {
			t.Errorf("expected version 1, got %d", version)
		}

		got, err := s.Read(ctx, "ledger", 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 events, got %d", len(got))
		}
		for i, ev := range got {
			if ev.Version != i {
				t.Errorf("event %d: version %d", i, ev.Version)
			}
			if ev.StreamID != "ledger" {
				t.Errorf("event %d: stream %q", i, ev.StreamID)
			}
		}
		if got[1].Type != "TransferSingle" {
			t.Errorf("expected TransferSingle, got %q", got[1].Type)
		}
	})

	t.Run("read from version", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		events := []*Event{
			mustEvent(t, "ledger", "a", nil),
			mustEvent(t, "ledger", "b", nil),
			mustEvent(t, "ledger", "c", nil),
		}
		if _, err := s.Append(ctx, "ledger", -1, events); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		got, err := s.Read(ctx, "ledger", 1)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(got) != 2 || got[0].Type != "b" {
			t.Errorf("unexpected events from version 1: %+v", got)
		}
	})

	t.Run("concurrency conflict", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		if _, err := s.Append(ctx, "ledger", -1, []*Event{mustEvent(t, "ledger", "a", nil)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		// Stale expected version.
		_, err := s.Append(ctx, "ledger", -1, []*Event{mustEvent(t, "ledger", "b", nil)})
		if !errors.Is(err, ErrConcurrencyConflict) {
			t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
		}

		// The failed append stored nothing.
		got, err := s.Read(ctx, "ledger", 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 event after conflict, got %d", len(got))
		}
	})

	t.Run("stream version", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		version, err := s.StreamVersion(ctx, "missing")
		if err != nil {
			t.Fatalf("version query failed: %v", err)
		}
		if version != -1 {
			t.Errorf("expected -1 for a missing stream, got %d", version)
		}

		if _, err := s.Append(ctx, "ledger", -1, []*Event{mustEvent(t, "ledger", "a", nil)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		version, err = s.StreamVersion(ctx, "ledger")
		if err != nil {
			t.Fatalf("version query failed: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}
	})

	t.Run("streams are independent", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		if _, err := s.Append(ctx, "a", -1, []*Event{mustEvent(t, "a", "x", nil)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if _, err := s.Append(ctx, "b", -1, []*Event{mustEvent(t, "b", "y", nil)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		got, err := s.Read(ctx, "a", 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(got) != 1 || got[0].Type != "x" {
			t.Errorf("stream a polluted: %+v", got)
		}
	})

	t.Run("read all with filter", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		if _, err := s.Append(ctx, "a", -1, []*Event{
			mustEvent(t, "a", "Created", nil),
			mustEvent(t, "a", "TransferSingle", nil),
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if _, err := s.Append(ctx, "b", -1, []*Event{
			mustEvent(t, "b", "TransferSingle", nil),
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		all, err := s.ReadAll(ctx, EventFilter{})
		if err != nil {
			t.Fatalf("read all failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 events, got %d", len(all))
		}

		transfers, err := s.ReadAll(ctx, EventFilter{Types: []string{"TransferSingle"}})
		if err != nil {
			t.Fatalf("read all failed: %v", err)
		}
		if len(transfers) != 2 {
			t.Errorf("expected 2 transfers, got %d", len(transfers))
		}

		streamA, err := s.ReadAll(ctx, EventFilter{StreamID: "a", Types: []string{"TransferSingle"}})
		if err != nil {
			t.Fatalf("read all failed: %v", err)
		}
		if len(streamA) != 1 {
			t.Errorf("expected 1 event, got %d", len(streamA))
		}
	})

	t.Run("delete stream", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		if _, err := s.Append(ctx, "ledger", -1, []*Event{mustEvent(t, "ledger", "a", nil)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if err := s.DeleteStream(ctx, "ledger"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		version, err := s.StreamVersion(ctx, "ledger")
		if err != nil {
			t.Fatalf("version query failed: %v", err)
		}
		if version != -1 {
			t.Errorf("expected -1 after deletion, got %d", version)
		}
		// A deleted stream starts over.
		if _, err := s.Append(ctx, "ledger", -1, []*Event{mustEvent(t, "ledger", "b", nil)}); err != nil {
			t.Errorf("append after deletion failed: %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
		if err != nil {
			t.Fatalf("opening store: %v", err)
		}
		return s
	})
}

func TestSQLiteStore_InMemory(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("opening store: %v", err)
		}
		return s
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	ev, err := NewEvent("ledger", "Created", map[string]any{"id": 1})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if _, err := s.Append(ctx, "ledger", -1, []*Event{ev}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Read(ctx, "ledger", 0)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 1 || got[0].Type != "Created" {
		t.Errorf("events lost across reopen: %+v", got)
	}
}

func TestRecorder_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	rec := NewRecorder(store, "ledger")

	in := []journal.Event{
		journal.Created("0x0100000000000000000000000000000000000000", 1, "Gold", "GLD", 2, uint256.NewInt(0)),
		journal.TransferSingle("0x0100000000000000000000000000000000000000", 1,
			"0x0000000000000000000000000000000000000000",
			"0x0100000000000000000000000000000000000000", uint256.NewInt(100)),
	}
	for i, ev := range in {
		ev.Seq = uint64(i) + 1
		if err := rec.Append(ev); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	out, err := rec.Journal()
	if err != nil {
		t.Fatalf("journal read failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d events, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Type != in[i].Type || out[i].Amount != in[i].Amount || out[i].Operator != in[i].Operator {
			t.Errorf("event %d differs:\n got %+v\nwant %+v", i, out[i], in[i])
		}
	}

	// Stored event types mirror the journal types for filtering.
	stored, err := store.ReadAll(context.Background(), EventFilter{Types: []string{string(journal.TypeTransferSingle)}})
	if err != nil {
		t.Fatalf("read all failed: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("expected 1 stored transfer, got %d", len(stored))
	}
}

func TestRecorder_SQLite(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()
	rec := NewRecorder(store, "ledger")

	ev := journal.ApprovalGlobal("0x01", "0x01", "0x02", true)
	ev.Seq = 1
	if err := rec.Append(ev); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	out, err := rec.Journal()
	if err != nil {
		t.Fatalf("journal read failed: %v", err)
	}
	if len(out) != 1 || out[0].Approved == nil || !*out[0].Approved {
		t.Errorf("unexpected journal %+v", out)
	}
}
