package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestActions_RoundTrip(t *testing.T) {
	s := openTest(t)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	s.RecordAction(ActionRow{ID: "a1", Agent: "bot1", Action: "mine", OK: true, Elapsed: 900, At: base, Raw: "{}"})
	s.RecordAction(ActionRow{ID: "a2", Agent: "bot1", Action: "smelt", OK: false, Code: "E_OUT_OF_FUEL", At: base.Add(time.Minute), Raw: "{}"})
	s.RecordAction(ActionRow{ID: "a3", Agent: "bot2", Action: "craft", OK: true, At: base, Raw: "{}"})
	s.Sync()

	got, err := s.RecentActions(context.Background(), "bot1", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].ID != "a2" || got[0].Code != "E_OUT_OF_FUEL" || got[0].OK {
		t.Fatalf("newest row wrong: %+v", got[0])
	}
	if got[1].ID != "a1" || !got[1].OK {
		t.Fatalf("older row wrong: %+v", got[1])
	}
}

func TestChat_PerAgentIsolation(t *testing.T) {
	s := openTest(t)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	s.RecordChat(ChatRow{Agent: "bot1", Kind: "chat", Source: "alice", Text: "hi bot", At: base})
	s.RecordChat(ChatRow{Agent: "bot2", Kind: "chat", Source: "bob", Text: "other bot", At: base})
	s.Sync()

	got, err := s.RecentChat(context.Background(), "bot1", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Source != "alice" {
		t.Fatalf("chat rows wrong: %+v", got)
	}
}

func TestWriteAfterClose_IsNoop(t *testing.T) {
	s := openTest(t)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Must not panic on the closed channel.
	s.RecordAction(ActionRow{ID: "late", Agent: "bot1", Action: "mine"})
	s.RecordChat(ChatRow{Agent: "bot1", Kind: "chat", Text: "late"})
	s.Sync()
}
