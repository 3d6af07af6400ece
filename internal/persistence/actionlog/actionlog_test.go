package actionlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "actions")

	at := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	entries := []Entry{
		{At: at, ActionID: "a1", Agent: "bot1", Action: "mine", OK: true, Elapsed: 1200},
		{At: at.Add(time.Minute), ActionID: "a2", Agent: "bot1", Action: "craft", OK: false, Code: "E_NO_RESOURCE"},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	path := filepath.Join(dir, "actions-2026-08-24-10.jsonl.zst")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []Entry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}
	if got[0].ActionID != "a1" || got[1].Code != "E_NO_RESOURCE" {
		t.Fatalf("entries wrong: %+v", got)
	}
}

func TestRotationSplitsByHour(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "actions")

	at := time.Date(2026, 8, 24, 10, 59, 0, 0, time.UTC)
	if err := w.Write(Entry{At: at, ActionID: "a1", Agent: "bot1", Action: "mine"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(Entry{At: at.Add(2 * time.Minute), ActionID: "a2", Agent: "bot1", Action: "mine"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, name := range []string{"actions-2026-08-24-10.jsonl.zst", "actions-2026-08-24-11.jsonl.zst"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing rotated file %s: %v", name, err)
		}
	}
}
