package tuning

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tn, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.MineIdle() != 20*time.Second {
		t.Fatalf("default mine idle: got %v", tn.MineIdle())
	}
	if tn.ShieldMinGap() != 600*time.Millisecond {
		t.Fatalf("default shield min gap: got %v", tn.ShieldMinGap())
	}
	if tn.ChatLogCapacity != 100 {
		t.Fatalf("default chat capacity: got %d", tn.ChatLogCapacity)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "actions:\n  mine_idle_s: 7\nbehaviors:\n  shield_radius: 4.5\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tn, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.MineIdle() != 7*time.Second {
		t.Fatalf("override mine idle: got %v", tn.MineIdle())
	}
	if tn.Behaviors.ShieldRadius != 4.5 {
		t.Fatalf("override shield radius: got %v", tn.Behaviors.ShieldRadius)
	}
	// Untouched fields keep defaults.
	if tn.Actions.RefuelAttempts != 2 {
		t.Fatalf("refuel attempts default lost: got %d", tn.Actions.RefuelAttempts)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("actions: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
