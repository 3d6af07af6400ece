package session

import (
	"fmt"
	"testing"
	"time"

	"minebridge/internal/protocol"
	"minebridge/internal/upstream"
)

func TestTakeEvents_ReadAndClear(t *testing.T) {
	s := testSession(t)

	s.apply(protocol.Notification{Kind: protocol.NotifyDamage, Amount: 3, AttackerID: 7})

	first := s.TakeEvents()
	if first.LastDamage == nil || first.LastDamage.Amount != 3 {
		t.Fatalf("first read should carry the damage event, got %+v", first)
	}
	second := s.TakeEvents()
	if second.LastDamage != nil {
		t.Fatalf("second read must be clear, got %+v", second.LastDamage)
	}
}

func TestApply_EffectLifecycle(t *testing.T) {
	s := testSession(t)

	s.apply(protocol.Notification{
		Kind: protocol.NotifyEffectStart, EffectID: "speed", Amplifier: 1,
		Duration: 30 * time.Second,
	})
	eff := s.Effects()
	if e, ok := eff["speed"]; !ok || e.Amplifier != 1 {
		t.Fatalf("effect should be tracked, got %v", eff)
	}

	s.apply(protocol.Notification{Kind: protocol.NotifyEffectEnd, EffectID: "speed"})
	if _, ok := s.Effects()["speed"]; ok {
		t.Fatalf("effect should be removed on end notification")
	}
}

func TestApply_VitalsAndChat(t *testing.T) {
	s := testSession(t)

	s.apply(protocol.Notification{Kind: protocol.NotifyVitals, Vitals: &protocol.Vitals{Health: 12, Food: 9}})
	if v := s.Vitals(); v.Health != 12 || v.Food != 9 {
		t.Fatalf("vitals not applied: %+v", v)
	}

	s.apply(protocol.Notification{Kind: protocol.NotifyChat, ChatKind: "chat", Message: "hello", Source: "steve"})
	tail := s.ChatTail(10)
	if len(tail) != 1 || tail[0].Text != "hello" || tail[0].Source != "steve" {
		t.Fatalf("chat not recorded: %+v", tail)
	}
}

func TestChatRing_EvictsOldest(t *testing.T) {
	s := newSession("a1", upstream.NewFake(), Config{}, 5, nil)
	t.Cleanup(s.Close)

	for i := 0; i < 8; i++ {
		s.AppendChat(protocol.ChatLine{Text: fmt.Sprintf("m%d", i)})
	}
	tail := s.ChatTail(0)
	if len(tail) != 5 {
		t.Fatalf("capacity 5, got %d lines", len(tail))
	}
	if tail[0].Text != "m3" || tail[4].Text != "m7" {
		t.Fatalf("oldest lines should be evicted first: %+v", tail)
	}
}

func TestApply_DamageForwardedToReaction(t *testing.T) {
	s := testSession(t)

	s.apply(protocol.Notification{Kind: protocol.NotifyDamage, Amount: 2, AttackerID: 42})
	select {
	case n := <-s.Damage():
		if n.AttackerID != 42 {
			t.Fatalf("wrong attacker forwarded: %+v", n)
		}
	default:
		t.Fatalf("damage notification should be forwarded")
	}
}

func TestApply_DamageForwardNeverBlocks(t *testing.T) {
	s := testSession(t)
	// Overflow the reaction channel; the pump must not block.
	for i := 0; i < 100; i++ {
		s.apply(protocol.Notification{Kind: protocol.NotifyDamage, Amount: 1})
	}
}
