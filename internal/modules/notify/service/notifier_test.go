package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"signal_bot/internal/models"
)

type fakeSender struct {
	enabled bool
	err     error
	sent    []string
}

func (f *fakeSender) Enabled() bool { return f.enabled }

func (f *fakeSender) Send(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

func TestNotifier_SendsAndSuppressesDuplicates(t *testing.T) {
	clock := newClock()
	saver := &memSaver{}
	sender := &fakeSender{enabled: true}
	n := NewNotifier(newTestGate(clock, saver), sender, nil)
	snap := models.NewSnapshot([]string{"A", "B"}, 40)
	ctx := context.Background()

	if !n.Notify(ctx, snap, "A", "entry A") {
		t.Fatal("first notification must be sent")
	}
	if n.Notify(ctx, snap, "A", "entry A") {
		t.Fatal("duplicate must be suppressed")
	}
	clock.advance(2 * time.Second)
	if n.Notify(ctx, snap, "B", "entry A") {
		t.Fatal("same text from another instrument inside global window must be suppressed")
	}
	if !n.Notify(ctx, snap, "B", "entry B") {
		t.Fatal("different text must be sent")
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent=%v", sender.sent)
	}
	if saver.saves != 2 {
		t.Fatalf("saves=%d, want one per sent message", saver.saves)
	}
}

func TestNotifier_MarksBeforeSendEvenOnFailure(t *testing.T) {
	saver := &memSaver{}
	sender := &fakeSender{enabled: true, err: errors.New("502 bad gateway")}
	n := NewNotifier(newTestGate(newClock(), saver), sender, nil)
	snap := models.NewSnapshot([]string{"A"}, 40)

	if n.Notify(context.Background(), snap, "A", "x") {
		t.Fatal("failed send must report false")
	}
	if saver.saves != 1 || snap.Positions["A"].LastMsg == nil {
		t.Fatal("dedup record must be persisted before the send")
	}
}

func TestNotifier_DisabledLeavesStateUntouched(t *testing.T) {
	saver := &memSaver{}
	sender := &fakeSender{}
	n := NewNotifier(newTestGate(newClock(), saver), sender, nil)
	snap := models.NewSnapshot([]string{"A"}, 40)

	if n.Notify(context.Background(), snap, "A", "x") {
		t.Fatal("disabled sender must not send")
	}
	if n.Broadcast(context.Background(), "started") {
		t.Fatal("disabled sender must not broadcast")
	}
	if len(sender.sent) != 0 || saver.saves != 0 || snap.GlobalLastMsg != nil {
		t.Fatalf("unexpected side effects: sent=%v saves=%d", sender.sent, saver.saves)
	}
}

func TestNotifier_BroadcastBypassesGate(t *testing.T) {
	saver := &memSaver{}
	sender := &fakeSender{enabled: true}
	n := NewNotifier(newTestGate(newClock(), saver), sender, nil)

	n.Broadcast(context.Background(), "bot started")
	n.Broadcast(context.Background(), "bot started")
	if len(sender.sent) != 2 || saver.saves != 0 {
		t.Fatalf("sent=%v saves=%d", sender.sent, saver.saves)
	}
}
