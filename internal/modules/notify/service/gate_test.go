package service

import (
	"errors"
	"testing"
	"time"

	"signal_bot/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

type memSaver struct {
	saves int
	last  *models.Snapshot
	err   error
}

func (m *memSaver) Save(snap *models.Snapshot) error {
	m.saves++
	m.last = snap.Clone()
	return m.err
}

func newTestGate(clock *fakeClock, saver Saver) *Gate {
	return New(60*time.Second, 10*time.Second, 40, saver, clock.now)
}

func TestGate_InstrumentWindow(t *testing.T) {
	clock := newClock()
	g := newTestGate(clock, &memSaver{})
	snap := models.NewSnapshot([]string{"A", "B"}, 40)

	if !g.ShouldSend(snap, "A", "X") {
		t.Fatal("first send must be allowed")
	}
	if err := g.MarkSent(snap, "A", "X"); err != nil {
		t.Fatal(err)
	}

	clock.advance(30 * time.Second)
	if g.ShouldSend(snap, "A", "X") {
		t.Fatal("same text for A at t+30s must be denied")
	}
	if !g.ShouldSend(snap, "A", "other text") {
		t.Fatal("different text must be allowed")
	}

	clock.advance(31 * time.Second) // t+61s
	if !g.ShouldSend(snap, "A", "X") {
		t.Fatal("same text for A at t+61s must be allowed")
	}
}

func TestGate_GlobalWindow(t *testing.T) {
	clock := newClock()
	g := newTestGate(clock, &memSaver{})
	snap := models.NewSnapshot([]string{"A", "B"}, 40)

	if err := g.MarkSent(snap, "A", "Y"); err != nil {
		t.Fatal(err)
	}

	clock.advance(5 * time.Second)
	if g.ShouldSend(snap, "B", "Y") {
		t.Fatal("same text for B at t+5s must be denied by the global window")
	}

	clock.advance(6 * time.Second) // t+11s
	if !g.ShouldSend(snap, "B", "Y") {
		t.Fatal("same text for B at t+11s must be allowed")
	}
	if g.ShouldSend(snap, "A", "Y") {
		t.Fatal("A is still inside its own window")
	}
}

func TestGate_WindowBoundary(t *testing.T) {
	clock := newClock()
	g := newTestGate(clock, nil)
	snap := models.NewSnapshot([]string{"A"}, 40)
	_ = g.MarkSent(snap, "A", "X")

	clock.advance(59 * time.Second)
	if g.ShouldSend(snap, "A", "X") {
		t.Fatal("t+59s must be denied")
	}
	clock.advance(time.Second)
	if !g.ShouldSend(snap, "A", "X") {
		t.Fatal("t+60s must be allowed")
	}
}

func TestGate_MarkSentRecordsAndPersists(t *testing.T) {
	clock := newClock()
	saver := &memSaver{}
	g := newTestGate(clock, saver)
	snap := models.NewSnapshot([]string{"A"}, 40)

	if err := g.MarkSent(snap, "A", "hello"); err != nil {
		t.Fatal(err)
	}
	want := models.SentMessage{Text: "hello", TS: clock.t.Unix()}
	if *snap.Positions["A"].LastMsg != want || *snap.GlobalLastMsg != want {
		t.Fatalf("records %+v %+v", snap.Positions["A"].LastMsg, snap.GlobalLastMsg)
	}
	if saver.saves != 1 {
		t.Fatalf("saves=%d, want 1", saver.saves)
	}
	if *saver.last.GlobalLastMsg != want {
		t.Fatalf("persisted %+v", saver.last.GlobalLastMsg)
	}
}

func TestGate_MarkSentUnknownInstrument(t *testing.T) {
	g := newTestGate(newClock(), nil)
	snap := &models.Snapshot{}
	if err := g.MarkSent(snap, "NEW", "x"); err != nil {
		t.Fatal(err)
	}
	p := snap.Positions["NEW"]
	if p == nil || p.LastMsg == nil || p.LastMsg.Text != "x" {
		t.Fatalf("record not created: %+v", snap.Positions)
	}
	if p.InPosition || p.EntryPrice != nil || p.TakeProfit != 40 {
		t.Fatalf("new record must carry defaults: %+v", p)
	}
}

func TestGate_MarkSentSaveError(t *testing.T) {
	g := newTestGate(newClock(), &memSaver{err: errors.New("disk full")})
	snap := models.NewSnapshot([]string{"A"}, 40)
	if err := g.MarkSent(snap, "A", "x"); err == nil {
		t.Fatal("expected error")
	}
	// в памяти запись всё равно есть
	if snap.GlobalLastMsg == nil {
		t.Fatal("in-memory record lost")
	}
}
