package service

import (
	"sync/atomic"
	"time"
)

// State: то, что видно снаружи через /healthz. Ready после первого полного цикла.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	cycles          atomic.Int64
	lastCycleUnix   atomic.Int64 // unix seconds
	lastCycleMillis atomic.Int64
	openPositions   atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// CycleDone records a finished cycle and marks the service ready.
func (s *State) CycleDone(at time.Time, took time.Duration, open int) {
	s.cycles.Add(1)
	s.lastCycleUnix.Store(at.Unix())
	s.lastCycleMillis.Store(took.Milliseconds())
	s.openPositions.Store(int64(open))
	s.ready.Store(true)
}

func (s *State) Cycles() int64 { return s.cycles.Load() }

func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) LastCycleDuration() time.Duration {
	return time.Duration(s.lastCycleMillis.Load()) * time.Millisecond
}

func (s *State) OpenPositions() int { return int(s.openPositions.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
