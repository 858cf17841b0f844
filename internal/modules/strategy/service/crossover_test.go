package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"
)

func TestCrossedUp(t *testing.T) {
	cases := []struct {
		name       string
		prev, curr Pair
		want       bool
	}{
		{"cross up", Pair{1, 2}, Pair{3, 2}, true},
		{"already above", Pair{3, 2}, Pair{4, 2}, false},
		{"cross down", Pair{3, 2}, Pair{1, 2}, false},
		{"flat equal both bars", Pair{2, 2}, Pair{2, 2}, false},
		{"touch from below", Pair{1, 2}, Pair{2, 2}, false},
		{"from equal to above", Pair{2, 2}, Pair{3, 2}, false},
		{"stays below", Pair{1, 2}, Pair{1.5, 2}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CrossedUp(tc.prev, tc.curr); got != tc.want {
				t.Fatalf("CrossedUp(%v, %v)=%v, want %v", tc.prev, tc.curr, got, tc.want)
			}
		})
	}
}

func TestLastPairs_DetectsCrossOnNewestBar(t *testing.T) {
	// falling then a jump: short EMA reacts faster and crosses long on the last bar
	closes := []float64{10, 9, 8, 7, 6, 5, 30}
	prev, curr, ok := LastPairs(closes, 2, 5)
	if !ok {
		t.Fatal("expected ok")
	}
	if !CrossedUp(prev, curr) {
		t.Fatalf("expected cross up, prev=%v curr=%v", prev, curr)
	}
}

func TestLastPairs_ShortSeries(t *testing.T) {
	if _, _, ok := LastPairs([]float64{1}, 2, 3); ok {
		t.Fatal("expected not ok for one bar")
	}
}

func dailySeries(start time.Time, closes ...float64) models.Series {
	s := models.Series{Symbol: "TEST", Interval: "1d"}
	for i, c := range closes {
		s.Bars = append(s.Bars, models.Bar{Time: start.AddDate(0, 0, i), Close: c})
	}
	return s
}

func TestTrendPairs_PreviousIsPriorCalendarDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := dailySeries(start, 10, 9, 8, 7, 6, 5, 30)

	prev, curr, ok := TrendPairs(s, 2, 5)
	if !ok {
		t.Fatal("expected ok")
	}
	wantPrev, wantCurr, _ := LastPairs(s.Closes(), 2, 5)
	if prev != wantPrev || curr != wantCurr {
		t.Fatalf("got prev=%v curr=%v, want prev=%v curr=%v", prev, curr, wantPrev, wantCurr)
	}
}

func TestTrendPairs_IntradayDuplicateSkipped(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := dailySeries(start, 10, 9, 8, 7, 6)
	// partial bar of the same day as the last one
	last := s.Bars[len(s.Bars)-1]
	s.Bars = append(s.Bars, models.Bar{Time: last.Time.Add(15 * time.Hour), Close: 30})

	prev, _, ok := TrendPairs(s, 2, 5)
	if !ok {
		t.Fatal("expected ok")
	}
	short := EMA(s.Closes(), 2)
	long := EMA(s.Closes(), 5)
	// previous must be index 3 (2024-01-04), not index 4 (same day as the newest)
	if prev.Short != short[3] || prev.Long != long[3] {
		t.Fatalf("prev=%v, want {%v %v}", prev, short[3], long[3])
	}
}

func TestTrendPairs_SingleDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := models.Series{Bars: []models.Bar{{Time: day, Close: 1}, {Time: day.Add(time.Hour), Close: 2}}}
	if _, _, ok := TrendPairs(s, 2, 3); ok {
		t.Fatal("expected not ok when all bars share one day")
	}
}
