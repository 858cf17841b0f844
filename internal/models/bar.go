package models

import "time"

// Bar: закрытая свеча: время открытия и цена закрытия.
type Bar struct {
	Time  time.Time
	Close float64
}

// Series is an ordered (oldest first) bar series of one instrument at one interval.
type Series struct {
	Symbol   string
	Interval string
	Bars     []Bar
}

func (s Series) Len() int { return len(s.Bars) }

func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the newest bar; the series must be non-empty.
func (s Series) Last() Bar { return s.Bars[len(s.Bars)-1] }
