package service

import (
	"time"

	"signal_bot/internal/models"
)

// Pair: значения короткой и длинной EMA на одном баре.
type Pair struct {
	Short float64
	Long  float64
}

// Bullish reports short strictly above long.
func (p Pair) Bullish() bool { return p.Short > p.Long }

// CrossedUp is true when short moved from strictly below long to strictly above it.
func CrossedUp(prev, curr Pair) bool {
	return prev.Short < prev.Long && curr.Short > curr.Long
}

// LastPairs returns EMA pairs of the two newest bars.
func LastPairs(closes []float64, short, long int) (prev, curr Pair, ok bool) {
	n := len(closes)
	if n < 2 {
		return Pair{}, Pair{}, false
	}
	s := EMA(closes, short)
	l := EMA(closes, long)
	return Pair{s[n-2], l[n-2]}, Pair{s[n-1], l[n-1]}, true
}

// TrendPairs returns EMA pairs for the newest bar and for the last bar of the
// preceding calendar day (UTC). Rows are picked by date, not by index, so a
// re-fetched window that repeats or splits the current day does not shift "previous".
func TrendPairs(series models.Series, short, long int) (prev, curr Pair, ok bool) {
	n := series.Len()
	if n < 2 {
		return Pair{}, Pair{}, false
	}
	s := EMA(series.Closes(), short)
	l := EMA(series.Closes(), long)

	currDay := day(series.Bars[n-1].Time)
	for i := n - 2; i >= 0; i-- {
		if day(series.Bars[i].Time).Before(currDay) {
			return Pair{s[i], l[i]}, Pair{s[n-1], l[n-1]}, true
		}
	}
	return Pair{}, Pair{}, false
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
