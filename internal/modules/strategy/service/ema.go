package service

// emaState: рекурсивная EMA без сглаживающего окна, первое значение = первой цене.
type emaState struct {
	alpha  float64
	value  float64
	seeded bool
}

func newEMA(span int) emaState {
	if span <= 1 {
		span = 1
	}
	return emaState{alpha: 2.0 / (float64(span) + 1)}
}

func (e *emaState) Update(price float64) float64 {
	if !e.seeded {
		e.value = price
		e.seeded = true
		return e.value
	}
	e.value = e.alpha*price + (1-e.alpha)*e.value
	return e.value
}

// EMA returns the exponential moving average of closes, aligned 1:1 with the input.
func EMA(closes []float64, span int) []float64 {
	if len(closes) == 0 {
		return nil
	}
	e := newEMA(span)
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = e.Update(c)
	}
	return out
}
