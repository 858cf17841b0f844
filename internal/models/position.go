package models

// SentMessage: последнее отправленное уведомление (текст + unix-время).
type SentMessage struct {
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// Position is the persisted per-instrument state.
// EntryPrice is non-nil exactly when InPosition is true.
type Position struct {
	InPosition bool         `json:"in_position"`
	EntryPrice *float64     `json:"entry_price"`
	TakeProfit float64      `json:"take_profit"` // percent, e.g. 40 => +40%
	LastMsg    *SentMessage `json:"last_msg"`
}

func NewPosition(baseTP float64) *Position {
	return &Position{TakeProfit: baseTP}
}

func (p *Position) Open(price, takeProfit float64) {
	entry := price
	p.InPosition = true
	p.EntryPrice = &entry
	p.TakeProfit = takeProfit
}

func (p *Position) Close(baseTP float64) {
	p.InPosition = false
	p.EntryPrice = nil
	p.TakeProfit = baseTP
}

// Entry returns the entry price or 0 when flat.
func (p *Position) Entry() float64 {
	if p == nil || p.EntryPrice == nil {
		return 0
	}
	return *p.EntryPrice
}

func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	out := *p
	if p.EntryPrice != nil {
		v := *p.EntryPrice
		out.EntryPrice = &v
	}
	if p.LastMsg != nil {
		m := *p.LastMsg
		out.LastMsg = &m
	}
	return &out
}
