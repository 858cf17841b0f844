package models

// GlobalLastMsgKey is the document key holding the cross-instrument dedup record.
const GlobalLastMsgKey = "global_last_msg"

// Snapshot: полное состояние бота: позиции по инструментам + глобальный dedup.
type Snapshot struct {
	Positions     map[string]*Position
	GlobalLastMsg *SentMessage
}

// NewSnapshot returns a pristine snapshot with a default position per instrument.
func NewSnapshot(instruments []string, baseTP float64) *Snapshot {
	s := &Snapshot{Positions: make(map[string]*Position, len(instruments))}
	for _, sym := range instruments {
		s.Positions[sym] = NewPosition(baseTP)
	}
	return s
}

// Position returns the record for symbol, creating a default one if absent.
func (s *Snapshot) Position(symbol string, baseTP float64) *Position {
	if s.Positions == nil {
		s.Positions = make(map[string]*Position)
	}
	p, ok := s.Positions[symbol]
	if !ok || p == nil {
		p = NewPosition(baseTP)
		s.Positions[symbol] = p
	}
	return p
}

func (s *Snapshot) OpenCount() int {
	n := 0
	for _, p := range s.Positions {
		if p != nil && p.InPosition {
			n++
		}
	}
	return n
}

func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Positions: make(map[string]*Position, len(s.Positions))}
	for k, v := range s.Positions {
		out.Positions[k] = v.Clone()
	}
	if s.GlobalLastMsg != nil {
		m := *s.GlobalLastMsg
		out.GlobalLastMsg = &m
	}
	return out
}
