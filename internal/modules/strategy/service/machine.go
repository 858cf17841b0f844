package service

import (
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

type Kind string

const (
	KindNone       Kind = ""
	KindEntry      Kind = "entry"
	KindTakeProfit Kind = "take_profit"
	KindStopLoss   Kind = "stop_loss"
	KindUpgrade    Kind = "tp_upgrade"
)

// Params: пороги стратегии, проценты (10 => 10%).
type Params struct {
	FastInterval string
	FastShort    int
	FastLong     int
	TrendShort   int
	TrendLong    int

	StopLossPct float64
	BaseTP      float64
	UpgradedTP  float64
}

// Input is everything the machine needs about one instrument for one cycle.
type Input struct {
	Price      float64
	EntryCross bool // fast EMA upward crossover on the newest bar
	TrendCross bool // trend EMA upward crossover, previous day -> current day
}

// Transition describes what happened to a position; Kind is KindNone when nothing did.
type Transition struct {
	Kind       Kind
	Price      float64
	Entry      float64
	TakeProfit float64
}

func (t Transition) Changed() bool { return t.Kind != KindNone }

type Machine struct {
	p Params
}

func NewMachine(p Params) *Machine {
	return &Machine{p: p}
}

func NewParams(cfg *config.Config) Params {
	s := cfg.Strategy
	return Params{
		FastInterval: s.FastInterval,
		FastShort:    s.FastShort,
		FastLong:     s.FastLong,
		TrendShort:   s.TrendShort,
		TrendLong:    s.TrendLong,
		StopLossPct:  s.StopLossPct,
		BaseTP:       s.TakeProfitPct,
		UpgradedTP:   s.UpgradedTakeProfitPct,
	}
}

func (m *Machine) Params() Params { return m.p }

// StopLevel is the price at or below which an open position is stopped out.
func (m *Machine) StopLevel(entry float64) float64 {
	return entry - entry*m.p.StopLossPct/100
}

// TargetLevel is the take-profit price for entry at tp percent.
func (m *Machine) TargetLevel(entry, tp float64) float64 {
	return entry + entry*tp/100
}

// Step applies at most one transition to pos.
// Open positions are checked in order: take-profit, stop-loss, upgrade.
func (m *Machine) Step(pos *models.Position, in Input) Transition {
	if !pos.InPosition || pos.EntryPrice == nil {
		if !in.EntryCross {
			return Transition{}
		}
		pos.Open(in.Price, m.p.BaseTP)
		return Transition{Kind: KindEntry, Price: in.Price, Entry: in.Price, TakeProfit: m.p.BaseTP}
	}

	entry := *pos.EntryPrice
	tp := pos.TakeProfit
	if tp <= 0 {
		tp = m.p.BaseTP
	}

	switch {
	case in.Price >= m.TargetLevel(entry, tp):
		pos.Close(m.p.BaseTP)
		return Transition{Kind: KindTakeProfit, Price: in.Price, Entry: entry, TakeProfit: tp}

	case in.Price <= m.StopLevel(entry):
		pos.Close(m.p.BaseTP)
		return Transition{Kind: KindStopLoss, Price: in.Price, Entry: entry, TakeProfit: tp}

	case in.TrendCross && pos.TakeProfit != m.p.UpgradedTP:
		pos.TakeProfit = m.p.UpgradedTP
		return Transition{Kind: KindUpgrade, Price: in.Price, Entry: entry, TakeProfit: m.p.UpgradedTP}
	}
	return Transition{}
}
