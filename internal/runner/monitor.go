package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	market "signal_bot/internal/modules/market/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

type Fetcher interface {
	History(ctx context.Context, req market.Request) (models.Series, bool)
}

type StateStore interface {
	Load() *models.Snapshot
	Save(snap *models.Snapshot) error
}

type Notifier interface {
	Notify(ctx context.Context, snap *models.Snapshot, symbol, text string) bool
	Broadcast(ctx context.Context, text string) bool
}

// Monitor: цикл опроса: для каждого инструмента свечи -> EMA -> автомат -> уведомление.
type Monitor struct {
	cfg      *config.Config
	fetcher  Fetcher
	store    StateStore
	notifier Notifier
	machine  *strategy.Machine
	health   *health.State
	metrics  *metrics.Recorder
}

func NewMonitor(
	cfg *config.Config,
	fetcher Fetcher,
	store StateStore,
	notifier Notifier,
	machine *strategy.Machine,
	hs *health.State,
	m *metrics.Recorder,
) *Monitor {
	if hs == nil {
		hs = health.NewState()
	}
	return &Monitor{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		machine:  machine,
		health:   hs,
		metrics:  m,
	}
}

// Bootstrap announces the start and materialises the default state on disk.
func (m *Monitor) Bootstrap(ctx context.Context) {
	logger.Info("🚀 bot started, watching %d instruments", len(m.cfg.Instruments))
	m.notifier.Broadcast(ctx, "🚀 Bot started")
	m.save(m.store.Load())
}

// Run repeats cycles until ctx is cancelled. Cancellation is checked between
// instruments and between a cycle and the wait; an instrument already started
// runs to completion.
func (m *Monitor) Run(ctx context.Context) {
	for {
		m.RunCycle(ctx)
		if ctx.Err() != nil {
			return
		}

		t := time.NewTimer(m.cfg.Runner.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// RunCycle evaluates every configured instrument once, saving after each one
// and once more at the end.
func (m *Monitor) RunCycle(ctx context.Context) {
	started := time.Now()
	cycleID := uuid.NewString()

	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.cycle")
	span.SetTag("cycle_id", cycleID)
	defer span.Finish()

	snap := m.store.Load()
	for _, sym := range m.cfg.Instruments {
		if ctx.Err() != nil {
			logger.Info("shutdown requested, cycle %s stopped before %s", cycleID, sym)
			break
		}
		if err := m.processSymbol(ctx, snap, sym); err != nil {
			logger.Symbol(sym).Error("processing failed: %v", err)
		}
		m.save(snap)
	}
	m.save(snap)

	took := time.Since(started)
	open := snap.OpenCount()
	m.health.CycleDone(time.Now(), took, open)
	m.metrics.CycleDone(took)
	m.metrics.OpenPositions(open)
}

func (m *Monitor) save(snap *models.Snapshot) {
	if err := m.store.Save(snap); err != nil {
		logger.Error("state save failed: %v", err)
		m.metrics.SaveError()
	}
}

// processSymbol turns panics into errors so one instrument cannot abort the cycle.
func (m *Monitor) processSymbol(ctx context.Context, snap *models.Snapshot, sym string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	// начатый инструмент доводим до конца: остановка не обрывает его загрузки
	ctx = context.WithoutCancel(ctx)
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.instrument")
	span.SetTag("symbol", sym)
	defer span.Finish()

	log := logger.Symbol(sym)
	s := m.cfg.Strategy
	p := m.machine.Params()

	fast, ok := m.fetcher.History(ctx, market.Request{Symbol: sym, Interval: s.FastInterval, Range: s.FastRange})
	if !ok || fast.Len() < p.FastLong+2 {
		log.Info("not enough %s data for %s or download failed", s.FastInterval, sym)
		return nil
	}
	prev, curr, _ := strategy.LastPairs(fast.Closes(), p.FastShort, p.FastLong)
	price := fast.Last().Close

	trend, ok := m.fetcher.History(ctx, market.Request{Symbol: sym, Interval: s.TrendInterval, Range: s.TrendRange})
	if !ok || trend.Len() < p.TrendLong+1 {
		log.Info("not enough %s data for %s or download failed", s.TrendInterval, sym)
		return nil
	}
	trendPrev, trendCurr, ok := strategy.TrendPairs(trend, p.TrendShort, p.TrendLong)
	if !ok {
		log.Info("%s series for %s has no previous day", s.TrendInterval, sym)
		return nil
	}

	pos := snap.Position(sym, p.BaseTP)
	tr := m.machine.Step(pos, strategy.Input{
		Price:      price,
		EntryCross: strategy.CrossedUp(prev, curr),
		TrendCross: strategy.CrossedUp(trendPrev, trendCurr),
	})
	if !tr.Changed() {
		return nil
	}

	m.metrics.Transition(string(tr.Kind))
	log.Info("%s", summary(sym, tr))
	m.notifier.Notify(ctx, snap, sym, m.machine.Message(sym, tr, trendCurr))
	return nil
}

func summary(sym string, tr strategy.Transition) string {
	switch tr.Kind {
	case strategy.KindEntry:
		return fmt.Sprintf("BUY signal: %s | Price: %.2f", sym, tr.Price)
	case strategy.KindTakeProfit:
		return fmt.Sprintf("TAKE PROFIT: %s | Price: %.2f | Entry: %.2f | Target: %v%%", sym, tr.Price, tr.Entry, tr.TakeProfit)
	case strategy.KindStopLoss:
		return fmt.Sprintf("STOP LOSS: %s | Price: %.2f | Entry: %.2f", sym, tr.Price, tr.Entry)
	case strategy.KindUpgrade:
		return fmt.Sprintf("TP UPGRADE: %s | new target %v%%", sym, tr.TakeProfit)
	}
	return string(tr.Kind)
}
