package service

import (
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	state "signal_bot/internal/modules/state/service"
)

type Saver interface {
	Save(snap *models.Snapshot) error
}

// Gate антиспам: тот же текст не уходит повторно в пределах окна,
// отдельно по инструменту и глобально.
type Gate struct {
	instrumentWindow time.Duration
	globalWindow     time.Duration
	baseTP           float64
	store            Saver
	now              func() time.Time
}

func NewGate(cfg *config.Config, store *state.Store) *Gate {
	return New(cfg.Notify.InstrumentWindow, cfg.Notify.GlobalWindow, cfg.Strategy.TakeProfitPct, store, time.Now)
}

func New(instrumentWindow, globalWindow time.Duration, baseTP float64, store Saver, now func() time.Time) *Gate {
	return &Gate{
		instrumentWindow: instrumentWindow,
		globalWindow:     globalWindow,
		baseTP:           baseTP,
		store:            store,
		now:              now,
	}
}

func recent(m *models.SentMessage, text string, now int64, window time.Duration) bool {
	return m != nil && m.Text == text && now-m.TS < int64(window/time.Second)
}

// ShouldSend denies text that was the instrument's last message within the
// instrument window, or the global last message within the global window.
func (g *Gate) ShouldSend(snap *models.Snapshot, symbol, text string) bool {
	now := g.now().Unix()
	if p, ok := snap.Positions[symbol]; ok && p != nil && recent(p.LastMsg, text, now, g.instrumentWindow) {
		return false
	}
	return !recent(snap.GlobalLastMsg, text, now, g.globalWindow)
}

// MarkSent records text under the instrument and globally, then persists the
// snapshot right away so the record survives a crash after the send.
func (g *Gate) MarkSent(snap *models.Snapshot, symbol, text string) error {
	now := g.now().Unix()
	// нового инструмента ещё нет в снапшоте: Position заведёт запись с дефолтами
	p := snap.Position(symbol, g.baseTP)
	p.LastMsg = &models.SentMessage{Text: text, TS: now}
	snap.GlobalLastMsg = &models.SentMessage{Text: text, TS: now}

	if g.store == nil {
		return nil
	}
	return errors.Wrap(g.store.Save(snap), "persist dedup record")
}
