package service

import (
	"context"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

const (
	resultSent       = "sent"
	resultSuppressed = "suppressed"
	resultFailed     = "failed"
	resultDisabled   = "disabled"
)

// Notifier: dedup -> mark -> send. Ошибки только логируются.
type Notifier struct {
	gate    *Gate
	sender  Sender
	metrics *metrics.Recorder
}

func NewNotifier(gate *Gate, sender Sender, m *metrics.Recorder) *Notifier {
	return &Notifier{gate: gate, sender: sender, metrics: m}
}

// Notify sends text for symbol unless the gate suppresses it. The dedup record
// is persisted before the HTTP call.
func (n *Notifier) Notify(ctx context.Context, snap *models.Snapshot, symbol, text string) bool {
	log := logger.Symbol(symbol)
	if !n.sender.Enabled() {
		log.Warn("telegram credentials missing, notification dropped")
		n.metrics.Notification(resultDisabled)
		return false
	}
	if !n.gate.ShouldSend(snap, symbol, text) {
		log.Info("duplicate notification suppressed")
		n.metrics.Notification(resultSuppressed)
		return false
	}
	if err := n.gate.MarkSent(snap, symbol, text); err != nil {
		log.Error("state save failed: %v", err)
		n.metrics.SaveError()
	}
	if err := n.sender.Send(ctx, text); err != nil {
		log.Error("telegram send failed: %v", err)
		n.metrics.Notification(resultFailed)
		return false
	}
	n.metrics.Notification(resultSent)
	return true
}

// Broadcast sends a service message that bypasses the dedup gate.
func (n *Notifier) Broadcast(ctx context.Context, text string) bool {
	if !n.sender.Enabled() {
		logger.Warn("telegram credentials missing, notification dropped")
		n.metrics.Notification(resultDisabled)
		return false
	}
	if err := n.sender.Send(ctx, text); err != nil {
		logger.Error("telegram send failed: %v", err)
		n.metrics.Notification(resultFailed)
		return false
	}
	n.metrics.Notification(resultSent)
	return true
}
