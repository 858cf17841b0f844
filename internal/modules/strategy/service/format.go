package service

import (
	"fmt"
	"strconv"
	"strings"
)

const tableRule = "+--------------------+----------------+----------------------+\n"

func aboveBelow(price, level float64) string {
	if price > level {
		return "ABOVE ✅"
	}
	return "BELOW ❌"
}

func (m *Machine) trendRelation(trend Pair) string {
	if trend.Bullish() {
		return fmt.Sprintf("EMA%d > EMA%d (UP ✅)", m.p.TrendShort, m.p.TrendLong)
	}
	return fmt.Sprintf("EMA%d < EMA%d (DOWN ❌)", m.p.TrendShort, m.p.TrendLong)
}

// Message renders the notification text for a transition.
func (m *Machine) Message(symbol string, t Transition, trend Pair) string {
	switch t.Kind {
	case KindEntry:
		return m.entryMessage(symbol, t, trend)
	case KindTakeProfit:
		return fmt.Sprintf("✅ %s take-profit target (%s%%) hit! Price: %.2f | Entry: %.2f",
			symbol, pct(t.TakeProfit), t.Price, t.Entry)
	case KindStopLoss:
		return m.stopLossMessage(symbol, t, trend)
	case KindUpgrade:
		return fmt.Sprintf("🔄 %s UPDATE!\nDaily EMA%d crossed above EMA%d.\nNew take-profit target: %s%%",
			symbol, m.p.TrendShort, m.p.TrendLong, pct(m.p.UpgradedTP))
	}
	return ""
}

func (m *Machine) entryMessage(symbol string, t Transition, trend Pair) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n📊 %s BUY SIGNAL\n", symbol)
	fmt.Fprintf(&b, "%s EMA%d & EMA%d crossover up!\n\n", strings.ToUpper(m.p.FastInterval), m.p.FastShort, m.p.FastLong)
	b.WriteString(tableRule)
	b.WriteString("|   Indicator        |   Value        |   Status             |\n")
	b.WriteString(tableRule)
	fmt.Fprintf(&b, "| Daily EMA%-9d | %14s | Price %-14s |\n", m.p.TrendShort, money(trend.Short), aboveBelow(t.Price, trend.Short))
	fmt.Fprintf(&b, "| Daily EMA%-9d | %14s | Price %-14s |\n", m.p.TrendLong, money(trend.Long), aboveBelow(t.Price, trend.Long))
	fmt.Fprintf(&b, "| Entry price        | %14s | %-20s |\n", money(t.Price), "")
	fmt.Fprintf(&b, "| Stop-loss level    | %14s | -%-19s |\n", money(m.StopLevel(t.Entry)), pct(m.p.StopLossPct)+"%")
	fmt.Fprintf(&b, "| Take-profit target | %14s | +%-19s |\n", money(m.TargetLevel(t.Entry, t.TakeProfit)), pct(t.TakeProfit)+"%")
	b.WriteString(tableRule)
	fmt.Fprintf(&b, "Trend: %s\n", m.trendRelation(trend))
	if trend.Bullish() {
		fmt.Fprintf(&b, "Daily EMA%d is ABOVE EMA%d ✅ | Target upgrades to %s%%\n", m.p.TrendShort, m.p.TrendLong, pct(m.p.UpgradedTP))
	} else {
		fmt.Fprintf(&b, "Daily EMA%d has not crossed above EMA%d yet ❌\n", m.p.TrendShort, m.p.TrendLong)
	}
	return b.String()
}

func (m *Machine) stopLossMessage(symbol string, t Transition, trend Pair) string {
	loss := (t.Price - t.Entry) / t.Entry * 100

	var b strings.Builder
	fmt.Fprintf(&b, "\n⚠️ %s STOP-LOSS TRIGGERED!\n\n", symbol)
	b.WriteString(tableRule)
	b.WriteString("|   Indicator        |   Value        |   Status             |\n")
	b.WriteString(tableRule)
	fmt.Fprintf(&b, "| Entry price        | %14s | %-20s |\n", money(t.Entry), "")
	fmt.Fprintf(&b, "| Current price      | %14s | %-20s |\n", money(t.Price), "")
	fmt.Fprintf(&b, "| Stop-loss level    | %14s | -%-19s |\n", money(m.StopLevel(t.Entry)), pct(m.p.StopLossPct)+"%")
	fmt.Fprintf(&b, "| Daily EMA%-9d | %14s | Price %-14s |\n", m.p.TrendShort, money(trend.Short), aboveBelow(t.Price, trend.Short))
	fmt.Fprintf(&b, "| Daily EMA%-9d | %14s | Price %-14s |\n", m.p.TrendLong, money(trend.Long), aboveBelow(t.Price, trend.Long))
	b.WriteString(tableRule)
	fmt.Fprintf(&b, "Trend: %s\n", m.trendRelation(trend))
	fmt.Fprintf(&b, "Realised loss: %.2f%%\n", loss)
	return b.String()
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// money formats v with two decimals and thousands separators: 1234567.891 -> "1,234,567.89".
func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
