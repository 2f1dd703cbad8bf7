// Package report renders backtest results for humans.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"simtrader/internal/backtest"
)

// Write renders the summary block for a finished run. varLevel is the VaR
// confidence level as a fraction (0.05 prints as "5%").
func Write(w io.Writer, res *backtest.Result, varLevel float64) error {
	m := res.Metrics

	var b strings.Builder
	b.WriteString("BACKTEST RESULTS\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Symbol: %s\n", res.Symbol)
	fmt.Fprintf(&b, "Strategy: %s\n", res.Strategy)
	fmt.Fprintf(&b, "Initial Capital: $%s\n", formatMoney(res.InitialCash))
	fmt.Fprintf(&b, "Final Value: $%s\n", formatMoney(res.FinalValue))
	fmt.Fprintf(&b, "Total Return: %.2f%%\n", m.TotalReturn*100)
	fmt.Fprintf(&b, "Total Trades: %d\n", m.TotalTrades)
	b.WriteString("\n")
	b.WriteString("RISK METRICS\n")
	b.WriteString("============\n")
	fmt.Fprintf(&b, "Sharpe Ratio: %.3f\n", m.SharpeRatio)
	fmt.Fprintf(&b, "Maximum Drawdown: %.2f%%\n", m.MaxDrawdown*100)
	fmt.Fprintf(&b, "Value at Risk (%s%%): %.2f%%\n", trimFloat(varLevel*100), m.ValueAtRisk*100)
	fmt.Fprintf(&b, "Win Rate: %.2f%%\n", m.WinRate*100)

	if res.Stopped {
		b.WriteString("\nRun stopped early: drawdown limit reached.\n")
	}
	if res.Failed {
		fmt.Fprintf(&b, "\nRun failed: %s\n", res.FailureReason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatMoney renders a dollar amount with thousands separators and two
// decimal places.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// trimFloat renders a float without trailing zeros (5, 2.5).
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
