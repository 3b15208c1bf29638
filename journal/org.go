package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradex/ledger"
)

// FormatTradeOrg renders a trade as an Org-mode block. Structured facts
// go in the PROPERTIES drawer, followed by an empty Review section.
func FormatTradeOrg(t ledger.TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s %s (%s)\n", strings.ToUpper(string(t.Side)), t.Asset, fmtQty(t.Quantity), shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ASSET: %s\n", t.Asset)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":QUANTITY: %s\n", fmtQty(t.Quantity))
	fmt.Fprintf(&b, ":PRICE: %.4f\n", t.Price)
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission)
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", t.RealizedPL)
	fmt.Fprintf(&b, ":CASH_AFTER: %.2f\n", t.CashAfter)
	fmt.Fprintf(&b, ":EQUITY_AFTER: %.2f\n", t.EquityAfter)
	fmt.Fprintf(&b, ":TIME: %s\n", t.Time.UTC().Format(time.RFC3339))
	b.WriteString(":END:\n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []ledger.TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func fmtQty(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", q), "0"), ".")
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
