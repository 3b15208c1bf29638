package risk

import "fmt"

// Reason identifies why an intent was rejected.
type Reason string

const (
	ReasonDrawdownHalt    Reason = "drawdown_halt"
	ReasonPositionSize    Reason = "position_size_exceeded"
	ReasonRestrictedAsset Reason = "restricted_asset"
)

// Decision is the outcome of Authorize. A rejected decision carries exactly
// one reason: the first check that failed.
type Decision struct {
	Allowed bool
	Reason  Reason
	Msg     string

	Drawdown float64 // at decision time
	Fraction float64 // notional / equity of the intent
}

func (d *Decision) reject(r Reason, format string, args ...any) {
	d.Allowed = false
	d.Reason = r
	d.Msg = fmt.Sprintf(format, args...)
}
