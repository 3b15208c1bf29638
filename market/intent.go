package market

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Side is the direction of a trade intent.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Sign returns +1 for buys and -1 for sells.
func (s Side) Sign() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

// TradeIntent is an unexecuted order proposed by a strategy. It is
// produced outside the engine and consumed exactly once by the gate.
type TradeIntent struct {
	Asset    string
	Side     Side
	Quantity float64
	Price    float64
	Time     time.Time
}

// Notional is quantity × price.
func (t TradeIntent) Notional() float64 {
	return t.Quantity * t.Price
}

func (t TradeIntent) String() string {
	return fmt.Sprintf("%s %g %s @ %g", t.Side, t.Quantity, t.Asset, t.Price)
}

// ValidationError reports a malformed intent. It is returned before the
// intent reaches any stateful component.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid intent: %s %s", e.Field, e.Reason)
}

// Validate checks the structural preconditions of an intent.
func (t TradeIntent) Validate() error {
	if strings.TrimSpace(t.Asset) == "" {
		return &ValidationError{Field: "asset", Reason: "is required"}
	}
	if t.Side != Buy && t.Side != Sell {
		return &ValidationError{Field: "side", Reason: fmt.Sprintf("must be buy or sell, got %q", t.Side)}
	}
	if !(t.Quantity > 0) || math.IsInf(t.Quantity, 0) {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if !(t.Price > 0) || math.IsInf(t.Price, 0) {
		return &ValidationError{Field: "price", Reason: "must be positive"}
	}
	return nil
}
