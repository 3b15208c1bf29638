package market

import "time"

// Bar is one OHLCV period of an asset.
type Bar struct {
	Asset  string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Quote marks the asset at the bar's close.
func (b Bar) Quote() Quote {
	return Quote{Asset: b.Asset, Price: b.Close, Time: b.Time}
}
