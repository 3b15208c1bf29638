package market

import (
	"maps"
	"sync"
	"time"
)

// Prices is a plain asset → price lookup supplied by the data layer.
type Prices map[string]float64

// Quote is the last observed price of an asset.
type Quote struct {
	Asset string
	Price float64
	Time  time.Time
}

// PriceBook keeps the latest quote per asset. It is safe for concurrent use.
type PriceBook struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewPriceBook() *PriceBook {
	return &PriceBook{quotes: make(map[string]Quote)}
}

func (b *PriceBook) Set(q Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[q.Asset] = q
}

func (b *PriceBook) Get(asset string) (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[asset]
	return q, ok
}

// Snapshot copies the book into a Prices map.
func (b *PriceBook) Snapshot() Prices {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(Prices, len(b.quotes))
	for k, q := range b.quotes {
		out[k] = q.Price
	}
	return out
}

// Merge returns a copy of p overlaid with extra.
func (p Prices) Merge(extra Prices) Prices {
	out := make(Prices, len(p)+len(extra))
	maps.Copy(out, p)
	maps.Copy(out, extra)
	return out
}
