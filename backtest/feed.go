package backtest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradex/market"
)

// BarFeed yields bars one at a time in time order. Implementations
// return (ok=false, err=nil) at the end.
type BarFeed interface {
	Next() (b market.Bar, ok bool, err error)
	Close() error
}

// CSVBarFeed reads bar rows:
//
//	time,asset,open,high,low,close[,volume]
//
// where time is RFC3339, RFC3339Nano or a bare 2006-01-02 date. A header
// row is allowed and empty or short rows are skipped. When assets is not
// empty only those assets are returned.
type CSVBarFeed struct {
	c      io.Closer
	r      *csv.Reader
	assets map[string]struct{}
	line   int

	sawFirst bool
}

func OpenCSVBarFeed(path string, assets []string) (*CSVBarFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	feed := NewCSVBarFeed(f, assets)
	feed.c = f
	return feed, nil
}

func NewCSVBarFeed(r io.Reader, assets []string) *CSVBarFeed {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	feed := &CSVBarFeed{r: cr}
	if len(assets) > 0 {
		feed.assets = make(map[string]struct{}, len(assets))
		for _, a := range assets {
			feed.assets[strings.TrimSpace(a)] = struct{}{}
		}
	}
	return feed
}

func (f *CSVBarFeed) Close() error {
	if f.c != nil {
		return f.c.Close()
	}
	return nil
}

func (f *CSVBarFeed) Next() (market.Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if errors.Is(err, io.EOF) {
			return market.Bar{}, false, nil
		}
		if err != nil {
			return market.Bar{}, false, err
		}
		f.line++

		// Allow a single header row
		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("line %d: %w", f.line, err)
		}
		if !ok {
			continue
		}
		if f.assets != nil {
			if _, want := f.assets[b.Asset]; !want {
				continue
			}
		}
		return b, true, nil
	}
}

var timeLayouts = []string{time.RFC3339, time.RFC3339Nano, time.DateOnly}

func parseTime(s string) (time.Time, error) {
	var first error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}

func parseBarRow(row []string) (market.Bar, bool, error) {
	// Need at least: time,asset,open,high,low,close
	if len(row) < 6 {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	asset := strings.TrimSpace(row[1])
	if ts == "" || asset == "" {
		return market.Bar{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Bar{}, false, fmt.Errorf("bad time %q: %w", ts, err)
	}

	var vals [5]float64
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := range vals {
		if i+2 >= len(row) {
			break
		}
		s := strings.TrimSpace(row[i+2])
		if s == "" {
			continue
		}
		if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
			return market.Bar{}, false, fmt.Errorf("bad %s %q: %w", names[i], s, err)
		}
		if math.IsInf(vals[i], 0) || math.IsNaN(vals[i]) {
			return market.Bar{}, false, fmt.Errorf("bad %s %q: not a finite number", names[i], s)
		}
	}

	return market.Bar{
		Asset:  asset,
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true, nil
}

// SliceFeed replays bars held in memory.
type SliceFeed struct {
	bars []market.Bar
	i    int
}

func NewSliceFeed(bars []market.Bar) *SliceFeed { return &SliceFeed{bars: bars} }

func (s *SliceFeed) Next() (market.Bar, bool, error) {
	if s.i >= len(s.bars) {
		return market.Bar{}, false, nil
	}
	b := s.bars[s.i]
	s.i++
	return b, true, nil
}

func (s *SliceFeed) Close() error { return nil }
