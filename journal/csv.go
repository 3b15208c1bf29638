package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/risk"
)

var (
	tradeHeader      = []string{"id", "time", "asset", "side", "quantity", "price", "commission", "realized_pl", "cash_after", "equity_after"}
	complianceHeader = []string{"time", "asset", "corruption_index", "esg_score", "segment", "verdict", "reasons"}
	resultHeader     = []string{"time", "asset", "side", "quantity", "price", "outcome", "reason", "detail", "equity"}
)

// CSV writes one file per log. Halt events go to the results file with
// outcome "halt".
type CSV struct {
	mu         sync.Mutex
	trades     *csv.Writer
	compliance *csv.Writer
	results    *csv.Writer
	files      []*os.File
}

func NewCSV(tradesPath, compliancePath, resultsPath string) (*CSV, error) {
	j := &CSV{}

	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)

		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.trades, err = open(tradesPath, tradeHeader); err != nil {
		return nil, errors.Join(err, j.closeFiles())
	}
	if j.compliance, err = open(compliancePath, complianceHeader); err != nil {
		return nil, errors.Join(err, j.closeFiles())
	}
	if j.results, err = open(resultsPath, resultHeader); err != nil {
		return nil, errors.Join(err, j.closeFiles())
	}
	return j, nil
}

func (j *CSV) RecordTrade(t ledger.TradeRecord) error {
	return j.write(j.trades, []string{
		t.ID,
		ts(t.Time),
		t.Asset,
		string(t.Side),
		f(t.Quantity),
		f(t.Price),
		f(t.Commission),
		f(t.RealizedPL),
		f(t.CashAfter),
		f(t.EquityAfter),
	})
}

func (j *CSV) RecordCompliance(c compliance.Record) error {
	return j.write(j.compliance, []string{
		ts(c.Time),
		c.Asset,
		f(c.CorruptionIndex),
		f(c.ESGScore),
		c.Segment,
		string(c.Verdict),
		strings.Join(c.Reasons, "; "),
	})
}

func (j *CSV) RecordResult(r gate.Result) error {
	in := r.Intent
	return j.write(j.results, []string{
		ts(in.Time),
		in.Asset,
		string(in.Side),
		f(in.Quantity),
		f(in.Price),
		string(r.Outcome),
		string(r.Reason),
		r.Detail,
		f(r.Equity),
	})
}

func (j *CSV) RecordHalt(h risk.HaltEvent) error {
	return j.write(j.results, []string{
		ts(h.Time),
		"", "", "", "",
		"halt",
		string(risk.ReasonDrawdownHalt),
		fmt.Sprintf("drawdown %.4f >= %.4f from peak %.2f", h.Drawdown, h.Threshold, h.Peak),
		f(h.Equity),
	})
}

func (j *CSV) write(w *csv.Writer, row []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var errs []error
	for _, w := range []*csv.Writer{j.trades, j.compliance, j.results} {
		w.Flush()
		errs = append(errs, w.Error())
	}
	errs = append(errs, j.closeFiles())
	return errors.Join(errs...)
}

func (j *CSV) closeFiles() error {
	var errs []error
	for _, fh := range j.files {
		errs = append(errs, fh.Close())
	}
	j.files = nil
	return errors.Join(errs...)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
