package journal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/risk"
)

// SQLite keeps every run in one database. Records written through a
// journal are tagged with its run ID; see WithRun.
type SQLite struct {
	db    *sql.DB
	runID string
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; concurrent runs queue on the pool instead
	// of failing with "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// WithRun returns a journal sharing the same database that tags records
// with runID. Closing either closes the database.
func (j *SQLite) WithRun(runID string) *SQLite {
	return &SQLite{db: j.db, runID: runID}
}

func (j *SQLite) RunID() string { return j.runID }

func (j *SQLite) RecordTrade(t ledger.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, time, asset, side, quantity, price, commission, realized_pl, cash_after, equity_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, j.runID, t.Time, t.Asset, string(t.Side), t.Quantity, t.Price,
		t.Commission, t.RealizedPL, t.CashAfter, t.EquityAfter,
	)
	return err
}

func (j *SQLite) RecordCompliance(c compliance.Record) error {
	_, err := j.db.Exec(`
		INSERT INTO compliance
		(run_id, time, asset, corruption_index, esg_score, segment, verdict, reasons)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, c.Time, c.Asset, c.CorruptionIndex, c.ESGScore, c.Segment,
		string(c.Verdict), strings.Join(c.Reasons, "; "),
	)
	return err
}

func (j *SQLite) RecordResult(r gate.Result) error {
	var tradeID sql.NullString
	if r.Trade != nil {
		tradeID = sql.NullString{String: r.Trade.ID, Valid: true}
	}
	in := r.Intent
	_, err := j.db.Exec(`
		INSERT INTO results
		(run_id, time, asset, side, quantity, price, outcome, reason, detail, trade_id, equity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, in.Time, in.Asset, string(in.Side), in.Quantity, in.Price,
		string(r.Outcome), string(r.Reason), r.Detail, tradeID, r.Equity,
	)
	return err
}

func (j *SQLite) RecordHalt(h risk.HaltEvent) error {
	_, err := j.db.Exec(`
		INSERT INTO halts (run_id, time, peak, equity, drawdown, threshold)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.runID, h.Time, h.Peak, h.Equity, h.Drawdown, h.Threshold,
	)
	return err
}

// RecordRun stores or replaces the summary row of a run.
func (j *SQLite) RecordRun(r RunReport) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, profile, dataset, start_time, end_time, initial_cash, final_cash,
		 final_equity, intents, accepted, rejected, max_drawdown, halted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Profile, r.Dataset, r.Start, r.End, r.InitialCash, r.FinalCash,
		r.FinalEquity, r.Intents, r.Accepted, r.Rejected, r.MaxDrawdown, r.Halted,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
