package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/risk"
)

var ErrNotFound = errors.New("not found")

// ResultRow is a stored gate result.
type ResultRow struct {
	RunID    string
	Time     time.Time
	Asset    string
	Side     market.Side
	Quantity float64
	Price    float64
	Outcome  string
	Reason   string
	Detail   string
	TradeID  string
	Equity   float64
}

const tradeColumns = `trade_id, time, asset, side, quantity, price, commission, realized_pl, cash_after, equity_after`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (ledger.TradeRecord, error) {
	var (
		rec  ledger.TradeRecord
		side string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Time,
		&rec.Asset,
		&side,
		&rec.Quantity,
		&rec.Price,
		&rec.Commission,
		&rec.RealizedPL,
		&rec.CashAfter,
		&rec.EquityAfter,
	)
	rec.Side = market.Side(side)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (ledger.TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return ledger.TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns the trades of one run in settlement order.
func (j *SQLite) ListTrades(runID string) ([]ledger.TradeRecord, error) {
	return j.queryTrades(`SELECT `+tradeColumns+` FROM trades WHERE run_id = ? ORDER BY time ASC, trade_id ASC`, runID)
}

// ListTradesBetween returns trades of any run settled within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]ledger.TradeRecord, error) {
	return j.queryTrades(`SELECT `+tradeColumns+` FROM trades WHERE time >= ? AND time < ? ORDER BY time ASC, trade_id ASC`, start, end)
}

func (j *SQLite) queryTrades(query string, args ...any) ([]ledger.TradeRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCompliance returns the compliance log of one run.
func (j *SQLite) ListCompliance(runID string) ([]compliance.Record, error) {
	rows, err := j.db.Query(`
		SELECT time, asset, corruption_index, esg_score, segment, verdict, reasons
		FROM compliance
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []compliance.Record
	for rows.Next() {
		var (
			rec     compliance.Record
			verdict string
			reasons string
		)
		if err := rows.Scan(&rec.Time, &rec.Asset, &rec.CorruptionIndex, &rec.ESGScore,
			&rec.Segment, &verdict, &reasons); err != nil {
			return nil, err
		}
		rec.Verdict = compliance.Verdict(verdict)
		if reasons != "" {
			rec.Reasons = strings.Split(reasons, "; ")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListResults returns the gate results of one run in submission order.
func (j *SQLite) ListResults(runID string) ([]ResultRow, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, asset, side, quantity, price, outcome, reason, detail, trade_id, equity
		FROM results
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var (
			r       ResultRow
			side    string
			tradeID sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.Time, &r.Asset, &side, &r.Quantity, &r.Price,
			&r.Outcome, &r.Reason, &r.Detail, &tradeID, &r.Equity); err != nil {
			return nil, err
		}
		r.Side = market.Side(side)
		r.TradeID = tradeID.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHalts returns the halt events of one run. A run halts at most once.
func (j *SQLite) ListHalts(runID string) ([]risk.HaltEvent, error) {
	rows, err := j.db.Query(`
		SELECT time, peak, equity, drawdown, threshold
		FROM halts
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []risk.HaltEvent
	for rows.Next() {
		var h risk.HaltEvent
		if err := rows.Scan(&h.Time, &h.Peak, &h.Equity, &h.Drawdown, &h.Threshold); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const runColumns = `run_id, created, profile, dataset, start_time, end_time, initial_cash, final_cash,
	final_equity, intents, accepted, rejected, max_drawdown, halted`

func scanRun(s scanner) (RunReport, error) {
	var r RunReport
	err := s.Scan(&r.RunID, &r.Created, &r.Profile, &r.Dataset, &r.Start, &r.End,
		&r.InitialCash, &r.FinalCash, &r.FinalEquity, &r.Intents, &r.Accepted, &r.Rejected,
		&r.MaxDrawdown, &r.Halted)
	return r, err
}

func (j *SQLite) GetRun(runID string) (RunReport, error) {
	r, err := scanRun(j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunReport{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns all stored runs, newest first.
func (j *SQLite) ListRuns() ([]RunReport, error) {
	rows, err := j.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunReport
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
