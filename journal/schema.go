package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	asset TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	commission REAL NOT NULL,
	realized_pl REAL NOT NULL,
	cash_after REAL NOT NULL,
	equity_after REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS compliance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	asset TEXT NOT NULL,
	corruption_index REAL NOT NULL,
	esg_score REAL NOT NULL,
	segment TEXT NOT NULL,
	verdict TEXT NOT NULL,
	reasons TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	asset TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	outcome TEXT NOT NULL,
	reason TEXT NOT NULL,
	detail TEXT NOT NULL,
	trade_id TEXT,
	equity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS halts (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	peak REAL NOT NULL,
	equity REAL NOT NULL,
	drawdown REAL NOT NULL,
	threshold REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	profile TEXT NOT NULL,
	dataset TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	initial_cash REAL NOT NULL,
	final_cash REAL NOT NULL,
	final_equity REAL NOT NULL,
	intents INTEGER NOT NULL,
	accepted INTEGER NOT NULL,
	rejected INTEGER NOT NULL,
	max_drawdown REAL NOT NULL,
	halted INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, time);
CREATE INDEX IF NOT EXISTS idx_compliance_run ON compliance(run_id, time);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id, time);
`
