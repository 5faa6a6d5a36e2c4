package store

const Schema = `
CREATE TABLE IF NOT EXISTS buckets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS lots (
	id TEXT PRIMARY KEY,
	bucket_id INTEGER REFERENCES buckets(id),
	symbol TEXT NOT NULL,
	qty REAL NOT NULL,
	position_type TEXT NOT NULL,
	filled_avg_price REAL,
	limit_price REAL,
	stop_price REAL,
	target_price REAL,
	cost_basis REAL,
	status TEXT NOT NULL,
	broker_status TEXT NOT NULL DEFAULT '',
	time_in_force TEXT NOT NULL DEFAULT '',
	client_id TEXT NOT NULL UNIQUE,
	disposed_fill_price REAL,
	dispose_reason TEXT NOT NULL DEFAULT '',
	disposed_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lots_bucket ON lots(bucket_id, created_at);
`
