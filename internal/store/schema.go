package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    ts                   TEXT NOT NULL,
    ts_utc               TEXT NOT NULL,
    income_amount        TEXT NOT NULL DEFAULT '0',
    balance_amount       TEXT NOT NULL DEFAULT '0',
    description          TEXT,
    category_id          TEXT,
    category_name        TEXT,
    merchant             TEXT,
    deleted              INTEGER NOT NULL DEFAULT 0,
    imported_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id                   TEXT PRIMARY KEY,
    parent_id            TEXT,
    name                 TEXT NOT NULL,
    txn_type             TEXT
);

CREATE TABLE IF NOT EXISTS reports (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT,
    generated_at         TEXT NOT NULL,
    error                TEXT,
    vibe                 TEXT,
    window_months        INTEGER,
    total_analyzed       INTEGER,
    body                 TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_ts ON transactions(user_id, ts_utc);
CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id, generated_at);
`
