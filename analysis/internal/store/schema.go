package store

// Schema contains the complete DDL for the analysis tables.
const Schema = `
-- Publisher voice profiles: tone, readability and link policy per domain
CREATE TABLE IF NOT EXISTS publisher_profiles (
    domain          TEXT PRIMARY KEY,
    voice           TEXT NOT NULL DEFAULT '{}',
    lix_range       TEXT NOT NULL DEFAULT 'medium',
    policy          TEXT NOT NULL DEFAULT '{}',
    examples        TEXT NOT NULL DEFAULT '[]',
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);

-- Anchor portfolios: anchor-type mix and calculated risk per target domain
CREATE TABLE IF NOT EXISTS anchor_portfolios (
    target_domain   TEXT PRIMARY KEY,
    exact           INTEGER NOT NULL DEFAULT 0,
    partial         INTEGER NOT NULL DEFAULT 0,
    brand           INTEGER NOT NULL DEFAULT 0,
    generic         INTEGER NOT NULL DEFAULT 0,
    risk            REAL NOT NULL DEFAULT 0.0,
    risk_level      TEXT NOT NULL DEFAULT 'low',
    last_calculated INTEGER NOT NULL
);

-- Audit log: append-only pipeline events per order
CREATE TABLE IF NOT EXISTS audit_log (
    id              TEXT PRIMARY KEY,
    order_ref       TEXT NOT NULL DEFAULT '',
    event_type      TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT '',
    payload         TEXT NOT NULL DEFAULT '{}',
    ts              INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_order ON audit_log(order_ref);
CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_log(ts DESC);
`
