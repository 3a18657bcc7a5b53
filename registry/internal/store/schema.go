package store

// Schema contains the complete DDL for the trust registry tables.
const Schema = `
-- Citable trust sources: domains lending credibility to sponsored articles.
-- trust_level T1 is highest (authorities), T2 established media, T3 other.
CREATE TABLE IF NOT EXISTS trust_sources (
    id              TEXT PRIMARY KEY,
    domain          TEXT NOT NULL UNIQUE,
    trust_level     TEXT NOT NULL DEFAULT 'T2',
    pattern         TEXT NOT NULL DEFAULT '',
    competitor      INTEGER NOT NULL DEFAULT 0,
    notes           TEXT NOT NULL DEFAULT '',
    usage_count     INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sources_level ON trust_sources(trust_level);
CREATE INDEX IF NOT EXISTS idx_sources_competitor ON trust_sources(competitor);
CREATE INDEX IF NOT EXISTS idx_sources_usage ON trust_sources(usage_count DESC);
`
