package db

// Schema is the full table layout. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS model_artifacts (
    name       TEXT        NOT NULL,
    version    TEXT        NOT NULL,
    trained_at TIMESTAMPTZ NOT NULL,
    samples    INTEGER     NOT NULL,
    accuracy   DOUBLE PRECISION NOT NULL,
    payload    JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (name, version)
);
CREATE INDEX IF NOT EXISTS idx_model_artifacts_latest ON model_artifacts (name, trained_at DESC);

CREATE TABLE IF NOT EXISTS recommendations (
    id              UUID PRIMARY KEY,
    candidate_id    TEXT NOT NULL,
    job_id          TEXT NOT NULL,
    pass_percentage DOUBLE PRECISION NOT NULL,
    base_percentage DOUBLE PRECISION NOT NULL,
    rank            INTEGER NOT NULL,
    percentile      DOUBLE PRECISION NOT NULL,
    tier            TEXT NOT NULL,
    model_version   TEXT,
    created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recommendations_candidate ON recommendations (candidate_id);

CREATE TABLE IF NOT EXISTS candidates (
    id         TEXT PRIMARY KEY,
    document   JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS jobs (
    id         TEXT PRIMARY KEY,
    document   JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS applications (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    candidate_id TEXT NOT NULL,
    job_id       TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'Pending',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (candidate_id, job_id)
);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status);
`
