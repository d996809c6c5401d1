package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per scrape pipeline run
CREATE TABLE IF NOT EXISTS scrape_runs (
    run_id TEXT PRIMARY KEY,
    model TEXT NOT NULL,
    pages_scraped INTEGER NOT NULL DEFAULT 0,
    pages_failed INTEGER NOT NULL DEFAULT 0,
    examples INTEGER NOT NULL DEFAULT 0,
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    cost REAL NOT NULL DEFAULT 0,
    output_file TEXT,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scrape_runs_started ON scrape_runs(started_at);

-- Per-URL outcome of a run
CREATE TABLE IF NOT EXISTS scrape_pages (
    page_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    url TEXT NOT NULL,
    content_type TEXT,
    status TEXT NOT NULL,   -- ok, failed
    title TEXT,
    error TEXT,
    FOREIGN KEY (run_id) REFERENCES scrape_runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_scrape_pages_run ON scrape_pages(run_id);

-- Latest observed state of each fine-tuning job
CREATE TABLE IF NOT EXISTS fine_tune_jobs (
    job_id TEXT PRIMARY KEY,
    file_id TEXT,
    base_model TEXT NOT NULL,
    training_file TEXT,
    status TEXT NOT NULL,
    fine_tuned_model TEXT,
    error TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fine_tune_jobs_updated ON fine_tune_jobs(updated_at);
`
