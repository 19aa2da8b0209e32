package database

// Schema contains all SQL statements for creating tables and indexes
const Schema = `
-- Athletes table: identities of Strava users who have authorized the app
CREATE TABLE IF NOT EXISTS athletes (
    id TEXT PRIMARY KEY,
    firstname TEXT,
    lastname TEXT,
    revoked_at INTEGER,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Athlete tokens table: one encrypted OAuth token pair per service account
CREATE TABLE IF NOT EXISTS athlete_tokens (
    athlete_id TEXT PRIMARY KEY,

    refresh_token_enc TEXT NOT NULL,
    access_token_enc TEXT NOT NULL,
    expires_at INTEGER NOT NULL,
    scope TEXT,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Club feed activities table: one row per unique activity seen in the feed.
-- Rows are immutable; dedupe_hash is the uniqueness key since the club feed
-- exposes no stable activity id.
CREATE TABLE IF NOT EXISTS club_feed_activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    club_id TEXT NOT NULL,

    athlete_name TEXT,
    name TEXT,
    type TEXT,
    sport_type TEXT,
    distance_m REAL,
    moving_time_s INTEGER,
    elapsed_time_s INTEGER,
    total_elevation_gain_m REAL,

    dedupe_hash TEXT NOT NULL UNIQUE,
    raw_json TEXT NOT NULL,

    fetched_at INTEGER NOT NULL
);

-- Public refresh state table: singleton cooldown row keyed by a fixed id
CREATE TABLE IF NOT EXISTS public_refresh_state (
    id TEXT PRIMARY KEY,
    last_triggered_at INTEGER
);

-- Indexes for club_feed_activities
CREATE INDEX IF NOT EXISTS idx_club_feed_activities_fetched_at ON club_feed_activities(fetched_at);
CREATE INDEX IF NOT EXISTS idx_club_feed_activities_sport_type ON club_feed_activities(sport_type);
`
