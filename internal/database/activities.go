package database

import (
	"fmt"
	"time"
)

// ClubFeedActivity is one deduplicated activity from the club feed.
// Rows are immutable after insertion.
type ClubFeedActivity struct {
	ID                  int64
	ClubID              string
	AthleteName         *string
	Name                *string
	Type                *string
	SportType           *string
	DistanceM           *float64
	MovingTimeS         *int64
	ElapsedTimeS        *int64
	TotalElevationGainM *float64
	DedupeHash          string
	RawJSON             string
	FetchedAt           int64
}

// InsertClubFeedActivity inserts an activity unless its dedupe hash has been
// seen before. Returns whether a row was actually inserted; a duplicate is a
// no-op, not an error.
func (db *DB) InsertClubFeedActivity(a *ClubFeedActivity) (bool, error) {
	if a.FetchedAt == 0 {
		a.FetchedAt = time.Now().Unix()
	}

	result, err := db.conn.Exec(`
		INSERT INTO club_feed_activities (
			club_id, athlete_name, name, type, sport_type,
			distance_m, moving_time_s, elapsed_time_s, total_elevation_gain_m,
			dedupe_hash, raw_json, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dedupe_hash) DO NOTHING
	`, a.ClubID, a.AthleteName, a.Name, a.Type, a.SportType,
		a.DistanceM, a.MovingTimeS, a.ElapsedTimeS, a.TotalElevationGainM,
		a.DedupeHash, a.RawJSON, a.FetchedAt)

	if err != nil {
		return false, fmt.Errorf("failed to insert club feed activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ListActivitiesSince returns activities first seen at or after the given
// time, ordered ascending by fetched_at
func (db *DB) ListActivitiesSince(since time.Time) ([]*ClubFeedActivity, error) {
	rows, err := db.conn.Query(`
		SELECT id, club_id, athlete_name, name, type, sport_type,
		       distance_m, moving_time_s, elapsed_time_s, total_elevation_gain_m,
		       dedupe_hash, raw_json, fetched_at
		FROM club_feed_activities
		WHERE fetched_at >= ?
		ORDER BY fetched_at ASC
	`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListAllActivities returns every stored activity ordered ascending by
// fetched_at
func (db *DB) ListAllActivities() ([]*ClubFeedActivity, error) {
	rows, err := db.conn.Query(`
		SELECT id, club_id, athlete_name, name, type, sport_type,
		       distance_m, moving_time_s, elapsed_time_s, total_elevation_gain_m,
		       dedupe_hash, raw_json, fetched_at
		FROM club_feed_activities
		ORDER BY fetched_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListLatestRuns returns the most recently seen run activities, newest first
func (db *DB) ListLatestRuns(limit int) ([]*ClubFeedActivity, error) {
	rows, err := db.conn.Query(`
		SELECT id, club_id, athlete_name, name, type, sport_type,
		       distance_m, moving_time_s, elapsed_time_s, total_elevation_gain_m,
		       dedupe_hash, raw_json, fetched_at
		FROM club_feed_activities
		WHERE (sport_type = 'Run' OR type = 'Run') AND athlete_name IS NOT NULL
		ORDER BY fetched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest runs: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// CountActivities returns the number of stored activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM club_feed_activities`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// LastFetchedAt returns the fetched_at of the most recently seen activity,
// or 0 when the store is empty
func (db *DB) LastFetchedAt() (int64, error) {
	var last *int64
	err := db.conn.QueryRow(`SELECT MAX(fetched_at) FROM club_feed_activities`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last fetched_at: %w", err)
	}
	if last == nil {
		return 0, nil
	}
	return *last, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanActivities(rows rowScanner) ([]*ClubFeedActivity, error) {
	var activities []*ClubFeedActivity
	for rows.Next() {
		var a ClubFeedActivity
		err := rows.Scan(
			&a.ID, &a.ClubID, &a.AthleteName, &a.Name, &a.Type, &a.SportType,
			&a.DistanceM, &a.MovingTimeS, &a.ElapsedTimeS, &a.TotalElevationGainM,
			&a.DedupeHash, &a.RawJSON, &a.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}
