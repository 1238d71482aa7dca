package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Race is one recorded search run.
type Race struct {
	ID          string    `json:"id"` // ULID, sortable by creation time
	Start       string    `json:"start"`
	Finish      string    `json:"finish"`
	Path        []string  `json:"path"` // empty when no path was found
	DurationMS  int64     `json:"duration_ms"`
	PagesLoaded int       `json:"pages_loaded"` // fetched from the API
	PagesCached int       `json:"pages_cached"` // served from the page cache
	CreatedAt   time.Time `json:"created_at"`
}

func createRacesTable(db *DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS races (
    id TEXT PRIMARY KEY,                    -- ULID
    start TEXT NOT NULL,
    finish TEXT NOT NULL,
    path JSON NOT NULL,                     -- found path as a JSON array
    duration_ms INTEGER NOT NULL,
    pages_loaded INTEGER NOT NULL DEFAULT 0,
    pages_cached INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_races_created_at ON races(created_at);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create races table: %w", err)
	}
	return nil
}

func (db *DB) SaveRace(race Race) error {
	pathJSON, err := json.Marshal(race.Path)
	if err != nil {
		return fmt.Errorf("failed to encode path: %w", err)
	}

	query := `INSERT INTO races (id, start, finish, path, duration_ms, pages_loaded, pages_cached, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.Exec(query, race.ID, race.Start, race.Finish, string(pathJSON),
		race.DurationMS, race.PagesLoaded, race.PagesCached, race.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save race: %w", err)
	}
	return nil
}

func (db *DB) GetRace(id string) (Race, error) {
	query := `SELECT id, start, finish, path, duration_ms, pages_loaded, pages_cached, created_at
              FROM races WHERE id = ?`
	return scanRace(db.QueryRow(query, id))
}

// GetRaceHistory returns the most recent races, newest first.
func (db *DB) GetRaceHistory(limit int) ([]Race, error) {
	query := `SELECT id, start, finish, path, duration_ms, pages_loaded, pages_cached, created_at
              FROM races
              ORDER BY id DESC
              LIMIT ?`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query race history: %w", err)
	}
	defer rows.Close()

	var races []Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, err
		}
		races = append(races, race)
	}
	return races, rows.Err()
}

// PruneOldRaces keeps the N most recent races and deletes the rest. ULIDs
// sort lexicographically by creation time, so ordering by id is enough.
func (db *DB) PruneOldRaces(racesToKeep int) (int64, error) {
	query := `
        DELETE FROM races
        WHERE id NOT IN (
            SELECT id FROM races
            ORDER BY id DESC
            LIMIT ?
        )
    `
	result, err := db.Exec(query, racesToKeep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune old races: %w", err)
	}
	pruned, _ := result.RowsAffected()
	return pruned, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRace(row rowScanner) (Race, error) {
	var race Race
	var pathJSON string
	err := row.Scan(&race.ID, &race.Start, &race.Finish, &pathJSON,
		&race.DurationMS, &race.PagesLoaded, &race.PagesCached, &race.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Race{}, fmt.Errorf("race not found")
		}
		return Race{}, fmt.Errorf("failed to scan race: %w", err)
	}
	if err := json.Unmarshal([]byte(pathJSON), &race.Path); err != nil {
		return Race{}, fmt.Errorf("failed to decode path: %w", err)
	}
	return race, nil
}
