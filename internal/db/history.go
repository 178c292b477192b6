package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// timestampLayout has a fixed width so timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// QueryRecord is one answered routing query.
type QueryRecord struct {
	ID         string          `json:"id"`
	Timestamp  string          `json:"timestamp"`
	Kind       string          `json:"kind"`
	Input      json.RawMessage `json:"input"`
	Outcome    string          `json:"outcome"`
	DurationMs int64           `json:"duration_ms"`
}

// InsertQuery records a query and returns its ID.
func (d *DB) InsertQuery(kind string, input interface{}, outcome string, took time.Duration) (string, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = d.sql.Exec(
		"INSERT INTO query_history (id, timestamp, kind, input_json, outcome, duration_ms) VALUES (?, ?, ?, ?, ?, ?)",
		id, time.Now().UTC().Format(timestampLayout), kind, string(inputJSON), outcome, took.Milliseconds(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetQueries returns the last N records (newest first).
func (d *DB) GetQueries(limit int) []QueryRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		`SELECT id, timestamp, kind, input_json, outcome, duration_ms
		 FROM query_history ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return []QueryRecord{}
	}
	defer rows.Close()

	records := []QueryRecord{}
	for rows.Next() {
		r, err := scanQuery(rows)
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records
}

// GetQueryByID returns a single record, or nil.
func (d *DB) GetQueryByID(id string) *QueryRecord {
	row := d.sql.QueryRow(
		"SELECT id, timestamp, kind, input_json, outcome, duration_ms FROM query_history WHERE id = ?", id)
	r, err := scanQuery(row)
	if err != nil {
		return nil
	}
	return &r
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuery(s scanner) (QueryRecord, error) {
	var r QueryRecord
	var input string
	if err := s.Scan(&r.ID, &r.Timestamp, &r.Kind, &input, &r.Outcome, &r.DurationMs); err != nil {
		return QueryRecord{}, err
	}
	r.Input = json.RawMessage(input)
	return r, nil
}

// ClearQueries deletes records older than the given number of days; 0 deletes all.
func (d *DB) ClearQueries(olderThanDays int) (int64, error) {
	var result sql.Result
	var err error
	if olderThanDays <= 0 {
		result, err = d.sql.Exec("DELETE FROM query_history")
	} else {
		cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)
		result, err = d.sql.Exec("DELETE FROM query_history WHERE timestamp < ?", cutoff)
	}
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
