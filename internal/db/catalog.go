package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"jumpbot/internal/graph"
	"jumpbot/internal/sde"
)

// ErrNoCatalog is returned by LoadCatalog before any snapshot was saved.
var ErrNoCatalog = errors.New("no catalog snapshot")

// CatalogInfo describes the stored snapshot.
type CatalogInfo struct {
	Source  string    `json:"source"`
	SavedAt time.Time `json:"saved_at"`
	Systems int       `json:"systems"`
}

// SaveCatalog replaces the stored snapshot with data in one transaction.
func (d *DB) SaveCatalog(data *sde.Data) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"systems", "gates", "trade_hubs", "station_counts", "catalog_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	sysStmt, err := tx.Prepare("INSERT INTO systems (seq, name, region, constellation, truesec) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer sysStmt.Close()
	gateStmt, err := tx.Prepare("INSERT INTO gates (system, position, neighbor) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer gateStmt.Close()

	for i, s := range data.Systems {
		if _, err := sysStmt.Exec(i, s.Name, s.Region, s.Constellation, s.TrueSec); err != nil {
			return fmt.Errorf("insert system %s: %w", s.Name, err)
		}
		for pos, n := range s.Neighbors {
			if _, err := gateStmt.Exec(s.Name, pos, n); err != nil {
				return fmt.Errorf("insert gate %s -> %s: %w", s.Name, n, err)
			}
		}
	}
	for i, h := range data.TradeHubs {
		if _, err := tx.Exec("INSERT INTO trade_hubs (seq, system, planet, moon, station) VALUES (?, ?, ?, ?, ?)",
			i, h.System, h.Planet, h.Moon, h.Station); err != nil {
			return fmt.Errorf("insert trade hub %s: %w", h.System, err)
		}
	}
	for name, n := range data.Stations {
		if _, err := tx.Exec("INSERT INTO station_counts (system, count) VALUES (?, ?)", name, n); err != nil {
			return fmt.Errorf("insert station count %s: %w", name, err)
		}
	}

	meta := map[string]string{
		"source":   data.Source,
		"saved_at": time.Now().UTC().Format(time.RFC3339),
		"systems":  strconv.Itoa(len(data.Systems)),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO catalog_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// HasCatalog reports whether a snapshot is stored.
func (d *DB) HasCatalog() bool {
	var n int
	if err := d.sql.QueryRow("SELECT COUNT(*) FROM systems").Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// CatalogInfo returns the snapshot metadata, or ErrNoCatalog.
func (d *DB) CatalogInfo() (CatalogInfo, error) {
	rows, err := d.sql.Query("SELECT key, value FROM catalog_meta")
	if err != nil {
		return CatalogInfo{}, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return CatalogInfo{}, err
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return CatalogInfo{}, err
	}
	if len(m) == 0 {
		return CatalogInfo{}, ErrNoCatalog
	}
	info := CatalogInfo{Source: m["source"]}
	info.SavedAt, _ = time.Parse(time.RFC3339, m["saved_at"])
	info.Systems, _ = strconv.Atoi(m["systems"])
	return info, nil
}

// LoadCatalog reads the stored snapshot back in its original order.
func (d *DB) LoadCatalog() (*sde.Data, error) {
	data := &sde.Data{Source: sde.SourceDB, Stations: make(map[string]int)}

	neighbors := make(map[string][]string)
	err := d.each("SELECT system, neighbor FROM gates ORDER BY system, position", func(rows *sql.Rows) error {
		var sys, n string
		if err := rows.Scan(&sys, &n); err != nil {
			return err
		}
		neighbors[sys] = append(neighbors[sys], n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load gates: %w", err)
	}

	err = d.each("SELECT name, region, constellation, truesec FROM systems ORDER BY seq", func(rows *sql.Rows) error {
		var s graph.System
		if err := rows.Scan(&s.Name, &s.Region, &s.Constellation, &s.TrueSec); err != nil {
			return err
		}
		s.Neighbors = neighbors[s.Name]
		data.Systems = append(data.Systems, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load systems: %w", err)
	}
	if len(data.Systems) == 0 {
		return nil, ErrNoCatalog
	}

	err = d.each("SELECT system, planet, moon, station FROM trade_hubs ORDER BY seq", func(rows *sql.Rows) error {
		var h graph.TradeHub
		if err := rows.Scan(&h.System, &h.Planet, &h.Moon, &h.Station); err != nil {
			return err
		}
		data.TradeHubs = append(data.TradeHubs, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load trade hubs: %w", err)
	}

	err = d.each("SELECT system, count FROM station_counts", func(rows *sql.Rows) error {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return err
		}
		data.Stations[name] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load station counts: %w", err)
	}
	return data, nil
}

func (d *DB) each(query string, fn func(*sql.Rows) error, args ...interface{}) error {
	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
