// Copyright (c) 2025 BVK Chaitanya

// Package tradelog keeps the per-step trader records in a SQLite database so
// that runs can be inspected with standard sql tools.
package tradelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS steps (
	run             TEXT    NOT NULL,
	time_ns         INTEGER NOT NULL,
	phase           TEXT    NOT NULL,
	cash            TEXT    NOT NULL,
	portfolio_value TEXT    NOT NULL,
	owned           TEXT    NOT NULL,
	prices          TEXT    NOT NULL,
	PRIMARY KEY (run, time_ns, phase)
);`

type Store struct {
	db *sql.DB
}

// Open opens or creates the trade log database file. Use ":memory:" for a
// temporary database.
func Open(ctx context.Context, file string) (*Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("could not open trade log %q: %w", file, err)
	}
	// Single connection keeps ":memory:" databases shared and serializes the
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create trade log schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AppendStep adds a step record. Records with the same run, time and phase
// are replaced.
func (s *Store) AppendStep(ctx context.Context, r *gobs.StepRecord) error {
	owned, err := json.Marshal(r.Owned)
	if err != nil {
		return err
	}
	prices, err := json.Marshal(r.Prices)
	if err != nil {
		return err
	}
	const query = `INSERT OR REPLACE INTO steps (run, time_ns, phase, cash, portfolio_value, owned, prices) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, r.Run, r.Time.UnixNano(), string(r.Phase), r.Cash.String(), r.PortfolioValue.String(), string(owned), string(prices)); err != nil {
		return fmt.Errorf("could not insert step record: %w", err)
	}
	return nil
}

// Steps returns all step records of a run in time order with the start
// record before the end record.
func (s *Store) Steps(ctx context.Context, run string) ([]*gobs.StepRecord, error) {
	const query = `SELECT time_ns, phase, cash, portfolio_value, owned, prices FROM steps WHERE run = ? ORDER BY time_ns, phase DESC`
	rows, err := s.db.QueryContext(ctx, query, run)
	if err != nil {
		return nil, fmt.Errorf("could not query step records: %w", err)
	}
	defer rows.Close()

	var records []*gobs.StepRecord
	for rows.Next() {
		var ns int64
		var phase, cash, value, owned, prices string
		if err := rows.Scan(&ns, &phase, &cash, &value, &owned, &prices); err != nil {
			return nil, err
		}
		r := &gobs.StepRecord{
			Run:   run,
			Time:  exchange.RemoteTime{Time: time.Unix(0, ns).UTC()},
			Phase: gobs.StepPhase(phase),
		}
		if r.Cash, err = decimal.NewFromString(cash); err != nil {
			return nil, fmt.Errorf("invalid cash value %q: %w", cash, err)
		}
		if r.PortfolioValue, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("invalid portfolio value %q: %w", value, err)
		}
		if err := json.Unmarshal([]byte(owned), &r.Owned); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(prices), &r.Prices); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Runs returns the names of all runs in the log.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT run FROM steps ORDER BY run`)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes all records of a run.
func (s *Store) DeleteRun(ctx context.Context, run string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM steps WHERE run = ?`, run); err != nil {
		return fmt.Errorf("could not delete run %q: %w", run, err)
	}
	return nil
}
