// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset persists the sample dataset behind the data analysis page
// and answers the chart queries over it: raw-material composition, grouped
// box series, and 2D/3D scatter points.
package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/taurus/pkg/types"
)

const (
	dbFile = "taurus.db"

	// sampleIDColumn is dropped on ingest; it identifies rows in the lab
	// spreadsheet and carries no signal.
	sampleIDColumn = "Sample ID"
)

// ErrUnknownColumn is returned for a column that is not in the dataset or
// not allowed for the requested chart.
var ErrUnknownColumn = errors.New("unknown column")

// Store manages the dataset SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the dataset database at dataDir/taurus.db and
// creates the schema if it does not exist.
func NewStore(cfg types.DatasetConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS columns (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY,
			raw_material TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sample_values (
			sample_id INTEGER NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
			column_name TEXT NOT NULL,
			value REAL,
			PRIMARY KEY (sample_id, column_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sample_values_column ON sample_values(column_name)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			path TEXT PRIMARY KEY,
			file_mod_time TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	Rows    int
	Columns int
	Skipped bool
}

// table is a parsed CSV: numeric column names in file order and one sample
// per data row.
type table struct {
	columns []string
	samples []types.Sample
}

// Ingest loads the CSV at csvPath, replacing the stored dataset in one
// transaction. An unchanged file (same path and modification time) is
// skipped.
func (s *Store) Ingest(ctx context.Context, csvPath string, w io.Writer) (IngestSummary, error) {
	info, err := os.Stat(csvPath)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading dataset %s: %w", csvPath, err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM ingest_status WHERE path = ?`, csvPath,
	).Scan(&stored)
	if err == nil && stored == modTime {
		fmt.Fprintf(w, "skipped %s (unchanged)\n", csvPath)
		return IngestSummary{Skipped: true}, nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	tbl, err := parseCSV(f)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("parsing %s: %w", csvPath, err)
	}

	if err := s.replace(ctx, tbl, csvPath, modTime); err != nil {
		return IngestSummary{}, err
	}

	fmt.Fprintf(w, "ingested %s (%d rows, %d numeric columns)\n", csvPath, len(tbl.samples), len(tbl.columns))
	return IngestSummary{Rows: len(tbl.samples), Columns: len(tbl.columns)}, nil
}

func parseCSV(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	materialIdx := -1
	var numeric []int
	tbl := &table{}
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		switch name {
		case sampleIDColumn:
		case types.RawMaterialColumn:
			materialIdx = i
		default:
			numeric = append(numeric, i)
			tbl.columns = append(tbl.columns, name)
		}
	}
	if materialIdx < 0 {
		return nil, fmt.Errorf("missing %s column", types.RawMaterialColumn)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		material := strings.TrimSpace(rec[materialIdx])
		if material == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, types.RawMaterialColumn)
		}
		sample := types.Sample{RawMaterial: material, Values: make(map[string]*float64, len(numeric))}
		for _, idx := range numeric {
			cell := strings.TrimSpace(rec[idx])
			if cell == "" {
				sample.Values[header[idx]] = nil
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, header[idx], err)
			}
			sample.Values[header[idx]] = &v
		}
		tbl.samples = append(tbl.samples, sample)
	}
	return tbl, nil
}

func (s *Store) replace(ctx context.Context, tbl *table, path, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM sample_values`,
		`DELETE FROM samples`,
		`DELETE FROM columns`,
		`DELETE FROM ingest_status`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing dataset: %w", err)
		}
	}

	for i, name := range tbl.columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO columns (position, name) VALUES (?, ?)`, i, name,
		); err != nil {
			return fmt.Errorf("inserting column %s: %w", name, err)
		}
	}

	valueStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sample_values (sample_id, column_name, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer valueStmt.Close()

	for i, sample := range tbl.samples {
		id := int64(i + 1)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO samples (id, raw_material) VALUES (?, ?)`, id, sample.RawMaterial,
		); err != nil {
			return fmt.Errorf("inserting sample %d: %w", id, err)
		}
		for _, name := range tbl.columns {
			var v any
			if p := sample.Values[name]; p != nil {
				v = *p
			}
			if _, err := valueStmt.ExecContext(ctx, id, name, v); err != nil {
				return fmt.Errorf("inserting sample %d column %s: %w", id, name, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ingest_status (path, file_mod_time) VALUES (?, ?)`, path, modTime,
	); err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}
