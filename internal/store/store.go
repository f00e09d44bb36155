// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted property records and builds a
// queryable SQLite index over them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/propharvest/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	metadataDir  = "metadata"
	dbFile       = "propharvest.db"
)

// Store manages the property index SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the property index SQLite database at
// dataDir/index/propharvest.db. It creates the schema if it does not
// exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

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
		`CREATE TABLE IF NOT EXISTS compounds (
			id INTEGER PRIMARY KEY,
			cid INTEGER,
			sid INTEGER,
			identifier TEXT,
			name TEXT,
			cas TEXT,
			record_title TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			compound_id INTEGER NOT NULL REFERENCES compounds(id),
			property TEXT NOT NULL,
			category TEXT,
			match_count INTEGER,
			parsed_values TEXT NOT NULL,
			sources TEXT,
			value_text TEXT NOT NULL,
			UNIQUE(compound_id, property)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_compound_id ON records(compound_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_property ON records(property)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			compound_id INTEGER PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(value_text, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, value_text) VALUES (new.rowid, new.value_text);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, value_text) VALUES('delete', old.rowid, old.value_text);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, value_text) VALUES('delete', old.rowid, old.value_text);
				INSERT INTO records_fts(rowid, value_text) VALUES (new.rowid, new.value_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index build run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of compounds processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction YAML files from dataDir/extracted/ and
// populates the database. It detects new, changed, and unchanged files
// for incremental updates. On success it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.dataDir, extractedDir)
	metaDir := filepath.Join(s.dataDir, metadataDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-properties.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		idText := strings.TrimSuffix(entry.Name(), "-properties.yaml")
		compoundID, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: not a compound ID: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %d: %v\n", compoundID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Check whether the file has changed since last indexing.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE compound_id = ?`, compoundID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %d\n", compoundID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %d: %v\n", compoundID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %d: parse error: %v\n", compoundID, err)
			summary.Failed++
			continue
		}

		compound := loadCompoundMetadata(metaDir, compoundID)

		if err := s.ingestCompound(ctx, compoundID, &result, compound, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %d: %v\n", compoundID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %d (%d records)\n", compoundID, len(result.Records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %d (%d records)\n", compoundID, len(result.Records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Write export.yaml after successful ingestion.
	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestCompound(ctx context.Context, compoundID int64, result *types.ExtractionResult, compound *types.Compound, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old records if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE compound_id = ?`, compoundID); err != nil {
			return fmt.Errorf("deleting old records: %w", err)
		}
	}

	// Upsert compound identity.
	if compound != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO compounds (id, cid, sid, identifier, name, cas, record_title)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				cid=excluded.cid, sid=excluded.sid, identifier=excluded.identifier,
				name=excluded.name, cas=excluded.cas, record_title=excluded.record_title`,
			compoundID, compound.CID, compound.SID, compound.Identifier,
			compound.Name, compound.CAS, compound.RecordTitle,
		)
		if err != nil {
			return fmt.Errorf("upserting compound: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO compounds (id) VALUES (?)`, compoundID,
		)
		if err != nil {
			return fmt.Errorf("inserting compound stub: %w", err)
		}
	}

	// Insert property records.
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (compound_id, property, category, match_count, parsed_values, sources, value_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range result.Records {
		valuesJSON, _ := json.Marshal(rec.Values)
		sourcesJSON, _ := json.Marshal(rec.Sources)
		_, err := stmt.ExecContext(ctx,
			compoundID, rec.Property, string(rec.Category), rec.MatchCount,
			string(valuesJSON), string(sourcesJSON), valueText(rec),
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.Property, err)
		}
	}

	// Update indexing status.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (compound_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(compound_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		compoundID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// valueText builds the searchable text for one record: the property
// name plus every raw value string.
func valueText(rec types.PropertyRecord) string {
	parts := make([]string, 0, len(rec.Values)+1)
	parts = append(parts, rec.Property)
	for _, v := range rec.Values {
		parts = append(parts, v.RawText)
	}
	return strings.Join(parts, "\n")
}

// loadCompoundMetadata reads a Compound record from metaDir/[id].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadCompoundMetadata(metaDir string, compoundID int64) *types.Compound {
	path := filepath.Join(metaDir, fmt.Sprintf("%d.yaml", compoundID))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var compound types.Compound
	if err := yaml.Unmarshal(data, &compound); err != nil {
		return nil
	}
	return &compound
}
