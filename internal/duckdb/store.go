// Package duckdb stores annotation results in DuckDB so they can be
// queried after a run (by variant, gene or consequence).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS effect_annotations (
		chrom VARCHAR NOT NULL,
		pos BIGINT NOT NULL,
		ref VARCHAR NOT NULL,
		alt VARCHAR NOT NULL,
		transcript_id VARCHAR NOT NULL,
		gene_name VARCHAR,
		gene_id VARCHAR,
		biotype VARCHAR,
		consequence VARCHAR,
		impact VARCHAR,
		hgvsc VARCHAR,
		hgvsp VARCHAR,
		cds_position BIGINT,
		protein_position BIGINT,
		exon_number VARCHAR,
		intron_number VARCHAR,
		is_canonical BOOLEAN,
		allele VARCHAR,
		PRIMARY KEY (chrom, pos, ref, alt, transcript_id)
	)`,
	`CREATE INDEX IF NOT EXISTS effect_annotations_gene ON effect_annotations (gene_name)`,
	`CREATE INDEX IF NOT EXISTS effect_annotations_consequence ON effect_annotations (consequence)`,
	// One row: the transcript snapshot the stored results were computed from.
	`CREATE TABLE IF NOT EXISTS transcript_source (
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP
	)`,
}

// Store is a DuckDB database of effect annotations.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at path, creating its directory
// if needed. An empty path opens an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}
