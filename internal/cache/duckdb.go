package cache

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBLoader reads and writes transcript snapshots stored in a DuckDB
// database, an alternative to JSON/YAML files for large transcript sets.
type DuckDBLoader struct {
	db   *sql.DB
	path string
}

// NewDuckDBLoader opens (or creates) a DuckDB transcript database.
// An empty path opens an in-memory database.
func NewDuckDBLoader(path string) (*DuckDBLoader, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBLoader{db: db, path: path}, nil
}

// Close closes the database connection.
func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}

// CreateSchema creates the database schema for storing transcripts.
func (l *DuckDBLoader) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transcripts (
			id VARCHAR PRIMARY KEY,
			gene_id VARCHAR,
			gene_name VARCHAR,
			chrom VARCHAR,
			start BIGINT,
			end_ BIGINT,
			strand TINYINT,
			biotype VARCHAR,
			is_canonical BOOLEAN,
			cds_start INTEGER,
			cds_end INTEGER,
			sequence VARCHAR
		);

		CREATE TABLE IF NOT EXISTS exons (
			transcript_id VARCHAR,
			exon_number INTEGER,
			start BIGINT,
			end_ BIGINT,
			PRIMARY KEY (transcript_id, start)
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_pos ON transcripts(chrom, start, end_);
	`
	_, err := l.db.Exec(schema)
	return err
}

// InsertTranscript inserts a transcript and its exons into the database.
func (l *DuckDBLoader) InsertTranscript(t *Transcript) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO transcripts (id, gene_id, gene_name, chrom, start, end_, strand,
		                         biotype, is_canonical, cds_start, cds_end, sequence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.GeneID, t.GeneName, t.Chrom, t.Start, t.End, t.Strand,
		t.Biotype, t.IsCanonical, t.CDSStart, t.CDSEnd, nullString(t.Sequence))
	if err != nil {
		return fmt.Errorf("insert transcript %s: %w", t.ID, err)
	}

	for _, e := range t.Exons {
		_, err := tx.Exec(`
			INSERT INTO exons (transcript_id, exon_number, start, end_)
			VALUES (?, ?, ?, ?)
		`, t.ID, e.Number, e.Start, e.End)
		if err != nil {
			return fmt.Errorf("insert exon of %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// LoadAll reads every transcript, normalized as file snapshots are but not
// validated.
func (l *DuckDBLoader) LoadAll() ([]*Transcript, error) {
	rows, err := l.db.Query(`
		SELECT id, gene_id, gene_name, chrom, start, end_, strand, biotype,
		       is_canonical, cds_start, cds_end, sequence
		FROM transcripts
		ORDER BY chrom, start
	`)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*Transcript
	byID := make(map[string]*Transcript)
	for rows.Next() {
		t := &Transcript{}
		var geneID, geneName, biotype, seq sql.NullString
		err := rows.Scan(
			&t.ID, &geneID, &geneName, &t.Chrom, &t.Start, &t.End,
			&t.Strand, &biotype, &t.IsCanonical, &t.CDSStart, &t.CDSEnd, &seq,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.GeneID, t.GeneName, t.Biotype, t.Sequence = geneID.String, geneName.String, biotype.String, seq.String
		transcripts = append(transcripts, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := l.loadExons(byID); err != nil {
		return nil, err
	}

	for _, t := range transcripts {
		prepare(t)
	}
	return transcripts, nil
}

// loadExons attaches exons to the transcripts they belong to.
func (l *DuckDBLoader) loadExons(byID map[string]*Transcript) error {
	rows, err := l.db.Query(`
		SELECT transcript_id, exon_number, start, end_
		FROM exons
		ORDER BY transcript_id, start
	`)
	if err != nil {
		return fmt.Errorf("query exons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var e Exon
		if err := rows.Scan(&id, &e.Number, &e.Start, &e.End); err != nil {
			return fmt.Errorf("scan exon: %w", err)
		}
		if t, ok := byID[id]; ok {
			t.Exons = append(t.Exons, e)
		}
	}
	return rows.Err()
}

// TranscriptCount returns the total number of transcripts in the database.
func (l *DuckDBLoader) TranscriptCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&count)
	return count, err
}

// nullString returns nil if s is empty, otherwise s.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// IsDuckDB checks if a path is a DuckDB database file.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}
