package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-hgvs/internal/annotate"
)

// VariantResult holds the data needed to write one annotation to DuckDB.
type VariantResult struct {
	Chrom string
	Pos   int64
	Ref   string
	Alt   string
	Ann   *annotate.EffectAnnotation
}

// resultKey is the composite key for deduplicating variant results before writing.
type resultKey struct {
	chrom, ref, alt, transcriptID string
	pos                           int64
}

const resultColumns = `chrom, pos, ref, alt, transcript_id,
		gene_name, gene_id, biotype, consequence, impact,
		hgvsc, hgvsp, cds_position, protein_position,
		exon_number, intron_number, is_canonical, allele`

// WriteVariantResults batch-inserts variant results into DuckDB using the Appender API.
// Duplicate (chrom, pos, ref, alt, transcript_id) entries are deduplicated before writing.
func (s *Store) WriteVariantResults(ctx context.Context, results []VariantResult) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, len(results))
	deduped := make([]VariantResult, 0, len(results))
	for _, r := range results {
		k := resultKey{r.Chrom, r.Ref, r.Alt, r.Ann.TranscriptID, r.Pos}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "effect_annotations")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		a := r.Ann
		if err := appender.AppendRow(
			r.Chrom, r.Pos, r.Ref, r.Alt, a.TranscriptID,
			a.GeneName, a.GeneID, a.Biotype, a.Consequence(), a.Impact(),
			a.HGVSc, a.HGVSp, a.CDSPosition, a.ProteinPosition,
			a.ExonNumber, a.IntronNumber, a.IsCanonical, a.Allele,
		); err != nil {
			return fmt.Errorf("append variant result: %w", err)
		}
	}

	return appender.Flush()
}

// ClearVariantResults removes all stored annotations.
func (s *Store) ClearVariantResults() error {
	_, err := s.db.Exec("DELETE FROM effect_annotations")
	return err
}

// LookupVariant returns the stored annotations of one variant.
func (s *Store) LookupVariant(ctx context.Context, chrom string, pos int64, ref, alt string) ([]*annotate.EffectAnnotation, error) {
	results, err := s.query(ctx, "WHERE chrom=? AND pos=? AND ref=? AND alt=?", chrom, pos, ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query variant: %w", err)
	}
	anns := make([]*annotate.EffectAnnotation, len(results))
	for i, r := range results {
		anns[i] = r.Ann
	}
	return anns, nil
}

// SearchByGene returns all stored annotations for a gene.
func (s *Store) SearchByGene(ctx context.Context, geneName string) ([]VariantResult, error) {
	results, err := s.query(ctx, "WHERE gene_name=?", geneName)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	return results, nil
}

// SearchByConsequence returns stored annotations with the given Sequence
// Ontology term (e.g. "frameshift_variant").
func (s *Store) SearchByConsequence(ctx context.Context, term string) ([]VariantResult, error) {
	results, err := s.query(ctx, "WHERE consequence=?", term)
	if err != nil {
		return nil, fmt.Errorf("query by consequence: %w", err)
	}
	return results, nil
}

// CountByConsequence returns the number of stored annotations per term.
func (s *Store) CountByConsequence(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT consequence, count(*) FROM effect_annotations GROUP BY consequence")
	if err != nil {
		return nil, fmt.Errorf("count consequences: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var term string
		var n int
		if err := rows.Scan(&term, &n); err != nil {
			return nil, fmt.Errorf("scan consequence count: %w", err)
		}
		counts[term] = n
	}
	return counts, rows.Err()
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]VariantResult, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+resultColumns+" FROM effect_annotations "+where+
		" ORDER BY chrom, pos, ref, alt, transcript_id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVariantResults(rows)
}

// scanVariantResults scans rows into VariantResult slices.
func scanVariantResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]VariantResult, error) {
	var results []VariantResult
	for rows.Next() {
		var chrom, ref, alt, consequence, impact string
		var pos int64
		var ann annotate.EffectAnnotation

		if err := rows.Scan(
			&chrom, &pos, &ref, &alt, &ann.TranscriptID,
			&ann.GeneName, &ann.GeneID, &ann.Biotype, &consequence, &impact,
			&ann.HGVSc, &ann.HGVSp, &ann.CDSPosition, &ann.ProteinPosition,
			&ann.ExonNumber, &ann.IntronNumber, &ann.IsCanonical, &ann.Allele,
		); err != nil {
			return nil, fmt.Errorf("scan variant result: %w", err)
		}

		cat, ok := annotate.ParseCategory(consequence)
		if !ok {
			return nil, fmt.Errorf("unknown consequence %q for %s", consequence, ann.TranscriptID)
		}
		ann.Category = cat
		ann.VariantID = annotate.FormatVariantID(chrom, pos, ref, alt)
		a := ann
		results = append(results, VariantResult{
			Chrom: chrom, Pos: pos, Ref: ref, Alt: alt, Ann: &a,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant results: %w", err)
	}
	return results, nil
}
