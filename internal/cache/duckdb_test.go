package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshotTranscripts() []*Transcript {
	fwd := &Transcript{
		ID: "TX_FWD", GeneName: "GENE1", Chrom: "1", Strand: 1, IsCanonical: true,
		Biotype: "protein_coding",
		Exons:   []Exon{{Start: 100, End: 111}},
		CDSEnd:  12, Sequence: "ATGGCTAAATAA",
	}
	rev := &Transcript{
		ID: "TX_REV", GeneID: "G2", GeneName: "GENE2", Chrom: "2", Strand: -1,
		Exons:  []Exon{{Start: 400, End: 405}, {Start: 500, End: 505}},
		CDSEnd: 12, Sequence: "ATGGCTAAATAA",
	}
	for _, t := range []*Transcript{fwd, rev} {
		t.Finalize()
	}
	return []*Transcript{fwd, rev}
}

func TestDuckDBLoader_RoundTrip(t *testing.T) {
	loader, err := NewDuckDBLoader("")
	require.NoError(t, err)
	defer loader.Close()
	require.NoError(t, loader.CreateSchema())

	for _, tx := range testSnapshotTranscripts() {
		require.NoError(t, loader.InsertTranscript(tx))
	}

	count, err := loader.TranscriptCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := loader.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)

	fwd := got[0]
	assert.Equal(t, "TX_FWD", fwd.ID)
	assert.True(t, fwd.IsCanonical)
	assert.Equal(t, "protein_coding", fwd.Biotype)
	assert.Equal(t, 12, fwd.CDSEnd)
	assert.Equal(t, "ATGGCTAAATAA", fwd.Sequence)

	rev := got[1]
	assert.Equal(t, int8(-1), rev.Strand)
	assert.Equal(t, "G2", rev.GeneID)
	require.Len(t, rev.Exons, 2)
	assert.Equal(t, Exon{Number: 2, Start: 400, End: 405}, rev.Exons[0])
	assert.Equal(t, Exon{Number: 1, Start: 500, End: 505}, rev.Exons[1])
	assert.Equal(t, int64(400), rev.Start)
	assert.Equal(t, int64(505), rev.End)
}

func TestDuckDBLoader_DuplicateID(t *testing.T) {
	loader, err := NewDuckDBLoader("")
	require.NoError(t, err)
	defer loader.Close()
	require.NoError(t, loader.CreateSchema())

	tx := testSnapshotTranscripts()[0]
	require.NoError(t, loader.InsertTranscript(tx))
	assert.Error(t, loader.InsertTranscript(tx))

	count, err := loader.TranscriptCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoader_DuckDBSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcripts.duckdb")

	loader, err := NewDuckDBLoader(path)
	require.NoError(t, err)
	require.NoError(t, loader.CreateSchema())
	for _, tx := range testSnapshotTranscripts() {
		require.NoError(t, loader.InsertTranscript(tx))
	}
	require.NoError(t, loader.Close())

	c := New()
	require.NoError(t, NewLoader(dir).Load(c))
	assert.Equal(t, 2, c.TranscriptCount())
	assert.Len(t, c.FindTranscripts("2", 450, 450), 1)
}

func TestIsDuckDB(t *testing.T) {
	assert.True(t, IsDuckDB("tx.duckdb"))
	assert.True(t, IsDuckDB("/data/tx.db"))
	assert.False(t, IsDuckDB("tx.json"))
}
