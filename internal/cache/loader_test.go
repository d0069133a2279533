package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const jsonSnapshot = `[
  {
    "id": "TX_FWD",
    "gene_name": "GENE1",
    "chrom": "chr1",
    "strand": 1,
    "canonical": true,
    "exons": [{"start": 100, "end": 111}],
    "cds_start": 0,
    "cds_end": 12,
    "sequence": "atggctaaataa"
  }
]`

const yamlSnapshot = `
- id: TX_REV
  gene_name: GENE2
  chrom: "2"
  strand: -1
  exons:
    - {start: 500, end: 505}
    - {start: 400, end: 405}
  cds_start: 0
  cds_end: 12
  sequence: ATGGCTAAATAA
`

func writeSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "a.json", jsonSnapshot)
	writeSnapshot(t, dir, "b.yaml", yamlSnapshot)
	writeSnapshot(t, dir, "notes.txt", "ignored")

	c := New()
	require.NoError(t, NewLoader(dir).Load(c))
	assert.Equal(t, 2, c.TranscriptCount())

	fwd := c.GetTranscript("TX_FWD")
	require.NotNil(t, fwd)
	assert.Equal(t, "1", fwd.Chrom, "chr prefix stripped")
	assert.Equal(t, "ATGGCTAAATAA", fwd.Sequence, "sequence uppercased")
	assert.Equal(t, int64(100), fwd.Start)
	assert.Equal(t, int64(111), fwd.End)
	assert.True(t, fwd.IsCanonical)

	rev := c.GetTranscript("TX_REV")
	require.NotNil(t, rev)
	assert.Equal(t, int64(400), rev.Exons[0].Start, "exons sorted ascending")
	assert.Equal(t, 2, rev.Exons[0].Number)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "tx.json", jsonSnapshot)

	c := New()
	loader := NewLoader(path)
	loader.SetWorkers(1)
	require.NoError(t, loader.Load(c))
	assert.Equal(t, 1, c.TranscriptCount())
}

func TestLoader_InvalidTranscript(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "mixed.json", `[
  {"id": "BAD", "chrom": "1", "strand": 1, "exons": [], "sequence": ""},
  {"id": "GOOD", "chrom": "1", "strand": 1, "exons": [{"start": 100, "end": 111}], "cds_end": 12, "sequence": "ATGGCTAAATAA"}
]`)

	core, logs := observer.New(zap.WarnLevel)
	c := New()
	loader := NewLoader(dir)
	loader.SetLogger(zap.New(core))
	require.NoError(t, loader.Load(c))

	assert.Equal(t, 1, c.TranscriptCount())
	assert.NotNil(t, c.GetTranscript("GOOD"))
	assert.Nil(t, c.GetTranscript("BAD"))
	assert.Equal(t, 1, loader.Skipped())
	assert.Equal(t, []string{filepath.Join(dir, "mixed.json")}, loader.Files())

	entries := logs.FilterMessage("skipping invalid transcript").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "BAD", entries[0].ContextMap()["transcript"])
}

func TestLoader_UndecodableFile(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "broken.json", `{"id": `)

	err := NewLoader(dir).Load(New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestLoader_MissingPath(t *testing.T) {
	err := NewLoader(filepath.Join(t.TempDir(), "nope")).Load(New())
	require.Error(t, err)
}
