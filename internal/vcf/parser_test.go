package vcf

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = `##fileformat=VCFv4.2
##INFO=<ID=TR,Number=1,Type=String,Description="Transcript">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
1	1004	.	G	T	50	PASS	TR=TX1;HGVSC=c.4G>T;HGVSP=p.Ala2Ser

chr1	1005	rs1	CT	C	.	PASS	TR=TX1;SOMATIC
1	1010	.	A	AG,AGG	.	.	.
`

func readAll(t *testing.T, p *Parser) []*Variant {
	t.Helper()
	var out []*Variant
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestParser_FromReader(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(testVCF))
	require.NoError(t, err)

	assert.Len(t, p.Header(), 3)
	variants := readAll(t, p)
	require.Len(t, variants, 3, "empty line skipped")

	v := variants[0]
	assert.Equal(t, "1", v.Chrom)
	assert.Equal(t, int64(1004), v.Pos)
	assert.Equal(t, "G", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, 50.0, v.Qual)
	assert.Equal(t, "c.4G>T", v.InfoString("HGVSC"))
	assert.Equal(t, "p.Ala2Ser", v.InfoString("HGVSP"))

	assert.Equal(t, "rs1", variants[1].ID)
	assert.Equal(t, true, variants[1].Info["SOMATIC"])
	assert.Equal(t, 7, p.LineNumber())
}

func TestParser_MissingHeader(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("1\t100\t.\tA\tG\t.\t.\t.\n"))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestParser_BadLine(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader("#CHROM\tPOS\n1\tabc\t.\tA\tG\t.\t.\t.\n"))
	require.NoError(t, err)

	_, err = p.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid position")
}

func TestParser_Edges(t *testing.T) {
	const header = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

	t.Run("no trailing newline", func(t *testing.T) {
		p, err := NewParserFromReader(strings.NewReader(header + "1\t100\t.\tA\tG\t.\t.\t.\r"))
		require.NoError(t, err)
		variants := readAll(t, p)
		require.Len(t, variants, 1)
		assert.Equal(t, "G", variants[0].Alt)
		assert.Equal(t, 2, p.LineNumber())
	})

	t.Run("position zero", func(t *testing.T) {
		p, err := NewParserFromReader(strings.NewReader(header + "1\t0\t.\tA\tG\t.\t.\t.\n"))
		require.NoError(t, err)
		_, err = p.Next()
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, perr.Line)
	})

	t.Run("sample columns", func(t *testing.T) {
		p, err := NewParserFromReader(strings.NewReader(header + "1\t100\t.\tA\tG\t.\t.\tDP=3\tGT\t0/1\n"))
		require.NoError(t, err)
		v, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, "GT\t0/1", v.SampleColumns)
		assert.Equal(t, "DP=3", v.RawInfo)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := NewParserFromReader(strings.NewReader(""))
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
	})
}

func TestParser_GzipFromReader(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	p, err := NewParserFromReader(&buf)
	require.NoError(t, err)
	defer p.Close()
	assert.Len(t, readAll(t, p), 3)
}

func TestParser_Compressed(t *testing.T) {
	dir := t.TempDir()

	bgzPath := filepath.Join(dir, "in.vcf.gz")
	f, err := os.Create(bgzPath)
	require.NoError(t, err)
	w := bgzf.NewWriter(f, 1)
	_, err = w.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	gzPath := filepath.Join(dir, "plain.vcf.gz")
	f, err = os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{bgzPath, gzPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			p, err := NewParser(path)
			require.NoError(t, err)
			defer p.Close()
			assert.Len(t, readAll(t, p), 3)
		})
	}
}

func TestSplitMultiAllelic(t *testing.T) {
	tests := []struct {
		name     string
		alt      string
		expected int
	}{
		{"single allele", "C", 1},
		{"two alleles", "C,T", 2},
		{"three alleles", "C,T,G", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Chrom: "12", Pos: 100, Ref: "A", Alt: tt.alt}
			split := SplitMultiAllelic(v)
			require.Len(t, split, tt.expected)
			for i, alt := range strings.Split(tt.alt, ",") {
				assert.Equal(t, alt, split[i].Alt)
				assert.Equal(t, v.Pos, split[i].Pos)
			}
		})
	}
}
