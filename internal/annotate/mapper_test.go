package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

func TestMapGenomic(t *testing.T) {
	tests := []struct {
		name       string
		tx         *cache.Transcript
		pos        int64
		region     Region
		txOffset   int64
		intron     int64
		cdsPos     int64
		codon      int64
		phase      int
		nearSplice bool
	}{
		{"5'UTR", splicedTranscript(), 2001, Region5UTR, 0, 0, 0, 0, 0, false},
		{"first coding base", splicedTranscript(), 2003, RegionCDS, 2, 0, 1, 1, 0, false},
		{"last base of exon 1", splicedTranscript(), 2010, RegionCDS, 9, 0, 8, 3, 1, true},
		{"first base of exon 2", splicedTranscript(), 2050, RegionCDS, 10, 0, 9, 3, 2, true},
		{"donor", splicedTranscript(), 2011, RegionSpliceDonor, 9, 1, 0, 0, 0, false},
		{"acceptor", splicedTranscript(), 2048, RegionSpliceAcceptor, 10, -2, 0, 0, 0, false},
		{"intronic past splice window", splicedTranscript(), 2013, RegionIntron, 9, 3, 0, 0, 0, false},
		{"intronic tie", splicedTranscript(), 2030, RegionIntron, 9, 20, 0, 0, 0, false},
		{"3'UTR", splicedTranscript(), 2069, Region3UTR, 29, 0, 0, 0, 0, false},
		{"upstream", splicedTranscript(), 1991, RegionUpstream, -10, 0, 0, 0, 0, false},
		{"downstream", splicedTranscript(), 2072, RegionDownstream, 32, 0, 0, 0, 0, false},

		{"reverse first exon", reverseTranscript(), 3059, Region5UTR, 0, 0, 0, 0, 0, false},
		{"reverse coding", reverseTranscript(), 3054, RegionCDS, 5, 0, 4, 2, 0, false},
		{"reverse coding near boundary", reverseTranscript(), 3053, RegionCDS, 6, 0, 5, 2, 1, true},
		{"reverse exon 2", reverseTranscript(), 3022, RegionCDS, 8, 0, 7, 3, 0, true},
		{"reverse donor", reverseTranscript(), 3050, RegionSpliceDonor, 7, 2, 0, 0, 0, false},
		{"reverse acceptor", reverseTranscript(), 3023, RegionSpliceAcceptor, 8, -1, 0, 0, 0, false},
		{"reverse upstream", reverseTranscript(), 3062, RegionUpstream, -3, 0, 0, 0, 0, false},
		{"reverse downstream", reverseTranscript(), 2999, RegionDownstream, 31, 0, 0, 0, 0, false},

		{"non-coding exon", nonCodingTranscript(), 4005, RegionNonCodingExon, 4, 0, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MapGenomic(tt.pos, tt.tx, DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.region, m.Region, "got %s", m.Region)
			assert.Equal(t, tt.txOffset, m.TxOffset)
			assert.Equal(t, tt.intron, m.IntronOffset)
			assert.Equal(t, tt.cdsPos, m.CDSPos)
			assert.Equal(t, tt.codon, m.Codon)
			assert.Equal(t, tt.phase, m.CodonPhase)
			assert.Equal(t, tt.nearSplice, m.NearSplice)
		})
	}
}

func TestMapGenomic_OutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlankWidth = 100
	tx := splicedTranscript()

	_, err := MapGenomic(2001-100, tx, cfg)
	assert.NoError(t, err)
	_, err = MapGenomic(2001-101, tx, cfg)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = MapGenomic(2069+101, tx, cfg)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMapGenomic_SpliceWindowConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpliceWindow = 5
	m, err := MapGenomic(2015, splicedTranscript(), cfg)
	require.NoError(t, err)
	assert.Equal(t, RegionSpliceDonor, m.Region)
}

func TestCDSRoundTrip(t *testing.T) {
	for _, tx := range []*cache.Transcript{codingTranscript(), splicedTranscript(), reverseTranscript()} {
		t.Run(tx.ID, func(t *testing.T) {
			for c := int64(1); c <= int64(tx.CDSLength()); c++ {
				g, err := CDSToGenomic(c, tx)
				require.NoError(t, err)
				m, err := MapGenomic(g, tx, DefaultConfig())
				require.NoError(t, err)
				assert.Equal(t, RegionCDS, m.Region)
				assert.Equal(t, c, m.CDSPos, "genomic %d", g)
			}
		})
	}
}

func TestCDSToGenomic(t *testing.T) {
	g, err := CDSToGenomic(9, splicedTranscript())
	require.NoError(t, err)
	assert.Equal(t, int64(2050), g)

	g, err = CDSToGenomic(7, reverseTranscript())
	require.NoError(t, err)
	assert.Equal(t, int64(3022), g)

	_, err = CDSToGenomic(0, splicedTranscript())
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = CDSToGenomic(19, splicedTranscript())
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = CDSToGenomic(1, nonCodingTranscript())
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestTouchSplice(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name   string
		tx     *cache.Transcript
		lo, hi int64
		want   spliceContact
	}{
		{"deep intron", splicedTranscript(), 2030, 2030, spliceContact{intron: true}},
		{"donor", splicedTranscript(), 2011, 2011, spliceContact{site: RegionSpliceDonor, region: true, intron: true}},
		{"exonic region", splicedTranscript(), 2009, 2009, spliceContact{region: true, exon: true}},
		{"mid exon", splicedTranscript(), 2005, 2005, spliceContact{exon: true}},
		{"across boundary", splicedTranscript(), 2045, 2052, spliceContact{site: RegionSpliceAcceptor, region: true, exon: true, intron: true}},
		{"reverse donor", reverseTranscript(), 3051, 3051, spliceContact{site: RegionSpliceDonor, region: true, intron: true}},
		{"reverse acceptor", reverseTranscript(), 3024, 3024, spliceContact{site: RegionSpliceAcceptor, region: true, intron: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, touchSplice(tt.lo, tt.hi, tt.tx, cfg))
		})
	}
}
