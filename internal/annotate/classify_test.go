package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		facts Facts
		want  Category
	}{
		{"start lost beats splice", Facts{Region: RegionCDS, SpliceSite: RegionSpliceDonor, Translation: &TranslationResult{StartLost: true}}, CategoryStartLost},
		{"stop gained beats frameshift", Facts{Region: RegionCDS, Frameshift: true, Translation: &TranslationResult{StopGained: true, Frameshift: true}}, CategoryStopGained},
		{"frameshift", Facts{Region: RegionCDS, Frameshift: true, Translation: &TranslationResult{Frameshift: true, Pos: 2}}, CategoryFrameshift},
		{"frameshift needs CDS", Facts{Region: Region3UTR, Frameshift: true}, Category3PrimeUTR},
		{"stop lost", Facts{Region: RegionCDS, Translation: &TranslationResult{StopLost: true}}, CategoryStopLost},
		{"donor", Facts{Region: RegionIntron, SpliceSite: RegionSpliceDonor, SpliceRegion: true}, CategorySpliceDonor},
		{"acceptor", Facts{Region: RegionIntron, SpliceSite: RegionSpliceAcceptor, SpliceRegion: true}, CategorySpliceAcceptor},
		{"splice region beats missense", Facts{Region: RegionCDS, SpliceRegion: true, Translation: &TranslationResult{Pos: 2, Deleted: "A", Inserted: "S"}}, CategorySpliceRegion},
		{"missense", Facts{Region: RegionCDS, Translation: &TranslationResult{Pos: 2, Deleted: "A", Inserted: "S"}}, CategoryMissense},
		{"in-frame insertion", Facts{Region: RegionCDS, Translation: &TranslationResult{Pos: 3, Inserted: "G"}}, CategoryInframeInsertion},
		{"in-frame dup", Facts{Region: RegionCDS, Translation: &TranslationResult{Pos: 3, Inserted: "A", Dup: true}}, CategoryInframeInsertion},
		{"in-frame deletion", Facts{Region: RegionCDS, Translation: &TranslationResult{Pos: 2, Deleted: "A"}}, CategoryInframeDeletion},
		{"synonymous", Facts{Region: RegionCDS, Translation: &TranslationResult{Codon: 2}}, CategorySynonymous},
		{"unknown frame", Facts{Region: RegionCDS}, CategoryCodingSequence},
		{"5' UTR", Facts{Region: Region5UTR}, Category5PrimeUTR},
		{"3' UTR", Facts{Region: Region3UTR}, Category3PrimeUTR},
		{"non-coding exon", Facts{Region: RegionNonCodingExon}, CategoryNonCodingExon},
		{"intron", Facts{Region: RegionIntron}, CategoryIntron},
		{"upstream", Facts{Region: RegionUpstream}, CategoryUpstream},
		{"downstream", Facts{Region: RegionDownstream}, CategoryDownstream},
		{"nothing", Facts{}, CategoryIntergenic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.facts))
		})
	}
}

func TestCategory_Impact(t *testing.T) {
	assert.Equal(t, ImpactHigh, CategoryStopGained.Impact())
	assert.Equal(t, ImpactHigh, CategorySpliceAcceptor.Impact())
	assert.Equal(t, ImpactModerate, CategoryInframeDeletion.Impact())
	assert.Equal(t, ImpactLow, CategorySynonymous.Impact())
	assert.Equal(t, ImpactLow, CategorySpliceRegion.Impact())
	assert.Equal(t, ImpactModifier, CategoryIntron.Impact())
	assert.Greater(t, ImpactRank(ImpactHigh), ImpactRank(ImpactModerate))
	assert.Greater(t, ImpactRank(ImpactLow), ImpactRank(ImpactModifier))
}

func TestParseCategory(t *testing.T) {
	for c := CategoryStartLost; c <= CategoryIntergenic; c++ {
		got, ok := ParseCategory(c.String())
		assert.True(t, ok, c.String())
		assert.Equal(t, c, got)
	}
	_, ok := ParseCategory("feature_elongation")
	assert.False(t, ok)
}
