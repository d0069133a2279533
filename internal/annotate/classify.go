package annotate

// Impact levels for variant consequences.
const (
	ImpactHigh     = "HIGH"
	ImpactModerate = "MODERATE"
	ImpactLow      = "LOW"
	ImpactModifier = "MODIFIER"
)

// Category is the functional effect of a variant on one transcript.
// Constants are declared from most to least severe.
type Category int

const (
	CategoryStartLost Category = iota + 1
	CategoryStopGained
	CategoryFrameshift
	CategoryStopLost
	CategorySpliceDonor
	CategorySpliceAcceptor
	CategorySpliceRegion
	CategoryMissense
	CategoryInframeInsertion
	CategoryInframeDeletion
	CategoryCodingSequence
	CategorySynonymous
	Category5PrimeUTR
	Category3PrimeUTR
	CategoryNonCodingExon
	CategoryIntron
	CategoryUpstream
	CategoryDownstream
	CategoryIntergenic
)

// String returns the Sequence Ontology term.
func (c Category) String() string {
	switch c {
	case CategoryStartLost:
		return "start_lost"
	case CategoryStopGained:
		return "stop_gained"
	case CategoryFrameshift:
		return "frameshift_variant"
	case CategoryStopLost:
		return "stop_lost"
	case CategorySpliceDonor:
		return "splice_donor_variant"
	case CategorySpliceAcceptor:
		return "splice_acceptor_variant"
	case CategorySpliceRegion:
		return "splice_region_variant"
	case CategoryMissense:
		return "missense_variant"
	case CategoryInframeInsertion:
		return "inframe_insertion"
	case CategoryInframeDeletion:
		return "inframe_deletion"
	case CategoryCodingSequence:
		return "coding_sequence_variant"
	case CategorySynonymous:
		return "synonymous_variant"
	case Category5PrimeUTR:
		return "5_prime_UTR_variant"
	case Category3PrimeUTR:
		return "3_prime_UTR_variant"
	case CategoryNonCodingExon:
		return "non_coding_transcript_exon_variant"
	case CategoryIntron:
		return "intron_variant"
	case CategoryUpstream:
		return "upstream_gene_variant"
	case CategoryDownstream:
		return "downstream_gene_variant"
	case CategoryIntergenic:
		return "intergenic_variant"
	default:
		return "unknown"
	}
}

// ParseCategory returns the category for a Sequence Ontology term.
func ParseCategory(term string) (Category, bool) {
	for c := CategoryStartLost; c <= CategoryIntergenic; c++ {
		if c.String() == term {
			return c, true
		}
	}
	return 0, false
}

// Impact returns the VEP impact level of the category.
func (c Category) Impact() string {
	switch c {
	case CategoryStartLost, CategoryStopGained, CategoryFrameshift, CategoryStopLost,
		CategorySpliceDonor, CategorySpliceAcceptor:
		return ImpactHigh
	case CategoryMissense, CategoryInframeInsertion, CategoryInframeDeletion:
		return ImpactModerate
	case CategorySpliceRegion, CategoryCodingSequence, CategorySynonymous:
		return ImpactLow
	default:
		return ImpactModifier
	}
}

// ImpactRank returns numeric rank for impact comparison (higher = more severe).
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// Facts are the mapper and translator outputs the classifier decides on.
type Facts struct {
	Region       Region // RegionCDS whenever the edit overlaps coding bases
	Kind         EditKind
	Frameshift   bool
	SpliceSite   Region // RegionSpliceDonor or RegionSpliceAcceptor if a site is hit
	SpliceRegion bool

	// Translation is nil when no translation was attempted, either outside
	// the CDS or because the reading frame could not be established.
	Translation *TranslationResult
}

// Classify picks the single most severe category that holds.
func Classify(f Facts) Category {
	tr := f.Translation
	switch {
	case tr != nil && tr.StartLost:
		return CategoryStartLost
	case tr != nil && tr.StopGained:
		return CategoryStopGained
	case f.Region == RegionCDS && f.Frameshift:
		return CategoryFrameshift
	case tr != nil && tr.StopLost:
		return CategoryStopLost
	case f.SpliceSite == RegionSpliceDonor:
		return CategorySpliceDonor
	case f.SpliceSite == RegionSpliceAcceptor:
		return CategorySpliceAcceptor
	case f.SpliceRegion:
		return CategorySpliceRegion
	}

	switch f.Region {
	case RegionCDS:
		return classifyCoding(tr)
	case Region5UTR:
		return Category5PrimeUTR
	case Region3UTR:
		return Category3PrimeUTR
	case RegionNonCodingExon:
		return CategoryNonCodingExon
	case RegionIntron, RegionSpliceDonor, RegionSpliceAcceptor:
		return CategoryIntron
	case RegionUpstream:
		return CategoryUpstream
	case RegionDownstream:
		return CategoryDownstream
	default:
		return CategoryIntergenic
	}
}

func classifyCoding(tr *TranslationResult) Category {
	switch {
	case tr == nil:
		return CategoryCodingSequence
	case tr.Pos == 0:
		return CategorySynonymous
	case tr.Dup || len(tr.Inserted) > len(tr.Deleted):
		return CategoryInframeInsertion
	case len(tr.Deleted) > len(tr.Inserted):
		return CategoryInframeDeletion
	default:
		return CategoryMissense
	}
}
