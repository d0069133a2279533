package annotate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// ReferenceView supplies forward-strand genomic bases. Fetch returns the
// bases of chrom in [start, end], 1-based and inclusive.
type ReferenceView interface {
	Fetch(chrom string, start, end int64) (string, error)
}

// Engine annotates (variant, transcript) pairs. It holds no per-call state
// and is safe for concurrent use once configured.
type Engine struct {
	cfg Config
	ref ReferenceView
}

// NewEngine creates an engine after validating cfg.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// SetReference sets the genome used to verify reference alleles that fall
// outside the spliced transcript. Without one they are not checked.
func (e *Engine) SetReference(ref ReferenceView) {
	e.ref = ref
}

// Config returns the engine settings.
func (e *Engine) Config() Config {
	return e.cfg
}

// Annotate computes the effect of v on t using cfg.
func Annotate(v *vcf.Variant, t *cache.Transcript, cfg Config) (EffectAnnotation, error) {
	return (&Engine{cfg: cfg}).Annotate(v, t)
}

// Annotate computes the effect of v on t. Errors are *Error values
// carrying the transcript ID.
func (e *Engine) Annotate(v *vcf.Variant, t *cache.Transcript) (EffectAnnotation, error) {
	ann, err := e.annotate(v, t)
	if err != nil {
		var ee *Error
		if errors.As(err, &ee) && ee.Transcript == "" {
			ee.Transcript = t.ID
		}
		return EffectAnnotation{}, err
	}
	return ann, nil
}

// genomicEdit is a variant reduced to minimal forward-strand alleles.
// For insertions Ref is empty and Alt goes between Pos-1 and Pos.
type genomicEdit struct {
	Chrom string
	Pos   int64
	Ref   string
	Alt   string
}

func (g genomicEdit) isInsertion() bool {
	return g.Ref == ""
}

// span returns the affected genomic bases, or the flanking bases of an
// insertion.
func (g genomicEdit) span() (lo, hi int64) {
	if g.isInsertion() {
		return g.Pos - 1, g.Pos
	}
	return g.Pos, g.Pos + int64(len(g.Ref)) - 1
}

func newGenomicEdit(v *vcf.Variant, maxLen int) (genomicEdit, error) {
	if v.IsSymbolic() {
		return genomicEdit{}, newError(KindUnsupportedEdit, "", "symbolic allele %s", v.Alt)
	}
	ref, alt := cleanAllele(v.Ref), cleanAllele(v.Alt)
	if len(ref) > maxLen || len(alt) > maxLen {
		return genomicEdit{}, newError(KindUnsupportedEdit, "", "edit of %d bases exceeds the %d base limit", max(len(ref), len(alt)), maxLen)
	}
	if !isNucleotides(ref) || !isNucleotides(alt) {
		return genomicEdit{}, newError(KindUnsupportedEdit, "", "allele %s>%s is not a nucleotide sequence", v.Ref, v.Alt)
	}
	pos, ref, alt := trimAlleles(v.Pos, ref, alt)
	if ref == "" && alt == "" {
		return genomicEdit{}, newError(KindUnsupportedEdit, "", "reference and alternate alleles are identical")
	}
	if pos < 1 {
		return genomicEdit{}, newError(KindOutOfRange, "", "position %d before the chromosome start", pos)
	}
	return genomicEdit{Chrom: v.Chrom, Pos: pos, Ref: ref, Alt: alt}, nil
}

func cleanAllele(a string) string {
	if a == "-" || a == "." {
		return ""
	}
	return strings.ToUpper(a)
}

func isNucleotides(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}

// trimAlleles strips the shared suffix, then the shared prefix, of VCF
// style anchored alleles.
func trimAlleles(pos int64, ref, alt string) (int64, string, string) {
	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref, alt = ref[:len(ref)-1], alt[:len(alt)-1]
	}
	for len(ref) > 0 && len(alt) > 0 && ref[0] == alt[0] {
		ref, alt = ref[1:], alt[1:]
		pos++
	}
	return pos, ref, alt
}

// pair is the per-call working state for one variant on one transcript.
type pair struct {
	t *cache.Transcript
	g genomicEdit

	// first and last are the edit's end bases in transcript order.
	first, last MappedPosition
	// ref and alt on the transcript strand.
	ref, alt string

	origin    int
	codingLen int64
	prefix    string
}

// place maps the ends of g onto the transcript and sets the
// transcript-strand alleles.
func (p *pair) place(g genomicEdit, cfg Config) error {
	lo, hi := g.span()
	mLo, err := MapGenomic(lo, p.t, cfg)
	if err != nil {
		return err
	}
	mHi := mLo
	if hi != lo {
		if mHi, err = MapGenomic(hi, p.t, cfg); err != nil {
			return err
		}
	}

	p.g, p.first, p.last, p.ref, p.alt = g, mLo, mHi, g.Ref, g.Alt
	if p.t.IsReverseStrand() {
		p.first, p.last = mHi, mLo
		p.ref, p.alt = ReverseComplement(g.Ref), ReverseComplement(g.Alt)
	}
	return nil
}

// exonic reports whether the whole edit lies on contiguous spliced bases.
func (p *pair) exonic() bool {
	if !p.first.Region.IsExonic() || !p.last.Region.IsExonic() {
		return false
	}
	d := p.last.TxOffset - p.first.TxOffset
	if p.g.isInsertion() {
		return d == 1
	}
	return d == int64(len(p.ref))-1
}

func (e *Engine) annotate(v *vcf.Variant, t *cache.Transcript) (EffectAnnotation, error) {
	if err := t.Validate(); err != nil {
		return EffectAnnotation{}, newError(KindMalformedTranscript, t.ID, "%v", err)
	}
	g, err := newGenomicEdit(v, e.cfg.MaxEditLength)
	if err != nil {
		return EffectAnnotation{}, err
	}

	p := &pair{t: t}
	if err := p.place(g, e.cfg); err != nil {
		return EffectAnnotation{}, err
	}
	if t.IsProteinCoding() {
		p.origin, p.codingLen, p.prefix = t.CDSStart, int64(t.CDSLength()), "c."
	} else {
		p.origin, p.codingLen, p.prefix = 0, t.ExonicLength(), "n."
	}

	ann := EffectAnnotation{
		VariantID:    FormatVariantID(v.Chrom, v.Pos, v.Ref, v.Alt),
		TranscriptID: t.ID,
		GeneName:     t.GeneName,
		GeneID:       t.GeneID,
		Biotype:      t.Biotype,
		IsCanonical:  t.IsCanonical,
		Allele:       v.Alt,
	}
	ann.ExonNumber, ann.IntronNumber = exonIntronNumbers(p.first, t)

	if p.exonic() {
		err = e.annotateExonic(&ann, p)
	} else {
		err = e.annotateSpan(&ann, p)
	}
	if err != nil {
		return EffectAnnotation{}, err
	}
	return ann, nil
}

// annotateExonic handles edits on the spliced transcript: the reference
// allele is checked against the transcript sequence, the edit is shifted
// 3' within its exon, and coding edits are translated.
func (e *Engine) annotateExonic(ann *EffectAnnotation, p *pair) error {
	t := p.t
	if t.Sequence == "" {
		return newError(KindUnmappableEdit, t.ID, "transcript has no sequence")
	}
	o := int64(p.origin)
	start, end := p.first.TxOffset-o, p.last.TxOffset-o+1
	if p.g.isInsertion() {
		start = p.last.TxOffset - o
		end = start
	}
	edit, _, err := NewSequenceEdit(t.Sequence, p.origin, start, end, p.ref, p.alt)
	if err != nil {
		return err
	}
	idx := p.last.ExonIndex
	exonLo := t.ExonTxOffset(idx) - o
	edit = Normalize(edit, t.Sequence, p.origin, exonLo, exonLo+t.Exons[idx].Len())

	region, coding := exonicRegion(edit, t)
	var tr *TranslationResult
	if coding && t.HasValidFrame() {
		res := Translate(t, edit, e.cfg)
		tr = &res
	}

	ann.Edit = edit
	ann.Category = Classify(Facts{
		Region:       region,
		Kind:         edit.Kind,
		Frameshift:   edit.IsFrameshift(),
		SpliceRegion: p.first.NearSplice || p.last.NearSplice,
		Translation:  tr,
	})
	ann.HGVSc = FormatHGVSc(codingChangeFromEdit(edit, p.prefix, p.codingLen))
	ann.HGVSp = FormatHGVSp(tr, coding, e.cfg.AACode)

	if coding {
		first := min(max(edit.Start, 0), p.codingLen-1)
		ann.CDSPosition = first + 1
		ann.ProteinPosition = first/3 + 1
		if tr != nil && tr.Pos > 0 {
			ann.ProteinPosition = tr.Pos
		}
	}
	return nil
}

// exonicRegion places a normalized edit relative to the CDS and reports
// whether it changes coding bases. Insertions and duplications are placed
// by where the new bases go.
func exonicRegion(e SequenceEdit, t *cache.Transcript) (Region, bool) {
	if !t.IsProteinCoding() {
		return RegionNonCodingExon, false
	}
	n := int64(t.CDSLength())
	lo, hi := e.Start, e.End
	switch e.Kind {
	case EditInsertion:
		lo, hi = e.Start, e.Start
	case EditDuplication:
		lo, hi = e.End, e.End
	}
	if lo == hi {
		switch {
		case lo <= 0:
			return Region5UTR, false
		case lo >= n:
			return Region3UTR, false
		}
		return RegionCDS, true
	}
	switch {
	case hi <= 0:
		return Region5UTR, false
	case lo >= n:
		return Region3UTR, false
	}
	return RegionCDS, true
}

// annotateSpan handles edits touching introns or flanks. Positions are
// rendered with intronic offsets and no shifting is attempted; protein
// effects of edits reaching into coding exons cannot be predicted.
func (e *Engine) annotateSpan(ann *EffectAnnotation, p *pair) error {
	t := p.t
	lo, hi := p.g.span()
	if e.ref != nil && !p.g.isInsertion() {
		bases, err := e.ref.Fetch(p.g.Chrom, lo, hi)
		if err != nil {
			return newError(KindUnmappableEdit, t.ID, "reference lookup %s:%d-%d: %v", p.g.Chrom, lo, hi, err)
		}
		if !strings.EqualFold(bases, p.g.Ref) {
			return newError(KindSequenceMismatch, t.ID, "reference %s does not match genome %s at %s:%d", p.g.Ref, bases, p.g.Chrom, lo)
		}
	}

	kind := classifyEdit(p.ref, p.alt)
	first, last, alt := p.first, p.last, p.alt
	if e.ref != nil && (kind == EditDeletion || kind == EditInsertion) {
		dup, err := e.normalizeIntronic(p)
		if err != nil {
			return err
		}
		first, last, alt = p.first, p.last, p.alt
		if dup != nil {
			kind = EditDuplication
			first, last, alt = dup.first, dup.last, dup.bases
		}
		lo, hi = p.g.span()
	}

	o := int64(p.origin)
	ann.HGVSc = FormatHGVSc(CodingChange{
		Prefix:    p.prefix,
		Kind:      kind,
		Start:     NotationPos{Base: first.TxOffset - o, Intron: first.IntronOffset},
		End:       NotationPos{Base: last.TxOffset - o, Intron: last.IntronOffset},
		Ref:       p.ref,
		Alt:       alt,
		CodingLen: p.codingLen,
	})

	contact := touchSplice(lo, hi, t, e.cfg)
	if p.g.isInsertion() && contact.site != 0 {
		// An insertion disrupts a splice site only from inside it.
		if p.first.Region != contact.site || p.last.Region != contact.site {
			contact.site = 0
			contact.region = true
		}
	}

	coding := contact.exon && overlapsCDS(lo, hi, t)
	var tr *TranslationResult
	if coding && !p.g.isInsertion() && coversCDSStart(lo, hi, t) {
		tr = &TranslationResult{StartLost: true, Pos: 1, Codon: 1, RefResidue: 'M'}
		if t.HasValidFrame() {
			tr.RefResidue = TranslateCodon(t.Sequence[t.CDSStart : t.CDSStart+3])
		}
	}

	ann.Category = Classify(Facts{
		Region:       spanRegion(p, contact, coding),
		Kind:         kind,
		SpliceSite:   contact.site,
		SpliceRegion: contact.region || p.first.NearSplice || p.last.NearSplice,
		Translation:  tr,
	})
	ann.HGVSp = FormatHGVSp(tr, coding, e.cfg.AACode)

	for _, m := range []MappedPosition{p.first, p.last} {
		if m.CDSPos > 0 {
			ann.CDSPosition = m.CDSPos
			ann.ProteinPosition = m.Codon
			break
		}
	}
	return nil
}

// intronDup is a normalized intronic insertion that repeats the bases
// before it, given by its first and last duplicated bases.
type intronDup struct {
	first, last MappedPosition
	bases       string
}

// normalizeIntronic shifts an insertion or deletion lying wholly inside one
// intron to its 3'-most position on the transcript strand, using the genome
// bases of that intron, and re-places p on the shifted edit. It returns the
// duplicated span when the shifted insertion turns out to be a dup.
func (e *Engine) normalizeIntronic(p *pair) (*intronDup, error) {
	t := p.t
	lo, hi := p.g.span()
	k := -1
	for i := 0; i+1 < len(t.Exons); i++ {
		if t.Exons[i].End < lo && hi < t.Exons[i+1].Start {
			k = i
			break
		}
	}
	if k < 0 {
		return nil, nil
	}

	gLo, gHi := t.Exons[k].End+1, t.Exons[k+1].Start-1
	bases, err := e.ref.Fetch(p.g.Chrom, gLo, gHi)
	if err != nil {
		return nil, newError(KindUnmappableEdit, t.ID, "reference lookup %s:%d-%d: %v", p.g.Chrom, gLo, gHi, err)
	}
	bases = strings.ToUpper(bases)

	// local holds the intron on the transcript strand, 0-based.
	rev := t.IsReverseStrand()
	local := bases
	toLocal := func(g int64) int64 { return g - gLo }
	toGenomic := func(l int64) int64 { return gLo + l }
	strand := func(s string) string { return s }
	if rev {
		local = ReverseComplement(bases)
		toLocal = func(g int64) int64 { return gHi - g }
		toGenomic = func(l int64) int64 { return gHi - l }
		strand = ReverseComplement
	}
	// insertAt is the genomic Pos of an insertion before local offset l.
	insertAt := func(l int64) int64 {
		if rev {
			return gHi - l + 1
		}
		return gLo + l
	}

	var edit SequenceEdit
	if p.g.isInsertion() {
		at := toLocal(p.g.Pos)
		if rev {
			at = toLocal(p.g.Pos - 1)
		}
		edit = SequenceEdit{Start: at, End: at, Alt: p.alt, Kind: EditInsertion}
	} else {
		s := min(toLocal(lo), toLocal(hi))
		edit = SequenceEdit{Start: s, End: s + int64(len(p.ref)), Ref: p.ref, Kind: EditDeletion}
	}
	n := Normalize(edit, local, 0, 0, int64(len(local)))

	g := p.g
	var dup *intronDup
	switch n.Kind {
	case EditDeletion:
		g.Pos = min(toGenomic(n.Start), toGenomic(n.End-1))
		g.Ref = bases[g.Pos-gLo : g.Pos-gLo+int64(len(n.Ref))]
	case EditInsertion:
		g.Pos, g.Alt = insertAt(n.Start), strand(n.Alt)
	case EditDuplication:
		g.Pos, g.Alt = insertAt(n.End), strand(n.Alt)
		dup = &intronDup{bases: n.Alt}
		if dup.first, err = MapGenomic(toGenomic(n.Start), t, e.cfg); err != nil {
			return nil, err
		}
		if dup.last, err = MapGenomic(toGenomic(n.End-1), t, e.cfg); err != nil {
			return nil, err
		}
	}
	if err := p.place(g, e.cfg); err != nil {
		return nil, err
	}
	return dup, nil
}

func spanRegion(p *pair, c spliceContact, coding bool) Region {
	switch {
	case coding:
		return RegionCDS
	case p.first.Region.IsExonic():
		return p.first.Region
	case p.last.Region.IsExonic():
		return p.last.Region
	case c.exon:
		// Whole exons fall inside the span.
		if !p.t.IsProteinCoding() {
			return RegionNonCodingExon
		}
		if p.last.TxOffset < int64(p.t.CDSStart) {
			return Region5UTR
		}
		return Region3UTR
	case p.first.Region.IsIntronic() || p.last.Region.IsIntronic():
		return RegionIntron
	default:
		return p.first.Region
	}
}

// cdsBounds returns the genomic span of the CDS in ascending order.
func cdsBounds(t *cache.Transcript) (lo, hi int64, ok bool) {
	if !t.IsProteinCoding() {
		return 0, 0, false
	}
	a, err := TxToGenomic(int64(t.CDSStart), t)
	if err != nil {
		return 0, 0, false
	}
	b, err := TxToGenomic(int64(t.CDSEnd-1), t)
	if err != nil {
		return 0, 0, false
	}
	return min(a, b), max(a, b), true
}

// overlapsCDS reports whether any coding base lies in [lo, hi].
func overlapsCDS(lo, hi int64, t *cache.Transcript) bool {
	a, b, ok := cdsBounds(t)
	if !ok {
		return false
	}
	for i := range t.Exons {
		ex := &t.Exons[i]
		if max(ex.Start, lo, a) <= min(ex.End, hi, b) {
			return true
		}
	}
	return false
}

// coversCDSStart reports whether [lo, hi] includes the first coding base.
func coversCDSStart(lo, hi int64, t *cache.Transcript) bool {
	g, err := TxToGenomic(int64(t.CDSStart), t)
	return err == nil && g >= lo && g <= hi
}

// exonIntronNumbers renders "n/total" for the exon or intron holding m.
func exonIntronNumbers(m MappedPosition, t *cache.Transcript) (exon, intron string) {
	if m.ExonIndex < 0 {
		return "", ""
	}
	n := len(t.Exons)
	num := m.ExonIndex + 1
	if t.IsReverseStrand() {
		num = n - m.ExonIndex
	}
	switch {
	case m.Region.IsExonic():
		exon = fmt.Sprintf("%d/%d", num, n)
	case m.Region.IsIntronic():
		in := num
		if m.IntronOffset < 0 {
			in = num - 1
		}
		intron = fmt.Sprintf("%d/%d", in, n-1)
	}
	return exon, intron
}
