package annotate

// EditKind classifies a sequence edit.
type EditKind int

const (
	EditSubstitution EditKind = iota + 1
	EditDeletion
	EditInsertion
	EditDuplication
	EditDelins
)

func (k EditKind) String() string {
	switch k {
	case EditSubstitution:
		return "substitution"
	case EditDeletion:
		return "deletion"
	case EditInsertion:
		return "insertion"
	case EditDuplication:
		return "duplication"
	case EditDelins:
		return "delins"
	default:
		return "unknown"
	}
}

// SequenceEdit is a change to the spliced transcript. Start and End are
// half-open offsets measured from an origin: the first coding base for
// protein-coding transcripts, the first transcript base otherwise, so 5'UTR
// offsets are negative. Insertions have Start == End and an empty Ref.
// A duplication spans the duplicated bases; Alt holds the added copy.
type SequenceEdit struct {
	Start int64
	End   int64
	Ref   string
	Alt   string
	Kind  EditKind
}

// Delta returns the net change in sequence length.
func (e SequenceEdit) Delta() int {
	if e.Kind == EditDuplication {
		return len(e.Alt)
	}
	return len(e.Alt) - len(e.Ref)
}

// IsFrameshift reports whether the edit changes length by other than a
// multiple of three.
func (e SequenceEdit) IsFrameshift() bool {
	return e.Delta()%3 != 0
}

// Apply returns seq with the edit spliced in. origin is the offset in seq
// that edit offsets are measured from.
func (e SequenceEdit) Apply(seq string, origin int) string {
	o := int64(origin)
	if e.Kind == EditDuplication {
		at := o + e.End
		return seq[:at] + e.Alt + seq[at:]
	}
	return seq[:o+e.Start] + e.Alt + seq[o+e.End:]
}

func classifyEdit(ref, alt string) EditKind {
	switch {
	case len(ref) == 1 && len(alt) == 1:
		return EditSubstitution
	case alt == "":
		return EditDeletion
	case ref == "":
		return EditInsertion
	default:
		return EditDelins
	}
}

// NewSequenceEdit builds the edit replacing seq[origin+start, origin+end)
// with alt, after checking that those bases equal ref. It returns the edit
// and its net length delta. ref and alt are on the transcript strand.
func NewSequenceEdit(seq string, origin int, start, end int64, ref, alt string) (SequenceEdit, int, error) {
	if ref == "" && alt == "" {
		return SequenceEdit{}, 0, newError(KindUnsupportedEdit, "", "edit changes nothing")
	}
	if end-start != int64(len(ref)) {
		return SequenceEdit{}, 0, newError(KindUnmappableEdit, "", "span %d-%d does not match reference length %d", start, end, len(ref))
	}
	lo, hi := int64(origin)+start, int64(origin)+end
	if lo < 0 || hi > int64(len(seq)) {
		return SequenceEdit{}, 0, newError(KindUnmappableEdit, "", "offsets %d-%d fall outside the transcript sequence", start, end)
	}
	if got := seq[lo:hi]; got != ref {
		return SequenceEdit{}, 0, newError(KindSequenceMismatch, "", "reference %s does not match transcript %s at offset %d", ref, got, start)
	}

	e := SequenceEdit{Start: start, End: end, Ref: ref, Alt: alt, Kind: classifyEdit(ref, alt)}
	return e, e.Delta(), nil
}
