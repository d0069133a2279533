package annotate

// Normalize returns the 3'-most equivalent of an insertion or deletion,
// shifting no further than the half-open bound [lo, hi) given in the same
// origin-relative offsets as the edit. An insertion that then repeats the
// bases immediately before it becomes a duplication of those bases.
// Substitutions, delins and duplications are returned unchanged, so
// normalizing twice gives the same edit.
func Normalize(e SequenceEdit, seq string, origin int, lo, hi int64) SequenceEdit {
	o := int64(origin)
	absLo := clampOffset(o+lo, len(seq))
	absHi := clampOffset(o+hi, len(seq))

	switch e.Kind {
	case EditDeletion:
		s, end := o+e.Start, o+e.End
		for end < absHi && seq[s] == seq[end] {
			s++
			end++
		}
		e.Start, e.End = s-o, end-o
		e.Ref = seq[s:end]

	case EditInsertion:
		ins := []byte(e.Alt)
		p := o + e.Start
		// Rotating the inserted bases keeps the result identical while the
		// next reference base equals the first inserted base.
		for p < absHi && seq[p] == ins[0] {
			first := ins[0]
			copy(ins, ins[1:])
			ins[len(ins)-1] = first
			p++
		}
		k := int64(len(ins))
		if p-k >= absLo && seq[p-k:p] == string(ins) {
			return SequenceEdit{Start: p - k - o, End: p - o, Alt: string(ins), Kind: EditDuplication}
		}
		e.Start, e.End, e.Alt = p-o, p-o, string(ins)
	}
	return e
}

func clampOffset(off int64, n int) int64 {
	if off < 0 {
		return 0
	}
	if off > int64(n) {
		return int64(n)
	}
	return off
}
