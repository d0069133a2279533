package annotate

import "fmt"

// ErrorKind classifies why a (variant, transcript) pair could not be annotated.
type ErrorKind int

const (
	KindOutOfRange ErrorKind = iota + 1
	KindSequenceMismatch
	KindMalformedTranscript
	KindUnsupportedEdit
	KindUnmappableEdit
)

func (k ErrorKind) String() string {
	switch k {
	case KindOutOfRange:
		return "out of range"
	case KindSequenceMismatch:
		return "sequence mismatch"
	case KindMalformedTranscript:
		return "malformed transcript"
	case KindUnsupportedEdit:
		return "unsupported edit"
	case KindUnmappableEdit:
		return "unmappable edit"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is matching on the error kind.
var (
	ErrOutOfRange          = &Error{Kind: KindOutOfRange}
	ErrSequenceMismatch    = &Error{Kind: KindSequenceMismatch}
	ErrMalformedTranscript = &Error{Kind: KindMalformedTranscript}
	ErrUnsupportedEdit     = &Error{Kind: KindUnsupportedEdit}
	ErrUnmappableEdit      = &Error{Kind: KindUnmappableEdit}
)

// Error is returned by the engine for a single (variant, transcript) pair.
type Error struct {
	Kind       ErrorKind
	Transcript string
	Msg        string
}

func (e *Error) Error() string {
	if e.Transcript == "" {
		if e.Msg == "" {
			return e.Kind.String()
		}
		return e.Kind.String() + ": " + e.Msg
	}
	return fmt.Sprintf("%s on %s: %s", e.Kind, e.Transcript, e.Msg)
}

// Is matches any *Error of the same kind against a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Transcript == "" && t.Msg == ""
}

func newError(kind ErrorKind, transcript, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Transcript: transcript, Msg: fmt.Sprintf(format, args...)}
}
