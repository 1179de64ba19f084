package ronasset

import (
	"errors"
	"fmt"
)

var (
	// ErrIO matches every *Error of kind ErrorKindIO.
	ErrIO = errors.New("failed to read asset bytes")
	// ErrDeserialize matches every *Error of kind ErrorKindDeserialize.
	ErrDeserialize = errors.New("failed to deserialize asset")

	ErrUnknownMarker   = errors.New("unknown asset marker")
	ErrMarkerShape     = errors.New("asset marker does not fit the field type")
	ErrUnexportedField = errors.New("asset marker on unexported field")
	ErrNotDerivable    = errors.New("type cannot resolve asset references")
)

type ErrorKind int

const (
	// Reading the input stream failed.
	ErrorKindIO ErrorKind = iota + 1
	// The bytes are not a valid encoding of the asset type.
	ErrorKindDeserialize
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindIO:
		return "io"
	case ErrorKindDeserialize:
		return "deserialize"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by Loader when an asset cannot be produced. Line and
// Column locate a deserialization failure when the format reports it; they
// are zero otherwise.
type Error struct {
	Kind   ErrorKind
	Path   string
	Format string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindIO:
		return fmt.Sprintf("failed to read `%s`: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("failed to load `%s` as %s: %v", e.Path, e.Format, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == ErrorKindIO
	case ErrDeserialize:
		return e.Kind == ErrorKindDeserialize
	}
	return false
}
