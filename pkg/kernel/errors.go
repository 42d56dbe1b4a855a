package kernel

import "fmt"

// ErrorKind classifies a kernel error along the taxonomy of spec.md §7:
// callers branch on Kind, not on error strings.
type ErrorKind int

const (
	// ErrorKindInputShape marks malformed or out-of-range operator
	// inputs (degenerate profile, empty rail, mismatched section
	// counts) — the caller supplied something the operator cannot
	// consume.
	ErrorKindInputShape ErrorKind = iota
	// ErrorKindGeometricImpossibility marks a request that is
	// well-formed but has no valid geometric realization at the given
	// tolerance (a pipe radius too large for its rail's turn angle, a
	// cusp sharper than the operator can frame).
	ErrorKindGeometricImpossibility
	// ErrorKindTopology marks a mesh invariant violated after
	// Finalize (open boundary where a closed one was required,
	// non-manifold edges, unresolvable winding).
	ErrorKindTopology
	// ErrorKindInternal marks a kernel invariant violated by the
	// implementation itself rather than by caller input — these
	// indicate a bug, not a bad request.
	ErrorKindInternal
)

// String renders the kind's name for diagnostics.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInputShape:
		return "InputShape"
	case ErrorKindGeometricImpossibility:
		return "GeometricImpossibility"
	case ErrorKindTopology:
		return "Topology"
	case ErrorKindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the error type every kernel and operator function returns.
// Op names the failing operation (e.g. "pipe.Build", "Finalize") so a
// caller can report where in a pipeline things went wrong without
// parsing the message.
type Error struct {
	kind Kind
	op   string
	msg  string
	err  error
}

// Kind is an alias kept for readability at call sites (err.Kind()).
type Kind = ErrorKind

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.op, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.op, e.msg)
}

// Unwrap exposes the wrapped error, if any, for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification.
func (e *Error) Kind() ErrorKind { return e.kind }

// Op returns the name of the operation that failed.
func (e *Error) Op() string { return e.op }

// newError constructs a kernel Error with no wrapped cause.
func newError(kind ErrorKind, op, msg string) *Error {
	return &Error{kind: kind, op: op, msg: msg}
}

// wrapError constructs a kernel Error wrapping cause.
func wrapError(kind ErrorKind, op, msg string, cause error) *Error {
	return &Error{kind: kind, op: op, msg: msg, err: cause}
}

// NewOpError is newError exported for use by operator packages outside
// kernel (pkg/ops, pkg/boolean), which share the same *Error taxonomy.
func NewOpError(kind ErrorKind, op, msg string) error {
	return newError(kind, op, msg)
}

// WrapOpError is wrapError exported for use by operator packages
// outside kernel.
func WrapOpError(kind ErrorKind, op, msg string, cause error) error {
	return wrapError(kind, op, msg, cause)
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var kerr *Error
	if !asError(err, &kerr) {
		return false
	}
	return kerr.kind == kind
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
