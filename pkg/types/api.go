package types

import "strconv"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
//
// The kinds fall into four groups:
//
//   - format-level: the blob itself is malformed; fatal to any further
//     navigation from the affected region (KindBadMagic..KindAlignment)
//   - lookup-level: a specific query had no answer; recoverable
//     (KindNotFound, KindBadOffset, KindBadPath)
//   - semantic-level: a value violated a domain rule
//     (KindBadPhandle..KindBadValue)
//   - capacity-level: a fixed-size output was too small (KindNoSpace)
type ErrKind int

const (
	KindUnknown      ErrKind = iota // unrecognized underlying status, preserved for diagnostics
	KindBadMagic                    // buffer does not start with the FDT magic
	KindBadVersion                  // header version outside the supported range
	KindTruncated                   // buffer lacked the bytes a structure requires
	KindBadStructure                // structure block token stream is corrupt
	KindBadLayout                   // header block offsets/sizes are inconsistent
	KindAlignment                   // an offset violated 4-byte token alignment
	KindNotFound                    // missing node, property, or path segment
	KindBadOffset                   // offset does not point at a suitable token
	KindBadPath                     // badly formatted path (e.g. missing leading /)
	KindBadPhandle                  // phandle value is 0 or the reserved maximum
	KindNoPhandle                   // node declares no phandle
	KindBadNCells                   // malformed #*-cells count
	KindBadValue                    // property data cannot be decoded as requested
	KindNoSpace                     // fixed-size output buffer was too small
)

// String returns a short stable name for the kind.
func (k ErrKind) String() string {
	switch k {
	case KindBadMagic:
		return "bad magic"
	case KindBadVersion:
		return "bad version"
	case KindTruncated:
		return "truncated"
	case KindBadStructure:
		return "bad structure"
	case KindBadLayout:
		return "bad layout"
	case KindAlignment:
		return "alignment"
	case KindNotFound:
		return "not found"
	case KindBadOffset:
		return "bad offset"
	case KindBadPath:
		return "bad path"
	case KindBadPhandle:
		return "bad phandle"
	case KindNoPhandle:
		return "no phandle"
	case KindBadNCells:
		return "bad #cells"
	case KindBadValue:
		return "bad value"
	case KindNoSpace:
		return "no space"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind. This makes
// errors.Is(err, types.ErrNotFound) match any not-found error regardless
// of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrBadMagic indicates the buffer lacks the FDT magic constant.
	ErrBadMagic = &Error{Kind: KindBadMagic, Msg: "not a flattened device tree (bad magic)"}
	// ErrBadVersion indicates an unsupported header version.
	ErrBadVersion = &Error{Kind: KindBadVersion, Msg: "unsupported device tree version"}
	// ErrTruncated indicates the buffer is shorter than a structure requires.
	ErrTruncated = &Error{Kind: KindTruncated, Msg: "truncated device tree"}
	// ErrBadStructure indicates corruption in the structure block token stream.
	ErrBadStructure = &Error{Kind: KindBadStructure, Msg: "corrupt structure block"}
	// ErrBadLayout indicates inconsistent block offsets or sizes in the header.
	ErrBadLayout = &Error{Kind: KindBadLayout, Msg: "inconsistent block layout"}
	// ErrAlignment indicates an offset violated token alignment.
	ErrAlignment = &Error{Kind: KindAlignment, Msg: "misaligned offset"}
	// ErrNotFound indicates a missing node, property, or path segment.
	ErrNotFound = &Error{Kind: KindNotFound, Msg: "not found"}
	// ErrBadOffset indicates an offset that does not point at a suitable token.
	ErrBadOffset = &Error{Kind: KindBadOffset, Msg: "offset not at a valid token"}
	// ErrBadPath indicates a badly formatted path string.
	ErrBadPath = &Error{Kind: KindBadPath, Msg: "badly formatted path"}
	// ErrBadPhandle indicates an invalid phandle value (0 or reserved maximum).
	ErrBadPhandle = &Error{Kind: KindBadPhandle, Msg: "invalid phandle"}
	// ErrNoPhandle indicates the node declares no phandle property.
	ErrNoPhandle = &Error{Kind: KindNoPhandle, Msg: "node has no phandle"}
	// ErrBadNCells indicates a malformed argument-cells count.
	ErrBadNCells = &Error{Kind: KindBadNCells, Msg: "malformed #cells value"}
	// ErrBadValue indicates property data that cannot be decoded as requested.
	ErrBadValue = &Error{Kind: KindBadValue, Msg: "property data not decodable"}
	// ErrNoSpace indicates a fixed-size output buffer was too small.
	ErrNoSpace = &Error{Kind: KindNoSpace, Msg: "output buffer too small"}
)

// Unknownf wraps an unrecognized status code so it survives for diagnostics.
func Unknownf(code int, msg string) *Error {
	return &Error{Kind: KindUnknown, Msg: msg + " (code " + strconv.Itoa(code) + ")"}
}
