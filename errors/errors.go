package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDetect     Phase = "detect"     // file-type sniff
	PhaseHeader     Phase = "header"     // fixed header and segment descriptors
	PhaseDecompress Phase = "decompress" // segment block decompression
	PhaseModule     Phase = "module"     // MOD0 resolution
	PhaseEncode     Phase = "encode"     // container encoding
	PhaseLoad       Phase = "load"       // handing regions to a host
)

// Kind categorizes the error
type Kind string

const (
	KindTruncatedHeader          Kind = "truncated_header"
	KindInvalidSegmentOrdering   Kind = "invalid_segment_ordering"
	KindDecompressionFailed      Kind = "decompression_failed"
	KindModuleDescriptorNotFound Kind = "module_descriptor_not_found"
	KindInvalidModuleDescriptor  Kind = "invalid_module_descriptor"
	KindUnsupportedFile          Kind = "unsupported_file"
	KindSizeLimit                Kind = "size_limit"
	KindInvalidInput             Kind = "invalid_input"
)

// Sentinels for errors.Is. They match any phase.
var (
	ErrTruncatedHeader          = &Error{Kind: KindTruncatedHeader}
	ErrInvalidSegmentOrdering   = &Error{Kind: KindInvalidSegmentOrdering}
	ErrDecompressionFailed      = &Error{Kind: KindDecompressionFailed}
	ErrModuleDescriptorNotFound = &Error{Kind: KindModuleDescriptorNotFound}
	ErrInvalidModuleDescriptor  = &Error{Kind: KindInvalidModuleDescriptor}
	ErrUnsupportedFile          = &Error{Kind: KindUnsupportedFile}
	ErrSizeLimit                = &Error{Kind: KindSizeLimit}
)

// NoOffset marks an Error that does not point at a byte position.
const NoOffset int64 = -1

// Error is the structured error type returned by the loader
type Error struct {
	Expected any
	Actual   any
	Cause    error
	Phase    Phase
	Kind     Kind
	Segment  string
	Detail   string
	Offset   int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Segment != "" {
		b.WriteString(" in ")
		b.WriteString(e.Segment)
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at 0x%x", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Expected != nil || e.Actual != nil {
		fmt.Fprintf(&b, " (expected %v, got %v)", e.Expected, e.Actual)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kind must match; Phase only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Segment sets the segment name
func (b *Builder) Segment(name string) *Builder {
	b.err.Segment = name
	return b
}

// Offset sets the byte offset the error refers to
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Mismatch sets the expected and actual values
func (b *Builder) Mismatch(expected, actual any) *Builder {
	b.err.Expected = expected
	b.err.Actual = actual
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TruncatedHeader creates an error for a file shorter than the fixed header
func TruncatedHeader(need, have int) *Error {
	return &Error{
		Phase:    PhaseHeader,
		Kind:     KindTruncatedHeader,
		Offset:   int64(have),
		Detail:   "file shorter than fixed header",
		Expected: need,
		Actual:   have,
	}
}

// InvalidSegmentOrdering creates an error for a non-positive compressed span
func InvalidSegmentOrdering(segment string, start, end int64) *Error {
	return &Error{
		Phase:    PhaseHeader,
		Kind:     KindInvalidSegmentOrdering,
		Segment:  segment,
		Offset:   start,
		Detail:   fmt.Sprintf("compressed span [0x%x, 0x%x) is empty or inverted", start, end),
		Expected: fmt.Sprintf("end > 0x%x", start),
		Actual:   fmt.Sprintf("0x%x", end),
	}
}

// DecompressionFailed creates a decompression error
func DecompressionFailed(segment string, expected, actual int, cause error) *Error {
	return &Error{
		Phase:    PhaseDecompress,
		Kind:     KindDecompressionFailed,
		Segment:  segment,
		Offset:   NoOffset,
		Detail:   "block did not decode to the declared size",
		Expected: expected,
		Actual:   actual,
		Cause:    cause,
	}
}

// ModuleDescriptorNotFound creates an error for a missing or misplaced MOD0 record
func ModuleDescriptorNotFound(offset int64, detail string) *Error {
	return &Error{
		Phase:   PhaseModule,
		Kind:    KindModuleDescriptorNotFound,
		Segment: "code",
		Offset:  offset,
		Detail:  detail,
	}
}

// InvalidModuleDescriptor creates an error for MOD0 fields that resolve to an impossible layout
func InvalidModuleDescriptor(offset int64, detail string, args ...any) *Error {
	return &Error{
		Phase:   PhaseModule,
		Kind:    KindInvalidModuleDescriptor,
		Segment: "code",
		Offset:  offset,
		Detail:  fmt.Sprintf(detail, args...),
	}
}

// UnsupportedFile creates an error for a file with the wrong outer magic
func UnsupportedFile(expected, actual uint32) *Error {
	return &Error{
		Phase:    PhaseDetect,
		Kind:     KindUnsupportedFile,
		Offset:   0,
		Detail:   "not an NSO container",
		Expected: fmt.Sprintf("0x%08x", expected),
		Actual:   fmt.Sprintf("0x%08x", actual),
	}
}

// SizeLimit creates an error for a declared size above the allocation ceiling
func SizeLimit(segment string, size, limit uint64) *Error {
	return &Error{
		Phase:    PhaseHeader,
		Kind:     KindSizeLimit,
		Segment:  segment,
		Offset:   NoOffset,
		Detail:   "declared decompressed size exceeds limit",
		Expected: fmt.Sprintf("<= %d", limit),
		Actual:   size,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a host loading error
func Load(region string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindInvalidInput,
		Segment: region,
		Offset:  NoOffset,
		Detail:  "host rejected region",
		Cause:   cause,
	}
}
