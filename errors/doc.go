// Package errors provides structured error types for the NSO loader.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the segment name, byte offset, expected and actual
// values, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseModule, errors.KindModuleDescriptorNotFound).
//		Segment("code").
//		Offset(0x1000).
//		Mismatch("MOD0", "\x00\x00\x00\x00").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TruncatedHeader(0x40, len(data))
//	err := errors.DecompressionFailed("rodata", want, got, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match by Kind regardless of Phase:
//
//	if errors.Is(err, nsoerrors.ErrDecompressionFailed) { ... }
package errors
