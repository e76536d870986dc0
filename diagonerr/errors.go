// Package diagonerr defines the shared error taxonomy used across the
// postings core. Components wrap these sentinels with github.com/pkg/errors
// for call-site context; callers inspect them with errors.Is/As from the
// standard library.
package diagonerr

import "errors"

var (
	// ErrCorruptEncoding marks a truncated or structurally impossible
	// on-disk encoding: bad VByte/StreamVByte control bytes, a block
	// header outside its valid range, non-zero reserved bytes, or a
	// magic/version mismatch.
	ErrCorruptEncoding = errors.New("diagon: corrupt encoding")

	// ErrOutOfRange marks an index outside its defined domain, e.g. a
	// granularity mark index outside [0, marksCount).
	ErrOutOfRange = errors.New("diagon: out of range")

	// ErrInvalidCursor marks term()/docFreq()/postings() called on a
	// TermsEnum that is not Positioned.
	ErrInvalidCursor = errors.New("diagon: invalid cursor state")

	// ErrUnsupportedOperation marks a request for a capability this
	// codec does not carry, e.g. positions on a freq-only postings
	// iterator.
	ErrUnsupportedOperation = errors.New("diagon: unsupported operation")

	// ErrIoFailure names the class of failures from the underlying
	// store.Input or store.Output. Components propagate those errors
	// verbatim and do not wrap them with this sentinel, so errors.Is does
	// not match it on errors they return.
	ErrIoFailure = errors.New("diagon: i/o failure")
)
