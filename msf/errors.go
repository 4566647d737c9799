// Package msf reads the Multi-Stream File (MSF) container used by Microsoft
// Program Database (PDB) files.
//
// ref: https://llvm.org/docs/PDB/MsfFile.html
// ref: https://github.com/Microsoft/microsoft-pdb/blob/master/PDB/msf/msf.cpp
package msf

import (
	"fmt"
	"log"
	"os"

	"github.com/mewkiz/pkg/term"
	"github.com/pkg/errors"
)

var (
	// dbg is a logger with the "msf:" prefix which logs debug messages to
	// standard error.
	dbg = log.New(os.Stderr, term.CyanBold("msf:")+" ", 0)
	// warn is a logger with the "msf:" prefix which logs warning messages to
	// standard error.
	warn = log.New(os.Stderr, term.RedBold("msf:")+" ", 0)
)

// ErrUnrecognizedFileFormat is returned when neither the Big nor the Small
// MSF magic matches the leading bytes of the container, or the container is
// too short to hold a header at all.
var ErrUnrecognizedFileFormat = errors.New("unrecognized MSF file format")

// InvalidPageSizeError indicates the header's page size field is not a power
// of two, or falls outside [256, 8388608].
type InvalidPageSizeError struct {
	PageSize uint32
}

func (e *InvalidPageSizeError) Error() string {
	return fmt.Sprintf("invalid page size %d (0x%X)", e.PageSize, e.PageSize)
}

// PageReferenceOutOfRangeError indicates a page number read from the
// directory is zero (page 0 holds the header, never a stream) or exceeds the
// container's maximum valid page number.
type PageReferenceOutOfRangeError struct {
	PageNumber uint32
}

func (e *PageReferenceOutOfRangeError) Error() string {
	return fmt.Sprintf("page reference out of range: %d", e.PageNumber)
}

// StreamNotFoundError indicates the requested stream number is beyond the
// directory's stream count, or the directory marks it absent (sentinel
// size).
type StreamNotFoundError struct {
	StreamNumber uint32
}

func (e *StreamNotFoundError) Error() string {
	return fmt.Sprintf("stream not found: %d", e.StreamNumber)
}

// ParseError indicates a parse buffer ran out of bytes before a value it was
// asked to decode (a truncated directory, typically).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// TransportError wraps an opaque failure reported by the Source the reader
// was given.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func invalidPageSize(n uint32) error {
	return errors.WithStack(&InvalidPageSizeError{PageSize: n})
}

func pageReferenceOutOfRange(n uint32) error {
	return errors.WithStack(&PageReferenceOutOfRangeError{PageNumber: n})
}

func streamNotFound(n uint32) error {
	return errors.WithStack(&StreamNotFoundError{StreamNumber: n})
}

func parseErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Reason: fmt.Sprintf(format, args...)})
}

func transportError(err error) error {
	return errors.WithStack(&TransportError{Err: err})
}
