package msf

import (
	"fmt"
	"io"
)

// Source is the transport capability the reader requires: given an ordered
// list of byte ranges, materialize a contiguous SourceView over their
// concatenation. Implementations may memory-map, copy-and-concatenate, or
// read on demand; see source_mmap_unix.go and source_mmap_other.go for two
// concrete strategies, and MemorySource below for an in-memory one used
// heavily by tests.
type Source interface {
	// View materializes the concatenation of the given ranges. The returned
	// view's length must equal the sum of the requested lengths; a Source
	// that returns a view of the wrong length is a programming defect (see
	// checkViewLength).
	View(ranges []SourceSlice) (SourceView, error)
}

// SourceView is a contiguous byte view produced by a Source, valid for as
// long as its owner (the reader, for the directory view, or a Stream, for a
// per-stream view) keeps it.
type SourceView interface {
	AsSlice() []byte
}

// checkViewLength aborts the process if a Source handed back a view whose
// length doesn't match what was asked for. This is a programmer-defect
// assertion, not a recoverable error: a Source that lies about the bytes it
// materialized cannot be trusted to do anything else correctly either.
func checkViewLength(view SourceView, want uint32) {
	if got := len(view.AsSlice()); got != int(want) {
		panic(fmt.Sprintf("msf: source returned %d bytes, want %d", got, want))
	}
}

// totalLength sums the requested lengths of a range list.
func totalLength(ranges []SourceSlice) uint32 {
	var total uint32
	for _, r := range ranges {
		total += r.Length
	}
	return total
}

// byteSliceView is a SourceView over an in-memory byte slice.
type byteSliceView struct {
	data []byte
}

func (v byteSliceView) AsSlice() []byte {
	return v.data
}

// MemorySource is a Source backed entirely by an in-memory byte slice. It
// never performs I/O and is the Source used by the synthetic MSF fixtures in
// synthetic.go and by the package's tests.
type MemorySource struct {
	data []byte
}

// NewMemorySource wraps data as a Source. data is not copied; callers must
// not mutate it for the lifetime of any reader built over this Source.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

// View concatenates the requested ranges out of the in-memory buffer. A
// range extending past the end of the buffer is reported as a TransportError
// (the caller asked for bytes that don't exist, e.g. a truncated synthetic
// file in a test).
func (s *MemorySource) View(ranges []SourceSlice) (SourceView, error) {
	total := totalLength(ranges)
	if len(ranges) == 1 {
		r := ranges[0]
		end := r.Offset + uint64(r.Length)
		if end > uint64(len(s.data)) {
			return nil, transportError(errShortRead(r.Offset, r.Length, len(s.data)))
		}
		return byteSliceView{data: s.data[r.Offset:end]}, nil
	}
	buf := make([]byte, 0, total)
	for _, r := range ranges {
		end := r.Offset + uint64(r.Length)
		if end > uint64(len(s.data)) {
			return nil, transportError(errShortRead(r.Offset, r.Length, len(s.data)))
		}
		buf = append(buf, s.data[r.Offset:end]...)
	}
	return byteSliceView{data: buf}, nil
}

// errShortRead reports that a range extends past the backing data. It wraps
// io.ErrUnexpectedEOF so a caller fetching the initial header page (the
// dispatcher) can recognize "file too short to hold a header" and translate
// it to ErrUnrecognizedFileFormat per §4.6 / §7.
func errShortRead(offset uint64, length uint32, have int) error {
	return fmt.Errorf("short read: requested %d bytes at offset %d, backing buffer has %d bytes: %w", length, offset, have, io.ErrUnexpectedEOF)
}
