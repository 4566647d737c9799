package msf

import "bytes"

// Stream is a logically contiguous byte view assembled from a stream's
// pages. It owns the SourceView backing it.
type Stream struct {
	sourceView SourceView
}

// AsSlice returns the stream's contents as a contiguous byte slice.
func (s *Stream) AsSlice() []byte {
	return s.sourceView.AsSlice()
}

// Len returns the effective length of the stream in bytes.
func (s *Stream) Len() int {
	return len(s.sourceView.AsSlice())
}

// Reader returns an io.Reader (specifically a *bytes.Reader) over the
// stream's contents, for callers that prefer reader-based parsing over
// direct slicing.
func (s *Stream) Reader() *bytes.Reader {
	return bytes.NewReader(s.sourceView.AsSlice())
}

// Msf is the capability every MSF reader variant (Big, Small) provides: look
// up a stream by number, optionally capped to byteLimit bytes, and report
// the container's page geometry.
type Msf interface {
	Get(streamNumber uint32, byteLimit *uint32) (*Stream, error)
	Header() Header
}
