//go:build !unix

package msf

import "os"

// MmapSource is the non-unix fallback: it reads the backing file on demand
// via io.ReaderAt instead of memory-mapping it, one of the other strategies
// §4.3 explicitly allows ("copy-and-concatenate, or read-on-demand").
type MmapSource struct {
	file *os.File
}

// OpenMmapSource opens path for read-on-demand access.
func OpenMmapSource(path string) (*MmapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, transportError(err)
	}
	return &MmapSource{file: f}, nil
}

// Close releases the underlying file handle.
func (s *MmapSource) Close() error {
	return s.file.Close()
}

// View reads the requested ranges from the file and concatenates them.
func (s *MmapSource) View(ranges []SourceSlice) (SourceView, error) {
	total := totalLength(ranges)
	buf := make([]byte, total)
	var offset uint32
	for _, r := range ranges {
		n, err := s.file.ReadAt(buf[offset:offset+r.Length], int64(r.Offset))
		if err != nil || uint32(n) != r.Length {
			return nil, transportError(errShortRead(r.Offset, r.Length, int(r.Offset)+n))
		}
		offset += r.Length
	}
	return byteSliceView{data: buf}, nil
}
