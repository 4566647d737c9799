//go:build unix

package msf

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MmapSource is a Source that memory-maps its backing file once at
// construction and serves every View request as a slice (or
// concatenation of slices) over that mapping — the zero-copy option §4.3
// allows the transport to choose.
type MmapSource struct {
	data []byte
}

// OpenMmapSource opens and memory-maps path read-only.
func OpenMmapSource(path string) (*MmapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, transportError(err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, transportError(err)
	}
	size := fi.Size()
	if size == 0 {
		return &MmapSource{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, transportError(errors.Wrap(err, "mmap"))
	}
	return &MmapSource{data: data}, nil
}

// Close unmaps the backing file. Streams and views produced from this
// Source must not be used after Close.
func (s *MmapSource) Close() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	if err != nil {
		return transportError(err)
	}
	return nil
}

// View concatenates the requested ranges out of the mapping. A single range
// is returned as a direct sub-slice of the mapping with no copy; multiple
// ranges are concatenated into a freshly allocated buffer.
func (s *MmapSource) View(ranges []SourceSlice) (SourceView, error) {
	if len(ranges) == 1 {
		r := ranges[0]
		end := r.Offset + uint64(r.Length)
		if end > uint64(len(s.data)) {
			return nil, transportError(errShortRead(r.Offset, r.Length, len(s.data)))
		}
		return byteSliceView{data: s.data[r.Offset:end]}, nil
	}
	total := totalLength(ranges)
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
