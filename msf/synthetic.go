package msf

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// SyntheticStream describes one stream to embed in a synthetic MSF built by
// BuildBigMSF / BuildSmallMSF. A nil Data marks the stream absent (the
// sentinel size, §6).
type SyntheticStream struct {
	Data []byte
}

// TagStreamContent prepends a fresh random UUID to data, returning bytes
// whose first 16 bytes are the tag. Round-trip tests use this to assert that
// Get(i) returns exactly the bytes a particular stream was built with,
// independent of page placement — comparing the extracted tag catches a
// reader that silently handed back the wrong stream's pages.
func TagStreamContent(data []byte) []byte {
	tag := uuid.New()
	tagged := make([]byte, 0, 16+len(data))
	tagged = append(tagged, tag[:]...)
	tagged = append(tagged, data...)
	return tagged
}

// StreamTag extracts the leading UUID written by TagStreamContent.
func StreamTag(data []byte) (uuid.UUID, error) {
	if len(data) < 16 {
		return uuid.UUID{}, parseErrorf("stream too short to contain a tag: %d bytes", len(data))
	}
	return uuid.FromBytes(data[:16])
}

// syntheticLayout accumulates page assignments while building a synthetic
// container.
type syntheticLayout struct {
	pageSize  uint32
	nextPage  uint32
	pages     map[uint32][]byte // pageNumber -> page content (padded to pageSize)
}

func newSyntheticLayout(pageSize uint32) *syntheticLayout {
	return &syntheticLayout{pageSize: pageSize, nextPage: 1, pages: map[uint32][]byte{}}
}

// allocate reserves ceil(len(data)/pageSize) fresh pages for data (at least
// one page if data is non-empty... empty data allocates zero pages) and
// returns their page numbers.
func (l *syntheticLayout) allocate(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	n := (uint32(len(data)) + l.pageSize - 1) / l.pageSize
	nums := make([]uint32, 0, n)
	for i := uint32(0); i < n; i++ {
		page := l.nextPage
		l.nextPage++
		start := i * l.pageSize
		end := start + l.pageSize
		if end > uint32(len(data)) {
			end = uint32(len(data))
		}
		content := make([]byte, l.pageSize)
		copy(content, data[start:end])
		l.pages[page] = content
		nums = append(nums, page)
	}
	return nums
}

// render lays out the accumulated pages into a contiguous file image sized
// to (nextPage)*pageSize. Page 0 (the header) must already be in l.pages.
func (l *syntheticLayout) render() []byte {
	buf := make([]byte, l.nextPage*l.pageSize)
	for page, content := range l.pages {
		copy(buf[uint32(page)*l.pageSize:], content)
	}
	return buf
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// buildBigDirectory produces the Big-format directory bytes (§6 "Directory
// (Big)"): stream_count, then one u32 size per stream (sentinel for
// absent), then each present stream's page numbers in order.
func buildBigDirectory(streams []SyntheticStream, pageNums [][]uint32) []byte {
	var dir []byte
	dir = append(dir, le32(uint32(len(streams)))...)
	for _, s := range streams {
		if s.Data == nil {
			dir = append(dir, le32(sentinelStreamSize)...)
		} else {
			dir = append(dir, le32(uint32(len(s.Data)))...)
		}
	}
	for i, s := range streams {
		if s.Data == nil {
			continue
		}
		for _, p := range pageNums[i] {
			dir = append(dir, le32(p)...)
		}
	}
	return dir
}

// BuildBigMSF assembles a complete Big (v7.00) MSF file image containing the
// given streams, laid out with the given page size, suitable for round-trip
// tests against Open / Get.
func BuildBigMSF(pageSize uint32, streams []SyntheticStream) []byte {
	layout := newSyntheticLayout(pageSize)

	pageNums := make([][]uint32, len(streams))
	for i, s := range streams {
		if s.Data != nil {
			pageNums[i] = layout.allocate(s.Data)
		}
	}

	directory := buildBigDirectory(streams, pageNums)
	dirPages := layout.allocate(directory)

	// The directory's own page list must live somewhere; store it as one
	// more "stream" of raw page numbers and record where *that* lives.
	var dirPageListBytes []byte
	for _, p := range dirPages {
		dirPageListBytes = append(dirPageListBytes, le32(p)...)
	}
	dirPageListLocationPages := layout.allocate(dirPageListBytes)

	header := make([]byte, 0, pageSize)
	header = append(header, bigMagic...)
	header = append(header, le32(pageSize)...)
	header = append(header, le32(0)...) // free_page_map, ignored
	// pages_used is filled in after every page has been allocated.
	header = append(header, le32(0)...) // placeholder
	header = append(header, le32(uint32(len(directory)))...)
	header = append(header, le32(0)...) // reserved
	for _, p := range dirPageListLocationPages {
		header = append(header, le32(p)...)
	}

	layout.pages[0] = padTo(header, pageSize)

	image := layout.render()
	binary.LittleEndian.PutUint32(image[32+4:32+8], 0) // free_page_map stays 0
	binary.LittleEndian.PutUint32(image[32+8:32+12], layout.nextPage)
	return image
}

// buildSmallDirectory produces the Small-format directory bytes (§6
// "Directory (Small)"): u16 stream_count, u16 reserved, then per stream a
// u32 size + u32 reserved pair, then each present stream's 16-bit page
// numbers.
func buildSmallDirectory(streams []SyntheticStream, pageNums [][]uint16) []byte {
	var dir []byte
	dir = append(dir, le16(uint16(len(streams)))...)
	dir = append(dir, le16(0)...) // reserved
	for _, s := range streams {
		if s.Data == nil {
			dir = append(dir, le32(sentinelStreamSize)...)
		} else {
			dir = append(dir, le32(uint32(len(s.Data)))...)
		}
		dir = append(dir, le32(0)...) // reserved
	}
	for i, s := range streams {
		if s.Data == nil {
			continue
		}
		for _, p := range pageNums[i] {
			dir = append(dir, le16(p)...)
		}
	}
	return dir
}

// BuildSmallMSF assembles a complete Small (v2.00) MSF file image.
func BuildSmallMSF(pageSize uint32, streams []SyntheticStream) []byte {
	layout := newSyntheticLayout(pageSize)

	pageNums := make([][]uint16, len(streams))
	for i, s := range streams {
		if s.Data != nil {
			for _, p := range layout.allocate(s.Data) {
				pageNums[i] = append(pageNums[i], uint16(p))
			}
		}
	}

	directory := buildSmallDirectory(streams, pageNums)

	header := make([]byte, 0, pageSize)
	header = append(header, smallMagic...)
	header = append(header, le32(pageSize)...)
	header = append(header, le16(0)...) // start_page, ignored
	header = append(header, le16(0)...) // placeholder for pages_used
	header = append(header, le32(uint32(len(directory)))...)
	header = append(header, le32(0)...) // reserved

	dirPages16 := make([]uint16, 0)
	for _, p := range layout.allocate(directory) {
		dirPages16 = append(dirPages16, uint16(p))
	}
	for _, p := range dirPages16 {
		header = append(header, le16(p)...)
	}

	layout.pages[0] = padTo(header, pageSize)

	image := layout.render()
	binary.LittleEndian.PutUint16(image[44+4+2:44+4+4], uint16(layout.nextPage))
	return image
}

func padTo(b []byte, size uint32) []byte {
	if uint32(len(b)) >= size {
		return b[:size]
	}
	padded := make([]byte, size)
	copy(padded, b)
	return padded
}
