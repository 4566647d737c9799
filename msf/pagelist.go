package msf

// SourceSlice is a single (offset, length) byte range within the underlying
// container, as produced by PageList.SourceSlices.
type SourceSlice struct {
	Offset uint64
	Length uint32
}

// PageList is an ordered, page-size-aware list of page numbers that also
// knows its logical byte length. Invariant: logicalLength <=
// len(pages)*pageSize, and logicalLength > (len(pages)-1)*pageSize whenever
// the list is non-empty.
type PageList struct {
	pageSize      uint32
	pages         []PageNumber
	logicalLength uint32
}

// NewPageList returns an empty PageList over a container with the given
// page size.
func NewPageList(pageSize uint32) PageList {
	return PageList{pageSize: pageSize}
}

// Push appends a page number. The logical length grows to
// len(pages)*pageSize.
func (p *PageList) Push(n PageNumber) {
	p.pages = append(p.pages, n)
	p.logicalLength = uint32(len(p.pages)) * p.pageSize
}

// Truncate sets the logical length to min(current, n). Pages entirely past
// the new length are dropped; this is observable only through
// SourceSlices.
func (p *PageList) Truncate(n uint32) {
	if n < p.logicalLength {
		p.logicalLength = n
	}
	keep := p.pagesNeededForLength(p.logicalLength)
	if keep < uint32(len(p.pages)) {
		p.pages = p.pages[:keep]
	}
}

func (p *PageList) pagesNeededForLength(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return (n + p.pageSize - 1) / p.pageSize
}

// Len returns the logical length in bytes.
func (p *PageList) Len() uint32 {
	return p.logicalLength
}

// PageSize returns the page size this list was constructed with.
func (p *PageList) PageSize() uint32 {
	return p.pageSize
}

// Pages returns the retained page numbers, in order.
func (p *PageList) Pages() []PageNumber {
	return p.pages
}

// SourceSlices returns one (offset, length) entry per retained page: for
// page n, a range starting at n*pageSize; the final entry is truncated so
// the total length equals Len().
func (p *PageList) SourceSlices() []SourceSlice {
	if len(p.pages) == 0 {
		return nil
	}
	slices := make([]SourceSlice, 0, len(p.pages))
	remaining := p.logicalLength
	for _, page := range p.pages {
		length := p.pageSize
		if length > remaining {
			length = remaining
		}
		slices = append(slices, SourceSlice{
			Offset: uint64(page) * uint64(p.pageSize),
			Length: length,
		})
		remaining -= length
	}
	return slices
}
