package msf

// PageNumber identifies a fixed-size page within an MSF container. Page 0
// holds the file header and is never a valid stream page.
type PageNumber uint32

// Header is the common, post-validation view of an MSF container's
// geometry. It is immutable after construction; every page number read from
// disk must pass through validatePageNumber before it is trusted.
type Header struct {
	pageSize               uint32
	maximumValidPageNumber PageNumber
}

// newHeader validates pageSize before building a Header. pageSize must be a
// power of two in [0x100, 0x800000].
func newHeader(pageSize, maximumValidPageNumber uint32) (Header, error) {
	if !isPowerOfTwo(pageSize) || pageSize < 0x100 || pageSize > 0x800000 {
		return Header{}, invalidPageSize(pageSize)
	}
	return Header{
		pageSize:               pageSize,
		maximumValidPageNumber: PageNumber(maximumValidPageNumber),
	}, nil
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// pagesNeededToStore returns ceil(bytes / page_size); 0 bytes needs 0 pages.
func (h Header) pagesNeededToStore(bytes uint32) uint32 {
	if bytes == 0 {
		return 0
	}
	return (bytes + h.pageSize - 1) / h.pageSize
}

// validatePageNumber fails if n is 0 (the header's own page) or exceeds the
// container's maximum valid page number.
func (h Header) validatePageNumber(n uint32) (PageNumber, error) {
	if n == 0 || PageNumber(n) > h.maximumValidPageNumber {
		return 0, pageReferenceOutOfRange(n)
	}
	return PageNumber(n), nil
}

// PageSize returns the container's page size in bytes.
func (h Header) PageSize() uint32 {
	return h.pageSize
}

// MaximumValidPageNumber returns the upper bound used by validatePageNumber.
func (h Header) MaximumValidPageNumber() PageNumber {
	return h.maximumValidPageNumber
}
