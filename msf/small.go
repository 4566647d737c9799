package msf

import "bytes"

// smallMagic is the exact 44-byte magic of a "Small" (v2.00) MSF header.
var smallMagic = []byte("Microsoft C/C++ program database 2.00\r\n\x1aJG\x00\x00")

// SmallMSF reads the "Small" v2.00 MSF container: the directory's page list
// is encoded directly in the header (single indirection, no
// page-list-of-page-list).
type SmallMSF struct {
	header      Header
	source      Source
	streamTable streamTable
}

// newSmallMSF parses a Small MSF header out of headerView.
func newSmallMSF(source Source, headerView SourceView) (*SmallMSF, error) {
	buf := newParseBuffer(headerView.AsSlice())

	magic := make([]byte, len(smallMagic))
	if err := readExact(buf, magic); err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, smallMagic) {
		return nil, ErrUnrecognizedFileFormat
	}

	pageSize, err := buf.parseU32()
	if err != nil {
		return nil, err
	}
	if _, err := buf.parseU16(); err != nil { // start_page, ignored
		return nil, err
	}
	pagesUsed, err := buf.parseU16()
	if err != nil {
		return nil, err
	}
	directorySize, err := buf.parseU32()
	if err != nil {
		return nil, err
	}
	if _, err := buf.parseU32(); err != nil { // reserved, ignored
		return nil, err
	}

	header, err := newHeader(pageSize, uint32(pagesUsed))
	if err != nil {
		return nil, err
	}

	location, err := readSmallPageList(header, directorySize, buf)
	if err != nil {
		return nil, err
	}

	dbg.Println("opened small msf: page_size =", pageSize, "pages_used =", pagesUsed, "directory_size =", directorySize)

	return &SmallMSF{
		header:      header,
		source:      source,
		streamTable: newTableFoundStreamTable(location),
	}, nil
}

// readSmallPageList reads `pagesNeededToStore(size)` 16-bit page numbers
// from buf, validating and widening each, and truncates to size bytes.
func readSmallPageList(header Header, size uint32, buf *parseBuffer) (PageList, error) {
	pages := header.pagesNeededToStore(size)
	list := NewPageList(header.pageSize)
	for i := uint32(0); i < pages; i++ {
		n, err := buf.parseU16()
		if err != nil {
			return PageList{}, err
		}
		pn, err := header.validatePageNumber(uint32(n))
		if err != nil {
			return PageList{}, err
		}
		list.Push(pn)
	}
	list.Truncate(size)
	return list, nil
}

func (m *SmallMSF) makeStreamTableAvailable() error {
	if m.streamTable.state == stateTableFound {
		location := m.streamTable.tableLocation
		v, err := view(m.source, &location)
		if err != nil {
			return err
		}
		dbg.Println("small msf: directory available,", len(v.AsSlice()), "bytes")
		m.streamTable.state = stateAvailable
		m.streamTable.tableView = v
	}
	if m.streamTable.state != stateAvailable {
		panic("msf: stream table did not reach Available state")
	}
	return nil
}

// lookUpStream walks the directory to build the PageList for streamNumber,
// per §4.5 "Stream lookup" (differs from Big in widths and a per-size
// reserved word).
func (m *SmallMSF) lookUpStream(streamNumber uint32) (PageList, error) {
	if err := m.makeStreamTableAvailable(); err != nil {
		return PageList{}, err
	}

	buf := newParseBuffer(m.streamTable.tableView.AsSlice())

	streamCount16, err := buf.parseU16()
	if err != nil {
		return PageList{}, err
	}
	if _, err := buf.parseU16(); err != nil { // reserved
		return PageList{}, err
	}
	streamCount := uint32(streamCount16)
	if streamNumber >= streamCount {
		return PageList{}, streamNotFound(streamNumber)
	}

	var pagesToSkip uint32
	for i := uint32(0); i < streamNumber; i++ {
		size, err := buf.parseU32()
		if err != nil {
			return PageList{}, err
		}
		if _, err := buf.parseU32(); err != nil { // reserved
			return PageList{}, err
		}
		if size != sentinelStreamSize {
			pagesToSkip += m.header.pagesNeededToStore(size)
		}
	}

	bytesInStream, err := buf.parseU32()
	if err != nil {
		return PageList{}, err
	}
	if _, err := buf.parseU32(); err != nil { // reserved
		return PageList{}, err
	}
	if bytesInStream == sentinelStreamSize {
		return PageList{}, streamNotFound(streamNumber)
	}

	if err := buf.take(int(streamCount-streamNumber-1) * 8); err != nil {
		return PageList{}, err
	}
	if err := buf.take(int(pagesToSkip) * 2); err != nil {
		return PageList{}, err
	}

	return readSmallPageList(m.header, bytesInStream, buf)
}

// Header implements Msf.
func (m *SmallMSF) Header() Header {
	return m.header
}

// Get implements Msf.
func (m *SmallMSF) Get(streamNumber uint32, byteLimit *uint32) (*Stream, error) {
	pageList, err := m.lookUpStream(streamNumber)
	if err != nil {
		return nil, err
	}
	if byteLimit != nil {
		pageList.Truncate(*byteLimit)
	}
	v, err := view(m.source, &pageList)
	if err != nil {
		return nil, err
	}
	return &Stream{sourceView: v}, nil
}
