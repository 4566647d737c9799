package msf

import "bytes"

// bigMagic is the exact 32-byte magic of a "Big" (v7.00) MSF header,
// including the three trailing null bytes some documentation omits. §9's
// Open Question treats this full literal as canonical, as found in real PDB
// files.
var bigMagic = []byte("Microsoft C/C++ MSF 7.00\r\n\x1aDS\x00\x00\x00")

// BigMSF reads the "Big" v7.00 MSF container: a 32-bit header whose inline
// page list is itself a list of pages holding the directory's page list
// (double indirection).
type BigMSF struct {
	header      Header
	source      Source
	streamTable streamTable
}

// newBigMSF parses a Big MSF header out of headerView and returns a reader
// ready to resolve streams lazily.
func newBigMSF(source Source, headerView SourceView) (*BigMSF, error) {
	buf := newParseBuffer(headerView.AsSlice())

	magic := make([]byte, len(bigMagic))
	if err := readExact(buf, magic); err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, bigMagic) {
		return nil, ErrUnrecognizedFileFormat
	}

	pageSize, err := buf.parseU32()
	if err != nil {
		return nil, err
	}
	if _, err := buf.parseU32(); err != nil { // free_page_map, ignored
		return nil, err
	}
	pagesUsed, err := buf.parseU32()
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

	header, err := newHeader(pageSize, pagesUsed)
	if err != nil {
		return nil, err
	}

	dirPages := header.pagesNeededToStore(directorySize)
	locationOfLocation, err := readPageList(header, dirPages*4, buf)
	if err != nil {
		return nil, err
	}

	dbg.Println("opened big msf: page_size =", pageSize, "pages_used =", pagesUsed, "directory_size =", directorySize)

	return &BigMSF{
		header:      header,
		source:      source,
		streamTable: newHeaderOnlyStreamTable(directorySize, locationOfLocation),
	}, nil
}

// readPageList reads `pagesNeededToStore(size)` 32-bit page numbers from
// buf, validating each, and returns a PageList truncated to size bytes.
func readPageList(header Header, size uint32, buf *parseBuffer) (PageList, error) {
	pages := header.pagesNeededToStore(size)
	list := NewPageList(header.pageSize)
	for i := uint32(0); i < pages; i++ {
		n, err := buf.parseU32()
		if err != nil {
			return PageList{}, err
		}
		pn, err := header.validatePageNumber(n)
		if err != nil {
			return PageList{}, err
		}
		list.Push(pn)
	}
	list.Truncate(size)
	return list, nil
}

func readExact(buf *parseBuffer, dst []byte) error {
	if buf.offset+len(dst) > len(buf.data) {
		return parseErrorf("unexpected end of buffer reading %d bytes at offset %d", len(dst), buf.offset)
	}
	copy(dst, buf.data[buf.offset:])
	buf.offset += len(dst)
	return nil
}

// findStreamTable performs the HeaderOnly -> TableFound transition: it views
// the inline page-list-of-page-list and parses the directory's actual
// PageList out of it.
func (m *BigMSF) findStreamTable() error {
	if m.streamTable.state != stateHeaderOnly {
		return nil
	}

	locationOfLocation := m.streamTable.headerOnlyLocationOfLocation
	locationView, err := view(m.source, &locationOfLocation)
	if err != nil {
		return err
	}

	buf := newParseBuffer(locationView.AsSlice())
	list := NewPageList(m.header.pageSize)
	for !buf.isEmpty() {
		n, err := buf.parseU32()
		if err != nil {
			return err
		}
		pn, err := m.header.validatePageNumber(n)
		if err != nil {
			return err
		}
		list.Push(pn)
	}
	list.Truncate(m.streamTable.headerOnlySizeInBytes)

	dbg.Println("big msf: directory table located,", len(list.Pages()), "pages")
	m.streamTable = newTableFoundStreamTable(list)
	return nil
}

// makeStreamTableAvailable performs whatever transitions are needed to reach
// the Available state, then caches the directory view.
func (m *BigMSF) makeStreamTableAvailable() error {
	if err := m.findStreamTable(); err != nil {
		return err
	}
	if m.streamTable.state == stateTableFound {
		location := m.streamTable.tableLocation
		v, err := view(m.source, &location)
		if err != nil {
			return err
		}
		dbg.Println("big msf: directory available,", len(v.AsSlice()), "bytes")
		m.streamTable.state = stateAvailable
		m.streamTable.tableView = v
	}
	if m.streamTable.state != stateAvailable {
		panic("msf: stream table did not reach Available state")
	}
	return nil
}

// lookUpStream walks the directory to build the PageList for streamNumber,
// per §4.4 "Stream lookup".
func (m *BigMSF) lookUpStream(streamNumber uint32) (PageList, error) {
	if err := m.makeStreamTableAvailable(); err != nil {
		return PageList{}, err
	}

	buf := newParseBuffer(m.streamTable.tableView.AsSlice())

	streamCount, err := buf.parseU32()
	if err != nil {
		return PageList{}, err
	}
	if streamNumber >= streamCount {
		return PageList{}, streamNotFound(streamNumber)
	}

	var pagesToSkip uint32
	for i := uint32(0); i < streamNumber; i++ {
		size, err := buf.parseU32()
		if err != nil {
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
	if bytesInStream == sentinelStreamSize {
		return PageList{}, streamNotFound(streamNumber)
	}

	if err := buf.take(int(streamCount-streamNumber-1) * 4); err != nil {
		return PageList{}, err
	}
	if err := buf.take(int(pagesToSkip) * 4); err != nil {
		return PageList{}, err
	}

	pagesInStream := m.header.pagesNeededToStore(bytesInStream)
	list := NewPageList(m.header.pageSize)
	for i := uint32(0); i < pagesInStream; i++ {
		n, err := buf.parseU32()
		if err != nil {
			return PageList{}, err
		}
		pn, err := m.header.validatePageNumber(n)
		if err != nil {
			return PageList{}, err
		}
		list.Push(pn)
	}
	list.Truncate(bytesInStream)

	return list, nil
}

// Header implements Msf.
func (m *BigMSF) Header() Header {
	return m.header
}

// Get implements Msf.
func (m *BigMSF) Get(streamNumber uint32, byteLimit *uint32) (*Stream, error) {
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

// sentinelStreamSize is the "stream does not exist" marker in both directory
// formats (§6 "Sentinel").
const sentinelStreamSize uint32 = 0xFFFFFFFF
