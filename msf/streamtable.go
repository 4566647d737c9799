package msf

// streamTableState tags which of the three StreamTable lifecycle states a
// reader is currently in. Transitions are monotonic: headerOnly ->
// tableFound -> available.
type streamTableState int

const (
	stateHeaderOnly streamTableState = iota
	stateTableFound
	stateAvailable
)

// streamTable is the tagged union described in spec §3 ("StreamTable"). Only
// the fields relevant to the current state are meaningful; look at state
// before reading anything else.
type streamTable struct {
	state streamTableState

	// stateHeaderOnly (Big only): the directory's size, plus a PageList
	// naming the pages that hold the *list of pages* where the directory
	// itself lives.
	headerOnlySizeInBytes        uint32
	headerOnlyLocationOfLocation PageList

	// stateTableFound: the PageList naming the pages where the directory
	// lives.
	tableLocation PageList

	// stateAvailable: the directory's bytes, materialized once and cached
	// for the reader's lifetime.
	tableView SourceView
}

// newHeaderOnlyStreamTable builds the Big-only initial state.
func newHeaderOnlyStreamTable(sizeInBytes uint32, locationOfLocation PageList) streamTable {
	return streamTable{
		state:                        stateHeaderOnly,
		headerOnlySizeInBytes:        sizeInBytes,
		headerOnlyLocationOfLocation: locationOfLocation,
	}
}

// newTableFoundStreamTable builds the state both variants reach once the
// directory's own location is known (immediately, for Small; after one
// indirection, for Big).
func newTableFoundStreamTable(location PageList) streamTable {
	return streamTable{
		state:         stateTableFound,
		tableLocation: location,
	}
}

// view materializes a PageList through a Source, asserting the returned view
// has exactly the length the PageList expects (§4.3: a Source returning the
// wrong length is a programming defect, not a recoverable error).
func view(source Source, pageList *PageList) (SourceView, error) {
	v, err := source.View(pageList.SourceSlices())
	if err != nil {
		return nil, err
	}
	checkViewLength(v, pageList.Len())
	return v, nil
}
