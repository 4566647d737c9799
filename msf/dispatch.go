package msf

import (
	"bytes"
	"errors"
	"io"
)

// provisionalHeaderPageSize is the page size assumed just long enough to
// request to read the leading bytes of any MSF: large enough to hold either
// variant's fixed header (32 or 44 bytes of magic plus a handful of
// integers), long before the real page size is known.
const provisionalHeaderPageSize = 4096

// Open inspects the leading bytes of source to select the Big or Small MSF
// variant and returns a reader ready to serve Get requests.
func Open(source Source) (Msf, error) {
	headerLocation := NewPageList(provisionalHeaderPageSize)
	headerLocation.Push(0)

	headerView, err := view(source, &headerLocation)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && errors.Is(te.Err, io.ErrUnexpectedEOF) {
			return nil, ErrUnrecognizedFileFormat
		}
		return nil, err
	}

	leading := headerView.AsSlice()
	if hasPrefix(leading, bigMagic) {
		dbg.Println("dispatch: matched Big MSF magic")
		return newBigMSF(source, headerView)
	}
	if hasPrefix(leading, smallMagic) {
		dbg.Println("dispatch: matched Small MSF magic")
		return newSmallMSF(source, headerView)
	}

	warn.Println("dispatch: no magic matched, unrecognized file format")
	return nil, ErrUnrecognizedFileFormat
}

// hasPrefix reports whether actual begins with expected, failing closed
// (false) rather than panicking when actual is shorter.
func hasPrefix(actual, expected []byte) bool {
	return len(actual) >= len(expected) && bytes.Equal(actual[:len(expected)], expected)
}
