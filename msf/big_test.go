package msf

import (
	"bytes"
	"errors"
	"testing"
)

func TestBigRoundTrip(t *testing.T) {
	contents := [][]byte{
		[]byte("stream zero contents"),
		bytes.Repeat([]byte{0xAB}, 9000), // spans multiple 4096-byte pages
		[]byte(""),
		[]byte("a shorter one"),
	}
	streams := make([]SyntheticStream, len(contents))
	for i, c := range contents {
		streams[i] = SyntheticStream{Data: c}
	}

	image := BuildBigMSF(4096, streams)
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i, want := range contents {
		stream, err := m.Get(uint32(i), nil)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got := stream.AsSlice(); !bytes.Equal(got, want) {
			t.Fatalf("Get(%d).AsSlice() = %q, want %q", i, got, want)
		}
	}
}

func TestBigGetIsIdempotent(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{{Data: []byte("repeatable")}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	first, err := m.Get(0, nil)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	second, err := m.Get(0, nil)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if !bytes.Equal(first.AsSlice(), second.AsSlice()) {
		t.Fatalf("two Get(0) calls returned different content: %q vs %q", first.AsSlice(), second.AsSlice())
	}
}

func TestBigEmptyStream(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{
		{Data: []byte("a")},
		{Data: []byte("bb")},
		{Data: []byte("ccc")},
		{Data: []byte("")},
	})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	stream, err := m.Get(3, nil)
	if err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if stream.Len() != 0 {
		t.Fatalf("Get(3).Len() = %d, want 0", stream.Len())
	}
}

func TestBigAbsentStreamAndSkipping(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{
		{Data: []byte("present zero")},
		{Data: nil}, // absent
		{Data: []byte("present two, after absent one")},
	})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var notFound *StreamNotFoundError
	if _, err := m.Get(1, nil); err == nil {
		t.Fatal("Get(1) on an absent stream should fail")
	} else if !errors.As(err, &notFound) {
		t.Fatalf("Get(1) error = %v (%T), want *StreamNotFoundError", err, err)
	}

	stream, err := m.Get(2, nil)
	if err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	if got, want := string(stream.AsSlice()), "present two, after absent one"; got != want {
		t.Fatalf("Get(2).AsSlice() = %q, want %q", got, want)
	}
}

func TestBigOutOfRangeStream(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{
		{Data: []byte("0")}, {Data: []byte("1")}, {Data: []byte("2")},
		{Data: []byte("3")}, {Data: []byte("4")},
	})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var notFound *StreamNotFoundError
	if _, err := m.Get(5, nil); err == nil {
		t.Fatal("Get(5) with stream_count=5 should fail")
	} else if !errors.As(err, &notFound) {
		t.Fatalf("Get(5) error = %v (%T), want *StreamNotFoundError", err, err)
	}
}

func TestBigCorruptPageReference(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{{Data: []byte("victim stream")}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	big := m.(*BigMSF)
	if err := big.makeStreamTableAvailable(); err != nil {
		t.Fatalf("makeStreamTableAvailable: %v", err)
	}

	// The directory layout is: stream_count(4) + sizes(4*1) + page_numbers.
	// The single stream's first page number starts right after that.
	dirBytes := big.streamTable.tableView.AsSlice()
	corrupted := append([]byte(nil), dirBytes...)
	pageNumOffset := 4 + 4
	binary := uint32(0) // corrupt to page 0, which is always invalid
	corrupted[pageNumOffset] = byte(binary)
	corrupted[pageNumOffset+1] = byte(binary >> 8)
	corrupted[pageNumOffset+2] = byte(binary >> 16)
	corrupted[pageNumOffset+3] = byte(binary >> 24)

	big.streamTable.tableView = byteSliceView{data: corrupted}

	var outOfRange *PageReferenceOutOfRangeError
	if _, err := big.Get(0, nil); err == nil {
		t.Fatal("Get(0) over a directory pointing at page 0 should fail")
	} else if !errors.As(err, &outOfRange) {
		t.Fatalf("Get(0) error = %v (%T), want *PageReferenceOutOfRangeError", err, err)
	}
}

func TestBigGetRespectsByteLimit(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{{Data: []byte("0123456789")}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	limit := uint32(4)
	stream, err := m.Get(0, &limit)
	if err != nil {
		t.Fatalf("Get(0, limit=4): %v", err)
	}
	if got := string(stream.AsSlice()); got != "0123" {
		t.Fatalf("Get(0, limit=4).AsSlice() = %q, want %q", got, "0123")
	}
}

func TestBigLazyOpenDoesNotTouchDirectory(t *testing.T) {
	image := BuildBigMSF(4096, []SyntheticStream{{Data: []byte("lazy")}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	big := m.(*BigMSF)
	if big.streamTable.state != stateHeaderOnly {
		t.Fatalf("freshly opened BigMSF should be HeaderOnly, got state %v", big.streamTable.state)
	}
}
