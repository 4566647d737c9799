package msf

import (
	"bytes"
	"testing"
)

func TestSmallRoundTrip(t *testing.T) {
	contents := [][]byte{
		[]byte("small stream zero"),
		bytes.Repeat([]byte{0xCD}, 5000),
		[]byte(""),
	}
	streams := make([]SyntheticStream, len(contents))
	for i, c := range contents {
		streams[i] = SyntheticStream{Data: c}
	}

	image := BuildSmallMSF(4096, streams)
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

func TestSmallAbsentStream(t *testing.T) {
	image := BuildSmallMSF(4096, []SyntheticStream{
		{Data: []byte("zero")},
		{Data: nil},
		{Data: []byte("two")},
	})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := m.Get(1, nil); err == nil {
		t.Fatal("Get(1) on an absent stream should fail")
	}
	stream, err := m.Get(2, nil)
	if err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	if got, want := string(stream.AsSlice()), "two"; got != want {
		t.Fatalf("Get(2).AsSlice() = %q, want %q", got, want)
	}
}

func TestSmallOutOfRange(t *testing.T) {
	image := BuildSmallMSF(4096, []SyntheticStream{{Data: []byte("only")}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := m.Get(1, nil); err == nil {
		t.Fatal("Get(1) with stream_count=1 should fail")
	}
}

func TestSmallStartsInTableFound(t *testing.T) {
	image := BuildSmallMSF(4096, []SyntheticStream{{Data: []byte("x")}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	small := m.(*SmallMSF)
	if small.streamTable.state != stateTableFound {
		t.Fatalf("freshly opened SmallMSF should be TableFound (no second indirection), got %v", small.streamTable.state)
	}
}

func TestSmallTaggedRoundTrip(t *testing.T) {
	payload := TagStreamContent([]byte("payload after the tag"))
	image := BuildSmallMSF(4096, []SyntheticStream{{Data: payload}})
	m, err := Open(NewMemorySource(image))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	stream, err := m.Get(0, nil)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	tag, err := StreamTag(stream.AsSlice())
	if err != nil {
		t.Fatalf("StreamTag: %v", err)
	}
	wantTag, err := StreamTag(payload)
	if err != nil {
		t.Fatalf("StreamTag(payload): %v", err)
	}
	if tag != wantTag {
		t.Fatalf("round-tripped tag %v != original tag %v", tag, wantTag)
	}
}
