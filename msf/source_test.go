package msf

import (
	"errors"
	"testing"
)

func TestMemorySourceViewConcatenatesRanges(t *testing.T) {
	data := []byte("0123456789")
	source := NewMemorySource(data)
	view, err := source.View([]SourceSlice{{Offset: 0, Length: 3}, {Offset: 5, Length: 2}})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if got, want := string(view.AsSlice()), "01256"; got != want {
		t.Fatalf("View result = %q, want %q", got, want)
	}
}

func TestMemorySourceViewShortRead(t *testing.T) {
	source := NewMemorySource([]byte("tiny"))
	_, err := source.View([]SourceSlice{{Offset: 0, Length: 100}})
	if err == nil {
		t.Fatal("View past the end of the buffer should fail")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
}

func TestCheckViewLengthPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("checkViewLength should panic when the view's length is wrong")
		}
	}()
	checkViewLength(byteSliceView{data: []byte("short")}, 100)
}
