package image_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stephenwhippuk/pendragon/image"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data := []byte{1, 2, 3, 4}
	code := []byte{0xAA, 0xBB, 0xCC}
	if err := image.Write(&buf, "hello", data, code); err != nil {
		t.Fatalf("Write: %v", err)
	}
	img, err := image.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if img.Header.ProgramName != "hello" {
		t.Fatalf("ProgramName = %q, want %q", img.Header.ProgramName, "hello")
	}
	if !bytes.Equal(img.Data, data) {
		t.Fatalf("Data = %v, want %v", img.Data, data)
	}
	if !bytes.Equal(img.Code, code) {
		t.Fatalf("Code = %v, want %v", img.Code, code)
	}
}

func TestEmptySegmentsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := image.Write(&buf, "empty", nil, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	img, err := image.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(img.Data) != 0 || len(img.Code) != 0 {
		t.Fatalf("expected empty segments, got data=%v code=%v", img.Data, img.Code)
	}
}

func TestLongProgramNameIsTruncated(t *testing.T) {
	var buf bytes.Buffer
	name := strings.Repeat("x", 500)
	if err := image.Write(&buf, name, nil, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	img, err := image.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(img.Header.ProgramName) != 32 {
		t.Fatalf("ProgramName length = %d, want 32", len(img.Header.ProgramName))
	}
}

func TestWrongMachineIsRejected(t *testing.T) {
	var buf bytes.Buffer
	if err := image.Write(&buf, "p", nil, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw := buf.Bytes()
	// Machine name length byte sits right after the 2-byte header-size
	// field and the 4-byte header version.
	nameLenOffset := 2 + 4
	nameOffset := nameLenOffset + 1
	nameLen := int(raw[nameLenOffset])
	replacement := "Unknown" + strings.Repeat(" ", nameLen-len("Unknown"))
	copy(raw[nameOffset:nameOffset+nameLen], replacement)

	_, err := image.Read(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected WrongMachine error")
	}
	imgErr, ok := err.(*image.Error)
	if !ok || imgErr.Kind != image.ErrorWrongMachine {
		t.Fatalf("got %v, want WrongMachine", err)
	}
}

func TestTruncatedCodeSegmentIsRejected(t *testing.T) {
	var buf bytes.Buffer
	if err := image.Write(&buf, "p", nil, []byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw := buf.Bytes()
	truncated := raw[:len(raw)-3] // chop off part of the code segment

	_, err := image.Read(bytes.NewReader(truncated))
	if err == nil {
		t.Fatal("expected TruncatedImage error")
	}
	imgErr, ok := err.(*image.Error)
	if !ok || imgErr.Kind != image.ErrorTruncatedImage {
		t.Fatalf("got %v, want TruncatedImage", err)
	}
}

func TestUnsupportedHeaderVersionIsRejected(t *testing.T) {
	var buf bytes.Buffer
	if err := image.Write(&buf, "p", nil, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw := buf.Bytes()
	raw[2] = 2 // bump the major version byte

	_, err := image.Read(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected UnsupportedHeaderVersion error")
	}
	imgErr, ok := err.(*image.Error)
	if !ok || imgErr.Kind != image.ErrorUnsupportedHeaderVersion {
		t.Fatalf("got %v, want UnsupportedHeaderVersion", err)
	}
}
