package netrpc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "small", payload: []byte(`{"args":["common","login"]}`)},
		{name: "single byte", payload: []byte{0x7b}},
		{name: "binary", payload: bytes.Repeat([]byte{0x00, 0xff}, 512)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFrame(&buf, tc.payload, DefaultLimits()); err != nil {
				t.Fatalf("write frame: %v", err)
			}
			got, err := ReadFrame(&buf, DefaultLimits())
			if err != nil {
				t.Fatalf("read frame: %v", err)
			}
			if !bytes.Equal(got, tc.payload) {
				t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(tc.payload))
			}
			if buf.Len() != 0 {
				t.Fatalf("expected frame fully consumed, %d bytes left", buf.Len())
			}
		})
	}
}

func TestWriteFrameRejectsEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil, DefaultLimits()); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	limits := Limits{MaxPayloadBytes: 8}
	var buf bytes.Buffer
	err := WriteFrame(&buf, bytes.Repeat([]byte{0x01}, 9), limits)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("rejected frame must write nothing, wrote %d bytes", buf.Len())
	}
}

func TestReadFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	var prefix [prefixLen]byte
	binary.BigEndian.PutUint32(prefix[:], 1024)
	buf.Write(prefix[:])
	buf.Write(bytes.Repeat([]byte{0x01}, 1024))

	_, err := ReadFrame(&buf, Limits{MaxPayloadBytes: 16})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadFrameShortPrefix(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty stream", raw: nil},
		{name: "truncated prefix", raw: []byte{0x00, 0x00}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tc.raw), DefaultLimits())
			if !errors.Is(err, ErrShortPrefix) {
				t.Fatalf("expected ErrShortPrefix, got %v", err)
			}
		})
	}
}

func TestReadFrameZeroLength(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x00}
	_, err := ReadFrame(bytes.NewReader(raw), DefaultLimits())
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}
