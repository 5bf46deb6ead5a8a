package minifat

import (
	"bytes"
	"testing"
)

func TestEntryToBytes(t *testing.T) {
	e := Entry{
		Type:       TypeFile,
		Name:       "notes.txt",
		Day:        14,
		Month:      3,
		Year:       112, // 2012
		Size:       300,
		FirstBlock: 5,
	}
	want := make([]byte, EntrySize)
	want[0] = 'F'
	copy(want[1:], "notes.txt")
	want[21] = 14
	want[22] = 3
	want[23] = 112
	want[24] = 0x2c // 300 little-endian
	want[25] = 0x01
	want[28] = 5

	got := make([]byte, EntrySize)
	e.toBytes(got)
	if !bytes.Equal(got, want) {
		t.Errorf("entry.toBytes() mismatched, actual then expected\n% x\n% x", got, want)
	}
}

func TestEntryRoundtrip(t *testing.T) {
	tests := []Entry{
		{TypeDir, ".", 1, 1, 100, 2, 0},
		{TypeDir, "..", 31, 12, 255, 0, 9},
		{TypeFile, "a", 5, 6, 90, 0, -1},
		{TypeFile, "exactly-twenty-chars", 28, 2, 126, 12345, 511},
	}
	for _, e := range tests {
		t.Run(e.Name, func(t *testing.T) {
			b := make([]byte, EntrySize)
			e.toBytes(b)
			if got := entryFromBytes(b); got != e {
				t.Errorf("mismatched entry after roundtrip: %+v vs %+v", got, e)
			}
		})
	}
}

func TestEntryNamePadding(t *testing.T) {
	e := newEntry(TypeDir, "abc", 0, 3)
	b := make([]byte, EntrySize)
	e.toBytes(b)
	for i := 1 + 3; i < 1+MaxNameLength; i++ {
		if b[i] != 0 {
			t.Fatalf("name field byte %d is %#x, want NUL padding", i, b[i])
		}
	}
}

func TestEntryToBytesClearsSlot(t *testing.T) {
	b := bytes.Repeat([]byte{0xaa}, EntrySize)
	e := Entry{Type: TypeFile, Name: "x", Size: 1, FirstBlock: 2}
	e.toBytes(b)
	if got := entryFromBytes(b); got.Name != "x" {
		t.Errorf("stale slot bytes leaked into the name: %q", got.Name)
	}
}

func TestEntryDate(t *testing.T) {
	e := Entry{Day: 2, Month: 8, Year: 126}
	d := e.Date()
	if d.Year() != 2026 || d.Month() != 8 || d.Day() != 2 {
		t.Errorf("Date() = %v, want 2026-08-02", d)
	}
}
