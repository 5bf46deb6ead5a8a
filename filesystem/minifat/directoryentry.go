package minifat

import (
	"bytes"
	"encoding/binary"
	"time"
)

const (
	// TypeDir marks a directory entry describing a subdirectory.
	TypeDir = byte('D')
	// TypeFile marks a directory entry describing a regular file.
	TypeFile = byte('F')

	// MaxNameLength is the longest entry name the format can store.
	MaxNameLength = 20

	// EntrySize is the packed on-disk size of one directory entry:
	// type (1) + name (20) + day/month/year (3) + size (4) + first block (4).
	EntrySize = 32
)

// Entry is one directory entry. Directories store their occupied entry
// count in the size field of their own "." entry; the year is an offset
// from 1900.
type Entry struct {
	Type       byte
	Name       string
	Day        uint8
	Month      uint8
	Year       uint8
	Size       int32
	FirstBlock int32
}

// IsDir reports whether the entry describes a directory.
func (e *Entry) IsDir() bool {
	return e.Type == TypeDir
}

// Date returns the creation date stored on the entry.
func (e *Entry) Date() time.Time {
	return time.Date(int(e.Year)+1900, time.Month(e.Month), int(e.Day), 0, 0, 0, 0, time.Local)
}

// newEntry builds an entry stamped with today's date.
func newEntry(entryType byte, name string, size, firstBlock int32) Entry {
	now := time.Now()
	return Entry{
		Type:       entryType,
		Name:       name,
		Day:        uint8(now.Day()),
		Month:      uint8(now.Month()),
		Year:       uint8(now.Year() - 1900),
		Size:       size,
		FirstBlock: firstBlock,
	}
}

// entryFromBytes parses one packed 32-byte slot. Names shorter than the
// name field are NUL padded on disk.
func entryFromBytes(b []byte) Entry {
	name := b[1 : 1+MaxNameLength]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return Entry{
		Type:       b[0],
		Name:       string(name),
		Day:        b[21],
		Month:      b[22],
		Year:       b[23],
		Size:       int32(binary.LittleEndian.Uint32(b[24:28])),
		FirstBlock: int32(binary.LittleEndian.Uint32(b[28:32])),
	}
}

// toBytes writes the entry into its packed 32-byte form. Names longer than
// the name field must be rejected before getting here.
func (e *Entry) toBytes(b []byte) {
	for i := range b[:EntrySize] {
		b[i] = 0
	}
	b[0] = e.Type
	copy(b[1:1+MaxNameLength], e.Name)
	b[21] = e.Day
	b[22] = e.Month
	b[23] = e.Year
	binary.LittleEndian.PutUint32(b[24:28], uint32(e.Size))
	binary.LittleEndian.PutUint32(b[28:32], uint32(e.FirstBlock))
}
