package minifat

import "errors"

var (
	// ErrNotFound is returned when a name does not exist in the current
	// directory.
	ErrNotFound = errors.New("entry not in directory")
	// ErrNotADirectory is returned when a directory operation names a file.
	ErrNotADirectory = errors.New("entry is not a directory")
	// ErrNotAFile is returned when a file operation names a directory.
	ErrNotAFile = errors.New("entry is not a file")
	// ErrNameTooLong is returned for names longer than MaxNameLength.
	ErrNameTooLong = errors.New("name too long")
	// ErrExists is returned when creating an entry whose name is taken.
	ErrExists = errors.New("entry exists")
	// ErrFull is returned when the free list cannot cover an operation.
	ErrFull = errors.New("disk is full")
	// ErrNotEmpty is returned when removing a directory that has entries
	// beyond "." and "..".
	ErrNotEmpty = errors.New("directory is not empty")
	// ErrInvalidEntry is returned when an operation targets "." or "..".
	ErrInvalidEntry = errors.New("cannot operate on '.' or '..'")
	// ErrInvalidStore is returned when attaching a file that is not a
	// valid store.
	ErrInvalidStore = errors.New("invalid filesystem")
	// ErrFileTooLarge is returned when ingesting a file whose size cannot
	// be represented in a directory entry.
	ErrFileTooLarge = errors.New("file too large")
)
