// Package file provides a backend.Storage mapped from a host file.
package file

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/minivfs/go-minivfs/backend"
)

type mmapBackend struct {
	data []byte
}

// OpenFromPath maps an existing file read/write at its current size.
func OpenFromPath(pathName string) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass a file name")
	}

	f, err := os.OpenFile(pathName, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", pathName, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file %s: %w", pathName, err)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("file %s is empty: %w", pathName, backend.ErrNotSuitable)
	}

	return mapFile(f, fi.Size())
}

// CreateFromPath creates a file, extends it to exactly size bytes and maps
// it read/write. The file must not exist yet.
func CreateFromPath(pathName string, size int64) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass a file name")
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid storage size %d: %w", size, backend.ErrNotSuitable)
	}

	f, err := os.OpenFile(pathName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o700)
	if err != nil {
		return nil, fmt.Errorf("could not create file %s: %w", pathName, err)
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		os.Remove(pathName)
		return nil, fmt.Errorf("could not extend file %s to %d bytes: %w", pathName, size, err)
	}

	s, err := mapFile(f, size)
	if err != nil {
		os.Remove(pathName)
		return nil, err
	}
	return s, nil
}

// mapFile maps size bytes of f shared read/write. The descriptor is not
// needed after the mapping exists, so callers may close it.
func mapFile(f *os.File, size int64) (backend.Storage, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("could not map file %s: %w", f.Name(), err)
	}
	return &mmapBackend{data: data}, nil
}

func (m *mmapBackend) Bytes() []byte {
	return m.data
}

func (m *mmapBackend) Size() int64 {
	return int64(len(m.data))
}

func (m *mmapBackend) Sync() error {
	if m.data == nil {
		return backend.ErrClosed
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

func (m *mmapBackend) Close() error {
	if m.data == nil {
		return backend.ErrClosed
	}
	data := m.data
	m.data = nil
	return unix.Munmap(data)
}
