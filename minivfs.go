// Package minivfs opens and formats virtual filesystems stored inside a
// single host file. The file is memory-mapped and treated as a block
// device; the on-disk format and the operations over it live in
// filesystem/minifat.
//
// Typical use:
//
//	fs, created, err := minivfs.OpenOrFormat("store.img", minifat.DefaultBlockSize, minifat.DefaultFATType)
//	if err != nil { ... }
//	defer fs.Close()
//	err = fs.Mkdir("projects")
package minivfs

import (
	"fmt"
	"os"

	"github.com/minivfs/go-minivfs/backend/file"
	"github.com/minivfs/go-minivfs/filesystem/minifat"
)

// Open attaches an existing store. The parameters recorded in its
// superblock govern; they are validated against the file size.
func Open(path string) (*minifat.FileSystem, error) {
	storage, err := file.OpenFromPath(path)
	if err != nil {
		return nil, err
	}
	fs, err := minifat.Read(storage)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fs, nil
}

// Format creates path, sizes it for the given parameters and formats a
// fresh store in it. The file must not exist yet.
func Format(path string, blockSize, fatType int) (*minifat.FileSystem, error) {
	size, err := minifat.Size(blockSize, fatType)
	if err != nil {
		return nil, err
	}
	storage, err := file.CreateFromPath(path, size)
	if err != nil {
		return nil, err
	}
	fs, err := minifat.Create(storage, blockSize, fatType)
	if err != nil {
		storage.Close()
		os.Remove(path)
		return nil, err
	}
	return fs, nil
}

// OpenOrFormat opens path if it exists, otherwise formats a new store with
// the given parameters. For an existing store the stored parameters win
// and the requested ones are ignored. created reports whether a new store
// was formatted.
func OpenOrFormat(path string, blockSize, fatType int) (fs *minifat.FileSystem, created bool, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		fs, err = Open(path)
		return fs, false, err
	} else if !os.IsNotExist(statErr) {
		return nil, false, fmt.Errorf("could not stat %s: %w", path, statErr)
	}
	fs, err = Format(path, blockSize, fatType)
	return fs, true, err
}
