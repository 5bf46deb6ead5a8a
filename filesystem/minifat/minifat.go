// Package minifat implements a FAT-backed virtual filesystem stored in a
// single backing region: one superblock block, a table of int32 chain
// links, and a data area of fixed-size blocks. Directories are packed
// arrays of 32-byte entries spread across a block chain; the free blocks
// form a LIFO chain rooted in the superblock.
//
// All multi-byte fields are little-endian, independent of the host.
package minifat

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/minivfs/go-minivfs/backend"
)

// FileSystem is an attached store. All operations resolve names in the
// current directory, which starts at the root.
type FileSystem struct {
	backend    backend.Storage
	superblock *superblock
	table      *table
	sbView     []byte
	data       []byte
	currentDir int32
}

// Size returns the exact backing size in bytes required by a store with
// the given parameters.
func Size(blockSize, fatType int) (int64, error) {
	if !validBlockSize(blockSize) {
		return 0, fmt.Errorf("invalid block size %d, must be one of 128, 256, 512, 1024", blockSize)
	}
	if !validFATType(fatType) {
		return 0, fmt.Errorf("invalid fat type %d, must be between 7 and 10", fatType)
	}
	return storeSize(blockSize, fatType), nil
}

// Create formats b as a fresh store: superblock, free chain threading the
// whole data area except the root block, and the root directory in block 0.
func Create(b backend.Storage, blockSize, fatType int) (*FileSystem, error) {
	size, err := Size(blockSize, fatType)
	if err != nil {
		return nil, err
	}
	if b.Size() != size {
		return nil, fmt.Errorf("backing size is %d bytes, store needs exactly %d: %w", b.Size(), size, backend.ErrNotSuitable)
	}

	entries := fatEntries(fatType)
	fs := &FileSystem{
		backend: b,
		superblock: &superblock{
			checkNumber: checkNumber,
			blockSize:   int32(blockSize),
			fatType:     int32(fatType),
			rootBlock:   0,
			freeBlock:   1,
			nFreeBlocks: int32(entries) - 1,
		},
	}
	fs.splitViews(blockSize, entries)
	fs.writeSuperblock()

	// Block 0 is the root; every other block joins the free chain.
	fs.table.setEntry(0, terminator)
	for i := int32(1); i < int32(entries)-1; i++ {
		fs.table.setEntry(i, i+1)
	}
	fs.table.setEntry(int32(entries)-1, terminator)

	fs.initDirBlock(fs.superblock.rootBlock, fs.superblock.rootBlock)
	fs.currentDir = fs.superblock.rootBlock
	return fs, nil
}

// Read attaches an existing store, validating the magic number and that
// the backing size matches the stored parameters exactly.
func Read(b backend.Storage) (*FileSystem, error) {
	raw := b.Bytes()
	if len(raw) < superblockSize {
		return nil, fmt.Errorf("backing holds %d bytes, too small for a superblock: %w", len(raw), ErrInvalidStore)
	}
	sb, err := superblockFromBytes(raw)
	if err != nil {
		return nil, err
	}
	if sb.checkNumber != checkNumber {
		return nil, fmt.Errorf("bad check number %d: %w", sb.checkNumber, ErrInvalidStore)
	}
	if !validBlockSize(int(sb.blockSize)) || !validFATType(int(sb.fatType)) {
		return nil, fmt.Errorf("bad parameters (block size %d, fat type %d): %w", sb.blockSize, sb.fatType, ErrInvalidStore)
	}
	if b.Size() != storeSize(int(sb.blockSize), int(sb.fatType)) {
		return nil, fmt.Errorf("backing size %d does not match stored parameters: %w", b.Size(), ErrInvalidStore)
	}

	fs := &FileSystem{backend: b, superblock: sb}
	fs.splitViews(int(sb.blockSize), fatEntries(int(sb.fatType)))
	fs.currentDir = sb.rootBlock
	return fs, nil
}

// splitViews carves the backing region into the three fixed views.
func (fs *FileSystem) splitViews(blockSize, entries int) {
	raw := fs.backend.Bytes()
	fatStart := blockSize
	dataStart := blockSize + 4*entries
	fs.sbView = raw[:superblockSize]
	fs.table = newTable(raw[fatStart:dataStart])
	fs.data = raw[dataStart:]
}

func (fs *FileSystem) writeSuperblock() {
	copy(fs.sbView, fs.superblock.toBytes())
}

// blockBytes returns the mapped bytes of one data block.
func (fs *FileSystem) blockBytes(block int32) []byte {
	bs := fs.superblock.blockSize
	return fs.data[block*bs : (block+1)*bs]
}

func (fs *FileSystem) currentDirectory() directory {
	return directory{fs: fs, first: fs.currentDir}
}

// BlockSize returns the store's block size in bytes.
func (fs *FileSystem) BlockSize() int {
	return int(fs.superblock.blockSize)
}

// FATType returns the store's FAT type; the FAT holds 2^type entries.
func (fs *FileSystem) FATType() int {
	return int(fs.superblock.fatType)
}

// TotalBlocks returns the number of blocks in the data area.
func (fs *FileSystem) TotalBlocks() int {
	return fatEntries(int(fs.superblock.fatType))
}

// FreeBlocks returns the current length of the free chain.
func (fs *FileSystem) FreeBlocks() int {
	return int(fs.superblock.nFreeBlocks)
}

// Close flushes the backing store and releases it.
func (fs *FileSystem) Close() error {
	if err := fs.backend.Sync(); err != nil {
		return fmt.Errorf("could not flush backing store: %w", err)
	}
	return fs.backend.Close()
}

// List returns the entries of the current directory in slot order,
// including "." and "..".
func (fs *FileSystem) List() []Entry {
	cur := fs.currentDirectory()
	return cur.entries()
}

// Mkdir creates an empty subdirectory in the current directory.
func (fs *FileSystem) Mkdir(name string) error {
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	cur := fs.currentDirectory()
	if _, _, found := cur.find(name); found {
		return ErrExists
	}

	block, err := fs.allocate()
	if err != nil {
		return err
	}
	fs.initDirBlock(block, fs.currentDir)
	if err := cur.append(newEntry(TypeDir, name, 0, block)); err != nil {
		// growing the parent failed, so the new directory must not leak
		fs.release(block)
		return err
	}
	return nil
}

// Cd moves the current directory to the named subdirectory. "." and ".."
// are ordinary entries; at the root ".." points back at the root.
func (fs *FileSystem) Cd(name string) error {
	cur := fs.currentDirectory()
	_, e, found := cur.find(name)
	if !found {
		return ErrNotFound
	}
	if !e.IsDir() {
		return ErrNotADirectory
	}
	fs.currentDir = e.FirstBlock
	return nil
}

// Pwd returns the absolute path of the current directory, components
// separated by "/". The root is "/".
func (fs *FileSystem) Pwd() string {
	var parts []string
	cur := fs.currentDir
	for {
		d := directory{fs: fs, first: cur}
		parent := d.entryAt(1).FirstBlock
		if parent == cur {
			break
		}
		pd := directory{fs: fs, first: parent}
		n := pd.size()
		for i := int32(0); i < n; i++ {
			if e := pd.entryAt(i); e.FirstBlock == cur && e.Name != "." && e.Name != ".." {
				parts = append(parts, e.Name)
				break
			}
		}
		cur = parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Rmdir removes an empty subdirectory from the current directory.
func (fs *FileSystem) Rmdir(name string) error {
	cur := fs.currentDirectory()
	i, e, found := cur.find(name)
	if !found {
		return ErrNotFound
	}
	if !e.IsDir() {
		return ErrNotADirectory
	}
	if i < 2 {
		return ErrInvalidEntry
	}
	target := directory{fs: fs, first: e.FirstBlock}
	if target.size() > 2 {
		return ErrNotEmpty
	}

	fs.release(e.FirstBlock)
	return cur.removeAt(i)
}

// Ingest copies size bytes from r into a new file entry in the current
// directory, chaining one block per blockSize bytes. Either the whole file
// lands or nothing does: a short or failed read releases every block
// allocated so far and leaves the directory untouched.
func (fs *FileSystem) Ingest(name string, r io.Reader, size int64) error {
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if size > math.MaxInt32 {
		return ErrFileTooLarge
	}
	cur := fs.currentDirectory()
	if _, _, found := cur.find(name); found {
		return ErrExists
	}

	blockSize := int64(fs.superblock.blockSize)
	required := (size + blockSize - 1) / blockSize
	if cur.needsGrowth() {
		required++
	}
	if required > int64(fs.superblock.nFreeBlocks) {
		return ErrFull
	}

	first := terminator
	prev := terminator
	var allocated []int32
	undo := func() {
		for _, b := range allocated {
			fs.release(b)
		}
	}

	buf := make([]byte, blockSize)
	for remaining := size; remaining > 0; {
		chunk := blockSize
		if remaining < blockSize {
			chunk = remaining
		}
		if _, err := io.ReadFull(r, buf[:chunk]); err != nil {
			undo()
			return fmt.Errorf("could not read source: %w", err)
		}

		block, err := fs.allocate()
		if err != nil {
			undo()
			return err
		}
		copy(fs.blockBytes(block), buf[:chunk])
		if prev == terminator {
			first = block
		} else {
			fs.table.setEntry(prev, block)
		}
		prev = block
		allocated = append(allocated, block)
		remaining -= chunk
	}

	if err := cur.append(newEntry(TypeFile, name, int32(size), first)); err != nil {
		undo()
		return err
	}
	return nil
}

// Open returns a read handle on a file in the current directory.
func (fs *FileSystem) Open(name string) (*File, error) {
	cur := fs.currentDirectory()
	_, e, found := cur.find(name)
	if !found {
		return nil, ErrNotFound
	}
	if e.IsDir() {
		return nil, ErrNotAFile
	}
	return &File{fs: fs, entry: e, blocks: fs.table.walk(e.FirstBlock)}, nil
}

// Remove deletes a file from the current directory and returns its blocks
// to the free list.
func (fs *FileSystem) Remove(name string) error {
	cur := fs.currentDirectory()
	i, e, found := cur.find(name)
	if !found {
		return ErrNotFound
	}
	if e.IsDir() {
		return ErrNotAFile
	}

	fs.releaseChain(e.FirstBlock)
	return cur.removeAt(i)
}

// resolveDest decides where a copy or move lands: if dst names an existing
// directory in the current directory, the source keeps its own name inside
// it; otherwise dst is a new name beside the source.
func (fs *FileSystem) resolveDest(src, dst string) (directory, string, error) {
	cur := fs.currentDirectory()
	if _, de, ok := cur.find(dst); ok {
		if !de.IsDir() {
			return directory{}, "", ErrExists
		}
		dest := directory{fs: fs, first: de.FirstBlock}
		if _, _, ok := dest.find(src); ok {
			return directory{}, "", ErrExists
		}
		return dest, src, nil
	}
	if len(dst) > MaxNameLength {
		return directory{}, "", ErrNameTooLong
	}
	return cur, dst, nil
}

// Copy duplicates a file: fresh blocks, fresh creation date, same bytes.
// dst may name a subdirectory of the current directory.
func (fs *FileSystem) Copy(src, dst string) error {
	cur := fs.currentDirectory()
	_, se, found := cur.find(src)
	if !found {
		return ErrNotFound
	}
	if se.IsDir() {
		return ErrNotAFile
	}

	dest, name, err := fs.resolveDest(src, dst)
	if err != nil {
		return err
	}

	srcBlocks := fs.table.walk(se.FirstBlock)
	required := int64(len(srcBlocks))
	if dest.needsGrowth() {
		required++
	}
	if required > int64(fs.superblock.nFreeBlocks) {
		return ErrFull
	}

	first := terminator
	prev := terminator
	var allocated []int32
	for _, sb := range srcBlocks {
		block, err := fs.allocate()
		if err != nil {
			for _, b := range allocated {
				fs.release(b)
			}
			return err
		}
		copy(fs.blockBytes(block), fs.blockBytes(sb))
		if prev == terminator {
			first = block
		} else {
			fs.table.setEntry(prev, block)
		}
		prev = block
		allocated = append(allocated, block)
	}

	if err := dest.append(newEntry(TypeFile, name, se.Size, first)); err != nil {
		for _, b := range allocated {
			fs.release(b)
		}
		return err
	}
	return nil
}

// Move renames a file, or moves it into a subdirectory of the current
// directory when dst names one. The data chain is never copied.
func (fs *FileSystem) Move(src, dst string) error {
	cur := fs.currentDirectory()
	i, se, found := cur.find(src)
	if !found {
		return ErrNotFound
	}
	if se.IsDir() {
		return ErrNotAFile
	}

	dest, name, err := fs.resolveDest(src, dst)
	if err != nil {
		return err
	}

	if dest.first == cur.first {
		// plain rename, in place
		se.Name = name
		cur.writeEntryAt(i, se)
		return nil
	}

	moved := se
	moved.Name = name
	if err := dest.append(moved); err != nil {
		return err
	}
	return cur.removeAt(i)
}
