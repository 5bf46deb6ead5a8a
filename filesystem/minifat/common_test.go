package minifat

import (
	"testing"
)

// memStorage keeps the whole store in a byte slice, standing in for the
// mmap-backed storage in tests.
type memStorage struct {
	b []byte
}

func (m *memStorage) Bytes() []byte { return m.b }
func (m *memStorage) Size() int64   { return int64(len(m.b)) }
func (m *memStorage) Sync() error   { return nil }
func (m *memStorage) Close() error  { return nil }

func newTestStorage(t *testing.T, blockSize, fatType int) *memStorage {
	t.Helper()
	size, err := Size(blockSize, fatType)
	if err != nil {
		t.Fatalf("invalid test parameters (%d, %d): %v", blockSize, fatType, err)
	}
	return &memStorage{b: make([]byte, size)}
}

func newTestFS(t *testing.T, blockSize, fatType int) *FileSystem {
	t.Helper()
	fs, err := Create(newTestStorage(t, blockSize, fatType), blockSize, fatType)
	if err != nil {
		t.Fatalf("error formatting test filesystem: %v", err)
	}
	return fs
}

// usedBlocks walks the directory tree from the root and collects every
// block reachable through a directory or file chain.
func usedBlocks(t *testing.T, fs *FileSystem, dirBlock int32, seen map[int32]bool) {
	t.Helper()
	for _, b := range fs.table.walk(dirBlock) {
		if seen[b] {
			t.Fatalf("block %d reachable twice", b)
		}
		seen[b] = true
	}
	d := directory{fs: fs, first: dirBlock}
	n := d.size()
	for i := int32(2); i < n; i++ {
		e := d.entryAt(i)
		if e.IsDir() {
			usedBlocks(t, fs, e.FirstBlock, seen)
			continue
		}
		for _, b := range fs.table.walk(e.FirstBlock) {
			if seen[b] {
				t.Fatalf("block %d reachable twice", b)
			}
			seen[b] = true
		}
	}
}

// checkInvariants asserts the structural invariants that must hold after
// every successful operation: the free chain length matches the counter,
// every block is reachable exactly once, directory chains are exactly as
// long as their entry count needs, and each directory carries sane "." and
// ".." entries with unique names.
func checkInvariants(t *testing.T, fs *FileSystem) {
	t.Helper()

	free := 0
	freeSeen := map[int32]bool{}
	for b := fs.superblock.freeBlock; b != terminator; b = fs.table.entry(b) {
		if freeSeen[b] {
			t.Fatalf("free list visits block %d twice", b)
		}
		freeSeen[b] = true
		free++
	}
	if free != int(fs.superblock.nFreeBlocks) {
		t.Fatalf("free list holds %d blocks, superblock says %d", free, fs.superblock.nFreeBlocks)
	}

	used := map[int32]bool{}
	usedBlocks(t, fs, fs.superblock.rootBlock, used)
	for b := range used {
		if freeSeen[b] {
			t.Fatalf("block %d is both used and free", b)
		}
	}
	if len(used)+free != fs.TotalBlocks() {
		t.Fatalf("%d used + %d free != %d total blocks", len(used), free, fs.TotalBlocks())
	}

	checkDirectory(t, fs, fs.superblock.rootBlock, fs.superblock.rootBlock)
}

func checkDirectory(t *testing.T, fs *FileSystem, dirBlock, parent int32) {
	t.Helper()
	d := directory{fs: fs, first: dirBlock}
	n := d.size()

	dot := d.entryAt(0)
	if dot.Name != "." || dot.FirstBlock != dirBlock {
		t.Fatalf("directory %d: entry 0 is %q -> %d, want \".\" -> %d", dirBlock, dot.Name, dot.FirstBlock, dirBlock)
	}
	dotdot := d.entryAt(1)
	if dotdot.Name != ".." || dotdot.FirstBlock != parent {
		t.Fatalf("directory %d: entry 1 is %q -> %d, want \"..\" -> %d", dirBlock, dotdot.Name, dotdot.FirstBlock, parent)
	}

	dpb := fs.entriesPerBlock()
	wantBlocks := (n + dpb - 1) / dpb
	if got := fs.table.length(dirBlock); got != wantBlocks {
		t.Fatalf("directory %d: chain holds %d blocks for %d entries, want %d", dirBlock, got, n, wantBlocks)
	}

	names := map[string]bool{}
	for i := int32(0); i < n; i++ {
		e := d.entryAt(i)
		if names[e.Name] {
			t.Fatalf("directory %d: duplicate name %q", dirBlock, e.Name)
		}
		names[e.Name] = true
		if i >= 2 && e.IsDir() {
			checkDirectory(t, fs, e.FirstBlock, dirBlock)
		}
	}
}
