package minifat

import "encoding/binary"

// terminator ends every chain in the FAT.
const terminator = int32(-1)

// table is a live view over the mapped FAT region. Each slot is a
// little-endian int32 holding either the next block of a chain or
// terminator. Writes land in the mapping immediately, so there is no
// separate serialize step.
type table struct {
	b []byte
}

func newTable(b []byte) *table {
	return &table{b: b}
}

func (t *table) entry(block int32) int32 {
	return int32(binary.LittleEndian.Uint32(t.b[block*4 : block*4+4]))
}

func (t *table) setEntry(block, value int32) {
	binary.LittleEndian.PutUint32(t.b[block*4:block*4+4], uint32(value))
}

// next returns the block following block in its chain, or terminator.
func (t *table) next(block int32) int32 {
	return t.entry(block)
}

// walk returns the chain starting at start, in order. A terminator start
// yields an empty chain.
func (t *table) walk(start int32) []int32 {
	var chain []int32
	for b := start; b != terminator; b = t.entry(b) {
		chain = append(chain, b)
	}
	return chain
}

// tail returns the last block of the chain starting at start.
func (t *table) tail(start int32) int32 {
	b := start
	for t.entry(b) != terminator {
		b = t.entry(b)
	}
	return b
}

// length returns the number of blocks in the chain starting at start.
func (t *table) length(start int32) int32 {
	var n int32
	for b := start; b != terminator; b = t.entry(b) {
		n++
	}
	return n
}

// allocate pops the head of the free list. The popped block's slot is set
// to terminator before the head moves on, so a partially applied sequence
// can never link the free list into a cycle.
func (fs *FileSystem) allocate() (int32, error) {
	sb := fs.superblock
	if sb.nFreeBlocks == 0 {
		return 0, ErrFull
	}
	block := sb.freeBlock
	next := fs.table.entry(block)
	fs.table.setEntry(block, terminator)
	sb.freeBlock = next
	sb.nFreeBlocks--
	fs.writeSuperblock()
	return block, nil
}

// release pushes block onto the head of the free list.
func (fs *FileSystem) release(block int32) {
	sb := fs.superblock
	fs.table.setEntry(block, sb.freeBlock)
	sb.freeBlock = block
	sb.nFreeBlocks++
	fs.writeSuperblock()
}

// releaseChain returns every block of the chain starting at start to the
// free list. A terminator start is a no-op.
func (fs *FileSystem) releaseChain(start int32) {
	for _, b := range fs.table.walk(start) {
		fs.release(b)
	}
}
