package minifat

// directory addresses a directory by its first block. Its occupied entries
// form one packed array of EntrySize slots spread across the blocks of a
// FAT chain; the count lives in the size field of entry 0 (".").
type directory struct {
	fs    *FileSystem
	first int32
}

// entriesPerBlock is how many slots fit one block.
func (fs *FileSystem) entriesPerBlock() int32 {
	return fs.superblock.blockSize / EntrySize
}

func (d *directory) size() int32 {
	e := d.entryAt(0)
	return e.Size
}

func (d *directory) setSize(n int32) {
	header := d.entryAt(0)
	header.Size = n
	d.writeEntryAt(0, header)
}

// slot returns the mapped bytes of entry slot i, walking the chain to the
// block holding it.
func (d *directory) slot(i int32) []byte {
	dpb := d.fs.entriesPerBlock()
	block := d.first
	for n := i / dpb; n > 0; n-- {
		block = d.fs.table.next(block)
	}
	offset := (i % dpb) * EntrySize
	return d.fs.blockBytes(block)[offset : offset+EntrySize]
}

func (d *directory) entryAt(i int32) Entry {
	return entryFromBytes(d.slot(i))
}

func (d *directory) writeEntryAt(i int32, e Entry) {
	e.toBytes(d.slot(i))
}

// entries returns the occupied entries, in slot order.
func (d *directory) entries() []Entry {
	n := d.size()
	out := make([]Entry, 0, n)
	for i := int32(0); i < n; i++ {
		out = append(out, d.entryAt(i))
	}
	return out
}

// find scans the occupied slots for a byte-exact name match. "." and ".."
// match like any other entry.
func (d *directory) find(name string) (int32, Entry, bool) {
	n := d.size()
	for i := int32(0); i < n; i++ {
		e := d.entryAt(i)
		if e.Name == name {
			return i, e, true
		}
	}
	return 0, Entry{}, false
}

// needsGrowth reports whether the next append requires a fresh block.
func (d *directory) needsGrowth() bool {
	return d.size()%d.fs.entriesPerBlock() == 0
}

// append writes e into the first free slot, extending the chain by one
// block when the current tail is full. On ErrFull nothing has changed.
func (d *directory) append(e Entry) error {
	n := d.size()
	if n%d.fs.entriesPerBlock() == 0 {
		block, err := d.fs.allocate()
		if err != nil {
			return err
		}
		d.fs.table.setEntry(d.fs.table.tail(d.first), block)
	}
	d.writeEntryAt(n, e)
	d.setSize(n + 1)
	return nil
}

// removeAt removes the entry at index i, keeping the occupied range
// contiguous by moving the last entry into the hole. When the removal
// empties the tail block, the block is unlinked and released.
func (d *directory) removeAt(i int32) error {
	if i < 2 {
		return ErrInvalidEntry
	}
	n := d.size()
	if i >= n {
		return ErrNotFound
	}
	last := n - 1
	if i != last {
		d.writeEntryAt(i, d.entryAt(last))
	}
	d.setSize(n - 1)

	if (n-1)%d.fs.entriesPerBlock() == 0 {
		chain := d.fs.table.walk(d.first)
		tail := chain[len(chain)-1]
		d.fs.table.setEntry(chain[len(chain)-2], terminator)
		d.fs.release(tail)
	}
	return nil
}

// initDirBlock initialises block as the first block of a fresh directory:
// "." points at the directory itself and carries the entry count, ".."
// points at the parent. The root is its own parent.
func (fs *FileSystem) initDirBlock(block, parent int32) {
	d := directory{fs: fs, first: block}
	dot := newEntry(TypeDir, ".", 2, block)
	dotdot := newEntry(TypeDir, "..", 0, parent)
	dot.toBytes(d.slot(0))
	dotdot.toBytes(d.slot(1))
}
