package minifat

import "io"

// File is a read handle on a stored file. The block chain is resolved once
// at open time; reads follow it block by block, honouring the byte size in
// the directory entry rather than the chain's block capacity.
type File struct {
	fs     *FileSystem
	entry  Entry
	blocks []int32
	offset int64
}

// Name returns the entry name the file was opened under.
func (f *File) Name() string {
	return f.entry.Name
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	return int64(f.entry.Size)
}

// Read reads up to len(p) bytes from the current offset. It returns io.EOF
// once the offset reaches the file size.
func (f *File) Read(p []byte) (int, error) {
	size := int64(f.entry.Size)
	remaining := size - f.offset
	if remaining <= 0 {
		return 0, io.EOF
	}

	toRead := int64(len(p))
	if toRead > remaining {
		toRead = remaining
	}

	blockSize := int64(f.fs.superblock.blockSize)
	total := int64(0)
	for total < toRead {
		index := (f.offset + total) / blockSize
		within := (f.offset + total) % blockSize
		chunk := blockSize - within
		if chunk > toRead-total {
			chunk = toRead - total
		}
		src := f.fs.blockBytes(f.blocks[index])
		copy(p[total:total+chunk], src[within:within+chunk])
		total += chunk
	}

	f.offset += total
	var err error
	if f.offset >= size {
		err = io.EOF
	}
	return int(total), err
}
