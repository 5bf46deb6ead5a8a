package minifat

import (
	"encoding/binary"
	"fmt"
)

const (
	// checkNumber marks a formatted store as valid.
	checkNumber = 9999

	// DefaultBlockSize is used when formatting without an explicit size.
	DefaultBlockSize = 256
	// DefaultFATType is used when formatting without an explicit type.
	DefaultFATType = 8

	superblockSize = 24
)

// superblock is the block-0 record that governs the whole store. It is kept
// parsed in memory; every mutation writes it straight back through
// FileSystem.writeSuperblock because the backing store is a live mapping.
type superblock struct {
	checkNumber int32
	blockSize   int32
	fatType     int32
	rootBlock   int32
	freeBlock   int32
	nFreeBlocks int32
}

// fatEntries returns the number of FAT slots for a given type: 2^fatType.
func fatEntries(fatType int) int {
	return 1 << uint(fatType)
}

// storeSize returns the exact byte length of a store with the given
// parameters: superblock block, FAT, data area.
func storeSize(blockSize, fatType int) int64 {
	entries := int64(fatEntries(fatType))
	return int64(blockSize) + 4*entries + entries*int64(blockSize)
}

func validBlockSize(blockSize int) bool {
	switch blockSize {
	case 128, 256, 512, 1024:
		return true
	}
	return false
}

func validFATType(fatType int) bool {
	return fatType >= 7 && fatType <= 10
}

func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) < superblockSize {
		return nil, fmt.Errorf("cannot parse superblock from %d bytes, need at least %d", len(b), superblockSize)
	}
	sb := superblock{
		checkNumber: int32(binary.LittleEndian.Uint32(b[0:4])),
		blockSize:   int32(binary.LittleEndian.Uint32(b[4:8])),
		fatType:     int32(binary.LittleEndian.Uint32(b[8:12])),
		rootBlock:   int32(binary.LittleEndian.Uint32(b[12:16])),
		freeBlock:   int32(binary.LittleEndian.Uint32(b[16:20])),
		nFreeBlocks: int32(binary.LittleEndian.Uint32(b[20:24])),
	}
	return &sb, nil
}

func (sb *superblock) toBytes() []byte {
	b := make([]byte, superblockSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(sb.checkNumber))
	binary.LittleEndian.PutUint32(b[4:8], uint32(sb.blockSize))
	binary.LittleEndian.PutUint32(b[8:12], uint32(sb.fatType))
	binary.LittleEndian.PutUint32(b[12:16], uint32(sb.rootBlock))
	binary.LittleEndian.PutUint32(b[16:20], uint32(sb.freeBlock))
	binary.LittleEndian.PutUint32(b[20:24], uint32(sb.nFreeBlocks))
	return b
}

func (sb *superblock) equal(a *superblock) bool {
	if sb == nil || a == nil {
		return sb == a
	}
	return *sb == *a
}
