package index

import (
	"github.com/uccidibuti/bitrush-index/bitmap"
	"github.com/uccidibuti/bitrush-index/value"
)

// StorageHandle is a read-only handle onto a storage-mode index's three
// on-disk files, for callers that only need to run equality queries
// against the chunks already flushed to a directory built with
// CreateStorage, without constructing a full read/write Index[V] (and
// without requiring the caller to know the value type until query time).
// An external, read-only consumer opens a handle once and queries it with
// whatever value type the stored index was built for.
type StorageHandle struct {
	store *storage
}

// OpenStorageHandle opens dir, previously built with CreateStorage, for
// read-only querying via QueryFlushedOnly. It does not require knowing
// the Index's value type V; that is supplied per-call to
// QueryFlushedOnly instead.
func OpenStorageHandle(dir string) (*StorageHandle, error) {
	store, _, err := openStorage(dir)
	if err != nil {
		return nil, err
	}
	return &StorageHandle{store: store}, nil
}

// Close releases the handle's open files.
func (h *StorageHandle) Close() error { return h.store.close() }

// QueryFlushedOnly returns, in ascending order, every append position
// equal to v among the chunks already flushed in h, restricted to
// [start,end] inclusive when those are non-nil. It never touches an
// in-progress live chunk a concurrent writer might be filling: only
// chunks durable on disk at the moment of the call are considered. A nil
// start defaults to 0; a nil end defaults to the last position recorded
// at h's most recent flush (its value count minus one). If end < start the result is always empty.
//
// newBitmap must match the Factory the index was built with (the bitmap
// codec is not recorded in the on-disk format).
func QueryFlushedOnly[V value.Value](h *StorageHandle, v V, start, end *uint64, newBitmap bitmap.Factory) ([]uint64, error) {
	cur, _, err := h.store.readMeta()
	if err != nil {
		return nil, err
	}
	opts := cur.options()
	if !opts.Chunk.Valid() {
		return nil, parametersError("corrupt meta data: invalid chunk size %d", uint64(opts.Chunk))
	}
	if cur.numValues == 0 {
		return nil, nil
	}

	var zero V
	blocks, err := newBlockInfo(zero.Width(), opts.BitBlockSize)
	if err != nil {
		return nil, err
	}

	s := uint64(0)
	if start != nil {
		s = *start
	}
	e := cur.numValues - 1
	if end != nil {
		e = *end
	}
	if e < s {
		return nil, nil
	}

	flushed, err := h.store.flushedChunkCount()
	if err != nil {
		return nil, err
	}
	queryIdx := blocks.queryIndices(v)
	return queryFlushedChunks(h.store, uint64(opts.Chunk), newBitmap, flushed, queryIdx, s, e, make([]uint64, 0))
}
