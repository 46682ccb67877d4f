// Package index implements a bit-sliced equality index over fixed-width
// integer values: one index.Index per value type, backed by one Bitmap
// per possible bit-slice, chunked so long-running builds stay bounded in
// memory and (in storage mode) on disk.
package index

import (
	"path/filepath"

	"github.com/uccidibuti/bitrush-index/bitmap"
	"github.com/uccidibuti/bitrush-index/internal/bmetrics"
	"github.com/uccidibuti/bitrush-index/value"
)

// Mode selects whether an Index keeps every chunk resident in memory or
// flushes completed chunks to disk, retaining only the live tail chunk in
// RAM.
type Mode int

const (
	Memory Mode = iota
	Storage
)

// Logger is the subset of structured-logging behavior an Index can use to
// report chunk flushes. Satisfied by internal/xlog.Logger; nil is a valid
// Index.log meaning "don't log". OpenStorage recovers a partially flushed
// tail chunk before any Logger can be attached, so that recovery is not
// logged.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Index is an equality index over values of type V. Construct one with
// NewMemory, CreateStorage or OpenStorage.
type Index[V value.Value] struct {
	mode   Mode
	opts   BuildOptions
	blocks blockInfo

	chunkLen  uint64
	numValues uint64

	newBitmap bitmap.Factory
	live      *liveChunk

	// Memory mode only: every completed chunk's bitmap array, in order.
	parked [][]bitmap.Bitmap

	// Storage mode only.
	store    *storage
	dataTail uint64
	dir      string

	log     Logger
	metrics *bmetrics.Registry

	scratch []uint32 // reused by Append to avoid an allocation per call
}

// SetLogger attaches a Logger that future chunk-flush events are reported
// through. Pass nil to silence logging again.
func (idx *Index[V]) SetLogger(l Logger) { idx.log = l }

// Metrics returns the Index's counters (appends, flushes, queries, query
// matches). No gauge is recorded.
func (idx *Index[V]) Metrics() *bmetrics.Registry { return idx.metrics }

// NumValues reports how many values have been appended so far.
func (idx *Index[V]) NumValues() uint64 { return idx.numValues }

// Mode reports whether this Index is in-memory or disk-backed.
func (idx *Index[V]) Mode() Mode { return idx.mode }

func newCommon[V value.Value](opts BuildOptions, newBitmap bitmap.Factory) (*Index[V], error) {
	if !opts.Chunk.Valid() {
		return nil, parametersError("invalid chunk size %d", uint64(opts.Chunk))
	}
	var zero V
	blocks, err := newBlockInfo(zero.Width(), opts.BitBlockSize)
	if err != nil {
		return nil, err
	}
	idx := &Index[V]{
		mode:      Memory,
		opts:      opts,
		blocks:    blocks,
		chunkLen:  uint64(opts.Chunk),
		newBitmap: newBitmap,
		metrics:   bmetrics.NewRegistry(),
		scratch:   make([]uint32, blocks.numBlocks),
	}
	idx.live = newLiveChunk(blocks.totalBitmaps(), newBitmap)
	return idx, nil
}

// NewMemory returns a new Index that keeps every chunk in memory for the
// lifetime of the process; it cannot be persisted.
func NewMemory[V value.Value](opts BuildOptions, newBitmap bitmap.Factory) (*Index[V], error) {
	idx, err := newCommon[V](opts, newBitmap)
	if err != nil {
		return nil, err
	}
	idx.mode = Memory
	idx.parked = make([][]bitmap.Bitmap, 0)
	return idx, nil
}

// CreateStorage returns a new disk-backed Index rooted at dir, which must
// not already exist. If anything fails after dir is created, dir is
// removed so a failed create never leaves a half-built index on disk
// up on disk.
func CreateStorage[V value.Value](dir string, opts BuildOptions, newBitmap bitmap.Factory) (idx *Index[V], err error) {
	idx, err = newCommon[V](opts, newBitmap)
	if err != nil {
		return nil, err
	}
	idx.mode = Storage
	idx.dir = dir

	store, err := createStorage(dir, opts)
	if err != nil {
		return nil, err
	}
	idx.store = store
	return idx, nil
}

// OpenStorage reopens a disk-backed Index previously built with
// CreateStorage, recovering any chunk that was flushed while still
// partially filled.
func OpenStorage[V value.Value](dir string, newBitmap bitmap.Factory) (*Index[V], error) {
	store, rec, err := openStorage(dir)
	if err != nil {
		return nil, err
	}
	opts := rec.options()
	if !opts.Chunk.Valid() {
		store.close()
		return nil, parametersError("corrupt meta data in %q: invalid chunk size", dir)
	}

	var zero V
	blocks, err := newBlockInfo(zero.Width(), opts.BitBlockSize)
	if err != nil {
		store.close()
		return nil, err
	}

	idx := &Index[V]{
		mode:      Storage,
		opts:      opts,
		blocks:    blocks,
		chunkLen:  uint64(opts.Chunk),
		newBitmap: newBitmap,
		numValues: rec.numValues,
		store:     store,
		dir:       dir,
		metrics:   bmetrics.NewRegistry(),
		scratch:   make([]uint32, blocks.numBlocks),
	}

	liveChunkID := idx.numValues / idx.chunkLen
	flushed, err := store.flushedChunkCount()
	if err != nil {
		store.close()
		return nil, err
	}

	idx.live = newLiveChunk(blocks.totalBitmaps(), newBitmap)
	if flushed == liveChunkID+1 {
		var start uint64
		if liveChunkID > 0 {
			if start, err = store.chunkEndOffset(liveChunkID - 1); err != nil {
				store.close()
				return nil, err
			}
		}
		end, err := store.chunkEndOffset(liveChunkID)
		if err != nil {
			store.close()
			return nil, err
		}
		if err := store.readWholeChunk(start, end, newBitmap, idx.live.bitmaps); err != nil {
			store.close()
			return nil, err
		}
		idx.dataTail = start
		if idx.log != nil {
			idx.log.Info("recovered partially flushed tail chunk", "dir", dir, "chunk", liveChunkID)
		}
	} else if liveChunkID > 0 {
		if idx.dataTail, err = store.chunkEndOffset(liveChunkID - 1); err != nil {
			store.close()
			return nil, err
		}
	}

	return idx, nil
}

// Name is the base name of the storage directory, used to derive sibling
// file names.
func (idx *Index[V]) Name() string { return filepath.Base(idx.dir) }

// Append inserts value into the index. In storage mode, if this append
// completes the live chunk, the chunk is flushed to disk automatically.
func (idx *Index[V]) Append(v V) error {
	local := uint32(idx.numValues % idx.chunkLen)
	idx.blocks.indices(v, idx.scratch)
	idx.live.append(local, idx.scratch)
	idx.numValues++
	idx.metrics.Counter("appends").Inc(1)

	if idx.numValues%idx.chunkLen != 0 {
		return nil
	}
	return idx.completeChunk()
}

// AppendMany appends each value in values in order.
func (idx *Index[V]) AppendMany(values []V) error {
	for _, v := range values {
		if err := idx.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// completeChunk is called right after numValues crosses a chunk
// boundary: it parks (memory mode) or flushes (storage mode) the just
// completed chunk and resets the live chunk for the next one.
func (idx *Index[V]) completeChunk() error {
	chunkID := idx.numValues/idx.chunkLen - 1
	if idx.mode == Memory {
		idx.parked = append(idx.parked, idx.live.snapshot())
		return nil
	}
	if err := idx.flushLive(chunkID); err != nil {
		return err
	}
	idx.live.reset()
	return nil
}

// Flush persists the live (possibly partially filled) chunk to disk. It
// is a no-op requiring no flush when the index is empty. Calling Flush on
// a Memory-mode index is a ParametersError: flush only makes sense
// when there's a disk copy to checkpoint.
func (idx *Index[V]) Flush() error {
	if idx.mode != Storage {
		return parametersError("flush is only valid on a storage-mode index")
	}
	if idx.numValues == 0 {
		return nil
	}
	chunkID := idx.numValues / idx.chunkLen
	return idx.flushLive(chunkID)
}

func (idx *Index[V]) flushLive(chunkID uint64) error {
	rec := metaRecord{
		numValues:    idx.numValues,
		bitBlockSize: uint64(idx.opts.BitBlockSize),
		chunkSize:    uint64(idx.opts.Chunk),
	}
	newTail, err := idx.store.flushChunk(chunkID, idx.dataTail, idx.live.bitmaps, rec)
	if err != nil {
		if idx.log != nil {
			kind := "unknown"
			if ie, ok := asIndexError(err); ok {
				kind = ie.Kind.String()
			}
			idx.log.Error("flush chunk failed", "dir", idx.dir, "chunk", chunkID, "kind", kind)
		}
		return err
	}
	// Only a completed chunk moves the data tail; a partial chunk stays at
	// its start so the next flush of the same chunk overwrites it.
	if chunkID < idx.numValues/idx.chunkLen {
		idx.dataTail = newTail
	}
	idx.metrics.Counter("flushes").Inc(1)
	if idx.log != nil {
		idx.log.Info("flushed chunk", "dir", idx.dir, "chunk", chunkID, "values", idx.numValues)
	}
	return nil
}

// Query returns, in ascending order, every value's append position equal
// to v, restricted to [start,end] inclusive when those are non-nil.
// A nil start defaults to 0; a nil end defaults to the
// last appended position. If end < start the result is always empty.
func (idx *Index[V]) Query(v V, start, end *uint64) ([]uint64, error) {
	idx.metrics.Counter("queries").Inc(1)
	if idx.numValues == 0 {
		return nil, nil
	}
	s := uint64(0)
	if start != nil {
		s = *start
	}
	e := idx.numValues - 1
	if end != nil {
		e = *end
	}
	if e < s {
		return nil, nil
	}

	queryIdx := idx.blocks.queryIndices(v)
	out := make([]uint64, 0)

	switch idx.mode {
	case Memory:
		for chunkID, bitmaps := range idx.parked {
			base := uint64(chunkID) * idx.chunkLen
			if !chunkOverlapsRange(base, idx.chunkLen, s, e) {
				continue
			}
			out = andAndFilter(bitmaps, queryIdx, base, s, e, out)
		}
	case Storage:
		flushed, err := idx.store.flushedChunkCount()
		if err != nil {
			return nil, err
		}
		// A partially filled chunk written by an explicit Flush is also
		// held in idx.live and is read from there below, not from disk.
		if complete := idx.numValues / idx.chunkLen; flushed > complete {
			flushed = complete
		}
		out, err = queryFlushedChunks(idx.store, idx.chunkLen, idx.newBitmap, flushed, queryIdx, s, e, out)
		if err != nil {
			return nil, err
		}
	}

	liveBase := (idx.numValues / idx.chunkLen) * idx.chunkLen
	liveLen := idx.numValues - liveBase
	if liveLen > 0 && chunkOverlapsRange(liveBase, liveLen, s, e) {
		out = andAndFilter(idx.live.bitmaps, queryIdx, liveBase, s, e, out)
	}
	idx.metrics.Counter("query_matches").Inc(int64(len(out)))
	return out, nil
}

// Close releases any resources a storage-mode Index holds open. Memory-
// mode indexes need no closing but it's safe to call regardless.
func (idx *Index[V]) Close() error {
	if idx.store == nil {
		return nil
	}
	return idx.store.close()
}
