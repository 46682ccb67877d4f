package index

import "github.com/uccidibuti/bitrush-index/bitmap"

// andAll intersects bitmaps[0..] in order and returns the resulting
// bitmap, or nil if bitmaps is empty. Each bitmap named by a
// value's K sub-indices must be ANDed together before positions are read
// out.
func andAll(bitmaps []bitmap.Bitmap) bitmap.Bitmap {
	if len(bitmaps) == 0 {
		return nil
	}
	acc := bitmaps[0]
	for _, b := range bitmaps[1:] {
		acc = acc.And(b)
	}
	return acc
}

// filterRange appends to out every position in positions that falls
// within [start,end] inclusive, translated to global coordinates by
// adding base (the chunk's first global position). Positions is assumed
// sorted ascending, as every Bitmap implementation guarantees.
func filterRange(out []uint64, positions []uint32, base, start, end uint64) []uint64 {
	for _, p := range positions {
		global := base + uint64(p)
		if global < start {
			continue
		}
		if global > end {
			break
		}
		out = append(out, global)
	}
	return out
}

// chunkOverlapsRange reports whether the chunk spanning global positions
// [chunkBase, chunkBase+chunkLen) can contain any position in [start,end].
// Chunks that don't overlap are skipped entirely so a narrow range query
// over a long index doesn't pay to AND every chunk's bitmaps.
func chunkOverlapsRange(chunkBase, chunkLen, start, end uint64) bool {
	if chunkBase+chunkLen <= start {
		return false
	}
	if chunkBase > end {
		return false
	}
	return true
}

// andAndFilter ANDs the bitmaps selected by queryIdx out of source (or
// uses source directly when queryIdx is nil, for the already-narrowed
// storage fetch), and appends the matching global positions in [s,e] to
// out.
func andAndFilter(source []bitmap.Bitmap, queryIdx []uint32, base, s, e uint64, out []uint64) []uint64 {
	var selected []bitmap.Bitmap
	if queryIdx == nil {
		selected = source
	} else {
		selected = make([]bitmap.Bitmap, len(queryIdx))
		for i, bi := range queryIdx {
			selected[i] = source[bi]
		}
	}
	result := andAll(selected)
	if result == nil {
		return out
	}
	return filterRange(out, result.Positions(), base, s, e)
}

// queryFlushedChunks walks flushed chunks [0,flushed) of store in
// maxBatchedOffsets-sized batches, reading each batch's end-offset table
// once, and appends every matching global position in [s,e] to out. It
// operates on the bare storage handle so it backs both an Index's own
// storage-mode query path and the standalone read-only query surface in
// handle.go.
func queryFlushedChunks(store *storage, chunkLen uint64, newBitmap bitmap.Factory, flushed uint64, queryIdx []uint32, s, e uint64, out []uint64) ([]uint64, error) {
	var c uint64
	for c < flushed {
		batchLen := flushed - c
		if batchLen > maxBatchedOffsets {
			batchLen = maxBatchedOffsets
		}
		var prevEnd uint64
		if c > 0 {
			var err error
			if prevEnd, err = store.chunkEndOffset(c - 1); err != nil {
				return nil, err
			}
		}
		ends, err := store.readChunkEndOffsets(c, batchLen)
		if err != nil {
			return nil, err
		}
		for i, end := range ends {
			chunkID := c + uint64(i)
			base := chunkID * chunkLen
			start := prevEnd
			if !chunkOverlapsRange(base, chunkLen, s, e) {
				prevEnd = end
				continue
			}
			bitmaps, err := store.readSparseBitmaps(start, queryIdx, newBitmap)
			if err != nil {
				return nil, err
			}
			out = andAndFilter(bitmaps, nil, base, s, e, out)
			prevEnd = end
		}
		c += uint64(len(ends))
	}
	return out, nil
}
