package index

import "github.com/uccidibuti/bitrush-index/bitmap"

// liveChunk holds the bitmap array backing the chunk currently being
// filled: one Bitmap per sub-index entry, K*N total.
type liveChunk struct {
	bitmaps []bitmap.Bitmap
	newBitmap bitmap.Factory
}

func newLiveChunk(count int, newBitmap bitmap.Factory) *liveChunk {
	bitmaps := make([]bitmap.Bitmap, count)
	for i := range bitmaps {
		bitmaps[i] = newBitmap()
	}
	return &liveChunk{bitmaps: bitmaps, newBitmap: newBitmap}
}

// append sets local (the chunk-local position) in each of the bitmaps
// named by indices.
func (c *liveChunk) append(local uint32, indices []uint32) {
	for _, idx := range indices {
		c.bitmaps[idx].Set(local)
	}
}

// reset replaces every bitmap with a fresh empty one, for reuse after the
// chunk has been parked (memory mode) or flushed (storage mode).
func (c *liveChunk) reset() {
	for i := range c.bitmaps {
		c.bitmaps[i] = c.newBitmap()
	}
}

// snapshot returns the current bitmap slice and swaps in a freshly
// allocated one, avoiding a second pass of newBitmap() calls when the
// caller (memory mode) wants to park the filled array as-is.
func (c *liveChunk) snapshot() []bitmap.Bitmap {
	parked := c.bitmaps
	c.bitmaps = make([]bitmap.Bitmap, len(parked))
	for i := range c.bitmaps {
		c.bitmaps[i] = c.newBitmap()
	}
	return parked
}
