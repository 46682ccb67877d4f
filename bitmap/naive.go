package bitmap

import (
	"encoding/binary"
	"fmt"
)

// Naive is an uncompressed reference Bitmap backed by a plain slice of set
// positions. It exists to cross-check ozbc.Bitmap in tests: the same index
// logic run over both implementations must produce identical query
// results (spec's "bitmap capability is abstract" design point).
type Naive struct {
	positions []uint32
}

// NewNaive is a bitmap.Factory producing Naive bitmaps.
func NewNaive() Bitmap { return &Naive{} }

func (b *Naive) Set(i uint32) {
	n := len(b.positions)
	if n > 0 && i <= b.positions[n-1] {
		return
	}
	b.positions = append(b.positions, i)
}

func (b *Naive) Clone() Bitmap {
	out := &Naive{positions: make([]uint32, len(b.positions))}
	copy(out.positions, b.positions)
	return out
}

func (b *Naive) And(other Bitmap) Bitmap {
	o, ok := other.(*Naive)
	if !ok {
		panic("bitmap: Naive.And requires another *Naive")
	}
	out := &Naive{}
	i, j := 0, 0
	for i < len(b.positions) && j < len(o.positions) {
		switch {
		case b.positions[i] < o.positions[j]:
			i++
		case b.positions[i] > o.positions[j]:
			j++
		default:
			out.positions = append(out.positions, b.positions[i])
			i++
			j++
		}
	}
	return out
}

func (b *Naive) Positions() []uint32 {
	out := make([]uint32, len(b.positions))
	copy(out, b.positions)
	return out
}

func (b *Naive) SizeBytes() int { return 4 + 4*len(b.positions) }

func (b *Naive) Serialize(buf []byte) (int, error) {
	size := b.SizeBytes()
	if len(buf) < size {
		return 0, fmt.Errorf("bitmap: buffer too small: need %d, have %d", size, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(b.positions)))
	off := 4
	for _, p := range b.positions {
		binary.LittleEndian.PutUint32(buf[off:off+4], p)
		off += 4
	}
	return off, nil
}

func (b *Naive) Deserialize(buf []byte, verify bool) error {
	if len(buf) < 4 {
		return fmt.Errorf("bitmap: buffer too small for header")
	}
	n := binary.LittleEndian.Uint32(buf[0:4])
	want := 4 + 4*int(n)
	if verify && len(buf) < want {
		return fmt.Errorf("bitmap: truncated buffer: want %d bytes, have %d", want, len(buf))
	}
	positions := make([]uint32, n)
	off := 4
	for i := range positions {
		positions[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	b.positions = positions
	return nil
}
