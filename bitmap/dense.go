package bitmap

import (
	"encoding/binary"
	"fmt"

	"github.com/uccidibuti/bitrush-index/common/bitutil"
)

// Dense is a plain growing bit array: bit i lives in byte i/8, bit i%8,
// LSB first. Unlike the OZBC codec it never compresses runs of zeros, so
// And is a straight byte-wise AND (via common/bitutil.ANDBytes) over the
// shorter of the two operands' backing buffers — any bit beyond the
// shorter buffer is implicitly zero, which is exactly the truncation
// ANDBytes already performs.
type Dense struct {
	buf []byte
}

// NewDense is a bitmap.Factory constructing an empty Dense bitmap.
func NewDense() Bitmap { return &Dense{} }

var _ Bitmap = (*Dense)(nil)

func (d *Dense) Set(i uint32) {
	byteIdx := i / 8
	if uint32(len(d.buf)) <= byteIdx {
		grown := make([]byte, byteIdx+1)
		copy(grown, d.buf)
		d.buf = grown
	}
	d.buf[byteIdx] |= 1 << (i % 8)
}

func (d *Dense) Clone() Bitmap {
	buf := make([]byte, len(d.buf))
	copy(buf, d.buf)
	return &Dense{buf: buf}
}

func (d *Dense) And(other Bitmap) Bitmap {
	o, ok := other.(*Dense)
	if !ok {
		panic(fmt.Sprintf("bitmap.Dense.And: incompatible bitmap type %T", other))
	}
	n := len(d.buf)
	if len(o.buf) < n {
		n = len(o.buf)
	}
	out := &Dense{buf: make([]byte, n)}
	bitutil.ANDBytes(out.buf, d.buf[:n], o.buf[:n])
	return out
}

func (d *Dense) Positions() []uint32 {
	var out []uint32
	for byteIdx, b := range d.buf {
		if b == 0 {
			continue
		}
		for bit := uint32(0); bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				out = append(out, uint32(byteIdx)*8+bit)
			}
		}
	}
	return out
}

func (d *Dense) SizeBytes() int { return 4 + len(d.buf) }

func (d *Dense) Serialize(buf []byte) (int, error) {
	need := d.SizeBytes()
	if len(buf) < need {
		return 0, fmt.Errorf("bitmap: serialize buffer too small: need %d, have %d", need, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(d.buf)))
	copy(buf[4:need], d.buf)
	return need, nil
}

func (d *Dense) Deserialize(buf []byte, verify bool) error {
	if len(buf) < 4 {
		return fmt.Errorf("bitmap: deserialize buffer too small: need at least 4, have %d", len(buf))
	}
	n := binary.LittleEndian.Uint32(buf[0:4])
	if verify && uint32(len(buf)) != 4+n {
		return fmt.Errorf("bitmap: deserialize length mismatch: header says %d bytes, buffer holds %d", n, len(buf)-4)
	}
	d.buf = make([]byte, n)
	copy(d.buf, buf[4:4+n])
	return nil
}
