package index

import "github.com/uccidibuti/bitrush-index/value"

// blockInfo is the decomposition of a value's bit width into K
// sub-columns of N = 2^b bitmaps each.
type blockInfo struct {
	bitBlockSize uint
	mask         uint32
	numBlocks    uint
	bitmapsPerBlock uint32
}

// newBlockInfo validates bitBlockSize against bits and derives K, N and
// the block mask. Rejected at construction: width must divide evenly,
// and the block size must stay within [2,16].
func newBlockInfo(bits, bitBlockSize uint) (blockInfo, error) {
	if bitBlockSize < 2 || bitBlockSize > 16 {
		return blockInfo{}, parametersError("bit block size %d out of range [2,16]", bitBlockSize)
	}
	if bits%bitBlockSize != 0 {
		return blockInfo{}, parametersError("value width %d bits not divisible by block size %d", bits, bitBlockSize)
	}
	numBitmaps := uint32(1) << bitBlockSize
	return blockInfo{
		bitBlockSize:    bitBlockSize,
		mask:            numBitmaps - 1,
		numBlocks:       bits / bitBlockSize,
		bitmapsPerBlock: numBitmaps,
	}, nil
}

// totalBitmaps is the number of bitmaps a chunk must hold: K*N.
func (bi blockInfo) totalBitmaps() int {
	return int(bi.numBlocks) * int(bi.bitmapsPerBlock)
}

// indices fills out (which must have length bi.numBlocks) with the K
// bitmap indices a value selects:
// idx(v,k) = k*N + ((v >> k*b) & (N-1)).
func (bi blockInfo) indices(v value.Value, out []uint32) {
	var block uint32
	for k := uint(0); k < bi.numBlocks; k++ {
		shift := k * bi.bitBlockSize
		out[k] = block + v.Extract(shift, bi.mask)
		block += bi.bitmapsPerBlock
	}
}

// queryIndices is indices, allocating its own slice — used on the read
// path where the caller doesn't already hold a reusable scratch buffer.
func (bi blockInfo) queryIndices(v value.Value) []uint32 {
	out := make([]uint32, bi.numBlocks)
	bi.indices(v, out)
	return out
}
