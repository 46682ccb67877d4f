package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uccidibuti/bitrush-index/value"
)

func TestNewBlockInfoRejectsOutOfRangeBlockSize(t *testing.T) {
	_, err := newBlockInfo(16, 1)
	assert.Error(t, err)

	_, err = newBlockInfo(16, 17)
	assert.Error(t, err)
}

func TestNewBlockInfoRejectsNonDivisibleWidth(t *testing.T) {
	_, err := newBlockInfo(17, 8)
	assert.Error(t, err)
}

func TestBlockInfoTotalBitmaps(t *testing.T) {
	bi, err := newBlockInfo(16, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, int(bi.numBlocks))
	assert.Equal(t, 512, bi.totalBitmaps())
}

func TestBlockInfoIndices(t *testing.T) {
	bi, err := newBlockInfo(16, 8)
	require.NoError(t, err)

	idx := bi.queryIndices(value.Uint16(0x1234))
	// low byte 0x34 in block 0 [0,256), high byte 0x12 in block 1 [256,512).
	assert.Equal(t, []uint32{0x34, 256 + 0x12}, idx)
}

func TestBlockInfoIndicesSmallBlockSize(t *testing.T) {
	bi, err := newBlockInfo(8, 2)
	require.NoError(t, err)
	// 4 blocks of 4 bitmaps each.
	idx := bi.queryIndices(value.Uint8(0b11_10_01_00))
	assert.Equal(t, []uint32{0b00, 4 + 0b01, 8 + 0b10, 12 + 0b11}, idx)
}
