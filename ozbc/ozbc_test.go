package ozbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uccidibuti/bitrush-index/bitmap"
)

func buildFrom(values []uint32) bitmap.Bitmap {
	b := New()
	for _, v := range values {
		b.Set(v)
	}
	return b
}

// Out-of-order Set calls below the current tail are silently ignored, so
// two sequences that agree once duplicates/decreases are dropped must
// produce an identical bitmap.
func TestSetIgnoresOutOfOrderBelowTail(t *testing.T) {
	values := []uint32{0, 1, 100, 100000, 99999, 2, 100001, 1000000}
	valuesOK := []uint32{0, 1, 100, 100000, 100001, 1000000}

	b0 := buildFrom(values)
	b1 := buildFrom(valuesOK)

	assert.Equal(t, b1.(*Bitmap).buffer, b0.(*Bitmap).buffer)
	assert.Equal(t, b1.(*Bitmap).numBytes, b0.(*Bitmap).numBytes)
}

func TestAndAndPositions(t *testing.T) {
	values0 := []uint32{0, 1, 100, 100000, 100009, 1000000, 1000100, 1060000}
	values1 := []uint32{1, 7, 9, 99999, 100000, 100001, 100101, 1060000, 1060001, 2060001}
	wantAnd := []uint32{1, 100000, 1060000}

	b0 := buildFrom(values0)
	b1 := buildFrom(values1)

	and := b0.And(b1)
	assert.Equal(t, wantAnd, and.Positions())
}

func TestAndIsCommutative(t *testing.T) {
	values0 := []uint32{5, 900, 900000}
	values1 := []uint32{5, 6, 900, 2_000_000}

	b0 := buildFrom(values0)
	b1 := buildFrom(values1)

	assert.Equal(t, b0.And(b1).Positions(), b1.And(b0).Positions())
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	values := []uint32{3, 4, 5, 300, 70000, 70001, 5_000_000}
	b0 := buildFrom(values)

	buf := make([]byte, b0.SizeBytes())
	n, err := b0.Serialize(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	b1 := New()
	require.NoError(t, b1.Deserialize(buf, true))
	assert.Equal(t, values, b1.Positions())
}

func TestDeserializeVerifyRejectsCorruptLength(t *testing.T) {
	b0 := buildFrom([]uint32{1, 2, 3})
	buf := make([]byte, b0.SizeBytes())
	_, err := b0.Serialize(buf)
	require.NoError(t, err)

	buf[0]++ // corrupt the numBytes header
	b1 := New()
	err = b1.Deserialize(buf, true)
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	b0 := buildFrom([]uint32{1, 2, 3})
	b1 := b0.Clone()
	b0.Set(1000)

	assert.NotEqual(t, b0.Positions(), b1.Positions())
}

func TestEmptyBitmapPositions(t *testing.T) {
	b := New()
	assert.Empty(t, b.Positions())
}

func TestSerializeBufferTooSmall(t *testing.T) {
	b := buildFrom([]uint32{1, 2, 3})
	_, err := b.Serialize(make([]byte, 1))
	assert.Error(t, err)
}

// TestZeroRunChainsAcrossWords drives a zero run longer than a single
// type-1 word can carry (maxZeroBytesPerRunWord), forcing
// pushZeroRunThenLiteral to emit more than one type-1 word before the
// trailing literal. Both the word-chaining encoding and the eventual
// Positions()/serialize round trip must still recover the original bits.
func TestZeroRunChainsAcrossWords(t *testing.T) {
	gap := maxZeroBytesPerRunWord + 1000
	second := (gap + 1) * 8

	b := New()
	b.Set(0)
	b.Set(second)

	buf := b.(*Bitmap).buffer
	var typeOneWords int
	for _, w := range buf {
		if w&typeBit != 0 {
			typeOneWords++
		}
	}
	assert.GreaterOrEqual(t, typeOneWords, 2, "a gap past maxZeroBytesPerRunWord must chain more than one type-1 word")

	assert.Equal(t, []uint32{0, second}, b.Positions())

	raw := make([]byte, b.(*Bitmap).SizeBytes())
	n, err := b.Serialize(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)

	b2 := New()
	require.NoError(t, b2.Deserialize(raw, true))
	assert.Equal(t, []uint32{0, second}, b2.Positions())
}
