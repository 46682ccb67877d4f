package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaiveSetIgnoresOutOfOrder(t *testing.T) {
	b := NewNaive()
	for _, v := range []uint32{0, 1, 100, 100000, 99999, 2, 100001, 1000000} {
		b.Set(v)
	}
	assert.Equal(t, []uint32{0, 1, 100, 100000, 100001, 1000000}, b.Positions())
}

func TestNaiveAndIntersects(t *testing.T) {
	b0 := NewNaive()
	for _, v := range []uint32{1, 2, 3, 10} {
		b0.Set(v)
	}
	b1 := NewNaive()
	for _, v := range []uint32{2, 3, 4, 10} {
		b1.Set(v)
	}
	assert.Equal(t, []uint32{2, 3, 10}, b0.And(b1).Positions())
}

func TestNaiveSerializeDeserialize(t *testing.T) {
	b0 := NewNaive()
	for _, v := range []uint32{5, 9, 90000} {
		b0.Set(v)
	}
	buf := make([]byte, b0.SizeBytes())
	n, err := b0.Serialize(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	b1 := NewNaive()
	require.NoError(t, b1.Deserialize(buf, true))
	assert.Equal(t, b0.Positions(), b1.Positions())
}

func TestNaiveCloneIsIndependent(t *testing.T) {
	b0 := NewNaive()
	b0.Set(1)
	b1 := b0.Clone()
	b0.Set(2)
	assert.NotEqual(t, b0.Positions(), b1.Positions())
}
