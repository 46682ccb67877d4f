package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uccidibuti/bitrush-index/bitmap"
	"github.com/uccidibuti/bitrush-index/ozbc"
	"github.com/uccidibuti/bitrush-index/value"
)

func ptr(v uint64) *uint64 { return &v }

func newTestOptions() BuildOptions {
	return BuildOptions{BitBlockSize: 4, Chunk: Chunk1M}
}

func TestMemoryAppendAndQuery(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)

	values := []value.Uint8{5, 1, 5, 9, 5, 2}
	require.NoError(t, idx.AppendMany(values))

	got, err := idx.Query(value.Uint8(5), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 4}, got)
}

func TestMemoryQueryRange(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)
	require.NoError(t, idx.AppendMany([]value.Uint8{1, 1, 1, 1, 1}))

	got, err := idx.Query(value.Uint8(1), ptr(1), ptr(3))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestQueryEndBeforeStartIsEmpty(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)
	require.NoError(t, idx.AppendMany([]value.Uint8{1, 1, 1}))

	got, err := idx.Query(value.Uint8(1), ptr(2), ptr(0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryOnEmptyIndex(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)

	got, err := idx.Query(value.Uint8(1), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestMemoryAcrossChunkBoundary appends a bit more than one full chunk's
// worth of values so the live chunk parks at least once, then verifies a
// query spanning the parked chunk and the new live chunk returns every
// matching position in order.
func TestMemoryAcrossChunkBoundary(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)

	n := int(Chunk1M) + 5
	var want []uint64
	for i := 0; i < n; i++ {
		v := value.Uint8(i % 3)
		require.NoError(t, idx.Append(v))
		if v == 1 {
			want = append(want, uint64(i))
		}
	}

	got, err := idx.Query(value.Uint8(1), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoragePersistsAcrossReopenWithPartialTailChunk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	idx, err := CreateStorage[value.Uint8](dir, newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)

	n := int(Chunk1M) + 3
	var want []uint64
	for i := 0; i < n; i++ {
		v := value.Uint8(i % 5)
		require.NoError(t, idx.Append(v))
		if v == 2 {
			want = append(want, uint64(i))
		}
	}
	require.NoError(t, idx.Flush())
	require.NoError(t, idx.Close())

	reopened, err := OpenStorage[value.Uint8](dir, bitmap.NewNaive)
	require.NoError(t, err)
	defer reopened.Close()

	assert.EqualValues(t, n, reopened.NumValues())

	got, err := reopened.Query(value.Uint8(2), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStorageCreateRejectsExistingDir(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateStorage[value.Uint8](dir, newTestOptions(), bitmap.NewNaive)
	assert.Error(t, err)
}

func TestFlushOnMemoryIndexIsParametersError(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), bitmap.NewNaive)
	require.NoError(t, err)
	err = idx.Flush()
	assert.ErrorIs(t, err, ErrParameters)
}

// TestMemoryAppendAndQueryOZBC mirrors TestMemoryAppendAndQuery but wires
// the production ozbc codec in as the index's Bitmap implementation
// instead of the Naive reference, so the codec is exercised through a
// real append/query cycle and not just its own unit tests.
func TestMemoryAppendAndQueryOZBC(t *testing.T) {
	idx, err := NewMemory[value.Uint8](newTestOptions(), ozbc.New)
	require.NoError(t, err)

	values := []value.Uint8{5, 1, 5, 9, 5, 2}
	require.NoError(t, idx.AppendMany(values))

	got, err := idx.Query(value.Uint8(5), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 4}, got)

	got, err = idx.Query(value.Uint8(9), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, got)
}

// TestStorageRoundTripOZBC drives ozbc.New through the full storage-mode
// lifecycle: append across a chunk boundary, flush the partial tail,
// close, reopen, and query both the flushed chunk and the recovered
// tail, confirming the codec's Serialize/Deserialize round trip survives
// a real chunk flush and not just its own buffer-level tests.
func TestStorageRoundTripOZBC(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	idx, err := CreateStorage[value.Uint8](dir, newTestOptions(), ozbc.New)
	require.NoError(t, err)

	n := int(Chunk1M) + 3
	var want []uint64
	for i := 0; i < n; i++ {
		v := value.Uint8(i % 5)
		require.NoError(t, idx.Append(v))
		if v == 2 {
			want = append(want, uint64(i))
		}
	}
	require.NoError(t, idx.Flush())
	require.NoError(t, idx.Close())

	reopened, err := OpenStorage[value.Uint8](dir, ozbc.New)
	require.NoError(t, err)
	defer reopened.Close()

	assert.EqualValues(t, n, reopened.NumValues())

	got, err := reopened.Query(value.Uint8(2), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
