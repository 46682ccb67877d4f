package index

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"

	"github.com/uccidibuti/bitrush-index/bitmap"
)

// metaRecordSize is the fixed on-disk size of one MetaData record: three
// little-endian u64 fields (num_values, bit_block_size, chunk_size). The
// .mbidx file holds two such records back to back: the current record and
// the checkpoint written at the last successful flush.
const metaRecordSize = 24

// metaRecord is serialized field-by-field rather than by reinterpreting
// a Go struct's memory layout: Go gives no layout guarantee to lean on.
type metaRecord struct {
	numValues    uint64
	bitBlockSize uint64
	chunkSize    uint64
}

func (m metaRecord) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], m.numValues)
	binary.LittleEndian.PutUint64(buf[8:16], m.bitBlockSize)
	binary.LittleEndian.PutUint64(buf[16:24], m.chunkSize)
}

func decodeMetaRecord(buf []byte) metaRecord {
	return metaRecord{
		numValues:    binary.LittleEndian.Uint64(buf[0:8]),
		bitBlockSize: binary.LittleEndian.Uint64(buf[8:16]),
		chunkSize:    binary.LittleEndian.Uint64(buf[16:24]),
	}
}

func (m metaRecord) options() BuildOptions {
	return BuildOptions{BitBlockSize: uint(m.bitBlockSize), Chunk: ChunkSize(m.chunkSize)}
}

// storage owns the three files backing a storage-mode Index: meta,
// chunk-offset table and concatenated chunk data. Only the data file is
// ever memory-mapped, and only for the sparse per-chunk bitmap fetch on
// the query path.
type storage struct {
	metaFile   *os.File
	offsetFile *os.File
	dataFile   *os.File

	dataMap     mmap.MMap
	dataMapSize int64
}

// filePaths derives the three sibling paths from dir, sharing dir's base
// name (e.g. dir "foo/bar" -> "foo/bar/bar.mbidx").
func filePaths(dir string) (meta, offset, data string) {
	name := filepath.Base(dir)
	return filepath.Join(dir, name+".mbidx"),
		filepath.Join(dir, name+".obidx"),
		filepath.Join(dir, name+".dbidx")
}

// createStorage creates dir (which must not already exist) and its three
// files, and writes an initial meta record with a zero value count and
// opts' block and chunk sizes (current == checkpoint).
// On any failure after the directory is created, the directory is removed
// so create() never leaves a half-built index behind.
func createStorage(dir string, opts BuildOptions) (s *storage, err error) {
	if _, statErr := os.Stat(dir); statErr == nil {
		return nil, parametersError("path %q already exists", dir)
	}
	if mkErr := os.Mkdir(dir, 0o755); mkErr != nil {
		return nil, fileError("create_dir", mkErr)
	}
	defer func() {
		if err != nil {
			s.close()
			os.RemoveAll(dir)
		}
	}()

	metaPath, offsetPath, dataPath := filePaths(dir)
	s = &storage{}
	if s.metaFile, err = openRW(metaPath); err != nil {
		return s, err
	}
	if s.offsetFile, err = openRW(offsetPath); err != nil {
		return s, err
	}
	if s.dataFile, err = openRW(dataPath); err != nil {
		return s, err
	}

	rec := metaRecord{numValues: 0, bitBlockSize: uint64(opts.BitBlockSize), chunkSize: uint64(opts.Chunk)}
	if err = s.writeMeta(rec, rec); err != nil {
		return s, err
	}
	return s, nil
}

// openStorage opens a previously created storage-mode index directory and
// returns its current meta record.
func openStorage(dir string) (s *storage, cur metaRecord, err error) {
	metaPath, offsetPath, dataPath := filePaths(dir)
	s = &storage{}
	if s.metaFile, err = openRW(metaPath); err != nil {
		return nil, metaRecord{}, err
	}
	if s.offsetFile, err = openRW(offsetPath); err != nil {
		return nil, metaRecord{}, err
	}
	if s.dataFile, err = openRW(dataPath); err != nil {
		return nil, metaRecord{}, err
	}

	cur, _, err = s.readMeta()
	if err != nil {
		return nil, metaRecord{}, err
	}
	return s, cur, nil
}

func openRW(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fileError("open "+path, err)
	}
	return f, nil
}

func (s *storage) readMeta() (cur, checkpoint metaRecord, err error) {
	buf := make([]byte, 2*metaRecordSize)
	if _, err = s.metaFile.ReadAt(buf, 0); err != nil {
		return metaRecord{}, metaRecord{}, fileError("read meta", err)
	}
	return decodeMetaRecord(buf[:metaRecordSize]), decodeMetaRecord(buf[metaRecordSize:]), nil
}

// writeMeta rewrites both the current and checkpoint records: both
// copies are rewritten on every successful flush; createStorage also
// uses this to write the initial zero-value-count state with current ==
// checkpoint.
func (s *storage) writeMeta(cur, checkpoint metaRecord) error {
	buf := make([]byte, 2*metaRecordSize)
	cur.encode(buf[:metaRecordSize])
	checkpoint.encode(buf[metaRecordSize:])
	if _, err := s.metaFile.WriteAt(buf, 0); err != nil {
		return fileError("write meta", err)
	}
	return nil
}

// chunkEndOffset reads offset table entry c: the first byte in the data
// file after chunk c.
func (s *storage) chunkEndOffset(c uint64) (uint64, error) {
	var buf [8]byte
	if _, err := s.offsetFile.ReadAt(buf[:], int64(c)*8); err != nil {
		return 0, fileError("read chunk offset", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// maxBatchedOffsets bounds how many consecutive offset-table entries
// readChunkEndOffsets will pull in one read.
const maxBatchedOffsets = 8192

// readChunkEndOffsets reads up to maxBatchedOffsets consecutive end-offset
// entries starting at chunk id `from`, amortizing the per-chunk seek+read
// of a long query over many flushed chunks.
func (s *storage) readChunkEndOffsets(from, count uint64) ([]uint64, error) {
	if count > maxBatchedOffsets {
		count = maxBatchedOffsets
	}
	buf := make([]byte, 8*count)
	if _, err := s.offsetFile.ReadAt(buf, int64(from)*8); err != nil {
		return nil, fileError("read chunk offsets", err)
	}
	out := make([]uint64, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return out, nil
}

// flushedChunkCount reports how many chunks have been fully flushed, by
// the size of the offset file.
func (s *storage) flushedChunkCount() (uint64, error) {
	fi, err := s.offsetFile.Stat()
	if err != nil {
		return 0, fileError("stat offset file", err)
	}
	return uint64(fi.Size()) / 8, nil
}

// flushChunk serializes bitmaps (one chunk's worth, full or partial) to the data
// file starting at dataTail, appends the new tail offset to the offset
// file at chunk id c, and rewrites the meta file with rec as both the
// current and checkpoint record. It returns the new data tail.
func (s *storage) flushChunk(c uint64, dataTail uint64, bitmaps []bitmap.Bitmap, rec metaRecord) (uint64, error) {
	n := len(bitmaps)
	offsets := make([]uint32, n+1)
	headerSize := uint32(4 * (n + 1))
	offsets[0] = headerSize

	for i, bm := range bitmaps {
		offsets[i+1] = offsets[i] + uint32(bm.SizeBytes())
	}
	total := offsets[n]

	chunkBuf := make([]byte, total)
	for i := 0; i < n+1; i++ {
		binary.LittleEndian.PutUint32(chunkBuf[i*4:i*4+4], offsets[i])
	}
	for i, bm := range bitmaps {
		if _, err := bm.Serialize(chunkBuf[offsets[i]:offsets[i+1]]); err != nil {
			return 0, bitmapError("serialize chunk bitmap", err)
		}
	}

	if _, err := s.dataFile.WriteAt(chunkBuf, int64(dataTail)); err != nil {
		return 0, fileError("write chunk data", err)
	}
	newTail := dataTail + uint64(total)

	var offBuf [8]byte
	binary.LittleEndian.PutUint64(offBuf[:], newTail)
	if _, err := s.offsetFile.WriteAt(offBuf[:], int64(c)*8); err != nil {
		return 0, fileError("write chunk offset", err)
	}

	if err := s.writeMeta(rec, rec); err != nil {
		return 0, err
	}
	s.invalidateMap()
	return newTail, nil
}

// readWholeChunk reads the full serialized chunk spanning [start,end) of
// the data file and deserializes all of its bitmaps in order, for
// open()'s tail-chunk recovery.
func (s *storage) readWholeChunk(start, end uint64, newBitmap bitmap.Factory, out []bitmap.Bitmap) error {
	buf := make([]byte, end-start)
	if _, err := s.dataFile.ReadAt(buf, int64(start)); err != nil {
		return fileError("read chunk", err)
	}
	n := len(out)
	offsetsBuf := buf[:4*(n+1)]
	body := buf[4*(n+1):]
	offsets := make([]uint32, n+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(offsetsBuf[i*4 : i*4+4])
	}
	headerSize := offsets[0]
	for i := 0; i < n; i++ {
		lo, hi := offsets[i]-headerSize, offsets[i+1]-headerSize
		bm := newBitmap()
		if err := bm.Deserialize(body[lo:hi], true); err != nil {
			return bitmapError("deserialize chunk bitmap", err)
		}
		out[i] = bm
	}
	return nil
}

// readSparseBitmaps fetches only the bitmaps named by indices out of the
// chunk starting at chunkOffset: seek each bitmap's own byte range
// instead of loading the whole K*N array. The data file is
// memory-mapped read-only so repeated small fetches across many chunks in
// a long query avoid a syscall each.
func (s *storage) readSparseBitmaps(chunkOffset uint64, indices []uint32, newBitmap bitmap.Factory) ([]bitmap.Bitmap, error) {
	if err := s.ensureMap(); err != nil {
		return nil, err
	}
	base := chunkOffset
	out := make([]bitmap.Bitmap, len(indices))
	for i, idx := range indices {
		entryOff := base + uint64(idx)*4
		if int(entryOff)+8 > len(s.dataMap) {
			return nil, fileError("read bitmap offset", fmt.Errorf("offset %d out of range (map size %d)", entryOff, len(s.dataMap)))
		}
		start := binary.LittleEndian.Uint32(s.dataMap[entryOff : entryOff+4])
		end := binary.LittleEndian.Uint32(s.dataMap[entryOff+4 : entryOff+8])
		lo, hi := base+uint64(start), base+uint64(end)
		bm := newBitmap()
		if err := bm.Deserialize(s.dataMap[lo:hi], true); err != nil {
			return nil, bitmapError("deserialize query bitmap", err)
		}
		out[i] = bm
	}
	return out, nil
}

// ensureMap (re)establishes the read-only mapping over the data file if it
// hasn't been created yet or the file has grown since (a flush happened).
func (s *storage) ensureMap() error {
	fi, err := s.dataFile.Stat()
	if err != nil {
		return fileError("stat data file", err)
	}
	if s.dataMap != nil && fi.Size() == s.dataMapSize {
		return nil
	}
	if s.dataMap != nil {
		s.dataMap.Unmap()
		s.dataMap = nil
	}
	if fi.Size() == 0 {
		s.dataMapSize = 0
		return nil
	}
	m, err := mmap.MapRegion(s.dataFile, int(fi.Size()), mmap.RDONLY, 0, 0)
	if err != nil {
		return fileError("mmap data file", err)
	}
	s.dataMap = m
	s.dataMapSize = fi.Size()
	return nil
}

func (s *storage) invalidateMap() {
	if s.dataMap != nil {
		s.dataMap.Unmap()
		s.dataMap = nil
		s.dataMapSize = 0
	}
}

// close releases every resource the storage holds. Safe to call multiple
// times.
func (s *storage) close() error {
	s.invalidateMap()
	var firstErr error
	for _, f := range []*os.File{s.metaFile, s.offsetFile, s.dataFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fileError("close", err)
		}
	}
	return firstErr
}
