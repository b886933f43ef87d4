package store

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Compression Pool (reusable buffers)
// ---------------------------------------------------------------------------

var (
	gzipWriterPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(nil)
		},
	}
	gzipReaderPool = sync.Pool{
		New: func() interface{} {
			return new(gzip.Reader)
		},
	}
	bufferPool = sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	}
)

// ---------------------------------------------------------------------------
// Report Archive
// ---------------------------------------------------------------------------

// defaultBatchSize is how many records accumulate before a batch is
// compressed.
const defaultBatchSize = 256

// Archive keeps records evicted from the live log as gzip-compressed
// batches, so a long flight survives on a memory-constrained device.
// Records accumulate in a pending buffer and compress in batches to
// amortize the gzip cost.
type Archive struct {
	mu         sync.Mutex
	pending    []Record
	batches    [][]byte
	batchSize  int
	maxBatches int

	totalRecords    int64
	totalRawBytes   int64
	totalCompressed int64
}

// ArchiveStats summarizes archive contents and compression effectiveness.
type ArchiveStats struct {
	Batches         int     `json:"batches"`
	PendingRecords  int     `json:"pending_records"`
	TotalRecords    int64   `json:"total_records"`
	RawBytes        int64   `json:"raw_bytes"`
	CompressedBytes int64   `json:"compressed_bytes"`
	SavingsPercent  float64 `json:"savings_percent"`
}

// NewArchive creates an archive holding at most maxBatches compressed
// batches. The oldest batch is dropped when the limit is reached. A
// non-positive limit means unbounded.
func NewArchive(maxBatches int) *Archive {
	return &Archive{
		batchSize:  defaultBatchSize,
		maxBatches: maxBatches,
	}
}

// Store adds evicted records to the archive, compressing a batch when
// enough have accumulated.
func (a *Archive) Store(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = append(a.pending, records...)
	a.totalRecords += int64(len(records))

	for len(a.pending) >= a.batchSize {
		batch := a.pending[:a.batchSize]
		if err := a.compressLocked(batch); err != nil {
			return err
		}
		a.pending = append(a.pending[:0], a.pending[a.batchSize:]...)
	}
	return nil
}

// Flush compresses whatever is pending regardless of batch size.
func (a *Archive) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pending) == 0 {
		return nil
	}
	if err := a.compressLocked(a.pending); err != nil {
		return err
	}
	a.pending = a.pending[:0]
	return nil
}

func (a *Archive) compressLocked(records []Record) error {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	gzw := gzipWriterPool.Get().(*gzip.Writer)
	gzw.Reset(buf)
	defer gzipWriterPool.Put(gzw)

	enc := gob.NewEncoder(gzw)
	if err := enc.Encode(records); err != nil {
		return err
	}
	if err := gzw.Close(); err != nil {
		return err
	}

	// Copy result (buffer will be reused)
	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())

	a.batches = append(a.batches, data)
	if a.maxBatches > 0 && len(a.batches) > a.maxBatches {
		drop := len(a.batches) - a.maxBatches
		a.batches = append(a.batches[:0], a.batches[drop:]...)
	}

	a.totalCompressed += int64(len(data))
	a.totalRawBytes += int64(len(records)) * recordGobSizeEstimate
	return nil
}

// recordGobSizeEstimate approximates the in-memory footprint of one record
// for the savings statistic.
const recordGobSizeEstimate = 512

// Batches returns the number of compressed batches held.
func (a *Archive) Batches() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batches)
}

// Restore decompresses batch i, oldest first.
func (a *Archive) Restore(i int) ([]Record, error) {
	a.mu.Lock()
	if i < 0 || i >= len(a.batches) {
		a.mu.Unlock()
		return nil, fmt.Errorf("batch %d out of range", i)
	}
	data := a.batches[i]
	a.mu.Unlock()

	gzr := gzipReaderPool.Get().(*gzip.Reader)
	defer gzipReaderPool.Put(gzr)

	if err := gzr.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	defer gzr.Close()

	var records []Record
	dec := gob.NewDecoder(gzr)
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// Stats returns archive counters.
func (a *Archive) Stats() ArchiveStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ArchiveStats{
		Batches:         len(a.batches),
		PendingRecords:  len(a.pending),
		TotalRecords:    a.totalRecords,
		RawBytes:        a.totalRawBytes,
		CompressedBytes: a.totalCompressed,
	}
	if s.RawBytes > 0 {
		s.SavingsPercent = float64(s.RawBytes-s.CompressedBytes) / float64(s.RawBytes) * 100
	}
	return s
}
