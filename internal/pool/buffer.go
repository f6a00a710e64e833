package pool

import "sync"

// Default sizes for pooled buffers.
const (
	BlobBufferDefaultSize   = 1024 * 16        // 16KiB, a typical decompressed bases blob
	BlobBufferMaxThreshold  = 1024 * 1024 * 4  // 4MiB, larger buffers are dropped instead of pooled
	WriteBufferDefaultSize  = 1024 * 64        // 64KiB, archive writer scratch space
	WriteBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is a growable byte slice that can be returned to a pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates an empty buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the buffered bytes.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of buffered bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer but keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Grow ensures room for n more bytes without another allocation.
// Small buffers grow by BlobBufferDefaultSize, larger ones by a quarter of their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := BlobBufferDefaultSize
	if cap(bb.B) > 4*BlobBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < n {
		growBy = n
	}

	grown := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(grown, bb.B)
	bb.B = grown
}

// Write appends data. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteByte appends a single byte. It never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Set replaces the buffer content with a copy of data.
func (bb *ByteBuffer) Set(data []byte) {
	bb.B = append(bb.B[:0], data...)
}

// ByteBufferPool recycles ByteBuffers. Buffers above maxThreshold capacity are
// discarded on Put so one huge blob does not pin memory for the process lifetime.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get returns an empty buffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool. A nil buffer is ignored.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	blobPool  = NewByteBufferPool(BlobBufferDefaultSize, BlobBufferMaxThreshold)
	writePool = NewByteBufferPool(WriteBufferDefaultSize, WriteBufferMaxThreshold)
)

// GetBlobBuffer returns a buffer for decoded blob bases.
func GetBlobBuffer() *ByteBuffer {
	return blobPool.Get()
}

// PutBlobBuffer returns a blob buffer to its pool.
func PutBlobBuffer(bb *ByteBuffer) {
	blobPool.Put(bb)
}

// GetWriteBuffer returns a scratch buffer for archive encoding.
func GetWriteBuffer() *ByteBuffer {
	return writePool.Get()
}

// PutWriteBuffer returns a scratch buffer to its pool.
func PutWriteBuffer(bb *ByteBuffer) {
	writePool.Put(bb)
}
