package diag

import (
	"io"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/golang/snappy"
)

// Tracer is an optional, off-by-default audit trail of batch id
// reservations. Each call to Record writes one varint-encoded
// [sourceIndex, fileIndex, baseID, count] tuple to the underlying writer,
// snappy-compressed. It exists purely so an operator can replay which byte
// ranges of which files produced which id ranges after the fact; nothing in
// the core reads a Tracer's output back, and a Source with no Tracer
// attached pays nothing for it.
type Tracer struct {
	mu     sync.Mutex
	w      *snappy.Writer
	buf    []byte
	failed bool // set once Record's first write error is reported upstream
}

// NewTracer wraps w in a snappy stream writer. The caller owns closing w;
// Close flushes the snappy framing but does not close w itself.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: snappy.NewBufferedWriter(w)}
}

// Record appends one reservation tuple to the trace.
func (t *Tracer) Record(sourceIndex, fileIndex int, baseID uint64, count int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = t.buf[:0]
	t.buf = append(t.buf, proto.EncodeVarint(uint64(sourceIndex))...)
	t.buf = append(t.buf, proto.EncodeVarint(uint64(fileIndex))...)
	t.buf = append(t.buf, proto.EncodeVarint(baseID)...)
	t.buf = append(t.buf, proto.EncodeVarint(uint64(count))...)
	_, err := t.w.Write(t.buf)
	return err
}

// FirstFailure reports whether this is the first time a caller has observed
// a Record error on this Tracer, marking it observed. Lets a caller that
// polls Record's return value surface a write failure once instead of on
// every subsequent batch.
func (t *Tracer) FirstFailure() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failed {
		return false
	}
	t.failed = true
	return true
}

// Close flushes any buffered, snappy-compressed trace data.
func (t *Tracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Close()
}
