package patsrc

import "github.com/grailbio/ingest/ingest/read"

// PerThreadDriver is the thread-local pull-iterator loop: refill its batch
// via the shared Composer once the current slot is empty,
// finalize the current record outside any lock, and yield it. One driver is
// owned by exactly one goroutine; it holds no lock itself. It refills on
// Buffer.HasCurrent rather than Buffer.Exhausted: this driver has a single
// batch buffer with no prefetch-ahead staging area, so triggering a refill
// one slot early (Exhausted's literal pat.h semantics) would overwrite the
// batch's still-unconsumed last record.
type PerThreadDriver struct {
	composer Composer
	buf      *Buffer

	lastBatchDone bool
	ended         bool
}

// NewPerThreadDriver allocates a driver with its own batch buffer of
// capacity maxBuf, pulling from composer.
func NewPerThreadDriver(composer Composer, maxBuf int) *PerThreadDriver {
	return &PerThreadDriver{
		composer: composer,
		buf:      NewBuffer(maxBuf),
	}
}

// Next advances to and finalizes the next record (or pair), returning
// ok=false once the composer is permanently exhausted. The returned *Read
// values are only valid until the next call to Next. A record-level
// recoverable parse error leaves its slot unparsed; Next skips past it and
// tries the next slot rather than ending the stream early.
func (d *PerThreadDriver) Next() (ra, rb *read.Read, ok bool) {
	for {
		if d.ended {
			return nil, nil, false
		}

		if !d.buf.HasCurrent() {
			if !d.refill() {
				return nil, nil, false
			}
		}

		id := d.buf.Rdid()
		a := d.buf.ReadA()
		b := d.buf.ReadB()
		d.composer.Finalize(d.buf, d.buf.cur, id)
		d.buf.Next()

		if !a.Parsed() {
			// Finalize declined this record (malformed, or a trailing empty
			// slot in a short batch); move on rather than stopping here.
			continue
		}
		if !b.Parsed() {
			b = nil
		}
		return a, b, true
	}
}

// refill pulls a fresh batch from the composer, looping past empty-but-not-
// done responses. Returns false once the composer is permanently drained.
func (d *PerThreadDriver) refill() bool {
	for {
		done, n := d.composer.NextBatch(d.buf)
		if n > 0 {
			d.lastBatchDone = done
			return true
		}
		if done {
			d.ended = true
			return false
		}
		// n == 0 && !done: composer had nothing ready (e.g. racing with
		// another worker for the last source); try again.
	}
}
