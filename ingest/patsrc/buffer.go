package patsrc

import "github.com/grailbio/ingest/ingest/read"

// batchTarget is the slice-filling surface a Source writes a batch into.
// *Buffer satisfies it directly (mate-a into bufA, mate-b into bufB); the
// Dual composer also uses bufBAdapter to redirect an independent mate-b
// source's single-mate output into a Buffer's bufB array.
type batchTarget interface {
	SlotsA() []*read.Read
	SlotsB() []*read.Read
	MaxBuf() int
	SetBaseID(id uint64)
}

// Buffer is the per-thread batch buffer: a double array of reads (mate a,
// mate b) plus a cursor and a base id, mirroring PerThreadReadBuf.
type Buffer struct {
	maxBuf int
	bufA   []*read.Read
	bufB   []*read.Read
	cur    int
	baseID uint64 // read.MaxID sentinel means "empty"

	// srcA/srcB tag which Source(s) most recently filled this buffer, so
	// the composer's Finalize can dispatch to the right parser/params
	// without the driver having to thread that context through itself.
	srcA, srcB *Source
}

// NewBuffer allocates a Buffer with capacity maxBuf for both mate slots.
func NewBuffer(maxBuf int) *Buffer {
	b := &Buffer{
		maxBuf: maxBuf,
		bufA:   make([]*read.Read, maxBuf),
		bufB:   make([]*read.Read, maxBuf),
	}
	for i := range b.bufA {
		b.bufA[i] = &read.Read{}
		b.bufB[i] = &read.Read{}
	}
	b.Reset()
	return b
}

// ReadA returns the mate-a read at the current cursor.
func (b *Buffer) ReadA() *read.Read { return b.bufA[b.cur] }

// ReadB returns the mate-b read at the current cursor.
func (b *Buffer) ReadB() *read.Read { return b.bufB[b.cur] }

// Rdid returns the id of the read/pair currently under the cursor.
func (b *Buffer) Rdid() uint64 {
	if b.baseID == read.MaxID {
		panic("patsrc: Rdid called on an empty buffer")
	}
	return b.baseID + uint64(b.cur)
}

// Reset clears the buffer back to empty, as though nothing has been read.
func (b *Buffer) Reset() {
	b.cur = len(b.bufA)
	for i := range b.bufA {
		b.bufA[i].Reset()
		b.bufB[i].Reset()
	}
	b.baseID = read.MaxID
}

// Next advances the cursor to the next element.
func (b *Buffer) Next() {
	if b.cur >= len(b.bufA) {
		panic("patsrc: Next called past end of buffer")
	}
	b.cur++
}

// Exhausted reports true when there's nothing left for Next(). This
// reproduces pat.h's literal predicate, including its one-element-early
// check: it treats the buffer as exhausted either at the last slot or as
// soon as the *next* slot's mate-a read is empty — whichever comes first.
// Kept as a faithful, directly tested port of that predicate; see
// HasCurrent for the check this package actually gates a refill on.
func (b *Buffer) Exhausted() bool {
	n := len(b.bufA)
	return b.cur >= n-1 || b.bufA[b.cur+1].Empty()
}

// Init is called just after a new batch has been loaded, to position the
// cursor at its first element.
func (b *Buffer) Init() { b.cur = 0 }

// HasCurrent reports whether the slot at the cursor actually holds a
// record. Unlike Exhausted's one-early lookahead, this is the literal check
// a single-buffered driver needs before consuming bufA[cur]/bufB[cur]: with
// no double-buffering to prefetch into, triggering a refill one slot early
// would overwrite the still-unconsumed last record of the batch.
func (b *Buffer) HasCurrent() bool {
	return b.cur < len(b.bufA) && !b.bufA[b.cur].Empty()
}

// SetBaseID sets the id of the first read in the buffer.
func (b *Buffer) SetBaseID(id uint64) { b.baseID = id }

// MaxBuf is this buffer's configured capacity.
func (b *Buffer) MaxBuf() int { return b.maxBuf }

// SlotsA/SlotsB expose the raw backing arrays to light-parse, which fills
// them directly by index.
func (b *Buffer) SlotsA() []*read.Read { return b.bufA }
func (b *Buffer) SlotsB() []*read.Read { return b.bufB }

// SetSources/SourceA/SourceB let a composer tag which Source(s) produced
// this buffer's current contents.
func (b *Buffer) SetSources(a, bb *Source) { b.srcA, b.srcB = a, bb }
func (b *Buffer) SourceA() *Source         { return b.srcA }
func (b *Buffer) SourceB() *Source         { return b.srcB }

// bufBAdapter presents a Buffer's bufB slice as "slot A" so an independent,
// single-mate source can fill it via the same Source.NextBatch used for
// mate-a, without Source needing to know which side it's filling. SetBaseID
// is a deliberate no-op: a pair's id comes from mate-a's reservation only
// (see DualComposer.NextBatch), so mate-b's source must not clobber it.
type bufBAdapter struct{ *Buffer }

func (a bufBAdapter) SlotsA() []*read.Read { return a.Buffer.bufB }
func (a bufBAdapter) SlotsB() []*read.Read { return nil }
func (a bufBAdapter) SetBaseID(id uint64)  {}
