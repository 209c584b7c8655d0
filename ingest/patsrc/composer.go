package patsrc

import (
	"fmt"
	"sync"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/read"
)

// Composer is what PerThreadDriver drives: refill a caller-owned Buffer,
// then finalize the record at a given cursor position. SoloComposer relies on
// each *Source's own mutex for the critical section and locks only to pick
// which source runs next; DualComposer holds its own mutex across both
// mates' Source.NextBatch calls, which then run without taking the Sources'
// mutexes.
type Composer interface {
	// NextBatch refills buf in place and returns the same (done, count)
	// contract as Source.NextBatch: the caller must drain count records
	// before honoring done.
	NextBatch(buf *Buffer) (done bool, count int)

	// Finalize decodes the record at buf's slot idx, stamping it with id.
	// Deliberately called outside any Source's mutex, so it may run
	// concurrently with other goroutines' Finalize calls against the same
	// underlying *format.Parser; see format.Parser's own locking for how
	// it stays safe under that.
	Finalize(buf *Buffer, idx int, id uint64)
}

// SoloComposer walks a list of independent sources in order: it pulls from
// the source at cur until that source is exhausted, then moves on to the
// next. Single-mate only, unless the underlying source's format itself
// carries both mates (interleaved FASTQ, or a Tabbed5/Tabbed6 line with
// mate-b fields), in which case mate-b rides along in the same batch.
type SoloComposer struct {
	mu      sync.Mutex
	sources []*Source
	cur     int
}

// NewSoloComposer wraps sources for in-order iteration.
func NewSoloComposer(sources []*Source) *SoloComposer {
	return &SoloComposer{sources: sources}
}

func (c *SoloComposer) NextBatch(buf *Buffer) (done bool, count int) {
	for {
		c.mu.Lock()
		if c.cur >= len(c.sources) {
			c.mu.Unlock()
			return true, 0
		}
		src := c.sources[c.cur]
		c.mu.Unlock()

		buf.Reset()
		d, n := src.NextBatch(buf, 0, true)
		if n > 0 {
			buf.SetSources(src, nil)
			buf.Init()
			return false, n
		}
		if d {
			c.mu.Lock()
			if c.cur < len(c.sources) {
				c.cur++
			}
			c.mu.Unlock()
			continue
		}
		// Source has nothing right now but isn't done (shouldn't happen
		// for a real file source, but guard against spinning forever).
		return false, 0
	}
}

func (c *SoloComposer) Finalize(buf *Buffer, idx int, id uint64) {
	src := buf.SourceA()
	if src == nil {
		return
	}
	ra := buf.bufA[idx]
	if ra.Empty() {
		return
	}
	var rb *read.Read
	if idx < len(buf.bufB) && src.Parser().Kind.MayPopulateSecondMate() {
		rb = buf.bufB[idx]
	}
	src.Parser().Finalize(ra, rb, id, src.FinalizeParams())
	if rb != nil && rb.Parsed() {
		ra.Paired, ra.MateNum = true, 1
		rb.Paired, rb.MateNum = true, 2
	}
}

// DualComposer holds two lockstep source lists — left mates and right
// mates — and pairs their batches under its own mutex, so that an a-side
// and b-side batch are never observed separately by two different callers.
type DualComposer struct {
	mu         sync.Mutex
	srcA, srcB []*Source
	cur        int
	sink       diag.Sink
}

// NewDualComposer requires len(srcA) == len(srcB); sink receives the
// mate-name-divergence advisory warning and the fatal pair-desynchronization
// diagnostic (nil defaults to diag.Discard).
func NewDualComposer(srcA, srcB []*Source, sink diag.Sink) *DualComposer {
	if len(srcA) != len(srcB) {
		panic("patsrc: DualComposer requires equal-length mate source lists")
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &DualComposer{srcA: srcA, srcB: srcB, sink: sink}
}

func (c *DualComposer) NextBatch(buf *Buffer) (done bool, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.cur >= len(c.srcA) {
			return true, 0
		}
		srcA := c.srcA[c.cur]
		srcB := c.srcB[c.cur]

		buf.Reset()
		doneA, nA := srcA.NextBatch(buf, 0, false)
		doneB, nB := srcB.NextBatch(bufBAdapter{buf}, 0, false)

		if nA != nB || doneA != doneB {
			c.sink.Fatal(diag.Fatal{
				Code: diag.StreamCorrupt,
				File: srcA.FinalizeParams().File,
				Message: fmt.Sprintf(
					"mate pair desynchronized: mate1 produced %d records (done=%v), mate2 produced %d records (done=%v)",
					nA, doneA, nB, doneB),
				Fingerprint: srcA.lastRawFP,
			})
			return true, 0
		}

		if nA > 0 {
			buf.SetSources(srcA, srcB)
			buf.Init()
			c.checkMateNames(buf, srcA.FinalizeParams().File, srcB.FinalizeParams().File)
			return false, nA
		}

		if doneA {
			c.cur++
			continue
		}
		return false, 0
	}
}

// checkMateNames spot-checks the first record's mate-a/mate-b names,
// ignoring a trailing "/1"/"/2", and warns (never blocks) if they look like
// they aren't actually mates of one another.
func (c *DualComposer) checkMateNames(buf *Buffer, fileA, fileB string) {
	ra, rb := buf.bufA[0], buf.bufB[0]
	if ra.Empty() || rb.Empty() {
		return
	}
	nameA := string(read.StripMateSuffix(ra.Raw2))
	nameB := string(read.StripMateSuffix(rb.Raw2))
	if nameA == "" || nameB == "" {
		return
	}
	similarity := matchr.JaroWinkler(nameA, nameB, false)
	if similarity >= mateNameSimilarityThreshold {
		return
	}
	c.sink.Warn(diag.Warning{
		Code:    diag.MateNameDivergence,
		File:    fileA,
		Message: fmt.Sprintf("mate1 name %q and mate2 name %q (paired against %q) diverge (similarity %.2f)", nameA, nameB, fileB, similarity),
	})
}

// mateNameSimilarityThreshold is conservative: real mate pairs usually
// differ only in a numeric suffix already stripped above, so true mates
// score close to 1.0.
const mateNameSimilarityThreshold = 0.7

func (c *DualComposer) Finalize(buf *Buffer, idx int, id uint64) {
	srcA, srcB := buf.SourceA(), buf.SourceB()
	if srcA == nil || srcB == nil {
		return
	}
	ra, rb := buf.bufA[idx], buf.bufB[idx]
	if ra.Empty() || rb.Empty() {
		return
	}
	srcA.Parser().Finalize(ra, nil, id, srcA.FinalizeParams())
	srcB.Parser().Finalize(rb, nil, id, srcB.FinalizeParams())
	ra.Paired, ra.MateNum = true, 1
	rb.Paired, rb.MateNum = true, 2
}
