// Package format implements the five record grammars (FASTA, FASTQ, Tabbed,
// Qseq, Raw) plus FASTA-Continuous windowed sampling as a single tagged
// variant, each exposing the two-phase light_parse_batch/finalize contract.
// Every format is a case in one Kind enum dispatched by a switch at the call
// site, rather than a parser class hierarchy.
package format

import (
	"sync"

	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/qual"
	"github.com/grailbio/ingest/ingest/read"
)

// Kind selects which record grammar a Parser implements.
type Kind int

const (
	FASTA Kind = iota
	FASTQ
	FASTQInterleaved
	Tabbed5
	Tabbed6
	Qseq
	Raw
	FastaContinuous
)

func (k Kind) String() string {
	switch k {
	case FASTA:
		return "fasta"
	case FASTQ:
		return "fastq"
	case FASTQInterleaved:
		return "fastq-interleaved"
	case Tabbed5:
		return "tab5"
	case Tabbed6:
		return "tab6"
	case Qseq:
		return "qseq"
	case Raw:
		return "raw"
	case FastaContinuous:
		return "fasta-continuous"
	default:
		return "unknown"
	}
}

// Paired reports whether this Kind's light-parse fills both the mate-a and
// mate-b slots of a batch from a single stream (interleaved FASTQ is the
// only such case today).
func (k Kind) Paired() bool { return k == FASTQInterleaved }

// MayPopulateSecondMate reports whether Finalize for this Kind can write
// into the second read passed to it even when light-parse never touched
// that slot. Tabbed5/Tabbed6 encode both mates in a single physical line
// (light-parse only captures the line itself, cheaply); which mate count a
// given line actually has is only known once finalize re-splits it on tabs.
func (k Kind) MayPopulateSecondMate() bool {
	return k == FASTQInterleaved || k == Tabbed5 || k == Tabbed6
}

// FinalizeParams carries the per-source configuration finalize needs; it is
// the subset of patsrc.Params relevant to decoding a raw record.
type FinalizeParams struct {
	Trim5, Trim3 int
	QualEncoding qual.Encoding
	FixName      bool
	File         string
	Sink         diag.Sink
}

// Parser holds the per-file state a format needs across light_parse_batch
// calls: the FASTA "first record" flag, the per-file already-reported
// error flag (so a recoverable record-level diagnostic fires at most once
// per file instead of once per bad record), a running record ordinal (Raw's
// synthesized names), and FASTA-Continuous's window-scanner state.
//
// One Parser is shared by every worker thread pulling from the Source it
// belongs to: light-parse only ever runs under that Source's own mutex, but
// Finalize runs outside it, so errFlagged and ordinal are read and written
// by multiple goroutines at once and need their own lock. first and cont
// are never touched from Finalize, so they ride along unguarded.
type Parser struct {
	Kind Kind

	first bool             // FASTA: next light-parse call is the first in this file
	cont  *continuousState // only populated when Kind == FastaContinuous

	mu         sync.Mutex
	errFlagged bool // recoverable record-level error already reported this file
	ordinal    int  // Raw: 0-based record counter for synthesized names
}

// NewParser constructs a Parser for the given Kind, ready to read a fresh
// file (see ResetForFile, which NewParser calls once).
func NewParser(k Kind, sampleLen, sampleFreq int) *Parser {
	p := &Parser{Kind: k}
	if k == FastaContinuous {
		p.cont = newContinuousState(sampleLen, sampleFreq)
	}
	p.ResetForFile()
	return p
}

// ResetForFile clears per-file state when a pattern source rotates to a new
// input file (CFilePatternSource::resetForNextFile in the original). Called
// under the owning Source's mutex, but errFlagged/ordinal are also reachable
// from a concurrent Finalize call still draining the previous file's last
// batch, so they're cleared under Parser's own lock too.
func (p *Parser) ResetForFile() {
	p.first = true
	p.mu.Lock()
	p.errFlagged = false
	p.ordinal = 0
	p.mu.Unlock()
	if p.cont != nil {
		p.cont.resetForFile()
	}
}

// LightParseBatch consumes records from stream into bufA (and bufB, for
// interleaved FASTQ) starting at startIdx, stopping when either slice is
// full or the stream is exhausted. It returns done=true only when the
// stream is fully drained with no partial record remaining, and count is
// the number of records written (bufA and bufB combined counted once per
// pair for interleaved formats).
func (p *Parser) LightParseBatch(stream fileio.Stream, bufA, bufB []*read.Read, startIdx int) (done bool, count int) {
	switch p.Kind {
	case FASTA:
		return p.lightParseFasta(stream, bufA, startIdx)
	case FASTQ:
		return p.lightParseFastq(stream, bufA, startIdx)
	case FASTQInterleaved:
		return p.lightParseFastqInterleaved(stream, bufA, bufB, startIdx)
	case Tabbed5, Tabbed6:
		return p.lightParseTabbed(stream, bufA, startIdx)
	case Qseq:
		return p.lightParseQseq(stream, bufA, startIdx)
	case Raw:
		return p.lightParseRaw(stream, bufA, startIdx)
	case FastaContinuous:
		return p.lightParseFastaContinuous(stream, bufA, startIdx)
	default:
		panic("format: unknown Kind")
	}
}

// Finalize decodes ra (and rb, for paired formats) outside the source's
// mutex: tokenizes raw into name/seq/qual, rescales quality, applies
// trimming, and stamps the id.
func (p *Parser) Finalize(ra, rb *read.Read, id uint64, fp FinalizeParams) {
	switch p.Kind {
	case FASTA:
		p.finalizeFasta(ra, id, fp)
	case FASTQ, FASTQInterleaved:
		p.finalizeFastq(ra, id, fp)
		if rb != nil && !rb.Empty() {
			p.finalizeFastq(rb, id, fp)
		}
	case Tabbed5, Tabbed6:
		p.finalizeTabbed(ra, rb, id, fp)
	case Qseq:
		p.finalizeQseq(ra, id, fp)
	case Raw:
		p.finalizeRaw(ra, id, fp)
	case FastaContinuous:
		p.finalizeContinuous(ra, id, fp)
	default:
		panic("format: unknown Kind")
	}
}

// flagOnce reports whether this is the first recoverable error flagged for
// the current file, and marks the flag set. Callers use this to raise a
// diag.Warning at most once per file rather than once per bad record. Safe
// to call concurrently from multiple Finalize calls sharing this Parser.
func (p *Parser) flagOnce() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errFlagged {
		return false
	}
	p.errFlagged = true
	return true
}

// nextOrdinal returns the next 0-based record ordinal for Raw's synthesized
// names and advances the counter, safe for concurrent Finalize calls.
func (p *Parser) nextOrdinal() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.ordinal
	p.ordinal++
	return n
}

// onceSink wraps base so that Warn only forwards the first time it's
// called for the current file; Fatal always forwards.
func (p *Parser) onceSink(base diag.Sink) diag.Sink {
	return &onceWarnSink{p: p, base: base}
}

type onceWarnSink struct {
	p    *Parser
	base diag.Sink
}

func (s *onceWarnSink) Warn(w diag.Warning) {
	if s.p.flagOnce() {
		s.base.Warn(w)
	}
}

func (s *onceWarnSink) Fatal(f diag.Fatal) {
	s.base.Fatal(f)
}
