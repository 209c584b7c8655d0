// Package patsrc implements the synchronized pattern source, solo/dual
// composers, and per-thread driver that turn ingest/format's parsers and
// ingest/fileio's byte streams into a concurrent-safe stream of reads.
package patsrc

import (
	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/format"
	"github.com/grailbio/ingest/ingest/qual"
)

// Params mirrors Bowtie2's PatternParams, plus Backend/Tracer/Sink fields
// for selecting a fileio backend and wiring up diagnostics and the audit
// trail — concerns the original left to global state or didn't have.
type Params struct {
	Format Format

	// FileParallel: true wraps each file in its own source; otherwise a
	// single source round-robins the whole file list.
	FileParallel bool

	// Seed is threaded through for downstream use only; the core never
	// reads it itself (see ingest/fingerprint.HighwayKeyed).
	Seed uint32

	// MaxBuf is the batch capacity: reads buffered per lock acquisition.
	MaxBuf int

	Solexa64 bool
	Phred64  bool
	IntQuals bool

	Trim5, Trim3 int

	// SampleLen, SampleFreq configure FASTA-Continuous: window length and
	// stride. SampleLen must be <= 1024; SampleFreq must be >= 1.
	SampleLen, SampleFreq int

	// Skip is the number of reads to discard at stream startup, before any
	// id is issued.
	Skip uint64

	// Nthreads is advisory only, for downstream buffer sizing.
	Nthreads int

	FixName bool

	// Backend selects the fileio decompression/mapping strategy.
	Backend fileio.Backend

	// Tracer, if non-nil, receives a record of every batch id reservation.
	Tracer *diag.Tracer

	// Sink receives warnings and fatal diagnostics. Defaults to
	// diag.Discard.
	Sink diag.Sink
}

// Format selects one of the eight supported input grammars.
type Format int

const (
	FormatFASTA Format = iota
	FormatFASTQ
	FormatFASTQInterleaved
	FormatTabbed5
	FormatTabbed6
	FormatQseq
	FormatRaw
	FormatFastaContinuous
)

func (f Format) toKind() format.Kind {
	switch f {
	case FormatFASTA:
		return format.FASTA
	case FormatFASTQ:
		return format.FASTQ
	case FormatFASTQInterleaved:
		return format.FASTQInterleaved
	case FormatTabbed5:
		return format.Tabbed5
	case FormatTabbed6:
		return format.Tabbed6
	case FormatQseq:
		return format.Qseq
	case FormatRaw:
		return format.Raw
	case FormatFastaContinuous:
		return format.FastaContinuous
	default:
		panic("patsrc: unknown Format")
	}
}

func (p Params) qualEncoding() qual.Encoding {
	switch {
	case p.IntQuals:
		return qual.IntQuals
	case p.Solexa64:
		return qual.Solexa64
	case p.Phred64:
		return qual.Phred64
	default:
		return qual.Phred33
	}
}

func (p Params) sink() diag.Sink {
	if p.Sink == nil {
		return diag.Discard
	}
	return p.Sink
}

// traceRecord is a no-op when p.Tracer is nil: the audit trail costs
// nothing unless a caller explicitly attaches one. A write failure is
// surfaced as a Warning the first time it's seen on this Tracer, rather
// than silently dropped or repeated on every subsequent batch.
func (p Params) traceRecord(sourceIndex, fileIndex int, baseID uint64, count int) {
	if p.Tracer == nil {
		return
	}
	if err := p.Tracer.Record(sourceIndex, fileIndex, baseID, count); err != nil && p.Tracer.FirstFailure() {
		p.sink().Warn(diag.Warning{
			Code:    diag.TraceWriteFailed,
			Message: err.Error(),
		})
	}
}
