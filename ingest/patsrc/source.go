package patsrc

import (
	"fmt"
	"sync"

	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/fingerprint"
	"github.com/grailbio/ingest/ingest/format"
	"github.com/grailbio/ingest/ingest/read"
)

// Source is a synchronized pattern source: the ordered list of input files,
// a cursor into that list, an open stream handle, the count of reads
// emitted so far, a skip count, a per-file already-reported-error flag, and
// a mutex protecting all of the above so multiple worker threads can pull
// batches from the same Source.
type Source struct {
	params Params
	index  int // this source's position, used only for Tracer records

	infiles []string
	parser  *format.Parser

	mu        sync.Mutex
	fileCur   int
	stream    fileio.Stream
	isOpen    bool
	readCnt   uint64
	skip      uint64
	skipped   bool
	errFlags  []bool
	lastRawFP uint64 // fingerprint of the last light-parsed record, for Fatal diagnostics
}

// NewSource constructs a Source over infiles, parsing with the format named
// in params. index identifies this source for audit-trail purposes only.
func NewSource(infiles []string, params Params, index int) *Source {
	return &Source{
		params:   params,
		index:    index,
		infiles:  infiles,
		parser:   format.NewParser(params.Format.toKind(), params.SampleLen, params.SampleFreq),
		skip:     params.Skip,
		errFlags: make([]bool, len(infiles)),
	}
}

// Reset rewinds to file 0 and clears readCnt; only the master thread calls
// this, before any worker begins.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.fileCur = 0
	s.readCnt = 0
	s.skipped = false
	for i := range s.errFlags {
		s.errFlags[i] = false
	}
}

func (s *Source) closeLocked() {
	if s.isOpen {
		s.stream.Close()
		s.isOpen = false
		s.stream = nil
	}
}

// openLocked opens the file at fileCur, moving past any file that fails to
// open, and returns false if the list is exhausted.
func (s *Source) openLocked() bool {
	s.closeLocked()
	for s.fileCur < len(s.infiles) {
		path := s.infiles[s.fileCur]
		stream, err := fileio.Open(path, s.params.Backend)
		if err != nil {
			if !s.errFlags[s.fileCur] {
				s.errFlags[s.fileCur] = true
				s.params.sink().Fatal(diag.Fatal{
					Code:        diag.StreamCorrupt,
					File:        path,
					Message:     err.Error(),
					Fingerprint: s.lastRawFP,
				})
			}
			s.fileCur++
			continue
		}
		s.stream = stream
		s.isOpen = true
		s.parser.ResetForFile()
		return true
	}
	return false
}

// NextBatch fills buf with as many records as fit, taking the next file in
// line whenever the current one runs out, and reserves the id range for
// the batch it returns. bufB is filled as well only when the parser's format
// is itself paired (interleaved FASTQ);
// readIdx is the starting index within the caller's buffer (0 for a fresh
// batch, or a caller-supplied offset when the Dual composer packs a-side
// into a subrange). takeLock is false when the Dual composer already holds
// its own outer lock.
func (s *Source) NextBatch(buf batchTarget, readIdx int, takeLock bool) (done bool, count int) {
	if takeLock {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	if !s.skipped {
		s.discardSkipLocked()
		s.skipped = true
	}

	total := 0
	for {
		if !s.isOpen {
			if !s.openLocked() {
				return true, total
			}
		}

		bufA := buf.SlotsA()
		var bufB []*read.Read
		if s.parser.Kind.Paired() {
			bufB = buf.SlotsB()
		}
		fileDone, n := s.parser.LightParseBatch(s.stream, bufA, bufB, readIdx+total)
		total += n
		if n > 0 {
			s.captureFingerprint(bufA, readIdx+total-1)
		}

		if readIdx+total >= buf.MaxBuf() {
			base := s.readCnt
			s.readCnt += uint64(total)
			buf.SetBaseID(base - uint64(readIdx))
			s.params.traceRecord(s.index, s.fileCur, base, total)
			return false, total
		}

		if fileDone {
			s.closeLocked()
			s.fileCur++
			if !s.openLocked() {
				base := s.readCnt
				s.readCnt += uint64(total)
				buf.SetBaseID(base - uint64(readIdx))
				s.params.traceRecord(s.index, s.fileCur, base, total)
				return true, total
			}
			// Batches may span files: loop around and keep filling.
			continue
		}

		// Light-parse returned short of a full batch without declaring
		// file-done; nothing more to read from this stream right now.
		base := s.readCnt
		s.readCnt += uint64(total)
		buf.SetBaseID(base - uint64(readIdx))
		s.params.traceRecord(s.index, s.fileCur, base, total)
		return false, total
	}
}

// discardSkipLocked light-parses and discards the first skip_ reads before
// any id is issued.
func (s *Source) discardSkipLocked() {
	if s.skip == 0 {
		return
	}
	scratch := NewBuffer(int(s.skip))
	for remaining := s.skip; remaining > 0; {
		if !s.isOpen && !s.openLocked() {
			return
		}
		bufA := scratch.SlotsA()[:remaining]
		var bufB []*read.Read
		if s.parser.Kind.Paired() {
			bufB = scratch.SlotsB()[:remaining]
		}
		fileDone, n := s.parser.LightParseBatch(s.stream, bufA, bufB, 0)
		if uint64(n) >= remaining {
			remaining = 0
		} else {
			remaining -= uint64(n)
		}
		for i := range bufA {
			bufA[i].Reset()
			if bufB != nil {
				bufB[i].Reset()
			}
		}
		if fileDone {
			s.closeLocked()
			s.fileCur++
			if !s.openLocked() {
				return
			}
		}
	}
}

func (s *Source) captureFingerprint(bufA []*read.Read, lastIdx int) {
	if lastIdx < 0 || lastIdx >= len(bufA) {
		return
	}
	r := bufA[lastIdx]
	if r.Empty() {
		return
	}
	s.lastRawFP = fingerprint.Seahash(r.Raw)
}

// Parser returns the format parser this source delegates to, so the
// composer's Finalize can reach it.
func (s *Source) Parser() *format.Parser { return s.parser }

// FinalizeParams builds the ingest/format.FinalizeParams for the file
// currently open on this source.
func (s *Source) FinalizeParams() format.FinalizeParams {
	file := ""
	if s.fileCur < len(s.infiles) {
		file = s.infiles[s.fileCur]
	}
	return format.FinalizeParams{
		Trim5:        s.params.Trim5,
		Trim3:        s.params.Trim3,
		QualEncoding: s.params.qualEncoding(),
		FixName:      s.params.FixName,
		File:         file,
		Sink:         s.params.sink(),
	}
}

// ReportCorruption raises a Fatal diagnostic tagged with the fingerprint of
// the last successfully light-parsed record, for operator correlation.
func (s *Source) ReportCorruption(message string) {
	file := ""
	if s.fileCur < len(s.infiles) {
		file = s.infiles[s.fileCur]
	}
	s.params.sink().Fatal(diag.Fatal{
		Code:        diag.StreamCorrupt,
		File:        file,
		Message:     message,
		Fingerprint: s.lastRawFP,
	})
}

func (s *Source) String() string {
	return fmt.Sprintf("Source(files=%v, fileCur=%d, readCnt=%d)", s.infiles, s.fileCur, s.readCnt)
}
