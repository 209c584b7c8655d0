package format

import (
	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/qual"
	"github.com/grailbio/ingest/ingest/read"
)

// lightParseFastq fills bufA[startIdx:] with single-mate FASTQ records.
// Raw2/Raw3/Raw4 hold the name ('@'-stripped), sequence, and quality lines
// respectively; Raw holds the full four-line record for round-trip.
func (p *Parser) lightParseFastq(stream fileio.Stream, bufA []*read.Read, startIdx int) (done bool, count int) {
	for i := startIdx; i < len(bufA); i++ {
		ok := readFastqRecord(stream, bufA[i])
		if !ok {
			return true, count
		}
		count++
	}
	_, eof := peekByte(stream)
	return eof, count
}

// lightParseFastqInterleaved fills bufA and bufB in lockstep from a single
// stream whose records alternate mate-a, mate-b.
func (p *Parser) lightParseFastqInterleaved(stream fileio.Stream, bufA, bufB []*read.Read, startIdx int) (done bool, count int) {
	n := len(bufA)
	if len(bufB) < n {
		n = len(bufB)
	}
	for i := startIdx; i < n; i++ {
		if !readFastqRecord(stream, bufA[i]) {
			return true, count
		}
		if !readFastqRecord(stream, bufB[i]) {
			// An odd number of records in an interleaved file: drop the
			// unmatched mate-a record rather than emit a half pair.
			bufA[i].Reset()
			return true, count
		}
		count++
	}
	_, eof := peekByte(stream)
	return eof, count
}

// readFastqRecord reads one four-line FASTQ record into r. Returns false if
// the stream was already exhausted (no partial record consumed).
func readFastqRecord(stream fileio.Stream, r *read.Read) bool {
	r.Reset()

	_, eof := peekByte(stream)
	if eof {
		return false
	}

	nameLine, ok := readLine(stream)
	if !ok || len(nameLine) == 0 || nameLine[0] != '@' {
		return false
	}
	seqLine, ok := readLine(stream)
	if !ok {
		return false
	}
	plusLine, ok := readLine(stream)
	if !ok || len(plusLine) == 0 || plusLine[0] != '+' {
		return false
	}
	qualLine, ok := readLine(stream)
	if !ok {
		return false
	}

	r.Raw2 = nameLine[1:]
	r.Raw3 = seqLine
	r.Raw4 = qualLine
	raw := append([]byte{}, '@')
	raw = append(raw, nameLine[1:]...)
	raw = append(raw, '\n')
	raw = append(raw, seqLine...)
	raw = append(raw, '\n')
	raw = append(raw, plusLine...)
	raw = append(raw, '\n')
	raw = append(raw, qualLine...)
	raw = append(raw, '\n')
	r.Raw = raw
	return true
}

func (p *Parser) finalizeFastq(r *read.Read, id uint64, fp FinalizeParams) {
	if r.Empty() {
		return
	}
	name := r.Raw2
	if fp.FixName {
		name = read.StripMateSuffix(name)
	}
	r.Name = name
	r.Seq = r.Raw3
	r.Qual = qualConvert(r.Raw4, len(r.Seq), name, fp, p)
	r.FilterPassed = true
	r.ApplyTrim(fp.Trim5, fp.Trim3)
	r.ID = id
	r.MarkParsed()
}

// qualConvert centralizes the call into ingest/qual so every format that
// carries real (non-synthetic) quality shares the same conversion path,
// wrapping the sink so a length-mismatch warning fires at most once per
// file instead of once per record.
func qualConvert(raw []byte, seqLen int, name []byte, fp FinalizeParams, p *Parser) []byte {
	sink := fp.Sink
	if sink == nil {
		sink = diag.Discard
	}
	return qual.Convert(raw, fp.QualEncoding, seqLen, name, fp.File, p.onceSink(sink))
}
