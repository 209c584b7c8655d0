package format

import (
	"bytes"
	"fmt"

	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/read"
)

// Qseq's eleven tab-separated fields, in order.
const (
	qseqMachine = iota
	qseqRun
	qseqLane
	qseqTile
	qseqX
	qseqY
	qseqIndex
	qseqReadNum
	qseqSeq
	qseqQual
	qseqFilter
	qseqFieldCount
)

func (p *Parser) lightParseQseq(stream fileio.Stream, bufA []*read.Read, startIdx int) (done bool, count int) {
	for i := startIdx; i < len(bufA); i++ {
		r := bufA[i]
		r.Reset()
		line, ok := readLine(stream)
		if !ok {
			return true, count
		}
		if len(line) == 0 {
			i--
			continue
		}
		r.Raw = line
		count++
	}
	_, eof := peekByte(stream)
	return eof, count
}

func (p *Parser) finalizeQseq(r *read.Read, id uint64, fp FinalizeParams) {
	if r.Empty() {
		return
	}
	fields := bytes.Split(r.Raw, []byte{'\t'})
	if len(fields) != qseqFieldCount {
		if p.flagOnce() && fp.Sink != nil {
			fp.Sink.Warn(wrongFieldCount(fp.File, len(fields)))
		}
		r.Reset()
		return
	}

	name := fmt.Sprintf("%s_%s:%s:%s:%s:%s#%s/%s",
		fields[qseqMachine], fields[qseqRun], fields[qseqLane], fields[qseqTile],
		fields[qseqX], fields[qseqY], fields[qseqIndex], fields[qseqReadNum])
	r.Name = []byte(name)
	if fp.FixName {
		r.Name = read.StripMateSuffix(r.Name)
	}

	// Qseq encodes '.' for an unresolved base; translate to 'N' as every
	// downstream alphabet consumer expects.
	seq := append([]byte{}, fields[qseqSeq]...)
	for i, b := range seq {
		if b == '.' {
			seq[i] = 'N'
		}
	}
	r.Seq = seq
	r.Qual = qualConvert(fields[qseqQual], len(seq), r.Name, fp, p)
	r.FilterPassed = !bytes.Equal(bytes.TrimSpace(fields[qseqFilter]), []byte("0"))
	r.ApplyTrim(fp.Trim5, fp.Trim3)
	r.ID = id
	r.MarkParsed()
}
