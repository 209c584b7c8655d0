package format

import (
	"strconv"

	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/read"
)

// lightParseRaw fills bufA with one sequence per line; no name, no quality.
func (p *Parser) lightParseRaw(stream fileio.Stream, bufA []*read.Read, startIdx int) (done bool, count int) {
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

func (p *Parser) finalizeRaw(r *read.Read, id uint64, fp FinalizeParams) {
	if r.Empty() {
		return
	}
	r.Name = []byte(strconv.Itoa(p.nextOrdinal()))
	r.Seq = r.Raw
	r.Qual = read.FillSyntheticQual(len(r.Seq))
	r.FilterPassed = true
	r.ApplyTrim(fp.Trim5, fp.Trim3)
	r.ID = id
	r.MarkParsed()
}
