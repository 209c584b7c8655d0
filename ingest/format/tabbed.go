package format

import (
	"bytes"
	"fmt"

	"github.com/grailbio/ingest/ingest/diag"
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/read"
)

func wrongFieldCount(file string, got int) diag.Warning {
	return diag.Warning{
		Code:    diag.RecordSkipped,
		File:    file,
		Message: fmt.Sprintf("unexpected field count %d", got),
	}
}

// lightParseTabbed fills bufA with single-line tab-separated records. Raw
// holds the whole line and is not split here, to keep light-parse a cheap
// byte copy; Raw2 is unused, finalize re-splits Raw on '\t'.
func (p *Parser) lightParseTabbed(stream fileio.Stream, bufA []*read.Read, startIdx int) (done bool, count int) {
	for i := startIdx; i < len(bufA); i++ {
		r := bufA[i]
		r.Reset()
		line, ok := readLine(stream)
		if !ok {
			return true, count
		}
		if len(line) == 0 {
			// Blank lines between records are tolerated and simply skipped
			// without consuming a batch slot.
			i--
			continue
		}
		r.Raw = line
		count++
	}
	_, eof := peekByte(stream)
	return eof, count
}

func (p *Parser) finalizeTabbed(ra, rb *read.Read, id uint64, fp FinalizeParams) {
	if ra.Empty() {
		return
	}
	fields := bytes.Split(ra.Raw, []byte{'\t'})

	switch len(fields) {
	case 3: // name, seq, qual — unpaired regardless of tab5/tab6 config.
		setReadFromFields(ra, fields[0], fields[1], fields[2], id, fp, p)
	case 5: // tab5: name, seq1, qual1, seq2, qual2
		setReadFromFields(ra, fields[0], fields[1], fields[2], id, fp, p)
		if rb != nil {
			name2 := append([]byte{}, fields[0]...)
			setReadFromFields(rb, name2, fields[3], fields[4], id, fp, p)
		}
	case 6: // tab6: name, name2, seq1, qual1, seq2, qual2
		setReadFromFields(ra, fields[0], fields[2], fields[3], id, fp, p)
		if rb != nil {
			setReadFromFields(rb, fields[1], fields[4], fields[5], id, fp, p)
		}
	default:
		if p.flagOnce() && fp.Sink != nil {
			fp.Sink.Warn(wrongFieldCount(fp.File, len(fields)))
		}
		ra.Reset()
		if rb != nil {
			rb.Reset()
		}
		return
	}
}

func setReadFromFields(r *read.Read, name, seq, qualRaw []byte, id uint64, fp FinalizeParams, p *Parser) {
	if fp.FixName {
		name = read.StripMateSuffix(name)
	}
	r.Name = name
	r.Seq = seq
	r.Qual = qualConvert(qualRaw, len(seq), name, fp, p)
	r.FilterPassed = true
	r.ApplyTrim(fp.Trim5, fp.Trim3)
	r.ID = id
	r.MarkParsed()
}
