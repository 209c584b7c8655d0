package format

import (
	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/read"
)

// lightParseFasta fills bufA[startIdx:] with FASTA records. Raw2 holds the
// name line (without '>'); Raw3 holds the concatenated sequence lines
// (newlines stripped, blank lines tolerated); Raw holds the full record
// text for round-trip purposes.
func (p *Parser) lightParseFasta(stream fileio.Stream, bufA []*read.Read, startIdx int) (done bool, count int) {
	for i := startIdx; i < len(bufA); i++ {
		r := bufA[i]
		r.Reset()

		c, eof := peekByte(stream)
		if eof {
			return true, count
		}
		if c != '>' {
			if p.first {
				// First record in the file must start with '>'; skip
				// forward until one is found. The file's error slot is set
				// so a caller inspecting it after the fact knows this
				// recoverable condition occurred (light-parse itself never
				// reaches a diag.Sink — see Finalize's FinalizeParams.Sink).
				p.flagOnce()
				for {
					b, eof := stream.Get()
					if eof {
						return true, count
					}
					if b == '>' {
						stream.Unget(b)
						break
					}
				}
			} else {
				// Shouldn't happen: a well-formed stream always leaves the
				// cursor at the next '>' after a record. Treat as EOF of
				// usable data rather than looping forever.
				return true, count
			}
		}
		p.first = false

		nameLine, ok := readLine(stream)
		if !ok {
			return true, count
		}
		name := nameLine
		if len(name) > 0 && name[0] == '>' {
			name = name[1:]
		}

		var seq []byte
		raw := append([]byte{}, nameLine...)
		raw = append(raw, '\n')
		for {
			b, eof := peekByte(stream)
			if eof || b == '>' {
				break
			}
			line, ok := readLine(stream)
			if !ok {
				break
			}
			seq = append(seq, line...)
			raw = append(raw, line...)
			raw = append(raw, '\n')
		}

		r.Raw = raw
		r.Raw2 = name
		r.Raw3 = seq
		count++
	}
	_, eof := peekByte(stream)
	return eof, count
}

func (p *Parser) finalizeFasta(r *read.Read, id uint64, fp FinalizeParams) {
	if r.Empty() {
		return
	}
	name := r.Raw2
	if fp.FixName {
		name = read.StripMateSuffix(name)
	}
	r.Name = name
	r.Seq = r.Raw3
	r.Qual = read.FillSyntheticQual(len(r.Seq))
	r.FilterPassed = true
	r.ApplyTrim(fp.Trim5, fp.Trim3)
	r.ID = id
	r.MarkParsed()
}
