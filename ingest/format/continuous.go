package format

import (
	"strconv"

	"github.com/grailbio/ingest/ingest/fileio"
	"github.com/grailbio/ingest/ingest/fingerprint"
	"github.com/grailbio/ingest/ingest/read"
)

// continuousState is FASTA-Continuous's per-file scanner state: a ring
// buffer of the last `length` bases seen, the ambiguous-base flush counter
// `eat`, the running base offset `cur` within the current named sequence,
// and the name prefix taken from the most recently seen header line. It
// persists across light_parse_batch calls within one file, since a single
// call only fills one batch's worth of windows.
type continuousState struct {
	length int
	freq   int

	ring     []byte
	writePos int
	fill     int
	eat      int

	cur        uint64
	prefix     []byte
	lastOffset int64  // -1 if nothing emitted yet for the current sequence
	lastFP     uint64 // content fingerprint of the window last emitted at lastOffset
	haveLastFP bool
	sawHeader  bool // a '>' header has been consumed at least once this file
	eofSeen    bool
}

func newContinuousState(length, freq int) *continuousState {
	if length <= 0 {
		length = 1
	}
	if freq <= 0 {
		freq = 1
	}
	return &continuousState{
		length: length,
		freq:   freq,
		ring:   make([]byte, length),
	}
}

func (c *continuousState) resetForFile() {
	c.writePos, c.fill = 0, 0
	c.eat = c.length - 1
	c.cur = 0
	c.prefix = nil
	c.lastOffset = -1
	c.haveLastFP = false
	c.sawHeader = false
	c.eofSeen = false
}

func (c *continuousState) resetForSequence() {
	c.writePos, c.fill = 0, 0
	c.eat = c.length - 1
	c.cur = 0
	c.lastOffset = -1
	c.haveLastFP = false
}

func isAmbiguous(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		return false
	default:
		return true
	}
}

func (c *continuousState) push(b byte) {
	c.ring[c.writePos%c.length] = b
	c.writePos++
	if c.fill < c.length {
		c.fill++
	}
	if isAmbiguous(b) {
		c.eat = c.length
	} else if c.eat > 0 {
		c.eat--
	}
	c.cur++
}

// valid reports whether the ring buffer currently holds a clean, fully
// populated window.
func (c *continuousState) valid() bool {
	return c.eat == 0 && c.fill == c.length
}

// offset is the 0-based start, within the current sequence, of the window
// presently held in the ring buffer.
func (c *continuousState) offset() int64 {
	return int64(c.cur) - int64(c.length)
}

// window copies the ring buffer's contents out in sequence order (oldest
// byte first).
func (c *continuousState) window() []byte {
	out := make([]byte, c.length)
	oldest := c.writePos % c.length
	for i := 0; i < c.length; i++ {
		out[i] = c.ring[(oldest+i)%c.length]
	}
	return out
}

// lightParseFastaContinuous emits fixed-length windows sampled every freq_
// bases from the concatenated sequence of one or more FASTA records in the
// file, skipping header lines and resetting the per-sequence offset/prefix
// at each new header.
func (p *Parser) lightParseFastaContinuous(stream fileio.Stream, bufA []*read.Read, startIdx int) (done bool, count int) {
	c := p.cont
	i := startIdx
	for i < len(bufA) {
		b, eof := stream.Get()
		if eof {
			c.flushTail(bufA, &i)
			return true, i - startIdx
		}
		if b == '\n' {
			continue
		}
		if b == '>' {
			c.flushTail(bufA, &i)
			if i >= len(bufA) {
				stream.Unget(b)
				return false, i - startIdx
			}
			line, _ := readLine(stream)
			c.prefix = append([]byte{}, line...)
			c.sawHeader = true
			c.resetForSequence()
			continue
		}
		c.push(b)
		if c.valid() {
			off := c.offset()
			if off%int64(c.freq) == 0 {
				w := c.window()
				emitContinuousWindow(bufA[i], c, off, w)
				c.lastOffset = off
				c.lastFP = fingerprint.Farm64(w)
				c.haveLastFP = true
				i++
			}
		}
	}
	return false, i - startIdx
}

// flushTail emits one final window ending exactly at the last base of the
// current sequence, if the ring buffer is valid and that window hasn't
// already been emitted by the regular stride — so a short tail never goes
// completely unsampled. The candidate counts as already emitted only when
// both its offset and its content fingerprint match the last emitted window
// (memoized in lastOffset/lastFP); a tail window at a different offset is
// emitted even if its bytes repeat the last stride window.
func (c *continuousState) flushTail(bufA []*read.Read, i *int) {
	if *i >= len(bufA) {
		return
	}
	if !c.valid() {
		return
	}
	off := c.offset()
	w := c.window()
	fp := fingerprint.Farm64(w)
	if off == c.lastOffset && c.haveLastFP && fp == c.lastFP {
		return
	}
	emitContinuousWindow(bufA[*i], c, off, w)
	c.lastOffset = off
	c.lastFP = fp
	c.haveLastFP = true
	*i++
}

func emitContinuousWindow(r *read.Read, c *continuousState, off int64, w []byte) {
	r.Reset()
	r.Raw3 = w
	r.Raw = r.Raw3
	name := append([]byte{}, c.prefix...)
	name = append(name, '_')
	name = append(name, []byte(strconv.FormatInt(off, 10))...)
	r.Raw2 = name
}

func (p *Parser) finalizeContinuous(r *read.Read, id uint64, fp FinalizeParams) {
	if r.Empty() {
		return
	}
	r.Name = r.Raw2
	r.Seq = r.Raw3
	r.Qual = read.FillSyntheticQual(len(r.Seq))
	r.FilterPassed = true
	// Trim is not meaningful for a fixed-length sampled window; the window
	// length is already exactly sampleLen.
	r.ID = id
	r.MarkParsed()
}
