// Package qual converts quality strings from the encodings format parsers
// may encounter (Solexa-64, Phred-64, space-separated integer qualities)
// into the Phred-33 scale the rest of the pipeline assumes, and raises
// diagnostics when a quality string doesn't match its format or sequence.
package qual

import (
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/ingest/ingest/diag"
)

// Encoding names the scale a record's raw quality string is in before
// conversion.
type Encoding int

const (
	// Phred33 is the default encoding: ASCII value minus 33 is the Phred
	// quality. No conversion is performed.
	Phred33 Encoding = iota
	// Phred64 is the legacy Illumina encoding: ASCII value minus 64 is the
	// Phred quality.
	Phred64
	// Solexa64 is the original Solexa encoding: ASCII value minus 64 is a
	// Solexa-scaled (not Phred-scaled) log-odds quality.
	Solexa64
	// IntQuals is not an ASCII encoding at all: the raw quality field is a
	// whitespace-separated list of decimal Phred quality integers, one per
	// base.
	IntQuals
)

const (
	phred33Offset  = 33
	phred64Offset  = 64
	solexa64Offset = 64
)

// solexaToPhred is precomputed for every representable Solexa-scaled value
// in the legal input range, following the same table-driven approach as
// Bowtie2's qual.h (avoids repeated log-domain math per base).
var solexaToPhred [256]byte

func init() {
	for i := range solexaToPhred {
		// Solexa quality s relates to Phred quality q by q = 10*log10(1 +
		// 10^(s/10)). i ranges over raw ASCII bytes; solexa value is
		// i - solexa64Offset, which can be negative.
		s := float64(i) - solexa64Offset
		q := solexaToPhredValue(s)
		if q > 93 {
			q = 93
		}
		solexaToPhred[i] = byte(q) + phred33Offset
	}
}

func solexaToPhredValue(s float64) float64 {
	return 10.0 * math.Log10(1.0+math.Pow(10.0, s/10.0))
}

// Convert converts qualRaw from enc to Phred-33 and returns the result: for
// Phred33 that is qualRaw itself, otherwise a newly allocated slice (qualRaw
// is left unchanged). name is used only for diagnostic messages and may be
// nil. seqLen is the sequence length this quality string is expected to
// match; TooFewQualities/TooManyQualities are raised as warnings (the
// record is still emitted, not dropped) when they disagree, and the
// returned slice is truncated, or padded with the synthetic phred-40 ('I')
// byte, to seqLen so the seq/qual length invariant still holds downstream.
func Convert(qualRaw []byte, enc Encoding, seqLen int, name []byte, file string, sink diag.Sink) []byte {
	if sink == nil {
		sink = diag.Discard
	}
	var out []byte
	switch enc {
	case IntQuals:
		out = convertIntQuals(qualRaw, sink, name, file)
	case Phred64:
		out = make([]byte, len(qualRaw))
		for i, b := range qualRaw {
			out[i] = rescale(b, phred64Offset, sink, name, file)
		}
	case Solexa64:
		out = make([]byte, len(qualRaw))
		for i, b := range qualRaw {
			if int(b) < 0 || int(b) >= len(solexaToPhred) {
				sink.Warn(diag.Warning{Code: diag.WrongQualityFormat, File: file, Message: warnName(name)})
				out[i] = phred33Offset
				continue
			}
			out[i] = solexaToPhred[b]
		}
	default: // Phred33
		out = qualRaw
		for _, b := range out {
			if b < phred33Offset {
				sink.Warn(diag.Warning{Code: diag.WrongQualityFormat, File: file, Message: warnName(name)})
				break
			}
		}
	}
	return fitLength(out, seqLen, name, file, sink)
}

func rescale(b byte, offset int, sink diag.Sink, name []byte, file string) byte {
	v := int(b) - offset
	if v < 0 {
		sink.Warn(diag.Warning{Code: diag.WrongQualityFormat, File: file, Message: warnName(name)})
		v = 0
	}
	if v > 93 {
		v = 93
	}
	return byte(v + phred33Offset)
}

func convertIntQuals(raw []byte, sink diag.Sink, name []byte, file string) []byte {
	fields := strings.Fields(string(raw))
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			sink.Warn(diag.Warning{Code: diag.WrongQualityFormat, File: file, Message: warnName(name)})
			continue
		}
		if v < 0 {
			v = 0
		}
		if v > 93 {
			v = 93
		}
		out = append(out, byte(v+phred33Offset))
	}
	return out
}

func fitLength(q []byte, seqLen int, name []byte, file string, sink diag.Sink) []byte {
	switch {
	case len(q) == seqLen:
		return q
	case len(q) < seqLen:
		sink.Warn(diag.Warning{Code: diag.TooFewQualities, File: file, Message: warnName(name)})
		padded := make([]byte, seqLen)
		copy(padded, q)
		for i := len(q); i < seqLen; i++ {
			padded[i] = phred33Offset + 40
		}
		return padded
	default:
		sink.Warn(diag.Warning{Code: diag.TooManyQualities, File: file, Message: warnName(name)})
		return q[:seqLen]
	}
}

func warnName(name []byte) string {
	if len(name) == 0 {
		return "(unnamed read)"
	}
	return string(name)
}
