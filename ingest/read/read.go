// Package read defines the in-memory representation of a single sequencing
// read as it moves through the two-phase ingestion pipeline: an empty shell
// that light-parse fills with raw bytes under the source's lock, and that
// finalize later decodes into structured fields outside of it.
package read

import "math"

// ID is the type of the monotonically increasing, globally unique read
// identifier assigned by a pattern source when a batch is reserved.
type ID = uint64

// MaxID is the sentinel batch-id meaning "no batch has been loaded yet".
const MaxID = math.MaxUint64

// PhredOffset is the ASCII offset of the phred-33 quality scale all qualities
// are rescaled to during finalize.
const PhredOffset = 33

// SyntheticQual is the synthetic phred-40 quality character used to fill
// qualities for formats that carry no quality information of their own
// (FASTA, Raw).
const SyntheticQual = PhredOffset + 40 // 'I'

// Read is one sequencing read (or one mate of a pair). Between light-parse
// and finalize, only Raw and Raw2-Raw4 are valid; Name/Seq/Qual, ID and the
// pair flags are populated at finalize.
type Read struct {
	// Raw holds the bytes constituting this record exactly as they appeared
	// in the input, as captured by light-parse. It is never mutated by
	// finalize; Name/Seq/Qual are decoded copies (or subslices) derived from
	// it, or from fields captured alongside it for multi-field formats.
	Raw []byte

	// Raw2/Raw3/Raw4 hold additional raw lines/fields for formats whose
	// records don't fit in a single contiguous byte run (FASTA's name and
	// sequence, FASTQ's name/sequence/quality lines, FASTA-Continuous's
	// window name and bases); Tabbed and Qseq leave them nil and re-split Raw
	// at finalize. Unused slots are nil. Formats document which of these
	// they populate.
	Raw2, Raw3, Raw4 []byte

	// Name, Seq and Qual are set by finalize. Invariant: len(Seq) ==
	// len(Qual) once finalize returns successfully.
	Name []byte
	Seq  []byte
	Qual []byte

	// ID is the globally unique id assigned to this read; set by finalize
	// from the batch's reserved base id and the read's offset within it.
	ID ID

	// Paired is true if this read is one mate of a pair: set at finalize by
	// the Dual composer for both mates, and by the Solo composer when the
	// format filled both mates of the record (interleaved FASTQ, paired
	// Tabbed lines).
	Paired bool

	// MateNum is 1 or 2 for a paired read, 0 for an unpaired (single) read.
	MateNum uint8

	// Trim5, Trim3 record the number of bases actually clipped from the 5'
	// and 3' ends at finalize time (may be less than the configured trim
	// amount if the read is shorter than the requested clip).
	Trim5, Trim3 int

	// FilterPassed is the Qseq "filter" field; true unless the originating
	// format explicitly marks the read as not passing a vendor filter. All
	// other formats always set this true.
	FilterPassed bool

	// parsed marks whether Name/Seq/Qual have already been decoded; reset()
	// clears it so a reused Read never leaks a previous batch's content.
	parsed bool
}

// Reset clears a Read back to its zero, reusable state. Called by the batch
// buffer before light-parse refills a slot.
func (r *Read) Reset() {
	r.Raw = r.Raw[:0]
	r.Raw2, r.Raw3, r.Raw4 = nil, nil, nil
	r.Name, r.Seq, r.Qual = nil, nil, nil
	r.ID = MaxID
	r.Paired = false
	r.MateNum = 0
	r.Trim5, r.Trim3 = 0, 0
	r.FilterPassed = true
	r.parsed = false
}

// Empty reports whether light-parse never wrote a record into this slot;
// used by the batch buffer's exhaustion check.
func (r *Read) Empty() bool {
	return len(r.Raw) == 0
}

// Parsed reports whether finalize has already decoded this read.
func (r *Read) Parsed() bool { return r.parsed }

// MarkParsed is called by finalize implementations once Name/Seq/Qual are
// populated.
func (r *Read) MarkParsed() { r.parsed = true }

// ApplyTrim hard-clips trim5 bases from the 5' end and trim3 bases from the
// 3' end of Seq and Qual in lockstep, recording how much was actually
// removed (which may be less than requested if the read is too short).
func (r *Read) ApplyTrim(trim5, trim3 int) {
	if len(r.Seq) != len(r.Qual) {
		// Caller is expected to have already validated length equality;
		// finalize implementations check this before calling ApplyTrim.
		panic("read: ApplyTrim called before Seq/Qual lengths agree")
	}
	n := len(r.Seq)
	if trim5 < 0 {
		trim5 = 0
	}
	if trim3 < 0 {
		trim3 = 0
	}
	if trim5 > n {
		trim5 = n
	}
	if trim3 > n-trim5 {
		trim3 = n - trim5
	}
	r.Seq = r.Seq[trim5 : n-trim3]
	r.Qual = r.Qual[trim5 : n-trim3]
	r.Trim5, r.Trim3 = trim5, trim3
}

// FillSyntheticQual allocates a quality string of the given length filled
// with SyntheticQual, used by formats that carry no quality of their own.
func FillSyntheticQual(n int) []byte {
	q := make([]byte, n)
	for i := range q {
		q[i] = SyntheticQual
	}
	return q
}

// StripMateSuffix removes a trailing "/1" or "/2" from name, used by the
// fixName option. Applied to both mates of a pair, since a synthetic
// "/1"/"/2" suffix can show up in either mate's file regardless of which
// physical mate it tags.
func StripMateSuffix(name []byte) []byte {
	n := len(name)
	if n >= 2 && name[n-2] == '/' && (name[n-1] == '1' || name[n-1] == '2') {
		return name[:n-2]
	}
	return name
}
