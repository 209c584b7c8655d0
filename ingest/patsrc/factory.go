package patsrc

// Inputs is the raw set of input-file vectors a caller supplies: unpaired
// singles, left/right mate lists, and interleaved pairs.
type Inputs struct {
	Singles      []string
	Mate1, Mate2 []string
	Interleaved  []string
}

// NewComposer applies Bowtie2's pattern-source construction rules:
// non-empty, equal-length Mate1/Mate2 selects Dual; otherwise non-empty
// Interleaved selects Solo over an interleaved-FASTQ source; otherwise Solo
// over Singles. params.FileParallel wraps each individual file in its own
// Source rather than round-robining one Source over the whole list.
func NewComposer(in Inputs, params Params) Composer {
	if len(in.Mate1) != len(in.Mate2) {
		panic("patsrc: mate1 and mate2 file lists must be the same length")
	}

	if len(in.Mate1) > 0 {
		srcA := buildSources(in.Mate1, params)
		srcB := buildSources(in.Mate2, params)
		return NewDualComposer(srcA, srcB, params.sink())
	}

	if len(in.Interleaved) > 0 {
		interleavedParams := params
		interleavedParams.Format = FormatFASTQInterleaved
		return NewSoloComposer(buildSources(in.Interleaved, interleavedParams))
	}

	return NewSoloComposer(buildSources(in.Singles, params))
}

// buildSources returns one Source per file when params.FileParallel is
// set, otherwise a single Source round-robining the whole list.
func buildSources(files []string, params Params) []*Source {
	if !params.FileParallel {
		return []*Source{NewSource(files, params, 0)}
	}
	sources := make([]*Source, len(files))
	for i, f := range files {
		sources[i] = NewSource([]string{f}, params, i)
	}
	return sources
}
