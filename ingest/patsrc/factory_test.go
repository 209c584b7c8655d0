package patsrc

import (
	"testing"

	"github.com/grailbio/ingest/ingest/format"
)

func TestNewComposerDualWhenMatesPresent(t *testing.T) {
	path1 := writeTempFile(t, "@r1/1\nACGT\n+\nIIII\n")
	path2 := writeTempFile(t, "@r1/2\nTTTT\n+\nIIII\n")
	in := Inputs{Mate1: []string{path1}, Mate2: []string{path2}}
	c := NewComposer(in, Params{Format: FormatFASTQ})
	if _, ok := c.(*DualComposer); !ok {
		t.Errorf("expected a *DualComposer, got %T", c)
	}
}

func TestNewComposerSoloWhenInterleaved(t *testing.T) {
	path := writeTempFile(t, "@r1/1\nACGT\n+\nIIII\n@r1/2\nTTTT\n+\nIIII\n")
	in := Inputs{Interleaved: []string{path}}
	c := NewComposer(in, Params{Format: FormatFASTQ})
	sc, ok := c.(*SoloComposer)
	if !ok {
		t.Fatalf("expected a *SoloComposer, got %T", c)
	}
	if sc.sources[0].Parser().Kind != format.FASTQInterleaved {
		t.Errorf("interleaved composer's source should use FASTQInterleaved Kind, got %v", sc.sources[0].Parser().Kind)
	}
}

func TestNewComposerSoloWhenSinglesOnly(t *testing.T) {
	path := writeTempFile(t, "@r1\nACGT\n+\nIIII\n")
	in := Inputs{Singles: []string{path}}
	c := NewComposer(in, Params{Format: FormatFASTQ})
	if _, ok := c.(*SoloComposer); !ok {
		t.Errorf("expected a *SoloComposer, got %T", c)
	}
}

func TestNewComposerPanicsOnMismatchedMateLengths(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for |Mate1| != |Mate2|")
		}
	}()
	path := writeTempFile(t, "@r1\nACGT\n+\nIIII\n")
	in := Inputs{Mate1: []string{path}, Mate2: []string{path, path}}
	NewComposer(in, Params{Format: FormatFASTQ})
}

func TestBuildSourcesFileParallelOneSourcePerFile(t *testing.T) {
	path1 := writeTempFile(t, "@r1\nACGT\n+\nIIII\n")
	path2 := writeTempFile(t, "@r2\nTTTT\n+\nIIII\n")
	sources := buildSources([]string{path1, path2}, Params{Format: FormatFASTQ, FileParallel: true})
	if len(sources) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(sources))
	}
}

func TestBuildSourcesNonParallelSingleSource(t *testing.T) {
	path1 := writeTempFile(t, "@r1\nACGT\n+\nIIII\n")
	path2 := writeTempFile(t, "@r2\nTTTT\n+\nIIII\n")
	sources := buildSources([]string{path1, path2}, Params{Format: FormatFASTQ})
	if len(sources) != 1 {
		t.Fatalf("len(sources) = %d, want 1", len(sources))
	}
}
