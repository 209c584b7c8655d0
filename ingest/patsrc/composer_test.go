package patsrc

import (
	"testing"

	"github.com/grailbio/ingest/ingest/diag"
)

func TestSoloComposerRoundRobinsAcrossSources(t *testing.T) {
	pathA := writeTempFile(t, "@a1\nACGT\n+\nIIII\n")
	pathB := writeTempFile(t, "@b1\nTTTT\n+\nIIII\n")
	srcA := NewSource([]string{pathA}, Params{Format: FormatFASTQ}, 0)
	srcB := NewSource([]string{pathB}, Params{Format: FormatFASTQ}, 1)
	c := NewSoloComposer([]*Source{srcA, srcB})

	buf := NewBuffer(1)
	done, n := c.NextBatch(buf)
	if done || n != 1 {
		t.Fatalf("batch 1: done=%v n=%d, want false,1", done, n)
	}
	first := string(buf.bufA[0].Raw2)

	buf2 := NewBuffer(1)
	_, n = c.NextBatch(buf2)
	if n != 1 {
		t.Fatalf("batch 2: n=%d, want 1", n)
	}
	second := string(buf2.bufA[0].Raw2)

	if first == second {
		t.Errorf("second batch should come from the second source once the first is exhausted: got %q then %q", first, second)
	}

	// Third call: both sources are now exhausted.
	buf3 := NewBuffer(1)
	done, n = c.NextBatch(buf3)
	if !done || n != 0 {
		t.Fatalf("batch 3: done=%v n=%d, want true,0", done, n)
	}
}

func TestSoloComposerFinalizeSkipsEmptySlot(t *testing.T) {
	path := writeTempFile(t, "@a1\nACGT\n+\nIIII\n")
	src := NewSource([]string{path}, Params{Format: FormatFASTQ}, 0)
	c := NewSoloComposer([]*Source{src})

	buf := NewBuffer(2)
	_, n := c.NextBatch(buf)
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}
	c.Finalize(buf, 0, 0)
	if !buf.bufA[0].Parsed() {
		t.Errorf("populated slot should be parsed after Finalize")
	}
	c.Finalize(buf, 1, 0)
	if buf.bufA[1].Parsed() {
		t.Errorf("never-filled slot should remain unparsed")
	}
}

func TestDualComposerPairsMatesUnderSharedID(t *testing.T) {
	path1 := writeTempFile(t, "@r1/1\nACGT\n+\nIIII\n@r2/1\nAAAA\n+\nIIII\n")
	path2 := writeTempFile(t, "@r1/2\nTTTT\n+\nIIII\n@r2/2\nCCCC\n+\nIIII\n")
	srcA := NewSource([]string{path1}, Params{Format: FormatFASTQ}, 0)
	srcB := NewSource([]string{path2}, Params{Format: FormatFASTQ}, 1)
	c := NewDualComposer([]*Source{srcA}, []*Source{srcB}, nil)

	buf := NewBuffer(2)
	done, n := c.NextBatch(buf)
	if done || n != 2 {
		t.Fatalf("done=%v n=%d, want false,2", done, n)
	}
	c.Finalize(buf, 0, 42)
	if buf.bufA[0].ID != 42 || buf.bufB[0].ID != 42 {
		t.Errorf("mate ids = %d/%d, want both 42", buf.bufA[0].ID, buf.bufB[0].ID)
	}
	if got, want := string(buf.bufB[0].Name), "r1/2"; got != want {
		t.Errorf("mate-b name = %q, want %q", got, want)
	}
}

func TestDualComposerDesyncReportsCorruption(t *testing.T) {
	path1 := writeTempFile(t, "@r1/1\nACGT\n+\nIIII\n@r2/1\nAAAA\n+\nIIII\n")
	path2 := writeTempFile(t, "@r1/2\nTTTT\n+\nIIII\n")
	srcA := NewSource([]string{path1}, Params{Format: FormatFASTQ}, 0)
	srcB := NewSource([]string{path2}, Params{Format: FormatFASTQ}, 1)
	sink := &diag.Collector{}
	c := NewDualComposer([]*Source{srcA}, []*Source{srcB}, sink)

	buf := NewBuffer(2)
	done, n := c.NextBatch(buf)
	if !done || n != 0 {
		t.Fatalf("done=%v n=%d, want true,0 on desync", done, n)
	}
	if len(sink.Fatals) != 1 {
		t.Fatalf("Fatals = %d, want 1", len(sink.Fatals))
	}
	if sink.Fatals[0].Code != diag.StreamCorrupt {
		t.Errorf("Fatal code = %v, want StreamCorrupt", sink.Fatals[0].Code)
	}
}

func TestDualComposerWarnsOnDivergentMateNames(t *testing.T) {
	path1 := writeTempFile(t, "@alpha\nACGT\n+\nIIII\n")
	path2 := writeTempFile(t, "@completely_different_name_here\nTTTT\n+\nIIII\n")
	srcA := NewSource([]string{path1}, Params{Format: FormatFASTQ}, 0)
	srcB := NewSource([]string{path2}, Params{Format: FormatFASTQ}, 1)
	sink := &diag.Collector{}
	c := NewDualComposer([]*Source{srcA}, []*Source{srcB}, sink)

	buf := NewBuffer(1)
	c.NextBatch(buf)
	if len(sink.Warnings) != 1 {
		t.Fatalf("Warnings = %d, want 1", len(sink.Warnings))
	}
	if sink.Warnings[0].Code != diag.MateNameDivergence {
		t.Errorf("Warning code = %v, want MateNameDivergence", sink.Warnings[0].Code)
	}
}

func TestNewDualComposerPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for mismatched source-list lengths")
		}
	}()
	path := writeTempFile(t, "@r1\nACGT\n+\nIIII\n")
	src := NewSource([]string{path}, Params{Format: FormatFASTQ}, 0)
	NewDualComposer([]*Source{src}, []*Source{src, src}, nil)
}
