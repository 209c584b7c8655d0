package format

import (
	"testing"

	"github.com/grailbio/ingest/ingest/qual"
	"github.com/grailbio/ingest/ingest/read"
)

func TestFastqLightParseAndFinalize(t *testing.T) {
	p := NewParser(FASTQ, 0, 0)
	stream := newMemStream("@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+\nIIII\n")
	bufA := makeBufA(2)

	done, n := p.LightParseBatch(stream, bufA, nil, 0)
	if n != 2 || !done {
		t.Fatalf("n=%d done=%v, want 2,true", n, done)
	}

	fp := FinalizeParams{File: "r.fq"}
	p.Finalize(bufA[0], nil, 7, fp)
	if got, want := string(bufA[0].Name), "r1"; got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
	if got, want := string(bufA[0].Seq), "ACGT"; got != want {
		t.Errorf("Seq = %q, want %q", got, want)
	}
	if got, want := string(bufA[0].Qual), "IIII"; got != want {
		t.Errorf("Qual = %q, want %q", got, want)
	}
	if bufA[0].ID != 7 {
		t.Errorf("ID = %d, want 7", bufA[0].ID)
	}
	if !bufA[0].Parsed() {
		t.Errorf("expected Parsed() == true")
	}
}

func TestFastqInterleavedFillsBothSlots(t *testing.T) {
	p := NewParser(FASTQInterleaved, 0, 0)
	stream := newMemStream("@r1/1\nACGT\n+\nIIII\n@r1/2\nTTTT\n+\nIIII\n")
	bufA := makeBufA(1)
	bufB := makeBufA(1)

	done, n := p.LightParseBatch(stream, bufA, bufB, 0)
	if n != 1 || !done {
		t.Fatalf("n=%d done=%v, want 1,true", n, done)
	}

	fp := FinalizeParams{FixName: true}
	p.Finalize(bufA[0], bufB[0], 3, fp)
	if got, want := string(bufA[0].Name), "r1"; got != want {
		t.Errorf("mate-a Name = %q, want %q", got, want)
	}
	if got, want := string(bufB[0].Name), "r1"; got != want {
		t.Errorf("mate-b Name = %q, want %q", got, want)
	}
	if bufA[0].ID != 3 || bufB[0].ID != 3 {
		t.Errorf("mates should share id 3, got %d / %d", bufA[0].ID, bufB[0].ID)
	}
}

func TestFastqInterleavedOddRecordDropsUnmatchedMate(t *testing.T) {
	p := NewParser(FASTQInterleaved, 0, 0)
	stream := newMemStream("@r1/1\nACGT\n+\nIIII\n")
	bufA := makeBufA(1)
	bufB := makeBufA(1)

	done, n := p.LightParseBatch(stream, bufA, bufB, 0)
	if n != 0 || !done {
		t.Fatalf("n=%d done=%v, want 0,true", n, done)
	}
	if !bufA[0].Empty() {
		t.Errorf("unmatched mate-a record should be dropped (Empty())")
	}
}

func TestFastqTruncatedRecordStopsLightParse(t *testing.T) {
	p := NewParser(FASTQ, 0, 0)
	stream := newMemStream("@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+\n")
	bufA := makeBufA(2)
	done, n := p.LightParseBatch(stream, bufA, nil, 0)
	if n != 1 || !done {
		t.Fatalf("n=%d done=%v, want 1,true", n, done)
	}
}

func TestFastqQualEncodingConversion(t *testing.T) {
	p := NewParser(FASTQ, 0, 0)
	stream := newMemStream("@r1\nACGT\n+\nhhhh\n")
	bufA := makeBufA(1)
	p.LightParseBatch(stream, bufA, nil, 0)

	fp := FinalizeParams{QualEncoding: qual.Phred64}
	p.Finalize(bufA[0], nil, 0, fp)
	want := byte('h') - 64 + 33
	for _, b := range bufA[0].Qual {
		if b != want {
			t.Errorf("Qual byte = %q, want %q", b, want)
		}
	}
}

func TestFastqEmptyReadNeverFinalized(t *testing.T) {
	p := NewParser(FASTQ, 0, 0)
	var r read.Read
	p.Finalize(&r, nil, 0, FinalizeParams{})
	if r.Parsed() {
		t.Errorf("finalize on an empty (never light-parsed) read should be a no-op")
	}
}
