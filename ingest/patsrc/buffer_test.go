package patsrc

import "testing"

func TestBufferExhaustedOffByOne(t *testing.T) {
	b := NewBuffer(3)
	b.SetBaseID(0)
	b.Init()

	// All slots empty: even at cur=0, bufA[1] is empty, so Exhausted is
	// already true before any record has been consumed.
	if !b.Exhausted() {
		t.Errorf("Exhausted() = false, want true when the next slot is empty")
	}
}

func TestBufferExhaustedFalseWithLookaheadFilled(t *testing.T) {
	b := NewBuffer(3)
	b.bufA[0].Raw = []byte("x")
	b.bufA[1].Raw = []byte("y")
	b.SetBaseID(0)
	b.Init()

	if b.Exhausted() {
		t.Errorf("Exhausted() = true, want false: cur=0 and bufA[1] is non-empty")
	}
	b.Next()
	// cur=1: bufA[2] (never filled) is empty, so Exhausted fires even
	// though cur hasn't reached n-1 yet.
	if !b.Exhausted() {
		t.Errorf("Exhausted() = false, want true once the lookahead slot is empty")
	}
}

func TestBufferResetClearsBaseIDAndSlots(t *testing.T) {
	b := NewBuffer(2)
	b.bufA[0].Raw = []byte("x")
	b.SetBaseID(5)
	b.Reset()

	if !b.bufA[0].Empty() {
		t.Errorf("Reset should clear all slots")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Rdid on a reset buffer should panic")
		}
	}()
	b.Rdid()
}

func TestBufferRdidOffsetsFromCursor(t *testing.T) {
	b := NewBuffer(4)
	b.SetBaseID(100)
	b.Init()
	if got, want := b.Rdid(), uint64(100); got != want {
		t.Errorf("Rdid() = %d, want %d", got, want)
	}
	b.Next()
	if got, want := b.Rdid(), uint64(101); got != want {
		t.Errorf("Rdid() = %d, want %d", got, want)
	}
}

func TestBufferNextPanicsPastEnd(t *testing.T) {
	b := NewBuffer(1)
	b.SetBaseID(0)
	b.Init()
	b.cur = len(b.bufA)
	defer func() {
		if recover() == nil {
			t.Errorf("Next() past the end should panic")
		}
	}()
	b.Next()
}
