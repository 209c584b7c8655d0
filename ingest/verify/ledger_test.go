package verify

import "testing"

func TestIDLedgerContiguousReservationsVerify(t *testing.T) {
	l := NewIDLedger()
	mustReserve(t, l, 0, 10)
	mustReserve(t, l, 10, 5)
	mustReserve(t, l, 15, 1)

	if err := l.Verify(); err != nil {
		t.Errorf("Verify() = %v, want nil", err)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
}

func TestIDLedgerGapFailsVerify(t *testing.T) {
	l := NewIDLedger()
	mustReserve(t, l, 0, 10)
	mustReserve(t, l, 20, 5) // gap [10,20)

	if err := l.Verify(); err == nil {
		t.Errorf("Verify() = nil, want a gap error")
	}
}

func TestIDLedgerNotStartingAtZeroFailsVerify(t *testing.T) {
	l := NewIDLedger()
	mustReserve(t, l, 5, 10)

	if err := l.Verify(); err == nil {
		t.Errorf("Verify() = nil, want a non-zero-start error")
	}
}

func TestIDLedgerOverlapRejectedAtReserve(t *testing.T) {
	l := NewIDLedger()
	mustReserve(t, l, 0, 10)

	if err := l.Reserve(5, 10); err == nil {
		t.Errorf("Reserve() overlapping [5,15) over existing [0,10) = nil, want an error")
	}
	if err := l.Reserve(9, 1); err == nil {
		t.Errorf("Reserve() overlapping [9,10) = nil, want an error")
	}
	if err := l.Reserve(10, 5); err != nil {
		t.Errorf("Reserve() of an adjacent, non-overlapping range = %v, want nil", err)
	}
}

func TestIDLedgerZeroLengthReservationIsNoOp(t *testing.T) {
	l := NewIDLedger()
	if err := l.Reserve(100, 0); err != nil {
		t.Errorf("Reserve(_, 0) = %v, want nil", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after a zero-length reservation", l.Len())
	}
}

func mustReserve(t *testing.T, l *IDLedger, base uint64, n int) {
	t.Helper()
	if err := l.Reserve(base, n); err != nil {
		t.Fatalf("Reserve(%d, %d) = %v, want nil", base, n, err)
	}
}
