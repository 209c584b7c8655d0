// Package verify provides IDLedger, a reservation tracker for the id ranges
// a patsrc.Source hands out, used by tests (and optionally cmd/ingest-bench
// in -verify mode) to assert that id reservations are contiguous,
// gap-free, and duplicate-free.
package verify

import (
	"fmt"

	"github.com/biogo/store/llrb"
)

// interval is a half-open id range [Base, Base+N), ordered by Base.
type interval struct {
	Base, N uint64
}

func (iv interval) end() uint64 { return iv.Base + iv.N }

// Compare orders intervals by their start, so the tree can locate
// neighbors of a newly-reserved range in O(log n).
func (iv interval) Compare(c llrb.Comparable) int {
	o := c.(interval)
	switch {
	case iv.Base < o.Base:
		return -1
	case iv.Base > o.Base:
		return 1
	default:
		return 0
	}
}

// IDLedger is an ordered tree of reserved id intervals.
type IDLedger struct {
	tree llrb.Tree
	n    int
}

// NewIDLedger returns an empty ledger.
func NewIDLedger() *IDLedger { return &IDLedger{} }

// Reserve records ids [base, base+n) as just reserved. It fails immediately
// if the range overlaps one already recorded, rather than waiting for
// Verify to notice the corruption downstream.
func (l *IDLedger) Reserve(base uint64, n int) error {
	if n == 0 {
		return nil
	}
	iv := interval{Base: base, N: uint64(n)}

	if prev := l.tree.Floor(iv); prev != nil {
		if p := prev.(interval); p.end() > iv.Base {
			return fmt.Errorf("verify: reservation [%d,%d) overlaps existing [%d,%d)", iv.Base, iv.end(), p.Base, p.end())
		}
	}
	if next := l.tree.Ceil(iv); next != nil {
		if nx := next.(interval); iv.end() > nx.Base {
			return fmt.Errorf("verify: reservation [%d,%d) overlaps existing [%d,%d)", iv.Base, iv.end(), nx.Base, nx.end())
		}
	}

	l.tree.Insert(iv)
	l.n++
	return nil
}

// Verify walks every reserved interval in order and confirms the whole set
// forms one contiguous range starting at 0 (when non-empty). Reserve
// already rejects overlaps, so only gaps need checking here.
func (l *IDLedger) Verify() error {
	var prevEnd uint64
	first := true
	var err error
	l.tree.Do(func(c llrb.Comparable) (done bool) {
		iv := c.(interval)
		switch {
		case first && iv.Base != 0:
			err = fmt.Errorf("verify: id range does not start at 0: first reservation is [%d,%d)", iv.Base, iv.end())
			return true
		case !first && iv.Base != prevEnd:
			err = fmt.Errorf("verify: gap in id range between %d and %d", prevEnd, iv.Base)
			return true
		}
		first = false
		prevEnd = iv.end()
		return false
	})
	return err
}

// Len reports the number of distinct reservations recorded.
func (l *IDLedger) Len() int { return l.n }
