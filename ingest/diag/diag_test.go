package diag

import "testing"

func TestCollectorAccumulates(t *testing.T) {
	var c Collector
	c.Warn(Warning{Code: TooFewQualities, File: "a.fq", Message: "short"})
	c.Warn(Warning{Code: TooManyQualities, File: "a.fq", Message: "long"})
	c.Fatal(Fatal{Code: StreamCorrupt, File: "a.fq", Message: "boom"})

	if len(c.Warnings) != 2 {
		t.Fatalf("len(Warnings) = %d, want 2", len(c.Warnings))
	}
	if len(c.Fatals) != 1 {
		t.Fatalf("len(Fatals) = %d, want 1", len(c.Fatals))
	}
	if c.Warnings[0].Code != TooFewQualities {
		t.Errorf("Warnings[0].Code = %v, want TooFewQualities", c.Warnings[0].Code)
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	// Must not panic; there's nothing else to assert on a sink that drops.
	Discard.Warn(Warning{Code: RecordSkipped})
	Discard.Fatal(Fatal{Code: StreamCorrupt})
}

func TestWarningError(t *testing.T) {
	w := Warning{Code: TooFewQualities, File: "a.fq", Line: 12, Message: "short by 3"}
	if got, want := w.Error(), "a.fq:12: too-few-qualities: short by 3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	w.Line = 0
	if got, want := w.Error(), "a.fq: too-few-qualities: short by 3"; got != want {
		t.Errorf("Error() (no line) = %q, want %q", got, want)
	}
}

func TestFatalErrorIncludesFingerprint(t *testing.T) {
	f := Fatal{Code: StreamCorrupt, File: "a.fq", Message: "bad gzip", Fingerprint: 0xdeadbeef}
	want := "a.fq: stream-corrupt: bad gzip (fingerprint 00000000deadbeef)"
	if got := f.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
