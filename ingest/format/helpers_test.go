package format

import "github.com/grailbio/ingest/ingest/diag"

// memStream is a fileio.Stream over an in-memory byte slice, for tests that
// don't need a real file.
type memStream struct {
	data []byte
	pos  int
	pend byte
	has  bool
}

func newMemStream(s string) *memStream { return &memStream{data: []byte(s)} }

func (m *memStream) Get() (byte, bool) {
	if m.has {
		m.has = false
		return m.pend, false
	}
	if m.pos >= len(m.data) {
		return 0, true
	}
	b := m.data[m.pos]
	m.pos++
	return b, false
}

func (m *memStream) Unget(b byte) { m.pend, m.has = b, true }

func (m *memStream) Eof() bool {
	if m.has {
		return false
	}
	return m.pos >= len(m.data)
}

func (m *memStream) Close() error { return nil }

// collector is a minimal diag.Sink that records raised Codes, for tests
// that only care which diagnostic fired, not its exact message text.
type collector struct {
	warnings []diag.Code
	fatals   []diag.Code
}

func (c *collector) Warn(w diag.Warning) { c.warnings = append(c.warnings, w.Code) }
func (c *collector) Fatal(f diag.Fatal)  { c.fatals = append(c.fatals, f.Code) }
