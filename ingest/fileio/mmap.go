package fileio

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mmapStream implements Stream over a memory-mapped regular file. unget
// simply rewinds the cursor rather than buffering a byte, since the whole
// file is already resident.
type mmapStream struct {
	src  *os.File
	data []byte
	pos  int
}

func newMmapStream(f *os.File) (*mmapStream, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "fileio: stat for mmap")
	}
	if fi.Size() == 0 {
		return nil, errors.New("fileio: refusing to mmap an empty file")
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "fileio: mmap")
	}
	return &mmapStream{src: f, data: data}, nil
}

func (m *mmapStream) Get() (byte, bool) {
	if m.pos >= len(m.data) {
		return 0, true
	}
	b := m.data[m.pos]
	m.pos++
	return b, false
}

func (m *mmapStream) Unget(b byte) {
	if m.pos > 0 {
		m.pos--
	}
}

func (m *mmapStream) Eof() bool {
	return m.pos >= len(m.data)
}

func (m *mmapStream) Close() error {
	if m.data != nil {
		unix.Munmap(m.data)
		m.data = nil
	}
	return m.src.Close()
}
