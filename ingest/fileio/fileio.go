// Package fileio gives every pattern source a single, uniform byte-stream
// abstraction — get one byte, push at most one byte back, ask whether the
// stream is at EOF — no matter whether the bytes come from a plain file, a
// memory-mapped file, a gzip stream (klauspost or zlib-ng), a FIFO, or an S3
// object spooled to a temp file. Format parsers never see the difference.
package fileio

import (
	"bufio"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/yasushi-saito/zlibng"
	"golang.org/x/sys/unix"
)

// Backend selects the decompression/mapping strategy fileio.Open uses for a
// plain (non-S3) path. It has no effect on whether a file is treated as
// compressed — that is always decided by suffix/FIFO detection.
type Backend int

const (
	// BackendAuto picks klauspost/compress/gzip for compressed input and a
	// plain os.File read for everything else. The default.
	BackendAuto Backend = iota
	// BackendMmap memory-maps regular, uncompressed, seekable files instead
	// of reading them with buffered I/O.
	BackendMmap
	// BackendZlibNG uses github.com/yasushi-saito/zlibng instead of
	// klauspost/compress/gzip to decompress gzip input.
	BackendZlibNG
)

// Stream is the byte-stream contract every format parser's light_parse_batch
// uses. get returns (byte, false) normally, or (0, true) at EOF. unget
// pushes back at most one byte (the parsers never need more than one byte of
// lookahead) and must only be called once per get.
type Stream interface {
	Get() (b byte, eof bool)
	Unget(b byte)
	// Eof reports end-of-stream without consuming a byte.
	Eof() bool
	Close() error
}

// Open opens path, transparently decompressing gzip/Z-suffixed files and
// FIFOs, and dispatching s3:// paths to the S3 backend. backend selects the
// strategy for local files; it is ignored for s3:// paths (which always
// spool through a temp file before this function returns). The spooled
// temp file is removed once the returned Stream is closed, or immediately
// on any error path that never hands a Stream back to the caller.
func Open(path string, backend Backend) (Stream, error) {
	spooled := ""
	if strings.HasPrefix(path, "s3://") {
		local, err := spoolS3(path)
		if err != nil {
			return nil, errors.Wrapf(err, "fileio: fetching %s", path)
		}
		spooled = local
		path = local
		backend = BackendAuto
	}

	s, err := openLocal(path, backend)
	if err != nil {
		if spooled != "" {
			os.Remove(spooled)
		}
		return nil, err
	}
	if spooled != "" {
		s = removeOnClose{Stream: s, path: spooled}
	}
	return s, nil
}

// openLocal is Open's non-S3 core: path is always a real file on disk by
// the time this runs, whether it was the caller's own path or an S3 spool.
func openLocal(path string, backend Backend) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: opening %s", path)
	}

	gz, err := isCompressed(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if !gz {
		if backend == BackendMmap {
			s, err := newMmapStream(f)
			if err == nil {
				return s, nil
			}
			// Fall through to buffered read if mmap isn't viable (e.g. a
			// FIFO slipped past isCompressed, or the file is empty).
		}
		return newBufStream(f, nil), nil
	}

	var gzr io.Reader
	switch backend {
	case BackendZlibNG:
		zr, err := zlibng.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "fileio: zlib-ng header in %s", path)
		}
		gzr = zr
	default:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "fileio: gzip header in %s", path)
		}
		gzr = zr
	}
	return newBufStream(f, gzr), nil
}

// removeOnClose wraps a Stream so Close also removes a backing file once
// the caller is done with it — used to clean up an S3 input's spooled temp
// file, which nothing else owns.
type removeOnClose struct {
	Stream
	path string
}

func (s removeOnClose) Close() error {
	closeErr := s.Stream.Close()
	if err := os.Remove(s.path); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// isCompressed decides whether path should be treated as gzip-compressed:
// by the conventional .gz/.Z suffix, or because the underlying file is a
// FIFO (named pipes feeding compressed data are a common invocation, and
// can't be identified by suffix).
func isCompressed(path string, f *os.File) (bool, error) {
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".Z") {
		return true, nil
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return false, errors.Wrapf(err, "fileio: stat %s", path)
	}
	return st.Mode&unix.S_IFMT == unix.S_IFIFO, nil
}

// bufStream implements Stream over a bufio.Reader, with a one-byte pushback
// slot. src is the underlying *os.File, kept only to Close it; r wraps
// either src directly (plain case) or a decompressor reading from src.
type bufStream struct {
	src  *os.File
	r    *bufio.Reader
	has  bool
	pend byte
}

func newBufStream(src *os.File, decomp io.Reader) *bufStream {
	if decomp == nil {
		return &bufStream{src: src, r: bufio.NewReaderSize(src, 64*1024)}
	}
	return &bufStream{src: src, r: bufio.NewReaderSize(decomp, 64*1024)}
}

func (s *bufStream) Get() (byte, bool) {
	if s.has {
		s.has = false
		return s.pend, false
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, true
	}
	return b, false
}

func (s *bufStream) Unget(b byte) {
	s.pend = b
	s.has = true
}

func (s *bufStream) Eof() bool {
	if s.has {
		return false
	}
	_, err := s.r.Peek(1)
	return err != nil
}

func (s *bufStream) Close() error {
	return s.src.Close()
}

// spoolS3 downloads an s3://bucket/key path to a local temp file using the
// AWS SDK's managed downloader, returning the temp file's path. The temp
// file keeps the key's .gz/.Z suffix, so pushback and suffix-based gzip
// detection work over the spooled copy as for any local file.
func spoolS3(path string) (string, error) {
	bucket, key, err := splitS3(path)
	if err != nil {
		return "", err
	}
	suffix := ""
	if strings.HasSuffix(key, ".gz") {
		suffix = ".gz"
	} else if strings.HasSuffix(key, ".Z") {
		suffix = ".Z"
	}
	tmp, err := ioutil.TempFile("", "ingest-s3-*"+suffix)
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if err := downloadS3(bucket, key, tmp); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func splitS3(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, "s3://")
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return "", "", errors.Errorf("fileio: malformed s3 path %q: missing key", path)
	}
	return rest[:i], rest[i+1:], nil
}
