package format

import "github.com/grailbio/ingest/ingest/fileio"

// readLine reads bytes from stream up to and including a trailing '\n'
// (stripped from the result), or until EOF. ok is false only when no bytes
// at all were read before EOF (i.e. the stream was already exhausted).
func readLine(stream fileio.Stream) (line []byte, ok bool) {
	for {
		b, eof := stream.Get()
		if eof {
			return line, len(line) > 0
		}
		if b == '\n' {
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			return line, true
		}
		line = append(line, b)
	}
}

// peekByte returns the next byte without consuming it, and whether the
// stream is at EOF.
func peekByte(stream fileio.Stream) (b byte, eof bool) {
	b, eof = stream.Get()
	if !eof {
		stream.Unget(b)
	}
	return b, eof
}
