package serialport

import (
	"bytes"
	"errors"
	"io"
)

const (
	readChunkSize = 256
	// MaxLineLength bounds a line; longer runs are discarded up to the next '\n'.
	MaxLineLength = 4096
)

// ErrLineTooLong is returned once for every discarded over-long line.
var ErrLineTooLong = errors.New("serial line exceeds maximum length")

// LineReader splits a timeout-driven byte stream into '\n' terminated lines.
//
// bufio is not used on purpose: a serial read that times out returns (0, nil)
// and bufio.Reader retries those reads before failing with io.ErrNoProgress.
type LineReader struct {
	src     io.Reader
	chunk   []byte
	pending []byte
	discard bool
	err     error // source error held back behind a served line
}

// NewLineReader wraps src.
func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{
		src:   src,
		chunk: make([]byte, readChunkSize),
	}
}

// ReadLine returns the next complete line without its terminator.
//
// A call serves a buffered line if there is one and otherwise performs at
// most one Read on the source, so it never blocks longer than the source's
// own timeout. ok is false when no full line is buffered yet; partial bytes
// are kept for the next call. ErrLineTooLong is returned as soon as the
// buffered run exceeds MaxLineLength; the rest of that line is then dropped
// silently. A source error is returned as is.
func (r *LineReader) ReadLine() (line []byte, ok bool, err error) {
	if line, ok, err = r.next(); ok || err != nil {
		return line, ok, err
	}
	if r.err != nil {
		err, r.err = r.err, nil
		return nil, false, err
	}

	n, rerr := r.src.Read(r.chunk)
	if n > 0 {
		r.pending = append(r.pending, r.chunk[:n]...)
		if line, ok, err = r.next(); ok || err != nil {
			r.err = rerr
			return line, ok, err
		}
	}
	return nil, false, rerr
}

// next extracts a line from the buffer without touching the source.
func (r *LineReader) next() ([]byte, bool, error) {
	for {
		i := bytes.IndexByte(r.pending, '\n')
		if i < 0 {
			break
		}
		if r.discard {
			r.pending = r.pending[i+1:]
			r.discard = false
			continue
		}
		if i > MaxLineLength {
			r.pending = r.pending[i+1:]
			return nil, false, ErrLineTooLong
		}
		line := append([]byte(nil), r.pending[:i]...)
		r.pending = r.pending[i+1:]
		return line, true, nil
	}

	if r.discard {
		r.pending = r.pending[:0]
		return nil, false, nil
	}
	if len(r.pending) > MaxLineLength {
		r.pending = r.pending[:0]
		r.discard = true
		return nil, false, ErrLineTooLong
	}
	return nil, false, nil
}

// Buffered reports how many bytes of an incomplete line are held.
func (r *LineReader) Buffered() int {
	return len(r.pending)
}
