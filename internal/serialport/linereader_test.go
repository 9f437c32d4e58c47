package serialport

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// scriptedSource returns one scripted step per Read call. A nil data entry
// with a nil error simulates a read timeout.
type scriptedSource struct {
	steps []step
	calls int
}

type step struct {
	data string
	err  error
}

func (s *scriptedSource) Read(p []byte) (int, error) {
	if s.calls >= len(s.steps) {
		return 0, io.EOF
	}
	st := s.steps[s.calls]
	s.calls++
	n := copy(p, st.data)
	return n, st.err
}

func TestLineReader_SplitsLinesAcrossChunks(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{data: "10,LE"},
		{data: "FT\r\n20,RI"},
		{data: "GHT\n"},
	}}
	r := NewLineReader(src)

	if line, ok, err := r.ReadLine(); err != nil || ok || line != nil {
		t.Fatalf("partial chunk = %q ok=%v err=%v", line, ok, err)
	}
	line, ok, err := r.ReadLine()
	if err != nil || !ok || string(line) != "10,LEFT\r" {
		t.Fatalf("first line = %q ok=%v err=%v", line, ok, err)
	}
	line, ok, err = r.ReadLine()
	if err != nil || !ok || string(line) != "20,RIGHT" {
		t.Fatalf("second line = %q ok=%v err=%v", line, ok, err)
	}
	if r.Buffered() != 0 {
		t.Fatalf("expected empty buffer, got %d bytes", r.Buffered())
	}
	if src.calls != 3 {
		t.Fatalf("expected one Read per call, got %d", src.calls)
	}
}

func TestLineReader_TimeoutKeepsPartial(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{data: "42,ST"},
		{}, // timeout
		{data: "OP\n"},
	}}
	r := NewLineReader(src)

	for i := 1; i <= 2; i++ {
		line, ok, err := r.ReadLine()
		if err != nil || ok || line != nil {
			t.Fatalf("call %d: expected no line, got %q ok=%v err=%v", i, line, ok, err)
		}
		if src.calls != i {
			t.Fatalf("call %d: Read calls = %d", i, src.calls)
		}
		if r.Buffered() != len("42,ST") {
			t.Fatalf("call %d: partial not kept: %d", i, r.Buffered())
		}
	}
	line, ok, err := r.ReadLine()
	if err != nil || !ok || string(line) != "42,STOP" {
		t.Fatalf("line = %q ok=%v err=%v", line, ok, err)
	}
}

func TestLineReader_ServesBufferedLinesWithoutReading(t *testing.T) {
	src := &scriptedSource{steps: []step{{data: "1,A\n2,B\n"}}}
	r := NewLineReader(src)

	if _, ok, _ := r.ReadLine(); !ok {
		t.Fatalf("expected first line")
	}
	line, ok, err := r.ReadLine()
	if err != nil || !ok || string(line) != "2,B" {
		t.Fatalf("line = %q ok=%v err=%v", line, ok, err)
	}
	if src.calls != 1 {
		t.Fatalf("expected a single Read call, got %d", src.calls)
	}
}

func TestLineReader_PropagatesSourceError(t *testing.T) {
	boom := errors.New("device unplugged")
	r := NewLineReader(&scriptedSource{steps: []step{{err: boom}}})

	if _, _, err := r.ReadLine(); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestLineReader_ServesLineBeforeSourceError(t *testing.T) {
	boom := errors.New("device unplugged")
	r := NewLineReader(&scriptedSource{steps: []step{{data: "1,A\n", err: boom}}})

	line, ok, err := r.ReadLine()
	if err != nil || !ok || string(line) != "1,A" {
		t.Fatalf("line = %q ok=%v err=%v", line, ok, err)
	}
	if _, _, err := r.ReadLine(); !errors.Is(err, boom) {
		t.Fatalf("expected held source error, got %v", err)
	}
}

func TestLineReader_DiscardsOverlongLine(t *testing.T) {
	long := bytes.Repeat([]byte("x"), MaxLineLength+10)
	steps := []step{}
	for i := 0; i < len(long); i += readChunkSize {
		end := i + readChunkSize
		if end > len(long) {
			end = len(long)
		}
		steps = append(steps, step{data: string(long[i:end])})
	}
	longChunks := len(steps)
	steps = append(steps, step{data: "tail\n5,GO\n"})
	src := &scriptedSource{steps: steps}
	r := NewLineReader(src)

	for i := 1; i < longChunks; i++ {
		if _, ok, err := r.ReadLine(); err != nil || ok {
			t.Fatalf("call %d: expected pending, got ok=%v err=%v", i, ok, err)
		}
	}
	_, ok, err := r.ReadLine()
	if !errors.Is(err, ErrLineTooLong) || ok {
		t.Fatalf("expected ErrLineTooLong, got ok=%v err=%v", ok, err)
	}
	if src.calls != longChunks {
		t.Fatalf("ErrLineTooLong after %d reads; want %d", src.calls, longChunks)
	}
	if r.Buffered() != 0 {
		t.Fatalf("overflow not cleared: %d bytes", r.Buffered())
	}

	line, ok, err := r.ReadLine()
	if err != nil || !ok || string(line) != "5,GO" {
		t.Fatalf("line after discard = %q ok=%v err=%v", line, ok, err)
	}
}

// endlessSource never sends a line terminator.
type endlessSource struct {
	reads int
}

func (s *endlessSource) Read(p []byte) (int, error) {
	s.reads++
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

func TestLineReader_UnterminatedStreamReturnsAfterEachRead(t *testing.T) {
	src := &endlessSource{}
	r := NewLineReader(src)

	tooLong := 0
	for i := 1; i <= 200; i++ {
		_, ok, err := r.ReadLine()
		if ok {
			t.Fatalf("call %d: unexpected line", i)
		}
		if errors.Is(err, ErrLineTooLong) {
			tooLong++
		} else if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if src.reads != i {
			t.Fatalf("call %d: Read calls = %d; want %d", i, src.reads, i)
		}
		if r.Buffered() > MaxLineLength {
			t.Fatalf("call %d: buffer grew to %d", i, r.Buffered())
		}
	}
	if tooLong != 1 {
		t.Fatalf("ErrLineTooLong reported %d times; want once per line", tooLong)
	}
}
