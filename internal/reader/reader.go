package reader

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"data_logger/internal/logger"
	"data_logger/internal/models"
	"data_logger/internal/serialport"
)

// State of a Reader.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	default:
		return "closed"
	}
}

// Defaults of the bench device.
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 2 * time.Second
)

var (
	ErrNotOpen     = errors.New("serial connection is not open")
	ErrAlreadyOpen = errors.New("serial connection is already open")
)

// PortOpenError reports that the OS refused to open a port.
type PortOpenError struct {
	Port string
	Err  error
}

func (e *PortOpenError) Error() string {
	return fmt.Sprintf("unable to open serial port %q: %v", e.Port, e.Err)
}

func (e *PortOpenError) Unwrap() error { return e.Err }

// Params are the fixed serial parameters applied on Open.
type Params struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// DefaultParams returns 9600 baud with a 2 second read timeout.
func DefaultParams() Params {
	return Params{BaudRate: DefaultBaudRate, ReadTimeout: DefaultReadTimeout}
}

// Reader owns a single serial connection and turns its lines into Readings.
// ReadOne is meant to be called from one goroutine; Close may be called from
// any goroutine to unblock an in-flight read.
type Reader struct {
	opener serialport.Opener
	params Params
	log    *logger.Logger

	mu    sync.Mutex
	state State
	port  string
	conn  serialport.Port
	lines *serialport.LineReader
}

// New returns a closed Reader. Zero params fields fall back to defaults.
func New(opener serialport.Opener, params Params, log *logger.Logger) *Reader {
	if params.BaudRate <= 0 {
		params.BaudRate = DefaultBaudRate
	}
	if params.ReadTimeout <= 0 {
		params.ReadTimeout = DefaultReadTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{opener: opener, params: params, log: log}
}

// Open connects to port. On failure the reader moves to StateFailed and a
// *PortOpenError is returned; no retry is attempted.
func (r *Reader) Open(port string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateOpen {
		return ErrAlreadyOpen
	}

	conn, err := r.opener.Open(port, r.params.BaudRate, r.params.ReadTimeout)
	if err != nil {
		r.state = StateFailed
		r.port = port
		return &PortOpenError{Port: port, Err: err}
	}

	r.conn = conn
	r.lines = serialport.NewLineReader(conn)
	r.port = port
	r.state = StateOpen
	return nil
}

// ReadOne performs one read of at most one line. It returns ok=false when
// the read timed out or the line was dropped (no comma, invalid UTF-8,
// over-long). A non-nil error means the connection itself failed.
func (r *Reader) ReadOne() (models.Reading, bool, error) {
	r.mu.Lock()
	if r.state != StateOpen {
		r.mu.Unlock()
		return models.Reading{}, false, ErrNotOpen
	}
	lines := r.lines
	r.mu.Unlock()

	raw, ok, err := lines.ReadLine()
	if err != nil {
		if errors.Is(err, serialport.ErrLineTooLong) {
			r.log.Debugw("serial_line_dropped", "port", r.Port(), "reason", "too_long")
			return models.Reading{}, false, nil
		}
		if r.State() != StateOpen {
			// closed underneath us by Close
			return models.Reading{}, false, ErrNotOpen
		}
		return models.Reading{}, false, fmt.Errorf("read %s: %w", r.Port(), err)
	}
	if !ok {
		return models.Reading{}, false, nil
	}

	text, ok := decodeLine(raw)
	if !ok {
		r.log.Debugw("serial_line_dropped", "port", r.Port(), "reason", "invalid_utf8")
		return models.Reading{}, false, nil
	}
	reading, ok := ParseLine(text)
	if !ok {
		r.log.Debugw("serial_line_dropped", "port", r.Port(), "reason", "no_comma", "line", text)
	}
	return reading, ok, nil
}

// Close releases the OS handle. Closing a closed or failed reader is a no-op.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateOpen {
		return nil
	}
	conn := r.conn
	r.conn = nil
	r.lines = nil
	r.state = StateClosed
	return conn.Close()
}

// State returns the current state.
func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Closed reports whether no connection is held (StateClosed or StateFailed).
func (r *Reader) Closed() bool {
	return r.State() != StateOpen
}

// Port returns the name of the last port Open was called with.
func (r *Reader) Port() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.port
}

// Params returns the effective serial parameters.
func (r *Reader) Params() Params {
	return r.params
}
