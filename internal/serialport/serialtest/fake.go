// Package serialtest provides in-memory serial devices for tests.
package serialtest

import (
	"errors"
	"sync"
	"time"

	"data_logger/internal/serialport"
)

// ErrPortClosed is returned by Read after Close.
var ErrPortClosed = errors.New("serialtest: port closed")

// Port is an in-memory serial device. Each queued chunk is returned by one
// Read; an empty queue behaves like a read timeout.
type Port struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration

	mu      sync.Mutex
	chunks  [][]byte
	readErr error
	closed  bool
	closes  int
}

var _ serialport.Port = (*Port)(nil)

// Feed queues raw chunks, returned one per Read.
func (p *Port) Feed(chunks ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range chunks {
		p.chunks = append(p.chunks, []byte(c))
	}
}

// FeedLines queues each line with a trailing "\r\n" as its own chunk.
func (p *Port) FeedLines(lines ...string) {
	for _, l := range lines {
		p.Feed(l + "\r\n")
	}
}

// FailReads makes every following Read return err once the queue is empty.
func (p *Port) FailReads(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}

func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if len(p.chunks) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		return 0, nil
	}
	c := p.chunks[0]
	n := copy(b, c)
	if n < len(c) {
		p.chunks[0] = c[n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closes++
	return nil
}

// IsClosed reports whether Close was called.
func (p *Port) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Closes returns how many times Close was called.
func (p *Port) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// Opener hands out registered Ports by name and refuses everything else.
type Opener struct {
	mu      sync.Mutex
	ports   map[string]*Port
	opened  []string
	openErr map[string]error
}

var _ serialport.Opener = (*Opener)(nil)

// ErrNoSuchPort is returned for names that were never added.
var ErrNoSuchPort = errors.New("serialtest: no such port")

// NewOpener returns an Opener with the given ports attached.
func NewOpener(names ...string) *Opener {
	o := &Opener{ports: map[string]*Port{}, openErr: map[string]error{}}
	for _, n := range names {
		o.ports[n] = &Port{Name: n}
	}
	return o
}

// Port returns the device registered under name, or nil.
func (o *Opener) Port(name string) *Port {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ports[name]
}

// RefuseOpen makes Open(name) fail with err, e.g. permission denied.
func (o *Opener) RefuseOpen(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.openErr[name] = err
}

// Opened lists the names Open succeeded for, in call order.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func (o *Opener) Open(name string, baudRate int, readTimeout time.Duration) (serialport.Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.openErr[name]; err != nil {
		return nil, err
	}
	p, ok := o.ports[name]
	if !ok {
		return nil, ErrNoSuchPort
	}
	p.mu.Lock()
	p.closed = false
	p.BaudRate = baudRate
	p.ReadTimeout = readTimeout
	p.mu.Unlock()

	o.opened = append(o.opened, name)
	return p, nil
}
