package serialport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the subset of a serial connection the line reader needs.
// A read that hits the timeout returns (0, nil).
type Port interface {
	io.ReadCloser
}

// Opener opens a named serial device.
type Opener interface {
	Open(name string, baudRate int, readTimeout time.Duration) (Port, error)
}

// SystemOpener opens real devices through go.bug.st/serial with 8N1 framing.
type SystemOpener struct{}

var _ Opener = SystemOpener{}

// Open opens the device and applies the read timeout. The port is closed
// again if the timeout cannot be set.
func (SystemOpener) Open(name string, baudRate int, readTimeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	// drop whatever the device buffered before we attached
	_ = p.ResetInputBuffer()
	return p, nil
}
