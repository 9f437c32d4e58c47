package serialport

import (
	"data_logger/internal/models"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Enumerator lists the serial devices currently attached to the host.
type Enumerator interface {
	List() ([]models.PortInfo, error)
}

// SystemEnumerator queries the OS on every call.
type SystemEnumerator struct {
	detailed func() ([]*enumerator.PortDetails, error)
	names    func() ([]string, error)
}

// NewSystemEnumerator returns an enumerator backed by go.bug.st/serial.
func NewSystemEnumerator() *SystemEnumerator {
	return &SystemEnumerator{
		detailed: enumerator.GetDetailedPortsList,
		names:    serial.GetPortsList,
	}
}

// List prefers the detailed USB listing and falls back to plain device
// names when the platform cannot provide details.
func (e *SystemEnumerator) List() ([]models.PortInfo, error) {
	details, err := e.detailed()
	if err == nil {
		out := make([]models.PortInfo, 0, len(details))
		for _, d := range details {
			if d == nil {
				continue
			}
			out = append(out, models.PortInfo{
				Name:         d.Name,
				IsUSB:        d.IsUSB,
				VID:          d.VID,
				PID:          d.PID,
				SerialNumber: d.SerialNumber,
				Product:      d.Product,
			})
		}
		return out, nil
	}

	names, nerr := e.names()
	if nerr != nil {
		return nil, nerr
	}
	out := make([]models.PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, models.PortInfo{Name: n})
	}
	return out, nil
}
