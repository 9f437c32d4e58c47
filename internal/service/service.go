package service

import (
	"context"
	"io"
	"time"

	"data_logger/internal/hub"
	"data_logger/internal/logger"
	"data_logger/internal/models"
	"data_logger/internal/reader"
	"data_logger/internal/repository"
	"data_logger/internal/serialport"
)

// Ports lists the serial devices the user can pick from.
type Ports interface {
	ListPorts(ctx context.Context) []models.PortInfo
}

// Logging starts and stops logging sessions and reports their state.
type Logging interface {
	Start(ctx context.Context, port string) (models.SessionState, error)
	Stop(ctx context.Context) (models.SessionState, error)
	State(ctx context.Context) (models.SessionState, error)
}

// Readings exposes the Log of the current or most recent session.
type Readings interface {
	ListReadings(ctx context.Context) ([]models.Reading, error)
}

// Exporter writes the Log as CSV.
type Exporter interface {
	Export(ctx context.Context, w io.Writer) (int, error)
	ExportFile(ctx context.Context, path string) (int, error)
}

// EventLog exposes the session journal with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error)
}

// Poller runs the controller loop until ctx is canceled.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// Devices bundles the serial dependencies of the service layer.
type Devices struct {
	Opener     serialport.Opener
	Enumerator serialport.Enumerator
	Params     reader.Params
}

// Service aggregates all sub-services.
type Service struct {
	Ports
	Logging
	Readings
	Exporter
	EventLog
	Poller

	Display *hub.Hub
}

// NewService wires the repositories and serial devices into concrete
// services sharing one display hub.
func NewService(repos *repository.Repository, dev Devices, display *hub.Hub, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if display == nil {
		display = hub.New()
	}
	ctrl := NewController(dev.Opener, dev.Params, repos.ReadingRepo, repos.SessionRepo, repos.EventRepo, display, log)
	readings := NewReadingService(repos.SessionRepo, repos.ReadingRepo)
	return &Service{
		Ports:    NewPortService(dev.Enumerator, log),
		Logging:  ctrl,
		Readings: readings,
		Exporter: NewExportService(readings, repos.EventRepo, display, log),
		EventLog: NewEventLogService(repos.EventRepo),
		Poller:   ctrl,
		Display:  display,
	}
}
