package cli

import (
	"database/sql"
	"fmt"

	"data_logger/internal/config"
	"data_logger/internal/hub"
	"data_logger/internal/logger"
	"data_logger/internal/reader"
	"data_logger/internal/repository"
	"data_logger/internal/repository/db"
	"data_logger/internal/serialport"
	"data_logger/internal/service"
)

// newDevices returns the serial backends. Tests replace it.
var newDevices = func(cfg *config.Config) service.Devices {
	return service.Devices{
		Opener:     serialport.SystemOpener{},
		Enumerator: serialport.NewSystemEnumerator(),
		Params: reader.Params{
			BaudRate:    cfg.Serial.BaudRate,
			ReadTimeout: cfg.Serial.ReadTimeout(),
		},
	}
}

// app holds everything one command invocation needs.
type app struct {
	db      *sql.DB
	display *hub.Hub
	svc     *service.Service
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	conn, err := db.InitDB(db.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	display := hub.New()
	svc := service.NewService(repository.NewRepository(conn), newDevices(cfg), display, log)
	return &app{db: conn, display: display, svc: svc}, nil
}

func (a *app) Close() error {
	a.display.Close()
	return a.db.Close()
}
