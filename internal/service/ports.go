package service

import (
	"context"

	"data_logger/internal/logger"
	"data_logger/internal/models"
	"data_logger/internal/serialport"
)

type PortService struct {
	enum serialport.Enumerator
	log  *logger.Logger
}

func NewPortService(enum serialport.Enumerator, log *logger.Logger) *PortService {
	if log == nil {
		log = logger.Nop()
	}
	return &PortService{enum: enum, log: log}
}

// ListPorts re-queries the host on every call. Enumeration failures are
// logged and reported as an empty list.
func (s *PortService) ListPorts(ctx context.Context) []models.PortInfo {
	ports, err := s.enum.List()
	if err != nil {
		s.log.Warnw("port_enumeration_failed", "err", err)
		return []models.PortInfo{}
	}
	if ports == nil {
		return []models.PortInfo{}
	}
	return ports
}
