package service

import (
	"context"

	"data_logger/internal/models"
	"data_logger/internal/repository"
)

type ReadingService struct {
	sessionRepo repository.SessionRepo
	readingRepo repository.ReadingRepo
}

func NewReadingService(sessionRepo repository.SessionRepo, readingRepo repository.ReadingRepo) *ReadingService {
	return &ReadingService{sessionRepo: sessionRepo, readingRepo: readingRepo}
}

// ListReadings returns the Log of the current session, or of the last one
// once it has closed. Before the first session the Log is empty.
func (s *ReadingService) ListReadings(ctx context.Context) ([]models.Reading, error) {
	st, err := s.sessionRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if st.SessionID == "" {
		return []models.Reading{}, nil
	}
	return s.readingRepo.List(ctx, st.SessionID)
}
