package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"data_logger/internal/hub"
	"data_logger/internal/logger"
	"data_logger/internal/models"
	"data_logger/internal/repository"

	"github.com/google/uuid"
)

// exportFileMode matches what os.Create would give the user.
const exportFileMode os.FileMode = 0o644

// CSVHeader is the first row of every export.
var CSVHeader = []string{"Distance", "Command"}

type ExportService struct {
	readings  Readings
	eventRepo repository.EventRepo
	display   *hub.Hub
	log       *logger.Logger
	now       func() time.Time
}

func NewExportService(readings Readings, eventRepo repository.EventRepo, display *hub.Hub, log *logger.Logger) *ExportService {
	if log == nil {
		log = logger.Nop()
	}
	return &ExportService{readings: readings, eventRepo: eventRepo, display: display, log: log, now: time.Now}
}

// Export writes the header and one row per reading in Log order and
// returns the number of data rows.
func (s *ExportService) Export(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.readings.ListReadings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load readings: %w", err)
	}
	if err := writeCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func writeCSV(w io.Writer, rows []models.Reading) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = runtime.GOOS == "windows"

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Distance, r.Command}); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Seq, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile writes the CSV to path through a temporary file in the same
// directory, so a failed export never leaves a truncated file behind.
func (s *ExportService) ExportFile(ctx context.Context, path string) (int, error) {
	rows, err := s.readings.ListReadings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load readings: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return 0, fmt.Errorf("create export file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := writeCSV(tmp, rows); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Chmod(exportFileMode); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("chmod export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("move export to %q: %w", path, err)
	}

	ev := models.SessionEvent{
		EventID:     uuid.NewString(),
		Type:        models.EventExport,
		Description: fmt.Sprintf("Saved %d readings to %s", len(rows), path),
		Metadata:    map[string]any{"path": path, "rows": len(rows)},
		OccurredAt:  s.now().UTC(),
	}
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Errorw("event_append_failed", "type", ev.Type, "err", err)
	}
	s.display.Publish(hub.EventItem(ev))
	s.log.Infow("csv_exported", "path", path, "rows", len(rows))
	return len(rows), nil
}
