package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"data_logger/internal/models"
	"data_logger/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockPorts struct {
	ports []models.PortInfo
	calls int
}

func (m *mockPorts) ListPorts(ctx context.Context) []models.PortInfo {
	m.calls++
	return m.ports
}

type mockLogging struct {
	state    models.SessionState
	stateErr error
	startErr error
	stopErr  error

	lastPort    string
	startCalled int
	stopCalled  int
}

func (m *mockLogging) Start(ctx context.Context, port string) (models.SessionState, error) {
	m.startCalled++
	m.lastPort = port
	if m.startErr != nil {
		return models.SessionState{Status: models.SessionClosed}, m.startErr
	}
	return m.state, nil
}

func (m *mockLogging) Stop(ctx context.Context) (models.SessionState, error) {
	m.stopCalled++
	if m.stopErr != nil {
		return models.SessionState{}, m.stopErr
	}
	return m.state, nil
}

func (m *mockLogging) State(ctx context.Context) (models.SessionState, error) {
	return m.state, m.stateErr
}

type mockReadings struct {
	resp []models.Reading
	err  error
}

func (m *mockReadings) ListReadings(ctx context.Context) ([]models.Reading, error) {
	return m.resp, m.err
}

type mockExporter struct {
	csv      string
	rows     int
	err      error
	lastPath string
}

func (m *mockExporter) Export(ctx context.Context, w io.Writer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	_, err := io.Copy(w, strings.NewReader(m.csv))
	return m.rows, err
}

func (m *mockExporter) ExportFile(ctx context.Context, path string) (int, error) {
	m.lastPath = path
	return m.rows, m.err
}

type mockEventLog struct {
	resp     []models.SessionEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SessionEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	h.DefaultExportPath = "sensor_data.csv"
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}
