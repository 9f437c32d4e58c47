package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"data_logger/internal/hub"
	"data_logger/internal/models"
	"data_logger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialStream(t *testing.T, s *service.Service, query string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_SessionSnapshot_InitialAndPeriodic(t *testing.T) {
	lg := &mockLogging{state: models.SessionState{SessionID: "s1", Port: "COM3", Status: models.SessionOpen, Readings: 4}}
	conn := dialStream(t, &service.Service{Logging: lg}, "interval_ms=20")

	env := readEnvelope(t, conn)
	if env.Type != wsTypeSession || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var st models.SessionState
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Port != "COM3" || !st.IsOpen() || st.Readings != 4 {
		t.Fatalf("unexpected state: %+v", st)
	}

	if env := readEnvelope(t, conn); env.Type != wsTypeSession {
		t.Fatalf("expected type=session, got %+v", env)
	}
}

func TestWebSocket_StreamsDisplayItems(t *testing.T) {
	display := hub.New()
	lg := &mockLogging{state: models.SessionState{Status: models.SessionOpen}}
	// a long interval keeps snapshots out of the way
	conn := dialStream(t, &service.Service{Logging: lg, Display: display}, "interval=10s")

	if env := readEnvelope(t, conn); env.Type != wsTypeSession {
		t.Fatalf("expected initial snapshot, got %+v", env)
	}

	deadline := time.Now().Add(time.Second)
	for display.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	display.Publish(hub.ReadingItem(models.Reading{Seq: 1, Distance: "10", Command: "LEFT"}))
	display.Publish(hub.EventItem(models.SessionEvent{Type: models.EventReadError, Description: "Error: lost connection to COM3"}))

	env := readEnvelope(t, conn)
	if env.Type != hub.KindReading {
		t.Fatalf("expected reading, got %+v", env)
	}
	var item hub.Item
	if err := json.Unmarshal(env.Data, &item); err != nil {
		t.Fatalf("unmarshal item: %v", err)
	}
	if item.Text != "Distance: 10 cm, Command: LEFT" || item.Reading == nil || item.Reading.Distance != "10" {
		t.Fatalf("unexpected item: %+v", item)
	}

	env = readEnvelope(t, conn)
	if env.Type != hub.KindEvent {
		t.Fatalf("expected event, got %+v", env)
	}
	item = hub.Item{}
	_ = json.Unmarshal(env.Data, &item)
	if item.Event == nil || item.Event.Type != models.EventReadError {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestWebSocket_InitialStateError_Closes(t *testing.T) {
	lg := &mockLogging{stateErr: errors.New("boom")}
	conn := dialStream(t, &service.Service{Logging: lg}, "")

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}

func TestWebSocket_ClosesWhenDisplayCloses(t *testing.T) {
	display := hub.New()
	lg := &mockLogging{state: models.SessionState{Status: models.SessionClosed}}
	conn := dialStream(t, &service.Service{Logging: lg, Display: display}, "interval=10s")

	readEnvelope(t, conn)
	deadline := time.Now().Add(time.Second)
	for display.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	display.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the stream to end after the display closed")
	}
}
