package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"data_logger/internal/hub"
	"data_logger/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// Renderer writes display items to an output stream.
type Renderer interface {
	Render(item hub.Item) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleTime    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleReading = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleEvent   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")) // cyan
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// TextRenderer prints the display panel to a terminal.
type TextRenderer struct {
	w   io.Writer
	now func() time.Time
}

// NewTextRenderer returns a Renderer writing colorized lines to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w, now: time.Now}
}

func (r *TextRenderer) Render(item hub.Item) error {
	ts := r.now()
	var style lipgloss.Style
	switch item.Kind {
	case hub.KindReading:
		style = styleReading
		if item.Reading != nil && !item.Reading.ReceivedAt.IsZero() {
			ts = item.Reading.ReceivedAt
		}
	default:
		style = styleEvent
		if item.Event != nil {
			if isFailure(item.Event.Type) {
				style = styleError
			}
			if !item.Event.OccurredAt.IsZero() {
				ts = item.Event.OccurredAt
			}
		}
	}

	line := fmt.Sprintf("%s %s", styleTime.Render(ts.Local().Format("15:04:05")), style.Render(item.Text))
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func isFailure(eventType string) bool {
	return eventType == models.EventOpenFailed || strings.HasSuffix(eventType, "_ERROR")
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each item as one JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer writing JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(item hub.Item) error {
	return r.enc.Encode(item)
}

// Pump renders items until the channel closes. Render errors are returned
// through errs without stopping the pump.
func Pump(items <-chan hub.Item, r Renderer, errs func(error)) {
	for it := range items {
		if err := r.Render(it); err != nil && errs != nil {
			errs(err)
		}
	}
}
