package hub

import (
	"testing"
	"time"

	"data_logger/internal/models"
)

func TestHubBroadcast(t *testing.T) {
	h := New()
	sub1, cancel1 := h.Subscribe()
	defer cancel1()
	sub2, cancel2 := h.Subscribe()
	defer cancel2()

	h.Publish(ReadingItem(models.Reading{Distance: "10", Command: "LEFT"}))

	for i, sub := range []<-chan Item{sub1, sub2} {
		select {
		case it := <-sub:
			if it.Kind != KindReading || it.Text != "Distance: 10 cm, Command: LEFT" {
				t.Errorf("sub%d: unexpected item %+v", i+1, it)
			}
			if it.Reading == nil || it.Reading.Command != "LEFT" {
				t.Errorf("sub%d: reading payload missing", i+1)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub%d: timed out", i+1)
		}
	}
}

func TestHubSlowConsumer(t *testing.T) {
	h := New()
	_, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+100; i++ {
		h.Publish(EventItem(models.SessionEvent{Description: "line"}))
	}

	if h.Dropped() != 100 {
		t.Errorf("expected 100 dropped items, got %d", h.Dropped())
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := New()
	sub, cancel := h.Subscribe()
	cancel()
	cancel() // second call is a no-op

	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel")
	}
	if h.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.Subscribers())
	}
	h.Publish(EventItem(models.SessionEvent{Description: "after"}))
}

func TestHubClose(t *testing.T) {
	h := New()
	sub, cancel := h.Subscribe()
	h.Close()
	cancel()

	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel after Close")
	}
	late, _ := h.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("subscribe after Close must return a closed channel")
	}
}

func TestEventItemText(t *testing.T) {
	it := EventItem(models.SessionEvent{Type: models.EventOpen, Description: "Logging data from COM3"})
	if it.Kind != KindEvent || it.Text != "Logging data from COM3" || it.Event.Type != models.EventOpen {
		t.Fatalf("unexpected item: %+v", it)
	}
}
