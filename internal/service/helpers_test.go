package service

import (
	"context"
	"testing"
	"time"

	"data_logger/internal/hub"
	"data_logger/internal/models"
	"data_logger/internal/reader"
	"data_logger/internal/repository"
	"data_logger/internal/repository/db"
	"data_logger/internal/serialport/serialtest"
)

// newTestRepos opens a fresh in-memory store.
func newTestRepos(t *testing.T) *repository.Repository {
	t.Helper()
	conn, err := db.InitDB(db.MemoryDSN)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewRepository(conn)
}

type controllerFixture struct {
	ctrl    *Controller
	repos   *repository.Repository
	opener  *serialtest.Opener
	display *hub.Hub
	items   <-chan hub.Item
}

func newControllerFixture(t *testing.T, ports ...string) *controllerFixture {
	t.Helper()
	repos := newTestRepos(t)
	opener := serialtest.NewOpener(ports...)
	display := hub.New()
	items, unsubscribe := display.Subscribe()
	t.Cleanup(unsubscribe)

	ctrl := NewController(opener, reader.DefaultParams(), repos.ReadingRepo, repos.SessionRepo, repos.EventRepo, display, nil)
	return &controllerFixture{ctrl: ctrl, repos: repos, opener: opener, display: display, items: items}
}

// drain returns the display items published so far.
func (f *controllerFixture) drain() []hub.Item {
	var out []hub.Item
	for {
		select {
		case it := <-f.items:
			out = append(out, it)
		default:
			return out
		}
	}
}

func (f *controllerFixture) eventTypes(t *testing.T) []string {
	t.Helper()
	evs, err := f.repos.EventRepo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}

func pairs(rs []models.Reading) [][2]string {
	out := make([][2]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, [2]string{r.Distance, r.Command})
	}
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
