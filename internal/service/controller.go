package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"data_logger/internal/hub"
	"data_logger/internal/logger"
	"data_logger/internal/models"
	"data_logger/internal/reader"
	"data_logger/internal/repository"
	"data_logger/internal/serialport"

	"github.com/google/uuid"
)

// DefaultPollInterval is the time between two reads of an open session.
const DefaultPollInterval = time.Second

// shutdownTimeout bounds the bookkeeping done after Run's context ends.
const shutdownTimeout = 5 * time.Second

// Messages shown in the display panel.
const (
	msgOpenFailed = "Error: Unable to open the selected COM port."
	msgLogging    = "Logging data from "
	msgStopped    = "Logging stopped on "
	msgReadFailed = "Error: lost connection to "
)

var (
	ErrSessionActive     = errors.New("a logging session is already active")
	ErrPortRequired      = errors.New("port is required")
	ErrControllerStopped = errors.New("controller is not running")
)

type commandKind int

const (
	cmdStart commandKind = iota
	cmdStop
)

type command struct {
	kind  commandKind
	port  string
	reply chan result
}

type result struct {
	state models.SessionState
	err   error
}

// Controller owns the logging Session. All session changes and every poll
// happen on the goroutine running Run; Start and Stop are messages to it.
type Controller struct {
	opener      serialport.Opener
	params      reader.Params
	readingRepo repository.ReadingRepo
	sessionRepo repository.SessionRepo
	eventRepo   repository.EventRepo
	display     *hub.Hub
	log         *logger.Logger
	now         func() time.Time

	cmds    chan command
	done    chan struct{}
	session *Session
}

func NewController(
	opener serialport.Opener,
	params reader.Params,
	readingRepo repository.ReadingRepo,
	sessionRepo repository.SessionRepo,
	eventRepo repository.EventRepo,
	display *hub.Hub,
	log *logger.Logger,
) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	if display == nil {
		display = hub.New()
	}
	return &Controller{
		opener:      opener,
		params:      params,
		readingRepo: readingRepo,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		display:     display,
		log:         log,
		now:         time.Now,
		cmds:        make(chan command),
		done:        make(chan struct{}),
	}
}

// Run consumes commands and polls the open session once per tick until
// ctx is canceled, then closes the session. Run must be called once.
func (c *Controller) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultPollInterval
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			c.shutdown(ctx)
			return
		case cmd := <-c.cmds:
			cmd.reply <- c.handle(ctx, cmd)
		case <-t.C:
			c.poll(ctx)
		}
	}
}

// Start asks the loop to open port and begin logging.
func (c *Controller) Start(ctx context.Context, port string) (models.SessionState, error) {
	return c.send(ctx, command{kind: cmdStart, port: port})
}

// Stop asks the loop to close the active session. Stopping a closed
// session is a no-op that returns the current snapshot.
func (c *Controller) Stop(ctx context.Context) (models.SessionState, error) {
	return c.send(ctx, command{kind: cmdStop})
}

// State returns the persisted snapshot of the latest session, including the
// current Log length.
func (c *Controller) State(ctx context.Context) (models.SessionState, error) {
	st, err := c.sessionRepo.Load(ctx)
	if err != nil {
		return models.SessionState{}, err
	}
	if st.SessionID != "" {
		n, err := c.readingRepo.Count(ctx, st.SessionID)
		if err != nil {
			return models.SessionState{}, err
		}
		st.Readings = n
	}
	return st, nil
}

func (c *Controller) send(ctx context.Context, cmd command) (models.SessionState, error) {
	cmd.reply = make(chan result, 1)
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return models.SessionState{}, ErrControllerStopped
	case <-ctx.Done():
		return models.SessionState{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res.state, res.err
	case <-ctx.Done():
		return models.SessionState{}, ctx.Err()
	}
}

func (c *Controller) handle(ctx context.Context, cmd command) result {
	switch cmd.kind {
	case cmdStart:
		st, err := c.start(ctx, cmd.port)
		return result{state: st, err: err}
	case cmdStop:
		if c.session == nil {
			// already closed
			st, err := c.State(ctx)
			return result{state: st, err: err}
		}
		st, err := c.closeSession(ctx, models.EventClose, msgStopped+c.session.Port, nil)
		return result{state: st, err: err}
	default:
		return result{err: fmt.Errorf("unknown command %d", cmd.kind)}
	}
}

func (c *Controller) start(ctx context.Context, port string) (models.SessionState, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		return models.SessionState{}, ErrPortRequired
	}
	if c.session != nil {
		return models.SessionState{}, ErrSessionActive
	}

	rd := reader.New(c.opener, c.params, c.log)
	if err := rd.Open(port); err != nil {
		c.log.Warnw("session_open_failed", "port", port, "err", err)
		c.record(ctx, models.SessionEvent{
			Type:        models.EventOpenFailed,
			Description: msgOpenFailed,
			Metadata:    map[string]any{"port": port, "error": err.Error()},
		})
		// the previous session's Log stays the current one
		st, lerr := c.State(ctx)
		if lerr != nil {
			c.log.Errorw("session_state_load_failed", "err", lerr)
		}
		st.LastError = err.Error()
		return st, err
	}

	now := c.now().UTC()
	params := rd.Params()
	sess := &Session{ID: uuid.NewString(), Port: port, OpenedAt: now, reader: rd}
	st := models.SessionState{
		SessionID:          sess.ID,
		Port:               port,
		Status:             models.SessionOpen,
		BaudRate:           params.BaudRate,
		ReadTimeoutSeconds: params.ReadTimeout.Seconds(),
		OpenedAt:           &now,
		UpdatedAt:          now,
	}
	if err := c.sessionRepo.Save(ctx, st); err != nil {
		_ = rd.Close()
		return models.SessionState{}, fmt.Errorf("save session: %w", err)
	}
	c.session = sess

	c.log.Infow("session_opened", "session_id", sess.ID, "port", port, "baud", params.BaudRate, "timeout", params.ReadTimeout)
	c.record(ctx, models.SessionEvent{
		SessionID:   sess.ID,
		Type:        models.EventOpen,
		Description: msgLogging + port,
		Metadata:    map[string]any{"port": port, "baud_rate": params.BaudRate},
	})
	return st, nil
}

// poll reads at most one line from the open session.
func (c *Controller) poll(ctx context.Context) {
	sess := c.session
	if sess == nil {
		return
	}

	rd, ok, err := sess.reader.ReadOne()
	if err != nil {
		c.log.Errorw("session_read_failed", "session_id", sess.ID, "port", sess.Port, "err", err)
		if _, cerr := c.closeSession(ctx, models.EventReadError, msgReadFailed+sess.Port, err); cerr != nil {
			c.log.Errorw("session_close_failed", "session_id", sess.ID, "err", cerr)
		}
		return
	}
	if !ok {
		return
	}

	rd.ReceivedAt = c.now().UTC()
	saved, err := c.readingRepo.Append(ctx, sess.ID, rd)
	if err != nil {
		c.log.Errorw("reading_append_failed", "session_id", sess.ID, "err", err)
		return
	}
	sess.readings = saved.Seq
	c.display.Publish(hub.ReadingItem(saved))
}

// closeSession releases the port, marks the snapshot closed and journals
// why. cause is nil for a user stop.
func (c *Controller) closeSession(ctx context.Context, evType, msg string, cause error) (models.SessionState, error) {
	sess := c.session
	c.session = nil

	if err := sess.reader.Close(); err != nil {
		c.log.Warnw("serial_close_failed", "port", sess.Port, "err", err)
	}

	now := c.now().UTC()
	opened := sess.OpenedAt
	params := sess.reader.Params()
	st := models.SessionState{
		SessionID:          sess.ID,
		Port:               sess.Port,
		Status:             models.SessionClosed,
		BaudRate:           params.BaudRate,
		ReadTimeoutSeconds: params.ReadTimeout.Seconds(),
		Readings:           sess.readings,
		OpenedAt:           &opened,
		ClosedAt:           &now,
		UpdatedAt:          now,
	}
	meta := map[string]any{"port": sess.Port, "readings": sess.readings}
	if cause != nil {
		st.LastError = cause.Error()
		meta["error"] = cause.Error()
	}

	c.log.Infow("session_closed", "session_id", sess.ID, "port", sess.Port, "readings", sess.readings, "reason", evType)
	c.record(ctx, models.SessionEvent{SessionID: sess.ID, Type: evType, Description: msg, Metadata: meta})

	if err := c.sessionRepo.Save(ctx, st); err != nil {
		return st, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

func (c *Controller) shutdown(ctx context.Context) {
	if c.session == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if _, err := c.closeSession(sctx, models.EventClose, msgStopped+c.session.Port, nil); err != nil {
		c.log.Errorw("session_close_failed", "err", err)
	}
}

// record journals e and mirrors it to the display.
func (c *Controller) record(ctx context.Context, e models.SessionEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = c.now().UTC()
	}
	if err := c.eventRepo.Append(ctx, e); err != nil {
		c.log.Errorw("event_append_failed", "type", e.Type, "err", err)
	}
	c.display.Publish(hub.EventItem(e))
}
