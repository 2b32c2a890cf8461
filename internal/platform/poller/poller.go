// Package poller re-fetches list screens on a fixed timer for every session
// with an open tab and pushes the results to that session's tabs.
//
// Polls are plain refreshes. Jobs are not serialised: a slow response can
// overlap the next tick, and two tabs of the same session share one timer.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/websocket"
)

// FetchFunc loads the list a session is looking at, using its token.
type FetchFunc func(ctx context.Context, sess *auth.Session) (any, error)

// Plan describes what one role polls.
type Plan struct {
	Interval time.Duration
	// Event is the websocket event type carrying the result.
	Event string
	Fetch FetchFunc
}

// Publisher receives poll results; *websocket.Hub satisfies it.
type Publisher interface {
	Publish(ctx context.Context, ev websocket.Event) error
}

// ErrorPayload is sent with a "<event>.error" event when a poll fails.
type ErrorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Poller schedules one cron job per connected session whose role has a plan.
type Poller struct {
	cron   *cron.Cron
	plans  map[auth.Role]Plan
	out    Publisher
	logger zerolog.Logger

	mu   sync.Mutex
	jobs map[uuid.UUID]cron.EntryID
	ctx  context.Context
}

func New(plans map[auth.Role]Plan, out Publisher, logger zerolog.Logger) *Poller {
	logger = logger.With().Str("component", "poller").Logger()
	return &Poller{
		cron: cron.New(
			cron.WithLogger(cronLogger{logger}),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		plans:  plans,
		out:    out,
		logger: logger,
		jobs:   make(map[uuid.UUID]cron.EntryID),
		ctx:    context.Background(),
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running polls to finish.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	p.cron.Start()
	<-ctx.Done()
	<-p.cron.Stop().Done()
	return nil
}

// SessionConnected schedules the session's plan and polls once right away.
func (p *Poller) SessionConnected(sess *auth.Session) {
	plan, ok := p.plans[sess.User.Role]
	if !ok || plan.Fetch == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, running := p.jobs[sess.ID]; running {
		return
	}

	job := func() { p.poll(sess, plan) }
	id, err := p.cron.AddFunc(fmt.Sprintf("@every %s", plan.Interval), job)
	if err != nil {
		p.logger.Error().Err(err).Dur("interval", plan.Interval).Msg("schedule poll")
		return
	}
	p.jobs[sess.ID] = id
	go job()

	p.logger.Debug().
		Str("session_id", sess.ID.String()).
		Str("role", sess.User.Role.String()).
		Dur("interval", plan.Interval).
		Msg("polling started")
}

// SessionDisconnected stops polling once the session's last tab is gone.
func (p *Poller) SessionDisconnected(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.jobs[id]; ok {
		p.cron.Remove(entry)
		delete(p.jobs, id)
		p.logger.Debug().Str("session_id", id.String()).Msg("polling stopped")
	}
}

// Jobs returns the number of sessions being polled.
func (p *Poller) Jobs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func (p *Poller) poll(sess *auth.Session, plan Plan) {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	topic := websocket.SessionTopic(sess.ID)
	data, err := plan.Fetch(ctx, sess)
	if err != nil {
		p.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Str("event", plan.Event).Msg("poll failed")
		status, msg := apperr.UserMessage(err)
		p.publish(ctx, websocket.NewEvent(plan.Event+".error", topic, ErrorPayload{Status: status, Message: msg}))
		return
	}
	p.publish(ctx, websocket.NewEvent(plan.Event, topic, data))
}

func (p *Poller) publish(ctx context.Context, ev websocket.Event) {
	if err := p.out.Publish(ctx, ev); err != nil {
		p.logger.Warn().Err(err).Str("topic", ev.Topic).Msg("publish poll result")
	}
}

// cronLogger routes robfig/cron's logging through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
