// Package scanner decides when query cycles run. It gates a cycle to once
// per session, retries a whole cycle while the runtime reports results as
// pending, and records each outcome.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/roomscan/internal/config"
	"github.com/banshee-data/roomscan/internal/db"
	"github.com/banshee-data/roomscan/internal/monitoring"
	"github.com/banshee-data/roomscan/internal/scene"
	"github.com/banshee-data/roomscan/internal/timeutil"
	"github.com/banshee-data/roomscan/internal/xr"
)

var logf = monitoring.Component("SCANNER")

// ErrNoHandles is returned by Rescan before any cycle was triggered.
var ErrNoHandles = errors.New("no runtime handles: nothing has been triggered yet")

// CycleRecorder stores cycle outcomes. *db.DB implements it.
type CycleRecorder interface {
	RecordCycle(db.Cycle) error
}

// Config configures a Scanner.
type Config struct {
	Pipeline scene.Options
	// MaxAttempts bounds how often one cycle is run while the runtime
	// reports its results as pending. Values below 1 mean a single attempt.
	MaxAttempts int
	// Backoff is the wait before the second attempt. It doubles for each
	// further attempt.
	Backoff time.Duration
	// Recorder, if set, receives every finished cycle.
	Recorder CycleRecorder
	// Clock defaults to timeutil.RealClock.
	Clock timeutil.Clock
}

// OptionsFromConfig builds a scanner Config from a loaded ScanConfig.
func OptionsFromConfig(c *config.ScanConfig) Config {
	return Config{
		Pipeline: scene.Options{
			Location: c.GetStorageLocation(),
			Query: scene.QueryOptions{
				MaxResultCount: c.GetMaxResultCount(),
				Timeout:        c.GetQueryTimeout(),
			},
			Retrieve: scene.RetrieveOptions{RetryOnGrowth: c.GetRetryOnGrowth()},
		},
		MaxAttempts: c.GetPendingMaxAttempts(),
		Backoff:     c.GetPendingBackoff(),
	}
}

// Report is one finished cycle as the scanner saw it.
type Report struct {
	CycleID    string        `json:"cycle_id"`
	Session    xr.Session    `json:"session"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Attempts   int           `json:"attempts"`
	Result     *scene.Result `json:"result"`
}

// Cycle converts r into the stored form.
func (r *Report) Cycle() db.Cycle {
	c := db.Cycle{
		ID:         r.CycleID,
		Session:    uint64(r.Session),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Attempts:   r.Attempts,
	}
	res := r.Result
	if res == nil {
		return c
	}
	c.State = res.State.String()
	c.Supported = res.Supported()
	c.Records = res.Records
	if res.Err != nil {
		c.Error = res.Err.Error()
		if code, ok := scene.NativeCode(res.Err); ok {
			v := int32(code)
			c.ErrorCode = &v
		}
	}
	if res.Resolution == nil {
		return c
	}
	if room := res.Resolution.Room(); room != nil {
		c.FloorPresent = room.HasFloor()
		c.CeilingPresent = room.HasCeiling()
	}
	c.WallCount = len(res.Resolution.Walls)
	return c
}

// Scanner runs query cycles for a host. Cycles never overlap.
type Scanner struct {
	pipeline *scene.Pipeline
	cfg      Config

	// run is held for the length of a cycle.
	run sync.Mutex

	mu        sync.Mutex
	triggered map[xr.Session]bool
	handles   *scene.Handles
	last      *Report
}

// New returns a Scanner.
func New(cfg Config) *Scanner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Scanner{
		pipeline:  scene.NewPipeline(cfg.Pipeline),
		cfg:       cfg,
		triggered: make(map[xr.Session]bool),
	}
}

// Trigger runs a cycle for h unless one already ran for h.Session. It
// reports whether a cycle ran.
func (s *Scanner) Trigger(ctx context.Context, h scene.Handles) (*Report, bool, error) {
	s.mu.Lock()
	hc := h
	s.handles = &hc
	if s.triggered[h.Session] {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.triggered[h.Session] = true
	s.mu.Unlock()

	rep, err := s.Run(ctx, h)
	return rep, true, err
}

// Rearm lets the next Trigger for session run again.
func (s *Scanner) Rearm(session xr.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.triggered, session)
}

// Rescan re-arms and triggers a cycle with the handles of the last Trigger.
func (s *Scanner) Rescan(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	if s.handles == nil {
		s.mu.Unlock()
		return nil, ErrNoHandles
	}
	h := *s.handles
	delete(s.triggered, h.Session)
	s.mu.Unlock()

	rep, _, err := s.Trigger(ctx, h)
	return rep, err
}

// Last returns the most recent report, or nil.
func (s *Scanner) Last() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run executes one cycle against h, retrying the whole cycle with backoff
// while the runtime reports pending results. The report is returned even
// when the cycle failed.
func (s *Scanner) Run(ctx context.Context, h scene.Handles) (*Report, error) {
	s.run.Lock()
	defer s.run.Unlock()

	rep := &Report{
		CycleID:   uuid.NewString(),
		Session:   h.Session,
		StartedAt: s.cfg.Clock.Now().UTC(),
	}

	var err error
	backoff := s.cfg.Backoff
	for {
		rep.Attempts++
		rep.Result, err = s.pipeline.Run(ctx, h)
		if !isPending(err) || rep.Attempts >= s.cfg.MaxAttempts {
			break
		}
		logf("cycle %s: results pending, attempt %d of %d, retrying in %s",
			rep.CycleID, rep.Attempts, s.cfg.MaxAttempts, backoff)
		if serr := s.cfg.Clock.Wait(ctx, backoff); serr != nil {
			err = serr
			break
		}
		backoff *= 2
	}
	rep.FinishedAt = s.cfg.Clock.Now().UTC()

	switch {
	case err != nil:
		logf("cycle %s failed after %d attempt(s): %v", rep.CycleID, rep.Attempts, err)
	case !rep.Result.Supported():
		logf("cycle %s: scene understanding unsupported", rep.CycleID)
	default:
		logf("cycle %s resolved %d space(s)", rep.CycleID, rep.Result.Records)
	}

	if s.cfg.Recorder != nil {
		if rerr := s.cfg.Recorder.RecordCycle(rep.Cycle()); rerr != nil {
			logf("failed to record cycle %s: %v", rep.CycleID, rerr)
		}
	}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()
	return rep, err
}

func isPending(err error) bool {
	code, ok := scene.NativeCode(err)
	return ok && code == xr.ErrorSpaceComponentStatusPendingFB
}
