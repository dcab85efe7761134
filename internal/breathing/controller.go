// Package breathing implements the breathing cycle controller: a countdown
// state machine that walks an exercise's steps on a fixed tick, looping until
// the host stops it.
package breathing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/breathe/internal/breathing/domain"
	"github.com/zjrosen/breathe/internal/log"
)

// DefaultTickInterval is the nominal countdown granularity.
const DefaultTickInterval = time.Second

// ChangeCallback receives a snapshot after every state transition.
// It is invoked without the controller lock held, possibly from the
// scheduler goroutine, so snapshots can arrive out of order. Receivers that
// keep the latest state should drop snapshots for which OlderThan reports true.
type ChangeCallback func(State)

// Config configures a Controller.
type Config struct {
	// TickInterval defaults to DefaultTickInterval.
	TickInterval time.Duration

	// Scheduler defaults to TickerScheduler.
	Scheduler Scheduler

	// OnChange is optional.
	OnChange ChangeCallback

	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// State is a point-in-time view of a breathing session for rendering.
type State struct {
	SessionID string
	Exercise  *domain.Exercise
	StepIndex int
	Remaining int
	Elapsed   int // ticks delivered since Start
	Running   bool

	// Seq increases with every transition of the controller that produced
	// the snapshot, across sessions.
	Seq uint64
}

// OlderThan reports whether s was taken before o.
func (s State) OlderThan(o State) bool {
	return s.Seq < o.Seq
}

// Instruction returns the current step's instruction, or false when idle.
func (s State) Instruction() (string, bool) {
	if !s.Running || s.Exercise == nil {
		return "", false
	}
	return s.Exercise.Steps[s.StepIndex].Instruction, true
}

// StepCount returns the number of steps in the active exercise.
func (s State) StepCount() int {
	if s.Exercise == nil {
		return 0
	}
	return len(s.Exercise.Steps)
}

// Controller owns one breathing session at a time.
type Controller struct {
	interval  time.Duration
	scheduler Scheduler
	onChange  ChangeCallback
	tracer    trace.Tracer

	mu         sync.Mutex
	exercise   *domain.Exercise
	stepIndex  int
	remaining  int
	elapsed    int
	sessionID  string
	handle     Handle
	generation uint64
	seq        uint64
}

// New creates an idle Controller.
func New(cfg Config) *Controller {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/zjrosen/breathe/internal/breathing")
	}

	return &Controller{
		interval:  interval,
		scheduler: scheduler,
		onChange:  cfg.OnChange,
		tracer:    tracer,
	}
}

// Start begins ex at its first step, replacing any running session.
// The previous tick handle is canceled before the new one is scheduled.
// Returns *domain.InvalidExerciseError if ex cannot be run.
func (c *Controller) Start(ctx context.Context, ex *domain.Exercise) error {
	if err := ex.Validate(); err != nil {
		log.Warn(log.CatSession, "Rejected exercise", "error", err.Error())
		return err
	}

	_, span := c.tracer.Start(ctx, "breathing.start",
		trace.WithAttributes(
			attribute.String("exercise.id", ex.ID),
			attribute.Int("exercise.steps", len(ex.Steps)),
		))
	defer span.End()

	c.mu.Lock()
	replaced := c.cancelLocked()

	c.exercise = ex
	c.stepIndex = 0
	c.remaining = ex.Steps[0].Seconds
	c.elapsed = 0
	c.sessionID = uuid.NewString()
	c.seq++

	gen := c.generation
	c.handle = c.scheduler.Every(c.interval, func() { c.tick(gen) })
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	span.SetAttributes(
		attribute.String("session.id", snapshot.SessionID),
		attribute.Bool("session.replaced", replaced),
	)
	log.Info(log.CatSession, "Breathing session started",
		"exercise", ex.ID,
		"session", snapshot.SessionID,
		"replaced", replaced)

	c.notify(snapshot)
	return nil
}

// Stop cancels the outstanding tick and returns the controller to idle.
// Stopping an idle controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.exercise == nil && c.handle == nil {
		c.mu.Unlock()
		return
	}

	_, span := c.tracer.Start(context.Background(), "breathing.stop",
		trace.WithAttributes(attribute.String("session.id", c.sessionID)))
	defer span.End()

	sessionID := c.sessionID
	c.cancelLocked()
	c.exercise = nil
	c.stepIndex = 0
	c.remaining = 0
	c.elapsed = 0
	c.sessionID = ""
	c.seq++
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	log.Info(log.CatSession, "Breathing session stopped", "session", sessionID)
	c.notify(snapshot)
}

// State returns a snapshot of the current session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// CurrentInstruction returns the active step's instruction, or false when idle.
func (c *Controller) CurrentInstruction() (string, bool) {
	return c.State().Instruction()
}

// tick advances the countdown. Ticks from a canceled handle are discarded.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.exercise == nil {
		c.mu.Unlock()
		return
	}

	c.stepIndex, c.remaining = advance(c.exercise, c.stepIndex, c.remaining)
	c.elapsed++
	c.seq++
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
}

// cancelLocked cancels the live handle and invalidates any in-flight tick.
// Must be called with mu held. Reports whether a handle was live.
func (c *Controller) cancelLocked() bool {
	c.generation++
	if c.handle == nil {
		return false
	}
	c.handle.Cancel()
	c.handle = nil
	return true
}

func (c *Controller) snapshotLocked() State {
	return State{
		SessionID: c.sessionID,
		Exercise:  c.exercise,
		StepIndex: c.stepIndex,
		Remaining: c.remaining,
		Elapsed:   c.elapsed,
		Running:   c.exercise != nil,
		Seq:       c.seq,
	}
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// advance is the single step transition: count down within a step, or move
// to the next step (wrapping) and load its full duration.
func advance(ex *domain.Exercise, index, remaining int) (int, int) {
	if remaining > 1 {
		return index, remaining - 1
	}
	next := (index + 1) % len(ex.Steps)
	return next, ex.Steps[next].Seconds
}
