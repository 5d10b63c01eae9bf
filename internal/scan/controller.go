package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/notify"
)

type State int

const (
	Idle State = iota
	Scanning
	Success
	Failed
	PermissionDenied
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Success:
		return "success"
	case Failed:
		return "error"
	case PermissionDenied:
		return "permission-denied"
	default:
		return "idle"
	}
}

const (
	DefaultCooldown      = 2 * time.Second
	DefaultSuccessWindow = 500 * time.Millisecond
	defaultAppendTimeout = 30 * time.Second
)

var ErrClosed = errors.New("scan controller closed")

// Recorder persists accepted scans. *client.Store satisfies it.
type Recorder interface {
	AppendScan(ctx context.Context, entry types.ScanLog) (types.ScanLog, error)
}

type Option func(*Controller)

func WithClock(c Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

func WithCooldown(d time.Duration) Option { return func(ctl *Controller) { ctl.cooldown = d } }

func WithSuccessWindow(d time.Duration) Option {
	return func(ctl *Controller) { ctl.successWindow = d }
}

func WithAppendTimeout(d time.Duration) Option {
	return func(ctl *Controller) { ctl.appendTimeout = d }
}

func WithFeedback(f Feedback) Option { return func(ctl *Controller) { ctl.feedback = f } }

func WithNotifier(n notify.Notifier) Option { return func(ctl *Controller) { ctl.notifier = n } }

func WithLogger(l *slog.Logger) Option { return func(ctl *Controller) { ctl.logger = l } }

// WithDispatch replaces the goroutine used to hand accepted scans to the
// recorder. Tests pass a synchronous dispatcher.
func WithDispatch(d func(func())) Option { return func(ctl *Controller) { ctl.dispatch = d } }

// Controller owns one camera and turns its decodes into scan log entries.
//
// Each Start opens a session; Stop, an event change and Close end it.
// Decode callbacks from an ended session are ignored. An accepted decode
// starts a cooldown during which further decodes are dropped; the cooldown
// is not tied to the session and runs out even across a restart.
type Controller struct {
	camera        Camera
	recorder      Recorder
	clock         Clock
	feedback      Feedback
	notifier      notify.Notifier
	logger        *slog.Logger
	dispatch      func(func())
	cooldown      time.Duration
	successWindow time.Duration
	appendTimeout time.Duration
	inflight      sync.WaitGroup

	mu            sync.Mutex
	scanCtx       Context
	state         State
	lastErr       error
	session       uint64
	starting      bool
	startDone     chan struct{}
	cameraActive  bool
	cancelCamera  context.CancelFunc
	coolingDown   bool
	cooldownTimer Timer
	successTimer  Timer
	closed        bool
}

func NewController(cam Camera, rec Recorder, opts ...Option) *Controller {
	c := &Controller{
		camera:        cam,
		recorder:      rec,
		clock:         realClock{},
		feedback:      silent{},
		notifier:      notify.Discard{},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		dispatch:      func(f func()) { go f() },
		cooldown:      DefaultCooldown,
		successWindow: DefaultSuccessWindow,
		appendTimeout: defaultAppendTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cooldown <= 0 {
		c.cooldown = DefaultCooldown
	}
	if c.successWindow <= 0 {
		c.successWindow = DefaultSuccessWindow
	}
	return c
}

// ── Context ────────────────────────────────────────────────────

// SetEvent changes the scan event. A change clears the B2B client and
// stops an active session.
func (c *Controller) SetEvent(e types.ScanEvent) {
	c.mu.Lock()
	if e == c.scanCtx.Event {
		c.mu.Unlock()
		return
	}
	c.scanCtx.Event = e
	c.scanCtx.ClientID = ""
	release := noop
	if c.cameraActive || c.starting {
		release = c.stopLocked()
	}
	c.mu.Unlock()
	release()
}

func (c *Controller) SetLocation(loc string) {
	c.mu.Lock()
	c.scanCtx.Location = loc
	c.mu.Unlock()
}

func (c *Controller) SetClient(id string) {
	c.mu.Lock()
	c.scanCtx.ClientID = id
	c.mu.Unlock()
}

func (c *Controller) Context() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanCtx
}

// CanStart validates the current context.
func (c *Controller) CanStart() Validation {
	return Validate(c.Context())
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the camera error behind a Failed or PermissionDenied state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ── Lifecycle ──────────────────────────────────────────────────

// Start acquires the camera and begins a session. It is refused with a
// *ValidationError when the context is incomplete. Calling Start while a
// session is active does nothing. A Start that overlaps a pending
// acquisition waits for it to settle first.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	for c.starting {
		pending := c.startDone
		c.mu.Unlock()
		select {
		case <-pending:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cameraActive {
		c.mu.Unlock()
		return nil
	}
	if v := Validate(c.scanCtx); !v.Valid() {
		c.mu.Unlock()
		return &ValidationError{Reasons: v.Reasons}
	}
	c.starting = true
	done := make(chan struct{})
	c.startDone = done
	c.session++
	session := c.session
	c.mu.Unlock()
	// Waiters are released only after a superseded camera is stopped.
	defer close(done)

	camCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	err := c.camera.Start(camCtx, func(text string) { c.onDecode(session, text) })

	c.mu.Lock()
	c.starting = false
	current := session == c.session && !c.closed
	if err != nil {
		cancel()
		if !current {
			c.mu.Unlock()
			c.logger.Debug("camera start failed after session ended", "err", err)
			return fmt.Errorf("start camera: %w", err)
		}
		c.lastErr = err
		if errors.Is(err, ErrPermissionDenied) {
			c.state = PermissionDenied
			c.mu.Unlock()
			c.logger.Warn("camera permission denied")
			c.notifier.Notify(notify.Error, notify.Msg(notify.KeyCameraDenied))
		} else {
			c.state = Failed
			c.mu.Unlock()
			c.logger.Error("camera start failed", "err", err)
			c.notifier.Notify(notify.Error, notify.Msg(notify.KeyCameraFailed, err.Error()))
		}
		return fmt.Errorf("start camera: %w", err)
	}
	if !current {
		// Stopped while the camera was coming up.
		c.mu.Unlock()
		cancel()
		c.stopCamera()
		return nil
	}
	c.cameraActive = true
	c.cancelCamera = cancel
	c.state = Scanning
	c.lastErr = nil
	scanCtx := c.scanCtx
	c.mu.Unlock()

	c.logger.Info("scanning started", "event", scanCtx.Event, "location", scanCtx.Location)
	return nil
}

// Stop ends the session and releases the camera. Repeated calls are
// no-ops.
func (c *Controller) Stop() {
	c.mu.Lock()
	release := c.stopLocked()
	c.mu.Unlock()
	release()
}

// Close stops the controller for good. In-flight appends are not
// cancelled.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	release := c.stopLocked()
	if c.cooldownTimer != nil {
		c.cooldownTimer.Stop()
		c.cooldownTimer = nil
	}
	c.coolingDown = false
	c.mu.Unlock()
	release()
}

// Wait blocks until dispatched appends have returned.
func (c *Controller) Wait() { c.inflight.Wait() }

// stopLocked ends the session and returns the camera release to run after
// the lock is dropped; the camera may be blocked delivering a decode that
// needs the lock.
func (c *Controller) stopLocked() func() {
	c.session++
	if c.successTimer != nil {
		c.successTimer.Stop()
		c.successTimer = nil
	}
	c.state = Idle
	if !c.cameraActive {
		return noop
	}
	c.cameraActive = false
	cancel := c.cancelCamera
	c.cancelCamera = nil
	return func() {
		cancel()
		c.stopCamera()
		c.logger.Info("scanning stopped")
	}
}

func (c *Controller) stopCamera() {
	if err := c.camera.Stop(); err != nil {
		c.logger.Warn("camera stop failed", "err", err)
		c.notifier.Notify(notify.Error, notify.Msg(notify.KeyCameraStopFailed, err.Error()))
	}
}

func noop() {}

// ── Decodes ────────────────────────────────────────────────────

func (c *Controller) onDecode(session uint64, text string) {
	c.mu.Lock()
	if session != c.session {
		c.mu.Unlock()
		return
	}
	entry, ok := c.acceptLocked(text)
	c.mu.Unlock()
	if ok {
		c.emit(entry)
	}
}

// SubmitScan feeds one decoded payload to the active session. It reports
// whether an entry was emitted; decodes are dropped silently when not
// scanning, during cooldown, or when the context has become invalid.
func (c *Controller) SubmitScan(text string) (types.ScanLog, bool) {
	c.mu.Lock()
	entry, ok := c.acceptLocked(text)
	c.mu.Unlock()
	if ok {
		c.emit(entry)
	}
	return entry, ok
}

func (c *Controller) acceptLocked(text string) (types.ScanLog, bool) {
	if strings.TrimSpace(text) == "" || !c.cameraActive || c.coolingDown {
		return types.ScanLog{}, false
	}
	if !Validate(c.scanCtx).Valid() {
		return types.ScanLog{}, false
	}

	entry := c.scanCtx.Entry(text, c.clock.Now())
	c.coolingDown = true
	c.cooldownTimer = c.clock.AfterFunc(c.cooldown, c.endCooldown)

	c.state = Success
	session := c.session
	if c.successTimer != nil {
		c.successTimer.Stop()
	}
	c.successTimer = c.clock.AfterFunc(c.successWindow, func() { c.endSuccess(session) })
	return entry, true
}

func (c *Controller) endCooldown() {
	c.mu.Lock()
	c.coolingDown = false
	c.cooldownTimer = nil
	c.mu.Unlock()
}

func (c *Controller) endSuccess(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if session == c.session && c.cameraActive && c.state == Success {
		c.state = Scanning
	}
}

// emit gives feedback first and then hands the entry to the recorder.
// Failures are the recorder's to surface; there is no retry.
func (c *Controller) emit(entry types.ScanLog) {
	c.feedback.Accepted()
	c.inflight.Add(1)
	c.dispatch(func() {
		defer c.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.appendTimeout)
		defer cancel()
		if _, err := c.recorder.AppendScan(ctx, entry); err != nil {
			c.logger.Warn("append scan failed", "serial", entry.SerialNumber, "err", err)
		}
	})
}
