package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/locale"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

// UI is the presentation side of a run.
type UI interface {
	// ShowControls shows or hides the capture controls.
	ShowControls(visible bool)

	// ShowBusy shows the busy indicator with label; "" hides it.
	ShowBusy(label string)

	// Present shows the translation and blocks until the user
	// acknowledges it or ctx is done.
	Present(ctx context.Context, text string) error

	// Notify shows a non-blocking failure notice.
	Notify(ctx context.Context, f *Failure)
}

// Preview is a live camera preview that pauses during a run.
type Preview interface {
	Pause()
	Resume()
}

// Observer is called after every state change.
type Observer func(from, to State)

// Option configures a Controller.
type Option func(*Controller)

// WithPreview sets the preview paused during runs.
func WithPreview(p Preview) Option {
	return func(c *Controller) { c.preview = p }
}

// WithLanguage sets the language code source, consulted once per run.
func WithLanguage(fn func() string) Option {
	return func(c *Controller) { c.language = fn }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver registers a state change observer.
func WithObserver(fn Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller runs capture-to-translation flows one at a time.
//
// A run holds the controller from the trigger until its last effect has
// finished, including the blocking Present. Triggers in between get ErrBusy.
type Controller struct {
	translator translate.Translator
	ui         UI
	preview    Preview
	language   func() string
	observers  []Observer
	logger     *slog.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu      sync.Mutex
	state   State
	running bool
	closed  bool
}

// NewController creates a controller in Idle.
func NewController(t translate.Translator, ui UI, opts ...Option) *Controller {
	base, stop := context.WithCancel(context.Background())
	c := &Controller{
		translator: t,
		ui:         ui,
		base:       base,
		stop:       stop,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ui == nil {
		c.ui = NopUI{}
	}
	if c.language == nil {
		c.language = (&locale.Resolver{}).Code
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "flow.controller")
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a run is in flight, including a result still
// waiting for acknowledgement.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Run performs one flow with src and returns the translated text.
// Every failure still returns the controller to Idle; the error is then
// a *Failure. It returns ErrBusy or ErrClosed without side effects when
// the run cannot start.
func (c *Controller) Run(ctx context.Context, src capture.Source) (string, error) {
	if err := c.acquire(); err != nil {
		return "", err
	}
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopAfter := context.AfterFunc(c.base, cancel)
	defer stopAfter()

	return c.run(ctx, src)
}

// Trigger starts a flow in the background. It fails fast with ErrBusy or
// ErrClosed; otherwise the outcome reaches the user through the UI.
func (c *Controller) Trigger(src capture.Source) error {
	if err := c.acquire(); err != nil {
		return err
	}
	go func() {
		defer c.wg.Done()
		c.run(c.base, src)
	}()
	return nil
}

// Wait blocks until no run is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels an in-flight run, waits for it to reach Idle and rejects
// further triggers.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
	return nil
}

func (c *Controller) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return ErrClosed
	case c.running:
		return ErrBusy
	}
	c.running = true
	c.wg.Add(1)
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// run drives Transition until no follow-up event is produced.
func (c *Controller) run(ctx context.Context, src capture.Source) (string, error) {
	defer c.release()

	logger := c.logger.With("flow_id", uuid.NewString())
	start := time.Now()

	var (
		text string
		fail *Failure
	)

	ev := &Event{Kind: EventTrigger}
	for ev != nil {
		from, to, effects, ok := c.step(*ev)
		if !ok {
			// Unreachable with the current table; never leave the run stuck.
			logger.Error("invalid transition", "state", from, "event", ev.Kind)
			break
		}
		logger.Debug("transition", "from", from, "to", to, "event", ev.Kind)

		ev = nil
		for _, eff := range effects {
			if eff.Kind == EffectPresent {
				text = eff.Text
			}
			next := c.perform(ctx, logger, src, eff)
			if next == nil {
				continue
			}
			switch next.Kind {
			case EventCaptureFailed:
				fail = captureFailure(next.Err)
			case EventTranslateFailed:
				fail = Classify(next.Err)
			}
			ev = next
		}
	}

	elapsed := time.Since(start).Milliseconds()
	switch {
	case fail != nil:
		if fail.Cancelled() {
			logger.Info("flow cancelled", "duration_ms", elapsed)
		} else {
			logger.Warn("flow failed", "class", fail.Class, "error", fail.Err, "duration_ms", elapsed)
		}
		return "", fail
	case c.State() != Idle:
		return "", &Failure{Class: ClassNetwork, Err: context.Canceled}
	default:
		logger.Info("flow complete", "duration_ms", elapsed)
		return text, nil
	}
}

// step applies ev to the current state under the lock and notifies
// observers of the change.
func (c *Controller) step(ev Event) (from, to State, effects []Effect, ok bool) {
	c.mu.Lock()
	from = c.state
	to, effects, ok = Transition(from, ev)
	if ok {
		c.state = to
	}
	c.mu.Unlock()

	if ok && from != to {
		for _, fn := range c.observers {
			fn(from, to)
		}
	}
	return from, to, effects, ok
}

// perform executes one effect. Capture and Submit return the event that
// continues the run.
func (c *Controller) perform(ctx context.Context, logger *slog.Logger, src capture.Source, eff Effect) *Event {
	switch eff.Kind {
	case EffectPausePreview:
		if c.preview != nil {
			c.preview.Pause()
		}
	case EffectResumePreview:
		if c.preview != nil {
			c.preview.Resume()
		}
	case EffectHideControls:
		c.ui.ShowControls(false)
	case EffectShowControls:
		c.ui.ShowControls(true)
	case EffectShowBusy:
		c.ui.ShowBusy(eff.Label)
	case EffectHideBusy:
		c.ui.ShowBusy("")

	case EffectCapture:
		img, err := src.Capture(ctx)
		if err == nil && img == nil {
			err = capture.WrapError(capture.KindCamera, capture.ErrEmpty)
		}
		if err != nil {
			return &Event{Kind: EventCaptureFailed, Err: err}
		}
		return &Event{Kind: EventCaptured, Image: img}

	case EffectSubmit:
		lang := c.language()
		logger.Info("submitting photo", "lang", lang, "source", eff.Image.Source, "quality", eff.Image.Quality)
		text, err := c.translator.Translate(ctx, eff.Image, lang)
		if err != nil {
			return &Event{Kind: EventTranslateFailed, Err: err}
		}
		return &Event{Kind: EventTranslated, Text: text}

	case EffectPresent:
		if err := c.ui.Present(ctx, eff.Text); err != nil {
			logger.Debug("result dismissed", "error", err)
		}
	case EffectNotify:
		c.ui.Notify(ctx, eff.Failure)
	}
	return nil
}

// NopUI ignores every UI call. Present returns immediately.
type NopUI struct{}

func (NopUI) ShowControls(bool)                     {}
func (NopUI) ShowBusy(string)                       {}
func (NopUI) Present(context.Context, string) error { return nil }
func (NopUI) Notify(context.Context, *Failure)      {}
