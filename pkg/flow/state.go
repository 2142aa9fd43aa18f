// Package flow sequences one capture-to-translation run.
//
// The run is a small state machine:
//
//	Idle --trigger--> Processing --captured--> Submitting --done--> Idle
//	                      |                                 ^
//	                      +------- capture failed ----------+
//
// Transition is a pure function of (state, event) returning the next
// state and the side effects to perform. Controller owns the state,
// performs the effects and guarantees that only one run is in flight.
package flow

import (
	"github.com/teslashibe/go-phototranslate/pkg/capture"
)

// State is the flow state. The zero value is Idle.
type State int

const (
	Idle State = iota
	Processing
	Submitting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Submitting:
		return "submitting"
	}
	return "invalid"
}

// Busy indicator labels.
const (
	LabelProcessing = "Processing photo..."
	LabelSubmitting = "Submitting photo..."
)

// EventKind identifies what happened.
type EventKind int

const (
	EventTrigger         EventKind = iota // shutter press or gallery pick
	EventCaptured                         // the source produced an image
	EventCaptureFailed                    // the source failed or was cancelled
	EventTranslated                       // the client returned text
	EventTranslateFailed                  // the client failed
)

var eventNames = [...]string{"trigger", "captured", "capture_failed", "translated", "translate_failed"}

// String returns the event name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "invalid"
}

// Event is an input to Transition.
type Event struct {
	Kind  EventKind
	Image *capture.Image // EventCaptured
	Text  string         // EventTranslated
	Err   error          // EventCaptureFailed, EventTranslateFailed
}

// EffectKind identifies a side effect.
type EffectKind int

const (
	EffectPausePreview EffectKind = iota
	EffectHideControls
	EffectShowBusy // Label
	EffectCapture
	EffectSubmit // Image
	EffectHideBusy
	EffectPresent // Text; blocks until acknowledged
	EffectNotify  // Failure; does not block
	EffectResumePreview
	EffectShowControls
)

var effectNames = [...]string{
	"pause_preview", "hide_controls", "show_busy", "capture", "submit",
	"hide_busy", "present", "notify", "resume_preview", "show_controls",
}

// String returns the effect name.
func (k EffectKind) String() string {
	if int(k) < len(effectNames) {
		return effectNames[k]
	}
	return "invalid"
}

// Effect is a side effect requested by Transition.
type Effect struct {
	Kind    EffectKind
	Label   string
	Image   *capture.Image
	Text    string
	Failure *Failure
}

// Transition returns the next state and the effects to perform, in order.
// ok is false when the event is not valid in state s; the state is then
// unchanged and there are no effects.
func Transition(s State, ev Event) (next State, effects []Effect, ok bool) {
	switch {
	case s == Idle && ev.Kind == EventTrigger:
		return Processing, []Effect{
			{Kind: EffectPausePreview},
			{Kind: EffectHideControls},
			{Kind: EffectShowBusy, Label: LabelProcessing},
			{Kind: EffectCapture},
		}, true

	case s == Processing && ev.Kind == EventCaptured && ev.Image != nil:
		return Submitting, []Effect{
			{Kind: EffectShowBusy, Label: LabelSubmitting},
			{Kind: EffectSubmit, Image: ev.Image},
		}, true

	case s == Processing && (ev.Kind == EventCaptureFailed || ev.Kind == EventCaptured):
		// A nil image counts as a failed capture.
		err := ev.Err
		if err == nil {
			err = capture.WrapError(capture.KindCamera, capture.ErrEmpty)
		}
		return Idle, backToIdle(captureFailure(err)), true

	case s == Submitting && ev.Kind == EventTranslated:
		return Idle, []Effect{
			{Kind: EffectHideBusy},
			{Kind: EffectPresent, Text: ev.Text},
			{Kind: EffectResumePreview},
			{Kind: EffectShowControls},
		}, true

	case s == Submitting && ev.Kind == EventTranslateFailed:
		return Idle, backToIdle(Classify(ev.Err)), true
	}
	return s, nil, false
}

// backToIdle returns the effects leading back to Idle after a failure.
// A user cancellation is not reported.
func backToIdle(f *Failure) []Effect {
	effects := []Effect{{Kind: EffectHideBusy}}
	if !f.Cancelled() {
		effects = append(effects, Effect{Kind: EffectNotify, Failure: f})
	}
	return append(effects,
		Effect{Kind: EffectResumePreview},
		Effect{Kind: EffectShowControls},
	)
}
