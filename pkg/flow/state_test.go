package flow

import (
	"errors"
	"reflect"
	"testing"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

var testImage = capture.NewImage([]byte("\xff\xd8\xff jpeg"), capture.ShutterQuality, capture.KindCamera)

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind
	}
	return out
}

func TestTransitionTable(t *testing.T) {
	netErr := &translate.Error{Kind: translate.KindNetwork, Op: "send", Err: errors.New("refused")}

	tests := []struct {
		name    string
		state   State
		event   Event
		next    State
		effects []EffectKind
	}{
		{
			"trigger from idle", Idle, Event{Kind: EventTrigger}, Processing,
			[]EffectKind{EffectPausePreview, EffectHideControls, EffectShowBusy, EffectCapture},
		},
		{
			"captured", Processing, Event{Kind: EventCaptured, Image: testImage}, Submitting,
			[]EffectKind{EffectShowBusy, EffectSubmit},
		},
		{
			"capture failed", Processing, Event{Kind: EventCaptureFailed, Err: capture.WrapError(capture.KindCamera, capture.ErrClosed)}, Idle,
			[]EffectKind{EffectHideBusy, EffectNotify, EffectResumePreview, EffectShowControls},
		},
		{
			"picker cancelled", Processing, Event{Kind: EventCaptureFailed, Err: capture.WrapError(capture.KindGallery, capture.ErrCancelled)}, Idle,
			[]EffectKind{EffectHideBusy, EffectResumePreview, EffectShowControls},
		},
		{
			"captured without image", Processing, Event{Kind: EventCaptured}, Idle,
			[]EffectKind{EffectHideBusy, EffectNotify, EffectResumePreview, EffectShowControls},
		},
		{
			"translated", Submitting, Event{Kind: EventTranslated, Text: "Hi"}, Idle,
			[]EffectKind{EffectHideBusy, EffectPresent, EffectResumePreview, EffectShowControls},
		},
		{
			"translate failed", Submitting, Event{Kind: EventTranslateFailed, Err: netErr}, Idle,
			[]EffectKind{EffectHideBusy, EffectNotify, EffectResumePreview, EffectShowControls},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects, ok := Transition(tt.state, tt.event)
			if !ok {
				t.Fatal("transition rejected")
			}
			if next != tt.next {
				t.Errorf("next = %v, want %v", next, tt.next)
			}
			if got := kinds(effects); !reflect.DeepEqual(got, tt.effects) {
				t.Errorf("effects = %v, want %v", got, tt.effects)
			}
		})
	}
}

func TestTransitionRejectsOutOfOrderEvents(t *testing.T) {
	tests := []struct {
		state State
		kind  EventKind
	}{
		{Processing, EventTrigger},
		{Submitting, EventTrigger},
		{Idle, EventCaptured},
		{Idle, EventTranslated},
		{Idle, EventTranslateFailed},
		{Processing, EventTranslated},
		{Submitting, EventCaptured},
		{Submitting, EventCaptureFailed},
	}
	for _, tt := range tests {
		next, effects, ok := Transition(tt.state, Event{Kind: tt.kind, Image: testImage})
		if ok || next != tt.state || effects != nil {
			t.Errorf("Transition(%v, %v) = %v, %v, %v; want rejected", tt.state, tt.kind, next, effects, ok)
		}
	}
}

func TestTransitionPayloads(t *testing.T) {
	_, effects, _ := Transition(Idle, Event{Kind: EventTrigger})
	if effects[2].Label != LabelProcessing {
		t.Errorf("label = %q", effects[2].Label)
	}

	_, effects, _ = Transition(Processing, Event{Kind: EventCaptured, Image: testImage})
	if effects[0].Label != LabelSubmitting || effects[1].Image != testImage {
		t.Errorf("effects = %+v", effects)
	}

	_, effects, _ = Transition(Submitting, Event{Kind: EventTranslated, Text: "Hi"})
	if effects[1].Text != "Hi" {
		t.Errorf("present text = %q", effects[1].Text)
	}

	_, effects, _ = Transition(Submitting, Event{Kind: EventTranslateFailed, Err: &translate.Error{Kind: translate.KindMalformed, Err: translate.ErrNotString}})
	if f := effects[1].Failure; f == nil || f.Class != ClassMalformed {
		t.Errorf("failure = %+v", f)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"capture", capture.WrapError(capture.KindCamera, capture.ErrClosed), ClassCapture},
		{"timeout", &translate.Error{Kind: translate.KindTimeout, Err: errors.New("slow")}, ClassNetwork},
		{"status", &translate.Error{Kind: translate.KindStatus, Err: &translate.APIError{StatusCode: 500}}, ClassNetwork},
		{"malformed", &translate.Error{Kind: translate.KindMalformed, Err: translate.ErrNotString}, ClassMalformed},
		{"unknown", errors.New("boom"), ClassNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			if f.Class != tt.want {
				t.Errorf("Class = %v, want %v", f.Class, tt.want)
			}
			if f.Message() == "" {
				t.Error("empty message")
			}
			if !errors.Is(f, tt.err) {
				t.Error("failure must wrap the original error")
			}
		})
	}
}

func TestRateLimitedMessage(t *testing.T) {
	err := &translate.Error{Kind: translate.KindStatus, Err: &translate.APIError{StatusCode: 429}}
	f := Classify(err)
	if f.Class != ClassNetwork {
		t.Fatalf("Class = %v, want network", f.Class)
	}
	if got := f.Message(); got != "The translation service is busy. Please try again later." {
		t.Errorf("Message = %q", got)
	}
	if got := Classify(&translate.Error{Kind: translate.KindStatus, Err: &translate.APIError{StatusCode: 502}}).Message(); got != "Could not reach the translation service." {
		t.Errorf("502 Message = %q", got)
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Processing.String() != "processing" || Submitting.String() != "submitting" {
		t.Error("state names changed")
	}
	if State(9).String() != "invalid" {
		t.Error("out of range state")
	}
}
