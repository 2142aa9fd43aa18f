package web

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-phototranslate/pkg/flow"
)

// ShowControls shows or hides the capture controls.
func (s *Server) ShowControls(visible bool) {
	s.update(func(u *UIState) { u.ControlsVisible = visible })
}

// ShowBusy shows the busy indicator; "" hides it.
func (s *Server) ShowBusy(label string) {
	s.update(func(u *UIState) { u.BusyLabel = label })
}

// Present opens the translation modal and blocks until a client posts
// /api/result/ack or ctx is done.
func (s *Server) Present(ctx context.Context, text string) error {
	ack := make(chan struct{})
	res := &Result{
		ID:     uuid.NewString(),
		Title:  ResultTitle,
		Text:   text,
		Button: ResultButton,
	}

	s.mu.Lock()
	s.ack = ack
	s.mu.Unlock()
	s.update(func(u *UIState) {
		u.Result = res
		u.Notice = nil
	})

	var err error
	select {
	case <-ack:
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.mu.Lock()
	if s.ack == ack {
		s.ack = nil
	}
	s.mu.Unlock()
	s.update(func(u *UIState) {
		if u.Result != nil && u.Result.ID == res.ID {
			u.Result = nil
		}
	})
	return err
}

// Notify shows a failure notice without blocking.
func (s *Server) Notify(ctx context.Context, f *flow.Failure) {
	n := &Notice{
		Class:   string(f.Class),
		Message: f.Message(),
		Time:    time.Now().Format("15:04:05"),
	}
	s.update(func(u *UIState) { u.Notice = n })
	if err := s.statusHub.BroadcastEvent("notice", n); err != nil {
		s.logger.Error("broadcast notice", "error", err)
	}
}

// acknowledge closes the open modal. id may be empty; otherwise it must
// match the open result.
func (s *Server) acknowledge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ack == nil || s.state.Result == nil {
		return false
	}
	if id != "" && id != s.state.Result.ID {
		return false
	}
	close(s.ack)
	s.ack = nil
	return true
}

// releaseResult unblocks a pending Present on shutdown.
func (s *Server) releaseResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ack != nil {
		close(s.ack)
		s.ack = nil
	}
}

// Verify Server implements flow.UI at compile time.
var _ flow.UI = (*Server)(nil)
