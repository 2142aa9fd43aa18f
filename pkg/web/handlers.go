package web

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/flow"
	"github.com/teslashibe/go-phototranslate/pkg/hub"
	"github.com/teslashibe/go-phototranslate/pkg/permission"
)

// deniedHTML is the whole page when access is denied.
const deniedHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>phototranslate</title></head>
<body><p>` + permission.DeniedMessage + `</p></body></html>
`

// handleIndex serves the camera page, the static denial page, or nothing
// while the permission check is pending.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	switch s.permissionStatus() {
	case permission.Granted:
		c.Type("html", "utf-8")
		return c.Send(indexHTML)
	case permission.Denied:
		c.Type("html", "utf-8")
		return c.Status(fiber.StatusForbidden).SendString(deniedHTML)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// requireGranted rejects every API and websocket call unless access
// was granted.
func (s *Server) requireGranted(c *fiber.Ctx) error {
	switch s.permissionStatus() {
	case permission.Granted:
		return c.Next()
	case permission.Denied:
		return fiber.NewError(fiber.StatusForbidden, permission.DeniedMessage)
	}
	return fiber.NewError(fiber.StatusServiceUnavailable, "permission check pending")
}

// handleStatus returns the current UI state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.State())
}

// handleShutter starts a camera flow.
func (s *Server) handleShutter(c *fiber.Ctx) error {
	if s.OnShutter == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "camera not configured")
	}
	if err := s.OnShutter(); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
}

// handleGallery starts a gallery flow with the uploaded "image" file.
func (s *Server) handleGallery(c *fiber.Ctx) error {
	if !s.State().GalleryEnabled || s.OnPick == nil {
		return fiber.NewError(fiber.StatusNotFound, "gallery disabled")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field \"image\" required")
	}
	if fh.Size > capture.DefaultMaxBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, capture.ErrTooLarge.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, capture.DefaultMaxBytes))
	if err != nil {
		return err
	}

	if err := s.OnPick(data); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
}

// handleSwitch toggles between back and front camera.
func (s *Server) handleSwitch(c *fiber.Ctx) error {
	if s.OnSwitch == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "camera switch not available")
	}
	facing, err := s.OnSwitch()
	if err != nil {
		return err
	}
	s.SetFacing(facing)
	return c.JSON(fiber.Map{"facing": facing})
}

// AckRequest is the optional body of /api/result/ack.
type AckRequest struct {
	ID string `json:"id"`
}

// handleAck acknowledges the open translation modal.
func (s *Server) handleAck(c *fiber.Ctx) error {
	var req AckRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
	}
	if !s.acknowledge(req.ID) {
		return fiber.NewError(fiber.StatusNotFound, "no open result")
	}
	return c.JSON(fiber.Map{"acknowledged": true})
}

// handleStatusWS streams state changes, starting with the current state.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	initial, err := hub.NewEvent("state", s.State())
	if err != nil {
		c.Close()
		return
	}
	hub.Serve(s.statusHub, c, initial)
}

// handlePreviewWS streams JPEG preview frames.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	hub.Serve(s.previewHub, c)
}

// handleError maps errors to JSON responses.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, flow.ErrBusy):
		code = fiber.StatusConflict
	case errors.Is(err, flow.ErrClosed):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, capture.ErrNotImage), errors.Is(err, capture.ErrEmpty):
		code = fiber.StatusUnsupportedMediaType
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
