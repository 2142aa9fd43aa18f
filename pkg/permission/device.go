package permission

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// CameraDevicePath returns the V4L2 node for a camera index.
func CameraDevicePath(index int) string {
	return fmt.Sprintf("/dev/video%d", index)
}

// DeviceGate checks the camera device node and, optionally, the gallery
// directory with the process's real credentials.
type DeviceGate struct {
	// CameraPath is the camera device node. Empty skips the camera check
	// (platforms without device nodes) and counts as granted.
	CameraPath string

	// LibraryDir is the gallery directory. Empty means the gallery is
	// disabled and library access is not required.
	LibraryDir string

	Logger *slog.Logger
}

// Check runs the access checks.
func (g *DeviceGate) Check(ctx context.Context) Result {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := Result{Camera: Granted}
	if ctx.Err() != nil {
		return Result{Err: ctx.Err()}
	}

	if g.CameraPath != "" {
		if err := canReadWrite(g.CameraPath); err != nil {
			res.Camera = Denied
			res.Err = fmt.Errorf("camera %s: %w", g.CameraPath, err)
		}
	}

	if g.LibraryDir != "" {
		res.Library = Granted
		if err := canList(g.LibraryDir); err != nil {
			res.Library = Denied
			if res.Err == nil {
				res.Err = fmt.Errorf("library %s: %w", g.LibraryDir, err)
			}
		}
	}

	logger.Info("permissions checked",
		"camera", res.Camera,
		"library", res.Library,
		"error", res.Err,
	)
	return res
}

// canList reports whether dir is a directory the process can read.
func canList(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return canRead(dir)
}
