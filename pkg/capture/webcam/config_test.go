package webcam

import (
	"testing"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("default config invalid: %v", errs)
	}
	if cfg.ShutterQuality != capture.ShutterQuality {
		t.Errorf("ShutterQuality = %v, want %v", cfg.ShutterQuality, capture.ShutterQuality)
	}
	if cfg.HasFront() {
		t.Error("default config should not assume a front camera")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Errorf("preset %q missing", name)
			continue
		}
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("preset %q invalid: %v", name, errs)
		}
	}
	if GetPreset("8k") != nil {
		t.Error("unknown preset should be nil")
	}
}

func TestValidateCatchesBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative back device", func(c *Config) { c.BackDevice = -1 }},
		{"front equals back", func(c *Config) { c.FrontDevice = c.BackDevice }},
		{"tiny width", func(c *Config) { c.Width = 10 }},
		{"huge height", func(c *Config) { c.Height = 10000 }},
		{"zero shutter quality", func(c *Config) { c.ShutterQuality = 0 }},
		{"shutter quality above one", func(c *Config) { c.ShutterQuality = 1.5 }},
		{"preview fps", func(c *Config) { c.PreviewFPS = 120 }},
		{"preview quality", func(c *Config) { c.PreviewQuality = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if errs := cfg.Validate(); len(errs) == 0 {
				t.Error("expected validation errors")
			}
		})
	}
}

func TestPreviewPauseFlag(t *testing.T) {
	c := &Camera{cfg: DefaultConfig()}
	if c.Paused() {
		t.Fatal("new camera should not be paused")
	}
	c.Pause()
	if !c.Paused() {
		t.Error("Pause did not stick")
	}
	c.Resume()
	if c.Paused() {
		t.Error("Resume did not clear pause")
	}
}

func TestSwitchFacingWithoutFront(t *testing.T) {
	c := &Camera{cfg: DefaultConfig(), facing: FacingBack}
	got, err := c.SwitchFacing()
	if err != ErrNoFrontCamera {
		t.Fatalf("err = %v, want ErrNoFrontCamera", err)
	}
	if got != FacingBack {
		t.Errorf("facing = %q, want back", got)
	}
}
