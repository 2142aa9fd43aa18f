package webcam

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetLegacy  = "legacy"
	Preset1080p   = "1080p"
	PresetLowBand = "lowband"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetLegacy:  LegacyConfig(),
		Preset1080p:   HD1080Config(),
		PresetLowBand: LowBandwidthConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetDefault, PresetLegacy, Preset1080p, PresetLowBand}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// LegacyConfig returns a 640x480 configuration for old USB cameras.
func LegacyConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// HD1080Config returns 1080p Full HD configuration.
// Small print reads better; uploads grow accordingly.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	return cfg
}

// LowBandwidthConfig keeps the preview cheap for remote dashboards.
func LowBandwidthConfig() Config {
	cfg := DefaultConfig()
	cfg.PreviewFPS = 4
	cfg.PreviewQuality = 35
	return cfg
}
