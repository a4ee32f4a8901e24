package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/tundra/engine/core"
)

const (
	DefaultUpdateRate = 60
	DefaultMaxUpdates = 60

	minUpdateSetting = 1
	maxUpdateSetting = 200
)

var ErrInvalidConfig = errors.New("invalid application config")

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	VSync       bool   `toml:"vsync"`
	// Fixed update frequency in Hz.
	UpdateRate int `toml:"update_rate"`
	// Upper bound of fixed updates run in a single frame.
	MaxUpdates int    `toml:"max_updates"`
	LogLevel   string `toml:"log_level"`
	// Root of every asset path. Empty disables the asset manager.
	AssetDir string `toml:"asset_dir"`
	// Scene file loaded by the sandbox, relative to AssetDir.
	Scene        string `toml:"scene"`
	HotReload    bool   `toml:"hot_reload"`
	ExitOnEscape bool   `toml:"exit_on_escape"`
	Headless     bool   `toml:"headless"`
	// Exit after this many frames. Zero runs until the window closes.
	MaxFrames uint64 `toml:"max_frames"`
	// Job system workers. Zero picks one per CPU.
	Workers int `toml:"workers"`
}

func DefaultConfig() ApplicationConfig {
	return ApplicationConfig{
		Name:         "Tundra",
		StartPosX:    100,
		StartPosY:    100,
		StartWidth:   1280,
		StartHeight:  720,
		VSync:        true,
		UpdateRate:   DefaultUpdateRate,
		MaxUpdates:   DefaultMaxUpdates,
		LogLevel:     core.InfoLevel.String(),
		AssetDir:     "assets",
		HotReload:    true,
		ExitOnEscape: true,
	}
}

// LoadConfig reads a TOML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (ApplicationConfig, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.StartWidth, c.StartHeight)
	}
	if !validUpdateSetting(c.UpdateRate) {
		return fmt.Errorf("%w: update_rate %d outside [%d, %d]", ErrInvalidConfig, c.UpdateRate, minUpdateSetting, maxUpdateSetting)
	}
	if !validUpdateSetting(c.MaxUpdates) {
		return fmt.Errorf("%w: max_updates %d outside [%d, %d]", ErrInvalidConfig, c.MaxUpdates, minUpdateSetting, maxUpdateSetting)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count", ErrInvalidConfig)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validUpdateSetting(v int) bool {
	return v >= minUpdateSetting && v <= maxUpdateSetting
}
