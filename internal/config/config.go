// Package config holds castedit's typed configuration.
//
// Settings are resolved from layers, each overriding the previous one:
// built-in defaults, a TOML or YAML config file, CASTEDIT_* environment
// variables, and command line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/config/loader"
	"github.com/dshills/castedit/internal/logging"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "CASTEDIT_"

// ErrInvalid indicates a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration.
type Config struct {
	Editor  EditorConfig  `json:"editor"`
	Save    SaveConfig    `json:"save"`
	Logging LoggingConfig `json:"logging"`
	Script  ScriptConfig  `json:"script"`
	UI      UIConfig      `json:"ui"`
}

// EditorConfig controls browsing.
type EditorConfig struct {
	// WindowLines is the number of original lines read per window.
	WindowLines int `json:"windowLines"`
	// ScrollStep is the fraction of the file moved by page up and down.
	ScrollStep float64 `json:"scrollStep"`
	// Watch enables detection of external changes to the open file.
	Watch bool `json:"watch"`
}

// SaveConfig controls how files are written.
type SaveConfig struct {
	// Atomic writes through a temporary file renamed into place.
	Atomic bool `json:"atomic"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level string `json:"level"`
	// File receives log output instead of stderr when set.
	File string `json:"file"`
}

// ScriptConfig limits Lua edit scripts.
type ScriptConfig struct {
	// InstructionLimit bounds the calls a script may make into the cast
	// module; each returned event costs one more.
	// Zero means unlimited.
	InstructionLimit int64    `json:"instructionLimit"`
	Timeout          Duration `json:"timeout"`
}

// UIConfig holds display colors as "#rrggbb" strings.
type UIConfig struct {
	OutputColor string `json:"outputColor"`
	InputColor  string `json:"inputColor"`
	ResizeColor string `json:"resizeColor"`
	MarkerColor string `json:"markerColor"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			WindowLines: 200,
			ScrollStep:  0.02,
			Watch:       true,
		},
		Save: SaveConfig{Atomic: true},
		Logging: LoggingConfig{
			Level: "info",
		},
		Script: ScriptConfig{
			InstructionLimit: 50_000_000,
			Timeout:          Duration(30 * time.Second),
		},
		UI: UIConfig{
			OutputColor: "#00ff00",
			InputColor:  "#ffff00",
			ResizeColor: "#ff0000",
			MarkerColor: "#0000ff",
		},
	}
}

// Validate checks ranges and color values.
func (c Config) Validate() error {
	var errs []error
	if c.Editor.WindowLines < 1 || c.Editor.WindowLines > 100_000 {
		errs = append(errs, fmt.Errorf("%w: editor.windowLines %d out of range [1, 100000]", ErrInvalid, c.Editor.WindowLines))
	}
	if c.Editor.ScrollStep <= 0 || c.Editor.ScrollStep > 1 {
		errs = append(errs, fmt.Errorf("%w: editor.scrollStep %v out of range (0, 1]", ErrInvalid, c.Editor.ScrollStep))
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs = append(errs, fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level))
	}
	if c.Script.InstructionLimit < 0 {
		errs = append(errs, fmt.Errorf("%w: script.instructionLimit must not be negative", ErrInvalid))
	}
	if c.Script.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: script.timeout must not be negative", ErrInvalid))
	}
	for name, v := range map[string]string{
		"ui.outputColor": c.UI.OutputColor,
		"ui.inputColor":  c.UI.InputColor,
		"ui.resizeColor": c.UI.ResizeColor,
		"ui.markerColor": c.UI.MarkerColor,
	} {
		if _, err := cast.ColorFromHex(v); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err))
		}
	}
	return errors.Join(errs...)
}

// LogLevel returns the parsed logging level.
func (c Config) LogLevel() logging.Level {
	l, _ := logging.ParseLevel(c.Logging.Level)
	return l
}

// Color returns a UI color, falling back to white for invalid values.
func Color(hex string) cast.RGB {
	c, err := cast.ColorFromHex(hex)
	if err != nil {
		return cast.RGB{R: 0xff, G: 0xff, B: 0xff}
	}
	return c
}

// Options controls Load.
type Options struct {
	// Path is an explicit config file. When empty the default locations are
	// searched and a missing file is not an error.
	Path string
	// FS defaults to the OS file system.
	FS loader.FileSystem
	// Env loads environment variables; nil uses CASTEDIT_ from the process.
	Env loader.Loader
	// Overrides are dotted paths applied last, typically from flags.
	Overrides map[string]any
}

// Load resolves the configuration layers and validates the result.
func Load(opts Options) (Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	fileLayer, err := loadFile(fsys, opts.Path)
	if err != nil {
		return Config{}, err
	}
	merged = loader.DeepMerge(merged, fileLayer)

	env := opts.Env
	if env == nil {
		env = loader.NewEnvLoader(EnvPrefix)
	}
	envLayer, err := env.Load()
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, envLayer)

	flagLayer := make(map[string]any)
	for path, v := range opts.Overrides {
		loader.SetPath(flagLayer, path, v)
	}
	merged = loader.DeepMerge(merged, flagLayer)

	cfg, err := fromMap(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(fsys loader.FileSystem, path string) (map[string]any, error) {
	if path != "" {
		if _, err := fsys.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return loader.ForPath(fsys, path).Load()
	}
	for _, candidate := range DefaultPaths() {
		if _, err := fsys.Stat(candidate); err == nil {
			return loader.ForPath(fsys, candidate).Load()
		}
	}
	return nil, nil
}

// DefaultPaths lists the config files searched when none is given.
func DefaultPaths() []string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(home, ".config")
	}
	base := filepath.Join(dir, "castedit")
	return []string{
		filepath.Join(base, "config.toml"),
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
	}
}

func toMap(c Config) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return c, nil
}

// Duration is a time.Duration that decodes from "1.5s" style strings or
// from a number of nanoseconds.
type Duration time.Duration

// MarshalJSON encodes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := time.ParseDuration(str)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
