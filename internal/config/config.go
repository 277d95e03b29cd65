// Package config loads pipeline configuration from YAML and the environment.
//
// Values are layered: built-in defaults, then the YAML file, then CONTOUR_*
// environment variables, where a double underscore separates nesting levels
// (CONTOUR_BATCH__WORKERS=4 sets batch.workers).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ironsheep/contour-pipeline/internal/batch"
	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/logging"
	"github.com/ironsheep/contour-pipeline/internal/render"
	"github.com/ironsheep/contour-pipeline/internal/telemetry"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "contour.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONTOUR_"

// Config is the complete configuration.
type Config struct {
	Log      LogConfig     `koanf:"log"`
	Tracing  TracingConfig `koanf:"tracing"`
	Output   OutputConfig  `koanf:"output"`
	Batch    BatchConfig   `koanf:"batch"`
	Defaults ParamsConfig  `koanf:"defaults"`
	Scan     []ScanConfig  `koanf:"scan"`
	Images   []ImageConfig `koanf:"images"`
}

// LogConfig selects log verbosity and format.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console or json
}

// TracingConfig enables span export to stderr.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// OutputConfig controls output naming and rendering.
type OutputConfig struct {
	ContourPrefix string `koanf:"contour_prefix"`
	FigurePrefix  string `koanf:"figure_prefix"`
	Dir           string `koanf:"dir"` // empty writes next to each source image
	WriteFigure   bool   `koanf:"write_figure"`
	StrokeColor   string `koanf:"stroke_color"`
	StrokeWidth   int    `koanf:"stroke_width"`
	PanelWidth    int    `koanf:"panel_width"`
	TopK          int    `koanf:"top_k"`
}

// BatchConfig controls execution.
type BatchConfig struct {
	Workers int    `koanf:"workers"`
	Backend string `koanf:"backend"` // contour backend name
}

// ScanConfig discovers images in a directory by extension.
type ScanConfig struct {
	Dir        string       `koanf:"dir"`
	Extensions []string     `koanf:"extensions"`
	Params     ParamsConfig `koanf:"params"`
}

// ImageConfig names one image explicitly.
type ImageConfig struct {
	Path   string       `koanf:"path"`
	Params ParamsConfig `koanf:"params"`
}

// LoadEnvFiles loads .env files into the process environment. Missing files
// are ignored; with no arguments ".env" is tried.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	for key, value := range defaults() {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":             "info",
		"log.format":            logging.FormatConsole,
		"tracing.service_name":  telemetry.DefaultServiceName,
		"output.contour_prefix": batch.DefaultContourPrefix,
		"output.figure_prefix":  batch.DefaultFigurePrefix,
		"output.write_figure":   true,
		"output.stroke_color":   "#FF0000",
		"output.stroke_width":   render.DefaultStrokeWidth,
		"output.panel_width":    render.DefaultPanelWidth,
		"batch.workers":         1,
		"batch.backend":         contour.DefaultBackend,
	}
}

// Validate checks settings that do not depend on the images.
func (c *Config) Validate() error {
	if _, err := render.ParseColor(c.Output.StrokeColor); err != nil {
		return fmt.Errorf("output.stroke_color: %w", err)
	}
	if c.Output.StrokeWidth < 1 {
		return fmt.Errorf("output.stroke_width must be positive, got %d", c.Output.StrokeWidth)
	}
	if c.Output.PanelWidth < 1 {
		return fmt.Errorf("output.panel_width must be positive, got %d", c.Output.PanelWidth)
	}
	if c.Output.ContourPrefix == "" {
		return fmt.Errorf("output.contour_prefix must not be empty")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	if _, err := contour.Lookup(c.Batch.Backend); err != nil {
		return fmt.Errorf("batch.backend: %w", err)
	}
	for i, s := range c.Scan {
		if s.Dir == "" {
			return fmt.Errorf("scan[%d]: dir is required", i)
		}
	}
	for i, img := range c.Images {
		if img.Path == "" {
			return fmt.Errorf("images[%d]: path is required", i)
		}
	}
	return nil
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format}
}

// BatchOptions returns the runner settings.
func (c *Config) BatchOptions() batch.Options {
	opts := batch.DefaultOptions()
	opts.Workers = c.Batch.Workers
	opts.ContourPrefix = c.Output.ContourPrefix
	opts.FigurePrefix = c.Output.FigurePrefix
	opts.OutputDir = c.Output.Dir
	opts.WriteFigure = c.Output.WriteFigure
	opts.PanelWidth = c.Output.PanelWidth
	opts.TopK = c.Output.TopK
	return opts
}
