package config

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed default_config.yaml
var efs embed.FS

// Config holds the configuration for launchdash.
type Config struct {
	Name    string
	Dataset Dataset
	Render  Rendering
	Slider  Slider
	Server  Server
	Outputs Output `mapstructure:"-"`
}

// EncodeYAML serializes a [Config] to YAML into the provided writer.
//
// Runtime-only fields (Outputs) are excluded from the output.
func (c *Config) EncodeYAML(w io.Writer) error {
	var raw map[string]any

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Squash: true,
		Deep:   true,
		Result: &raw,
	})
	if err != nil {
		return fmt.Errorf("creating mapstructure decoder: %w", err)
	}

	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decoding config to map: %w", err)
	}

	return yaml.NewEncoder(w).Encode(raw)
}

// Dataset locates the launch records file and maps its columns.
type Dataset struct {
	File    string
	Columns Columns
}

// Columns holds the header names of the launch records file.
//
// Site, Payload, Class and Booster are required. FlightNumber and BoosterVersion are
// picked up whenever the file carries them.
type Columns struct {
	Site           string
	Payload        string
	Class          string
	Booster        string
	BoosterVersion string
	FlightNumber   string
}

// Required returns the names of the columns that must be present in the file.
func (c Columns) Required() []string {
	return []string{c.Site, c.Payload, c.Class, c.Booster}
}

// Rendering holds chart rendering settings.
type Rendering struct {
	Title      string
	Theme      string
	Legend     LegendPosition
	Width      string
	Height     string
	Screenshot Screenshot
}

// Screenshot configures the headless Chrome screenshot used for PNG rendering.
type Screenshot struct {
	Height int64
	Width  int64
	Sleep  string
}

// SleepDuration parses the Sleep field as a [time.Duration].
func (s Screenshot) SleepDuration() time.Duration {
	d, err := time.ParseDuration(s.Sleep)
	if d == 0 || err != nil {
		return 0
	}

	return d
}

// Slider defines the bounds and step of the payload range selector.
type Slider struct {
	Min  float64
	Max  float64
	Step float64
}

// Server holds the settings of the embedded web server.
type Server struct {
	Addr            string
	Compress        bool
	ShutdownTimeout string
	QueueSize       int
}

// ShutdownDuration parses the ShutdownTimeout field as a [time.Duration].
//
// Defaults to 5s.
func (s Server) ShutdownDuration() time.Duration {
	const defaultShutdown = 5 * time.Second

	d, err := time.ParseDuration(s.ShutdownTimeout)
	if d <= 0 || err != nil {
		return defaultShutdown
	}

	return d
}

// Output holds the resolved output file paths for the static HTML export and PNG rendering.
type Output struct {
	HTMLFile string
	PngFile  string
	IsTemp   bool
}

// Load a configuration file from the local file system.
//
// The file overrides the embedded defaults.
func Load(file string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	fsys := os.DirFS(filepath.Dir(file))
	pth := filepath.Join(".", filepath.Base(file))

	return load(fsys, pth, cfg)
}

// LoadDefaults loads the default configuration from the embedded default_config.yaml.
func LoadDefaults() (*Config, error) {
	return loadDefaults()
}

// loadDefaults loads the default configuration from embedded FS.
func loadDefaults() (*Config, error) {
	return load(efs, "default_config.yaml", &Config{})
}

func load(fsys fs.FS, file string, cfg *Config) (*Config, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}

	var raw any
	err = yaml.Unmarshal(content, &raw)
	if err != nil {
		return nil, err
	}

	err = mapstructure.Decode(raw, cfg)
	if err != nil {
		return nil, err
	}

	if err = cfg.validateColumns(); err != nil {
		return nil, err
	}

	if err = cfg.validateSlider(); err != nil {
		return nil, err
	}

	if err = cfg.validateRendering(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateColumns() error {
	seen := make(map[string]struct{}, len(c.Dataset.Columns.Required()))

	for i, name := range c.Dataset.Columns.Required() {
		if name == "" {
			return fmt.Errorf("invalid dataset columns: empty required column name: columns[%d]", i)
		}

		if _, ok := seen[name]; ok {
			return fmt.Errorf("invalid dataset columns: duplicate column name: %q", name)
		}

		seen[name] = struct{}{}
	}

	return nil
}

func (c *Config) validateSlider() error {
	s := c.Slider
	if s.Min >= s.Max {
		return fmt.Errorf("invalid slider: min must be lower than max: min=%v max=%v", s.Min, s.Max)
	}

	if s.Step <= 0 {
		return fmt.Errorf("invalid slider: step must be positive: step=%v", s.Step)
	}

	return nil
}

func (c *Config) validateRendering() error {
	if c.Render.Legend == "" {
		c.Render.Legend = LegendPositionRight
	}

	if !c.Render.Legend.IsValid() {
		return fmt.Errorf("invalid render: invalid legend position: %q (should be one of %v)", c.Render.Legend, AllLegendPositions())
	}

	if c.Name == "" {
		c.Name = titleize(filepath.Base(c.Dataset.File))
	}

	if c.Render.Title == "" {
		c.Render.Title = c.Name
	}

	return nil
}

type str interface {
	~string
}

func titleize[T str](in T) string {
	caser := cases.Title(language.English, cases.NoLower) // the case is stateful: cannot declare it globally

	base := strings.TrimSuffix(string(in), filepath.Ext(string(in)))

	return caser.String(strings.Map(func(r rune) rune {
		switch r {
		case '_', '-':
			return ' '
		default:
			return r
		}
	}, base,
	))
}
