// Package config loads the viewer configuration from TOML and command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/logx"
	"github.com/plus3/molview/scene"
	"github.com/plus3/molview/viewer"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Molecule       string  `toml:"molecule"`
	Rebond         bool    `toml:"rebond"`
	Recenter       bool    `toml:"recenter"`
	UnbuildCrystal bool    `toml:"unbuild_crystal"`
	BondTolerance  float64 `toml:"bond_tolerance"`
	LogLevel       string  `toml:"log_level"`
	Watch          bool    `toml:"watch"`

	Window  Window         `toml:"window"`
	Camera  Camera         `toml:"camera"`
	Palette []PaletteEntry `toml:"palette"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	FPS    int    `toml:"fps"`
}

type Camera struct {
	Projection string  `toml:"projection"`
	Fovy       float32 `toml:"fovy"`
}

// PaletteEntry overrides the colour of one element.
type PaletteEntry struct {
	Symbol string   `toml:"symbol"`
	RGB    [3]uint8 `toml:"rgb"`
}

// Default returns the built-in configuration. The molecule path is left empty.
func Default() Config {
	return Config{
		Rebond:         true,
		Recenter:       true,
		UnbuildCrystal: true,
		BondTolerance:  chem.DefaultBondTolerance,
		LogLevel:       "warn",
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "molview",
			FPS:    60,
		},
		Camera: Camera{
			Projection: camera.Perspective.String(),
			Fovy:       camera.DefaultFovy,
		},
	}
}

// Load reads path over the defaults. Keys that do not map to a field are errors.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, missing.String())
		}
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if c.Molecule == "" {
		errs = append(errs, fmt.Errorf("%w: molecule path is empty", ErrInvalid))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height))
	}
	if c.Window.FPS < 0 {
		errs = append(errs, fmt.Errorf("%w: fps %d", ErrInvalid, c.Window.FPS))
	}
	if _, err := camera.ParseProjection(c.Camera.Projection); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if c.Camera.Fovy <= 0 || c.Camera.Fovy >= 180 {
		errs = append(errs, fmt.Errorf("%w: fovy %g", ErrInvalid, c.Camera.Fovy))
	}
	if c.Rebond && c.BondTolerance <= 0 {
		errs = append(errs, fmt.Errorf("%w: bond tolerance %g", ErrInvalid, c.BondTolerance))
	}
	if _, err := logx.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if _, err := c.BuildPalette(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BuildPalette returns the default palette overlaid with the configured entries.
// A symbol listed twice is scene.ErrDuplicateColor.
func (c Config) BuildPalette() (*scene.Palette, error) {
	entries := make([]scene.PaletteEntry, len(c.Palette))
	for i, e := range c.Palette {
		entries[i] = scene.PaletteEntry{
			Symbol: e.Symbol,
			Color:  color.RGBA{R: e.RGB[0], G: e.RGB[1], B: e.RGB[2], A: 255},
		}
	}
	return scene.DefaultPalette().Override(entries)
}

// Pipeline returns the molecule preparation steps selected by the configuration.
func (c Config) Pipeline() viewer.Pipeline {
	return viewer.Pipeline{
		UnbuildCrystal: c.UnbuildCrystal,
		Rebond:         c.Rebond,
		BondTolerance:  c.BondTolerance,
		Recenter:       c.Recenter,
	}
}

// NewCamera returns a camera sized to the window.
func (c Config) NewCamera() *camera.Camera {
	cam := camera.New(c.Window.Width, c.Window.Height)
	cam.Fovy = c.Camera.Fovy
	cam.Mode, _ = camera.ParseProjection(c.Camera.Projection)
	return cam
}

// Flags are the command line options shared by the entry points.
type Flags struct {
	Config   string
	Molecule string
	Watch    bool
	Ortho    bool
	Verbose  bool
	Debug    bool
	Quiet    bool
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "path to a TOML configuration file")
	fs.StringVar(&f.Molecule, "molecule", "", "molecule file to open (.xyz, .sdf, .mol)")
	fs.BoolVar(&f.Watch, "watch", false, "reload the molecule when the file changes")
	fs.BoolVar(&f.Ortho, "ortho", false, "use an orthographic projection")
	fs.BoolVar(&f.Verbose, "v", false, "log informational messages")
	fs.BoolVar(&f.Debug, "vv", false, "log debug messages")
	fs.BoolVar(&f.Quiet, "q", false, "log errors only")
	return f
}

// Resolve loads the configuration file named by the flags, if any, applies flag
// overrides and validates the result. A positional argument names the molecule.
func (f *Flags) Resolve(args []string) (Config, error) {
	cfg := Default()
	if f.Config != "" {
		loaded, err := Load(f.Config)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Molecule = args[0]
	}
	if f.Molecule != "" {
		cfg.Molecule = f.Molecule
	}
	if f.Watch {
		cfg.Watch = true
	}
	if f.Ortho {
		cfg.Camera.Projection = camera.Orthographic.String()
	}
	if f.Debug || f.Verbose || f.Quiet {
		level := logx.LevelFromFlags(f.Debug, f.Verbose, f.Quiet)
		cfg.LogLevel = strings.ToLower(level.String())
	}

	return cfg, cfg.Validate()
}
