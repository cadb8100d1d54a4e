package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagColumns     = flag.Int("columns", 0, "Cloth columns")
	flagRows        = flag.Int("rows", 0, "Cloth rows")
	flagPreset      = flag.String("preset", "", "Material preset (cotton, silk, denim, leather, rubber)")
	flagOrientation = flag.String("orientation", "", "Cloth orientation (vertical, horizontal)")
	flagCollider    = flag.String("collider", "", "Collider shape (none, cube, sphere)")
	flagStrategy    = flag.String("strategy", "", "Collision strategy (bvh, linear)")
	flagWind        = flag.Bool("wind", false, "Enable wind")
	flagWindowed    = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ParseArgs parses flags from args, for binaries whose first argument is a
// subcommand.
func ParseArgs(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagColumns > 0 {
		cfg.Grid.Columns = *flagColumns
	}
	if *flagRows > 0 {
		cfg.Grid.Rows = *flagRows
	}
	if *flagPreset != "" {
		cfg.Material.Preset = *flagPreset
	}
	if *flagOrientation != "" {
		cfg.Grid.Orientation = *flagOrientation
	}
	if *flagCollider != "" {
		cfg.Collider.Shape = *flagCollider
	}
	if *flagStrategy != "" {
		cfg.Collision.Strategy = *flagStrategy
	}
	if *flagWind {
		cfg.Forces.Wind.Enabled = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
