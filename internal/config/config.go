// Package config handles simulation configuration loading and management.
package config

// Config holds all simulation and viewer settings.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Material  MaterialConfig  `yaml:"material"`
	Forces    ForcesConfig    `yaml:"forces"`
	Collision CollisionConfig `yaml:"collision"`
	Solver    SolverConfig    `yaml:"solver"`
	Collider  ColliderConfig  `yaml:"collider"`
	Window    WindowConfig    `yaml:"window"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Vector is a point or direction written as a three element YAML list.
type Vector [3]float32

// GridConfig holds the particle lattice settings.
type GridConfig struct {
	Columns     int     `yaml:"columns"`
	Rows        int     `yaml:"rows"`
	Spacing     float32 `yaml:"spacing"`
	Offset      Vector  `yaml:"offset"`
	Orientation string  `yaml:"orientation"` // vertical or horizontal
	Mass        float32 `yaml:"mass"`
	Radius      float32 `yaml:"radius"`
}

// MaterialConfig selects a preset. Non-zero fields override the preset.
type MaterialConfig struct {
	Preset          string  `yaml:"preset"`
	K               float32 `yaml:"k"`
	ShearMultiplier float32 `yaml:"shear_multiplier"`
	BendMultiplier  float32 `yaml:"bend_multiplier"`
}

// ForcesConfig holds the external forces.
type ForcesConfig struct {
	Gravity float32    `yaml:"gravity"`
	Wind    WindConfig `yaml:"wind"`
}

// WindConfig holds wind settings.
type WindConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Scale          float32 `yaml:"scale"`
	OffsetSpeed    float32 `yaml:"offset_speed"`
	ChangeInterval float32 `yaml:"change_interval"`
	Noise          string  `yaml:"noise"` // uniform or perlin
	Frequency      float32 `yaml:"frequency"`
}

// CollisionConfig holds contact response settings.
type CollisionConfig struct {
	Strategy         string         `yaml:"strategy"` // bvh or linear
	Response         string         `yaml:"response"` // substep or deferred
	Restitution      float32        `yaml:"restitution"`
	Repulsion        float32        `yaml:"repulsion"`
	ContactOffset    float32        `yaml:"contact_offset"`
	Friction         FrictionConfig `yaml:"friction"`
	ParticleContacts bool           `yaml:"particle_contacts"`
	SelfCollision    bool           `yaml:"self_collision"`
	SelfMode         string         `yaml:"self_mode"` // brute or grid
}

// FrictionConfig holds Coulomb friction coefficients.
type FrictionConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Static    float32 `yaml:"static"`
	Kinetic   float32 `yaml:"kinetic"`
	Threshold float32 `yaml:"threshold"`
}

// SolverConfig holds integration settings.
type SolverConfig struct {
	Substeps      int     `yaml:"substeps"`
	AutoSubstep   bool    `yaml:"auto_substep"`
	MaxFrameTime  float32 `yaml:"max_frame_time"`
	NormalWorkers int     `yaml:"normal_workers"`
	Seed          int64   `yaml:"seed"`
}

// ColliderConfig describes the rigid obstacle. Size is the side length of a
// cube or the radius of a sphere.
type ColliderConfig struct {
	Shape  string  `yaml:"shape"` // none, cube or sphere
	Size   float32 `yaml:"size"`
	Center Vector  `yaml:"center"`
}

// WindowConfig holds viewer display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Columns:     10,
			Rows:        10,
			Spacing:     0.05,
			Offset:      Vector{-0.5, 0.3, 0},
			Orientation: "vertical",
			Mass:        10,
			Radius:      0.005,
		},
		Material: MaterialConfig{
			Preset: "cotton",
		},
		Forces: ForcesConfig{
			Gravity: -0.05,
			Wind: WindConfig{
				Enabled:        false,
				Scale:          0.02,
				OffsetSpeed:    0.1,
				ChangeInterval: 0.5,
				Noise:          "uniform",
				Frequency:      4,
			},
		},
		Collision: CollisionConfig{
			Strategy:      "bvh",
			Response:      "substep",
			Restitution:   0.5,
			Repulsion:     500,
			ContactOffset: 0.01,
			Friction: FrictionConfig{
				Enabled:   true,
				Static:    0.5,
				Kinetic:   0.3,
				Threshold: 0.01,
			},
			ParticleContacts: true,
			SelfCollision:    true,
			SelfMode:         "brute",
		},
		Solver: SolverConfig{
			Substeps:     1,
			AutoSubstep:  true,
			MaxFrameTime: 0.05,
			Seed:         1,
		},
		Collider: ColliderConfig{
			Shape:  "sphere",
			Size:   0.1,
			Center: Vector{-0.275, -0.05, 0.12},
		},
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
