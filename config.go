package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Shots      ShotConfig       `yaml:"shots"`
	Validation ValidationConfig `yaml:"validation"`
	Game       GameConfig       `yaml:"game"`
	Log        LogConfig        `yaml:"log"`

	// Obstacles is the already-parsed static map geometry.
	Obstacles []Obstacle `yaml:"obstacles"`
}

// ServerConfig holds transport settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	MaxConnsPerIP     int           `yaml:"max_conns_per_ip"`
	MaxTotalConns     int           `yaml:"max_total_conns"`
	MaxMessagesPerSec int           `yaml:"max_messages_per_sec"`
	KeepAliveInterval time.Duration `yaml:"keep_alive_interval"`
	KeepAliveTimeout  time.Duration `yaml:"keep_alive_timeout"`
}

// PhysicsConfig describes the map and tank kinematics.
type PhysicsConfig struct {
	MapSize          float64 `yaml:"map_size"`      // side of the square map
	TankSpeed        float64 `yaml:"tank_speed"`    // units/s at forward speed 1
	RotationRate     float64 `yaml:"rotation_rate"` // rad/s at rotation speed 1
	Gravity          float64 `yaml:"gravity"`
	JumpVelocity     float64 `yaml:"jump_velocity"`
	TankRadius       float64 `yaml:"tank_radius"`
	TankHeight       float64 `yaml:"tank_height"`
	CollisionEpsilon float64 `yaml:"collision_epsilon"`
}

// ShotConfig describes projectiles.
type ShotConfig struct {
	Speed        float64       `yaml:"speed"` // units/s
	Cooldown     time.Duration `yaml:"cooldown"`
	Distance     float64       `yaml:"distance"`
	MaxAge       time.Duration `yaml:"max_age"`
	BarrelLength float64       `yaml:"barrel_length"`
	Radius       float64       `yaml:"radius"`
	MaxLive      int           `yaml:"max_live"`
}

// ValidationConfig holds the anti-cheat tolerances.
type ValidationConfig struct {
	DriftTolerance          float64 `yaml:"drift_tolerance"`
	VelocityChangeTolerance float64 `yaml:"velocity_change_tolerance"`
	VelocityChangeEpsilon   float64 `yaml:"velocity_change_epsilon"`
	RotationTolerance       float64 `yaml:"rotation_tolerance"`
	ShotOriginTolerance     float64 `yaml:"shot_origin_tolerance"`
	JumpThreshold           float64 `yaml:"jump_threshold"`
	MaxDeltaTime            float64 `yaml:"max_delta_time"`
}

// GameConfig holds simulation-loop and combat settings.
type GameConfig struct {
	TickRate       int           `yaml:"tick_rate"`
	RespawnDelay   time.Duration `yaml:"respawn_delay"`
	PauseCountdown time.Duration `yaml:"pause_countdown"`
	SpawnAttempts  int           `yaml:"spawn_attempts"`
	HitRadius      float64       `yaml:"hit_radius"`
	HitboxBottom   float64       `yaml:"hitbox_bottom"`
	HitboxTop      float64       `yaml:"hitbox_top"`
	MaxNameLen     int           `yaml:"max_name_len"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MaxConnsPerIP:     5,
			MaxTotalConns:     200,
			MaxMessagesPerSec: 120,
			KeepAliveInterval: 10 * time.Second,
			KeepAliveTimeout:  30 * time.Second,
		},
		Physics: PhysicsConfig{
			MapSize:          100,
			TankSpeed:        10,
			RotationRate:     2,
			Gravity:          20,
			JumpVelocity:     8,
			TankRadius:       1.5,
			TankHeight:       1.5,
			CollisionEpsilon: 0.01,
		},
		Shots: ShotConfig{
			Speed:        40,
			Cooldown:     500 * time.Millisecond,
			Distance:     80,
			MaxAge:       5 * time.Second,
			BarrelLength: 2.5,
			Radius:       0.1,
			MaxLive:      500,
		},
		Validation: ValidationConfig{
			DriftTolerance:          3,
			VelocityChangeTolerance: 20,
			VelocityChangeEpsilon:   0.01,
			RotationTolerance:       0.5,
			ShotOriginTolerance:     2,
			JumpThreshold:           4,
			MaxDeltaTime:            1,
		},
		Game: GameConfig{
			TickRate:       60,
			RespawnDelay:   3 * time.Second,
			PauseCountdown: 3 * time.Second,
			SpawnAttempts:  100,
			HitRadius:      2,
			HitboxBottom:   -0.5,
			HitboxTop:      2.5,
			MaxNameLen:     16,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads config from a YAML file on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Physics.MapSize <= 0 {
		errs = append(errs, errors.New("physics.map_size must be > 0"))
	}
	if c.Physics.TankSpeed <= 0 || c.Physics.RotationRate <= 0 {
		errs = append(errs, errors.New("physics.tank_speed and physics.rotation_rate must be > 0"))
	}
	if c.Physics.TankRadius <= 0 {
		errs = append(errs, errors.New("physics.tank_radius must be > 0"))
	}
	if c.Game.TickRate <= 0 {
		errs = append(errs, errors.New("game.tick_rate must be > 0"))
	}
	if c.Shots.Speed <= 0 || c.Shots.Distance <= 0 {
		errs = append(errs, errors.New("shots.speed and shots.distance must be > 0"))
	}
	if c.Server.KeepAliveTimeout <= c.Server.KeepAliveInterval {
		errs = append(errs, errors.New("server.keep_alive_timeout must exceed keep_alive_interval"))
	}
	for i, o := range c.Obstacles {
		if o.W <= 0 || o.D <= 0 || o.H <= 0 {
			errs = append(errs, fmt.Errorf("obstacles[%d] %q: w, d and h must be > 0", i, o.Name))
		}
		if o.Type != ObstacleBox && o.Type != ObstaclePyramid {
			errs = append(errs, fmt.Errorf("obstacles[%d] %q: unknown type %q", i, o.Name, o.Type))
		}
	}
	return errors.Join(errs...)
}

// TickDuration is the wall-clock length of one simulation tick.
func (g GameConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}
