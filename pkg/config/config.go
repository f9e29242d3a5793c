package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime-tunable playback options. The two observed
// flavours of the pipeline differed only in these constants, so they are
// configuration rather than separate code paths.
type Config struct {
	// QueueCapacity is the bounded frame queue size. When full, the oldest
	// queued frame is evicted to admit a new one.
	QueueCapacity int `yaml:"queueCapacity"`

	// Tolerance is how far ahead of the clock a frame may be and still be
	// presented this tick. Roughly one frame interval.
	Tolerance float64 `yaml:"tolerance"`

	// Epsilon bounds the catch-up drain: a frame within Epsilon ahead of
	// the desired time is the last one applied in a tick.
	Epsilon float64 `yaml:"epsilon"`

	// WatchdogPeriod is the coarse interval between background stall checks.
	WatchdogPeriod time.Duration `yaml:"watchdogPeriod"`

	// EmptyGrace is how long the frame queue may stay empty during playback
	// before the watchdog declares a stall.
	EmptyGrace time.Duration `yaml:"emptyGrace"`

	// DriftThreshold is the max allowed currentTime - lastFrameTimestamp
	// gap (seconds) before the watchdog declares a stall.
	DriftThreshold float64 `yaml:"driftThreshold"`

	// SettleDelay is the pause between tearing down a decode session and
	// starting its replacement.
	SettleDelay time.Duration `yaml:"settleDelay"`

	// JoinTimeout bounds the wait for a stopping decode session. On expiry
	// the session is abandoned rather than blocking the restart worker.
	JoinTimeout time.Duration `yaml:"joinTimeout"`

	// SeekStep is the relative seek distance (seconds) for arrow-key seeks.
	SeekStep float64 `yaml:"seekStep"`

	// SpeedStep and SpeedFloor control the speed-adjust input. Speed never
	// drops below SpeedFloor.
	SpeedStep  float64 `yaml:"speedStep"`
	SpeedFloor float64 `yaml:"speedFloor"`

	// SeekDebounce is the minimum interval between accepted interactive
	// seek inputs.
	SeekDebounce time.Duration `yaml:"seekDebounce"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		QueueCapacity:  8,
		Tolerance:      0.033,
		Epsilon:        0.1,
		WatchdogPeriod: 5 * time.Second,
		EmptyGrace:     2 * time.Second,
		DriftThreshold: 5.0,
		SettleDelay:    150 * time.Millisecond,
		JoinTimeout:    3 * time.Second,
		SeekStep:       10.0,
		SpeedStep:      0.25,
		SpeedFloor:     0.25,
		SeekDebounce:   250 * time.Millisecond,
	}
}

// Load builds the effective configuration: defaults, then the optional YAML
// file named by REELPLAY_CONFIG, then individual env overrides. A missing or
// malformed file falls back to what has been accumulated so far, mirroring
// the defaults-on-missing behaviour the settings layer always had.
func Load() Config {
	cfg := Default()

	if path := os.Getenv("REELPLAY_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		}
	}

	cfg.applyEnv()
	cfg.clamp()
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv overrides individual fields from the environment. Only the knobs
// that get tuned per-device in practice are exposed.
func (c *Config) applyEnv() {
	if v, ok := envInt("REELPLAY_QUEUE_CAPACITY"); ok {
		c.QueueCapacity = v
	}
	if v, ok := envFloat("REELPLAY_TOLERANCE"); ok {
		c.Tolerance = v
	}
	if v, ok := envFloat("REELPLAY_EPSILON"); ok {
		c.Epsilon = v
	}
	if v, ok := envFloat("REELPLAY_DRIFT_THRESHOLD"); ok {
		c.DriftThreshold = v
	}
	if v, ok := envDuration("REELPLAY_WATCHDOG_PERIOD"); ok {
		c.WatchdogPeriod = v
	}
	if v, ok := envDuration("REELPLAY_EMPTY_GRACE"); ok {
		c.EmptyGrace = v
	}
	if v, ok := envDuration("REELPLAY_JOIN_TIMEOUT"); ok {
		c.JoinTimeout = v
	}
}

// clamp keeps the configuration inside workable bounds regardless of what
// the file or environment supplied.
func (c *Config) clamp() {
	if c.QueueCapacity < 1 {
		c.QueueCapacity = 1
	}
	if c.Tolerance < 0 {
		c.Tolerance = 0
	}
	if c.Epsilon < 0 {
		c.Epsilon = 0
	}
	if c.SpeedFloor <= 0 {
		c.SpeedFloor = 0.25
	}
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envDuration(key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
