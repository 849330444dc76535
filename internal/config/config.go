package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the canonical defaults file; its contents mirror
// Default(). Load does not read it: a loaded config is merged over the
// built-in Default() values.
const DefaultConfigPath = "config/experiment.defaults.json"

// DefaultFrameworkUpdateRate is the fixed framework tick length used
// when the loaded config does not set frameworkUpdateRate.
const DefaultFrameworkUpdateRate = 100 * time.Millisecond

// LibraryDescriptor names one plug-in library to load for a given category.
type LibraryDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`

	// Args carries instance-specific construction parameters for the
	// library's CreateInstance call. The kernel's own model libraries (e.g.
	// internal/components/driverreaction) interpret well-known keys out
	// of this bag; an externally loaded plug-in is free to ignore it or
	// expect its own keys.
	Args map[string]interface{} `json:"args,omitempty" yaml:"args,omitempty"`
}

// ExperimentConfig holds experiment-wide settings.
type ExperimentConfig struct {
	NumberOfInvocations int                            `json:"numberOfInvocations" yaml:"numberOfInvocations"`
	RandomSeed          uint32                         `json:"randomSeed" yaml:"randomSeed"`
	Libraries           map[string][]LibraryDescriptor `json:"libraries" yaml:"libraries"`
}

// Distribution describes a sampling distribution for an environment
// parameter.
type Distribution struct {
	Kind   string  `json:"kind" yaml:"kind"`                         // "uniform", "normal", "constant"
	Min    float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	StdDev float64 `json:"stdDev,omitempty" yaml:"stdDev,omitempty"`
	Value  float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// EnvironmentConfig holds the distributions sampled once per invocation.
type EnvironmentConfig struct {
	TimeOfDay          Distribution `json:"timeOfDay" yaml:"timeOfDay"`
	VisibilityDistance Distribution `json:"visibilityDistance" yaml:"visibilityDistance"`
	Friction           Distribution `json:"friction" yaml:"friction"`
	Weather            Distribution `json:"weather" yaml:"weather"`
}

// ComponentScheduling holds the per-component scheduling parameters.
type ComponentScheduling struct {
	Priority     int           `json:"priority" yaml:"priority"`
	CycleTime    time.Duration `json:"cycleTime" yaml:"cycleTime"`
	OffsetTime   time.Duration `json:"offsetTime" yaml:"offsetTime"`
	ResponseTime time.Duration `json:"responseTime" yaml:"responseTime"`
	IsInit       bool          `json:"isInit" yaml:"isInit"`

	// IsDynamics marks the component whose dynamics output drives the
	// owning agent's world pose.
	IsDynamics bool `json:"isDynamics" yaml:"isDynamics"`
}

// ChannelConfig wires one component's output port to another's input
// port within the same agent. Multiple entries sharing a source and
// source link fan the same buffer out to several targets.
type ChannelConfig struct {
	Source     string `json:"source" yaml:"source"`
	SourceLink int    `json:"sourceLink" yaml:"sourceLink"`
	Target     string `json:"target" yaml:"target"`
	TargetLink int    `json:"targetLink" yaml:"targetLink"`
}

// EntityConfig describes one scenario entity (agent) to spawn.
type EntityConfig struct {
	Name       string                         `json:"name" yaml:"name"`
	Category   string                         `json:"category" yaml:"category"`     // ego|scenario|common
	Components map[string]ComponentScheduling `json:"components" yaml:"components"`

	// ComponentArgs carries instance-specific construction parameters
	// per component library name, forwarded as the descriptor's Args bag
	// (e.g. the trajectoryfollower's trajectory points).
	ComponentArgs map[string]map[string]interface{} `json:"componentArgs,omitempty" yaml:"componentArgs,omitempty"`

	// Channels wires this entity's component ports together.
	Channels []ChannelConfig `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// ScenarioConfig holds per-run scenario parameters.
type ScenarioConfig struct {
	EndTime     time.Duration  `json:"endTime" yaml:"endTime"`
	SceneryPath string         `json:"sceneryPath" yaml:"sceneryPath"`
	Entities    []EntityConfig `json:"entities" yaml:"entities"`
}

// Config is the fully resolved configuration for one experiment.
type Config struct {
	FrameworkUpdateRate time.Duration     `json:"frameworkUpdateRate" yaml:"frameworkUpdateRate"`
	Experiment          ExperimentConfig  `json:"experiment" yaml:"experiment"`
	Environment         EnvironmentConfig `json:"environment" yaml:"environment"`
	Scenario            ScenarioConfig    `json:"scenario" yaml:"scenario"`
	ResultsDir          string            `json:"resultsDir" yaml:"resultsDir"`
}

// Default returns the built-in defaults used when a field is not
// present in the loaded file.
func Default() *Config {
	return &Config{
		FrameworkUpdateRate: DefaultFrameworkUpdateRate,
		Experiment: ExperimentConfig{
			NumberOfInvocations: 1,
			RandomSeed:          1,
			Libraries:           map[string][]LibraryDescriptor{},
		},
		Environment: EnvironmentConfig{
			TimeOfDay:          Distribution{Kind: "constant", Value: 12},
			VisibilityDistance: Distribution{Kind: "constant", Value: 1000},
			Friction:           Distribution{Kind: "constant", Value: 1.0},
			Weather:            Distribution{Kind: "constant", Value: 0},
		},
		Scenario: ScenarioConfig{
			EndTime: 10 * time.Second,
		},
		ResultsDir: "results",
	}
}

// Load reads a JSON or YAML config file (chosen by extension) and merges
// it over Default(). An unrecognized or missing field keeps the default
// value; scenario configs are typically complete rather than sparse
// overrides, so a whole-struct decode suffices.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse json %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks for configuration errors, which are fatal before any
// invocation is attempted.
func (c *Config) Validate() error {
	if c.Experiment.NumberOfInvocations < 1 {
		return fmt.Errorf("experiment.numberOfInvocations must be >= 1, got %d", c.Experiment.NumberOfInvocations)
	}
	if c.FrameworkUpdateRate <= 0 {
		return fmt.Errorf("frameworkUpdateRate must be > 0")
	}
	if c.Scenario.EndTime <= 0 {
		return fmt.Errorf("scenario.endTime must be > 0")
	}
	for _, e := range c.Scenario.Entities {
		for name, sched := range e.Components {
			if sched.CycleTime < c.FrameworkUpdateRate {
				return fmt.Errorf("entity %s component %s: cycleTime %v below frameworkUpdateRate %v", e.Name, name, sched.CycleTime, c.FrameworkUpdateRate)
			}
			if sched.CycleTime%c.FrameworkUpdateRate != 0 {
				return fmt.Errorf("entity %s component %s: cycleTime %v is not an integer multiple of frameworkUpdateRate %v", e.Name, name, sched.CycleTime, c.FrameworkUpdateRate)
			}
		}
	}
	return nil
}
