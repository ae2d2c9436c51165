// Package syncconfig loads the tunables that the synchronization core
// leaves as named constants: the payload size bound, retained history
// depth, and the per-context timeouts an orchestration host enforces
// around its three cross-context calls. A host that supplies no config
// file still gets spec-correct defaults.
package syncconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable an orchestration deployment may override.
type Config struct {
	// MaxPayloadBytes records the payload size bound for a deployment.
	// Payload construction in synccore checks its own MaxPayloadBytes
	// constant; it does not read this field.
	MaxPayloadBytes int `yaml:"maxPayloadBytes"`

	// MaxHistorySize records a retained-history depth for a deployment.
	// The syncstore ListByPath/ListSince calls do not read it and return
	// every matching operation.
	MaxHistorySize int `yaml:"maxHistorySize"`

	// Timeouts bounds each OrchestrationHost call.
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig names the per-context budget enforced around each
// OrchestrationHost method.
type TimeoutConfig struct {
	ValidateProof      time.Duration `yaml:"validateProof"`
	InstallPackage     time.Duration `yaml:"installPackage"`
	SynchronizeDevice  time.Duration `yaml:"synchronizeDevice"`
}

// Default returns the spec-correct configuration a host gets with no
// config file supplied: a 1 MiB payload bound and generous per-context
// timeouts.
func Default() Config {
	return Config{
		MaxPayloadBytes: 1 << 20,
		MaxHistorySize:  10_000,
		Timeouts: TimeoutConfig{
			ValidateProof:     5 * time.Second,
			InstallPackage:    5 * time.Second,
			SynchronizeDevice: 30 * time.Second,
		},
	}
}

// Load reads a YAML config document from path, starting from Default()
// and overriding whichever fields the document sets. A missing file is
// not an error; Load returns Default() unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("syncconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("syncconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}
