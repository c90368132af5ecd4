// Package poolconfig loads the tool's optional YAML configuration file.
// Command-line flags always take precedence over values loaded here; the
// absence of a config file is never an error, since Load is simply not
// called when -f is omitted.
package poolconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the subset of settings the CLI accepts from a file instead
// of flags: the cluster seed list, whether to use TLS, and defaults for
// the pool id and pipeline depth.
type Config struct {
	Servers     []string `yaml:"servers"`
	TLS         bool     `yaml:"tls"`
	DefaultPool string   `yaml:"default_pool"`
	PipelineMax int      `yaml:"pipeline_max"`
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("poolconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("poolconfig: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge overlays non-zero flag values onto cfg, returning the effective
// settings. Flags win whenever they were actually set (non-zero-valued);
// cfg fills in anything a flag left at its zero value.
func (cfg *Config) Merge(servers []string, defaultPool string, pipelineMax int) (mergedServers []string, mergedPool string, mergedPipelineMax int) {
	mergedServers = servers
	mergedPool = defaultPool
	mergedPipelineMax = pipelineMax
	if cfg == nil {
		return
	}
	if len(mergedServers) == 0 {
		mergedServers = cfg.Servers
	}
	if mergedPool == "" {
		mergedPool = cfg.DefaultPool
	}
	if mergedPipelineMax == 0 {
		mergedPipelineMax = cfg.PipelineMax
	}
	return
}
