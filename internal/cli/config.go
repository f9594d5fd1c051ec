package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrellisConfig represents the trellis.yaml configuration structure
type TrellisConfig struct {
	Version string `yaml:"version"`
	Project string `yaml:"project"`

	Database struct {
		URL            string `yaml:"url"`
		MaxConnections int    `yaml:"max_connections"`
	} `yaml:"database"`

	Store struct {
		PositionStep int64 `yaml:"position_step"`
		PositionBase int64 `yaml:"position_base"`
		DefaultLimit int   `yaml:"default_limit"`
		MaxLimit     int   `yaml:"max_limit"`
	} `yaml:"store"`
}

// LoadTrellisConfig reads the config file, trying the conventional locations
// when path is empty. A missing file is not an error; nil is returned.
func LoadTrellisConfig(path string) (*TrellisConfig, error) {
	if path == "" {
		locations := []string{"trellis.yaml", "trellis.yml", ".trellis.yaml", ".trellis.yml"}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config TrellisConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.MaxConnections == 0 {
		config.Database.MaxConnections = 25
	}
	if config.Store.PositionStep == 0 {
		config.Store.PositionStep = 1000
	}
	if config.Store.PositionBase == 0 {
		config.Store.PositionBase = 1000
	}
	if config.Store.DefaultLimit == 0 {
		config.Store.DefaultLimit = 100
	}
	if config.Store.MaxLimit == 0 {
		config.Store.MaxLimit = 1000
	}

	return &config, nil
}
