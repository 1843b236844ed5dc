package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nlpforge/gobart/internal/convert"
)

// LoadConfig reads a converter configuration from a YAML file, layered over
// the defaults so absent keys keep their default values. An empty path
// returns the defaults untouched.
func LoadConfig(path string) (convert.Config, error) {
	cfg := convert.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
