package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed storefront.yaml
var defaultStorefront []byte

// Load reads, parses and validates the storefront config at path. An empty
// path loads the bundled default storefront.
func Load(path string) (*StorefrontConfig, error) {
	content := defaultStorefront
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		content = raw
	}

	config, err := NewParser().Parse(content)
	if err != nil {
		return nil, err
	}
	if err := NewValidator().Validate(config); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return config, nil
}
