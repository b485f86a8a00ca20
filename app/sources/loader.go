package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load returns the source registry. With an empty path the builtin registry
// is used; otherwise the YAML file replaces it wholesale.
func Load(path string) ([]Source, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}

	for i, src := range file.Sources {
		if err := validate(src); err != nil {
			return nil, fmt.Errorf("invalid source #%d in %s: %w", i+1, path, err)
		}
	}

	return file.Sources, nil
}

func validate(src Source) error {
	if src.Name == "" {
		return fmt.Errorf("name is required")
	}
	if src.URL == "" {
		return fmt.Errorf("url is required")
	}
	switch src.Tier {
	case TierNews, TierVendor, TierResearch:
		return nil
	default:
		return fmt.Errorf("unknown tier %q (expected news, vendor or research)", src.Tier)
	}
}
