package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig is the on-disk shape of a checker policy file, letting
// a host override the no-store field list without touching code. The
// mandatory message/event header shape is load-bearing enough to stay
// a compiled default; the no-store list is the part hosts actually
// vary.
type PolicyConfig struct {
	ExtraNoStoreFields []string `yaml:"extra_no_store_fields"`
}

// LoadPolicy reads a YAML policy file and layers it over the
// compiled-in default. A missing path is not an error: the checker
// must run with zero configuration.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return NewDefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewDefaultPolicy(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading policy file %s: %w", path, err)
	}
	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}
	return NewDefaultPolicy(cfg.ExtraNoStoreFields...), nil
}
