package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteMapping assigns device ids to the site whose total they feed. The
// electrical and gas mappings are independent; a dual-metered device may
// appear in both, but never twice within one mapping.
type SiteMapping map[string][]int64

type SiteMaps struct {
	Electrical SiteMapping `yaml:"electrical"`
	Gas        SiteMapping `yaml:"gas"`
}

// LoadSiteMaps reads the site mapping file and validates that each device id
// occurs at most once per mapping.
func LoadSiteMaps(path string) (*SiteMaps, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site map %s: %w", path, err)
	}
	var maps SiteMaps
	if err := yaml.Unmarshal(raw, &maps); err != nil {
		return nil, fmt.Errorf("parse site map %s: %w", path, err)
	}
	if err := maps.Electrical.validate("electrical"); err != nil {
		return nil, err
	}
	if err := maps.Gas.validate("gas"); err != nil {
		return nil, err
	}
	return &maps, nil
}

func (m SiteMapping) validate(name string) error {
	seen := map[int64]string{}
	for site, ids := range m {
		for _, id := range ids {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("%s site map: device %d mapped to both %q and %q", name, id, prev, site)
			}
			seen[id] = site
		}
	}
	return nil
}
