package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var seedYAML []byte

type seedFile struct {
	Products []Product `yaml:"products"`
}

// Seed returns the launch catalogue shipped with the binary.
func Seed() ([]Product, error) {
	return parseSeed(seedYAML)
}

func parseSeed(raw []byte) ([]Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: invalid seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Products))
	for i := range f.Products {
		p := &f.Products[i]
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("catalog: seed product %q: %w", p.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("catalog: seed product %q is listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return f.Products, nil
}
