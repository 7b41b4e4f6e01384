package loader

import (
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/griffnb/nest-swag/internal/domain"
)

// Manifest is a pre-parsed source unit index, for declaration providers
// other than the built-in TypeScript parser.
type Manifest struct {
	Units []*domain.SourceUnit `json:"units"`
}

// LoadManifest reads a JSON or YAML manifest. Units are returned sorted by
// ID; duplicate IDs keep the first occurrence.
func LoadManifest(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	result, err := ParseManifest(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// ParseManifest decodes JSON or YAML manifest content. Unknown fields are
// rejected.
func ParseManifest(content []byte) (*LoadResult, error) {
	var manifest Manifest
	if err := yaml.UnmarshalStrict(content, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	result := &LoadResult{Skipped: make(map[string]string)}
	seen := make(map[string]struct{})
	for i, unit := range manifest.Units {
		if unit == nil || unit.ID == "" {
			return nil, fmt.Errorf("manifest unit %d has no id", i)
		}
		if _, dup := seen[unit.ID]; dup {
			result.Skipped[unit.ID] = "duplicate unit id"
			continue
		}
		seen[unit.ID] = struct{}{}
		result.Units = append(result.Units, unit)
	}

	sort.SliceStable(result.Units, func(i, j int) bool {
		return result.Units[i].ID < result.Units[j].ID
	})
	return result, nil
}
