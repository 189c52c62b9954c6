package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// categoryFile is the document form of a category hierarchy file.
type categoryFile struct {
	Categories []model.Category `yaml:"categories"`
}

// LoadCategories reads a category hierarchy from a YAML file.
func LoadCategories(path string) ([]model.Category, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return ParseCategories(data)
}

// ParseCategories decodes a hierarchy given either as a bare YAML list or
// under a top-level "categories" key. Ids must be unique and non-empty.
func ParseCategories(data []byte) ([]model.Category, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var cats []model.Category
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&cats); err != nil {
			return nil, fmt.Errorf("parsing categories: %w", err)
		}
	case yaml.MappingNode:
		var f categoryFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing categories: %w", err)
		}
		cats = f.Categories
	default:
		return nil, fmt.Errorf("parsing categories: expected a list or a mapping, got %s", root.ShortTag())
	}

	seen := make(map[string]struct{}, len(cats))
	for i, c := range cats {
		if c.ID == "" {
			return nil, fmt.Errorf("category %d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return cats, nil
}
