// pkg/catalogfile/catalogfile.go
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Load reads and validates a catalog seed file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	if err := Validate(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks field constraints and rejects duplicate product names.
func Validate(cat *Catalog) error {
	if err := validate.Struct(cat); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cat.Products))
	for i, p := range cat.Products {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if seen[key] {
			return fmt.Errorf("duplicate product name at index %d: %s", i, p.Name)
		}
		seen[key] = true
	}
	return nil
}
