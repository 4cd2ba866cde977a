// Package yaml parses recipe files. Parsing and field validation happen
// here, once, before the pipeline runs; everything downstream assumes a
// validated recipe.
package yaml

import (
	"os"

	"github.com/claudehenchoz/gensi"
	"gopkg.in/yaml.v3"
)

// ParseRecipe parses and validates a recipe document.
func ParseRecipe(data []byte) (*gensi.Recipe, error) {
	var recipe gensi.Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, gensi.Errorf(gensi.ECONFIG, "recipe parse: %v", err)
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ParseRecipeFile reads and parses the recipe at path.
func ParseRecipeFile(path string) (*gensi.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gensi.Errorf(gensi.ENOTFOUND, "recipe file %q not found", path)
		}
		return nil, gensi.Errorf(gensi.ECONFIG, "recipe file %q: %v", path, err)
	}
	return ParseRecipe(data)
}
