// Package gjson implements the structured-data-path extraction strategy
// on top of tidwall/gjson. Path expressions use gjson dot syntax, e.g.
// "data.magazin.content" or "items.0.title".
package gjson

import (
	"github.com/claudehenchoz/gensi"
	"github.com/tidwall/gjson"
)

// Extract locates a single value inside structured data. A path that
// matches nothing is a hard extraction error; the caller configured it,
// so silence would hide a broken recipe.
func Extract(data string, path string) (string, error) {
	if !gjson.Valid(data) {
		return "", gensi.Errorf(gensi.EEXTRACT, "response is not valid JSON")
	}
	result := gjson.Get(data, path)
	if !result.Exists() {
		return "", gensi.Errorf(gensi.EEXTRACT, "path %q matched nothing", path)
	}
	return result.String(), nil
}

// ExtractFields locates several values in one pass. The "content" path is
// required; any other path that matches nothing leaves its field empty
// rather than failing, mirroring how optional metadata selectors behave.
func ExtractFields(data string, paths map[string]string) (map[string]string, error) {
	if !gjson.Valid(data) {
		return nil, gensi.Errorf(gensi.EEXTRACT, "response is not valid JSON")
	}

	fields := make(map[string]string, len(paths))
	for name, path := range paths {
		result := gjson.Get(data, path)
		if !result.Exists() {
			if name == "content" {
				return nil, gensi.Errorf(gensi.EEXTRACT, "content path %q matched nothing", path)
			}
			continue
		}
		fields[name] = result.String()
	}
	return fields, nil
}

// ExtractList returns the string values addressed by path, for structured
// listings whose path points at an array of URLs.
func ExtractList(data string, path string) ([]string, error) {
	if !gjson.Valid(data) {
		return nil, gensi.Errorf(gensi.EEXTRACT, "response is not valid JSON")
	}
	result := gjson.Get(data, path)
	if !result.Exists() {
		return nil, gensi.Errorf(gensi.EEXTRACT, "path %q matched nothing", path)
	}
	if !result.IsArray() {
		return []string{result.String()}, nil
	}
	var values []string
	result.ForEach(func(_, value gjson.Result) bool {
		values = append(values, value.String())
		return true
	})
	return values, nil
}

// Decode parses structured data into plain Go values for script
// bindings: maps, slices, strings, float64s, bools.
func Decode(data string) (any, error) {
	if !gjson.Valid(data) {
		return nil, gensi.Errorf(gensi.EEXTRACT, "response is not valid JSON")
	}
	return gjson.Parse(data).Value(), nil
}
