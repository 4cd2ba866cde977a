package gensi

import (
	"regexp"
	"strconv"
	"strings"
)

// URLTransform rewrites article URLs after index extraction. Either a
// pattern-with-template substitution or a script; the script form is
// applied by the resolver, which owns the script runner.
type URLTransform struct {
	// Pattern is a regular expression matched against the URL. Capture
	// groups feed the template's {1}, {2}, ... placeholders.
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// Script receives the raw URL in a "url" binding and returns the
	// rewritten URL.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Validate returns an error if the transform defines neither mode or an
// unusable pattern.
func (t *URLTransform) Validate() error {
	if t.Script != "" {
		return nil
	}
	if t.Pattern == "" || t.Template == "" {
		return Errorf(ECONFIG, "url transform requires pattern and template, or a script")
	}
	if _, err := regexp.Compile(t.Pattern); err != nil {
		return Errorf(ECONFIG, "url transform pattern %q: %v", t.Pattern, err)
	}
	return nil
}

// Apply rewrites url using the pattern/template mode. An unmatched URL is
// returned unchanged. Script-mode transforms return the URL unchanged
// here; the resolver dispatches them to the script runner.
func (t *URLTransform) Apply(url string) (string, error) {
	if t.Pattern == "" {
		return url, nil
	}
	re, err := regexp.Compile(t.Pattern)
	if err != nil {
		return "", Errorf(ECONFIG, "url transform pattern %q: %v", t.Pattern, err)
	}
	m := re.FindStringSubmatch(url)
	if m == nil {
		return url, nil
	}
	result := t.Template
	for i := 1; i < len(m); i++ {
		result = strings.ReplaceAll(result, "{"+strconv.Itoa(i)+"}", m[i])
	}
	return result, nil
}
