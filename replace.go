package gensi

import (
	"regexp"
	"strings"
)

// Replacement is one search/replace rule applied to extracted article
// content before packaging.
type Replacement struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Regex       bool   `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// ApplyReplacements applies the rules to content in declaration order.
// Literal rules replace every occurrence; regex rules use Go regexp
// syntax with $1-style group references in the replacement. A rule whose
// pattern fails to compile is skipped rather than failing the article.
func ApplyReplacements(content string, rules []Replacement) string {
	if len(rules) == 0 {
		return content
	}
	result := content
	for _, rule := range rules {
		if rule.Regex {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				continue
			}
			result = re.ReplaceAllString(result, rule.Replacement)
		} else if rule.Pattern != "" {
			result = strings.ReplaceAll(result, rule.Pattern, rule.Replacement)
		}
	}
	return result
}
