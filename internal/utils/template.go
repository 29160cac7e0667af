package utils

import (
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// ParseVariables lists the distinct {{variable}} names in a message
// template, in first-appearance order.
func ParseVariables(template string) []string {
	matches := variablePattern.FindAllStringSubmatch(template, -1)
	var out []string
	seen := make(map[string]bool)
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ReplaceVariables substitutes {{variable}} placeholders with values.
// Placeholders with no value are left intact so a truncated merge is
// visible rather than silent.
func ReplaceVariables(template string, values map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.Trim(match, "{} \t")
		if value, ok := values[name]; ok {
			return value
		}
		return match
	})
}
