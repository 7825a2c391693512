package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}} and {{kind:name}} markers.
var placeholderPattern = regexp.MustCompile(`\{\{\s*(?:(\w+)\s*:\s*)?(\w+)\s*\}\}`)

// Scan finds placeholder markers in text, in order of first appearance.
// Markers with an unknown kind are skipped; repeated names keep the first
// kind seen.
func Scan(text string) []Placeholder {
	var out []Placeholder
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		kind, err := ParseKind(m[1])
		if err != nil {
			continue
		}
		name := m[2]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Placeholder{Name: name, Kind: kind})
	}
	return out
}

// Render replaces every marker with its value. Lists render one item per
// line, skipping blank items. Markers without a value are left as-is.
func Render(text string, vals Values) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(marker string) string {
		m := placeholderPattern.FindStringSubmatch(marker)
		v, ok := vals[m[2]]
		if !ok {
			return marker
		}
		if v.IsList() {
			return strings.Join(v.NonBlank(), "\n")
		}
		return v.String()
	})
}

var namePattern = regexp.MustCompile(`^\w+$`)

// ValidName reports whether name can appear in a marker.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
