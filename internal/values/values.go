// Package values reads placeholder values from YAML or JSON documents and
// checks them against a template before generation.
package values

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/deckfill/internal/template"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ValidationError lists every problem found in a values document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid values: " + strings.Join(e.Problems, "; ")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Schema returns the JSON schema a values document for tpl must satisfy.
// Every placeholder is required and unknown keys are rejected.
func Schema(tpl template.Template) map[string]any {
	props := make(map[string]any, len(tpl.Placeholders))
	required := make([]string, 0, len(tpl.Placeholders))
	for _, p := range tpl.Placeholders {
		props[p.Name] = propertySchema(p)
		required = append(required, p.Name)
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func propertySchema(p template.Placeholder) map[string]any {
	switch p.Kind {
	case template.KindList:
		return map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 1,
		}
	case template.KindImage:
		return map[string]any{"type": "string", "minLength": 1, "description": "asset key or image URL"}
	case template.KindChoice:
		prop := map[string]any{"type": "string", "minLength": 1}
		if len(p.Options) > 0 {
			prop["description"] = "one of: " + strings.Join(p.Options, ", ")
		}
		return prop
	default:
		return map[string]any{"type": "string", "minLength": 1}
	}
}

// Decode validates doc against tpl and converts it to Values.
// Numbers and booleans are accepted where text is expected.
func Decode(tpl template.Template, doc map[string]any) (template.Values, error) {
	doc = normalize(doc)

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(Schema(tpl)),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validate values: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, describe(e))
		}
		sort.Strings(problems)
		return nil, &ValidationError{Problems: problems}
	}

	vals := make(template.Values, len(doc))
	for _, p := range tpl.Placeholders {
		v, err := template.FromAny(doc[p.Name])
		if err != nil {
			return nil, &ValidationError{Problems: []string{p.Name + ": " + err.Error()}}
		}
		vals[p.Name] = v
	}
	return vals, nil
}

// describe turns a schema error into "field: message".
func describe(e gojsonschema.ResultError) string {
	field := e.Field()
	if field == "(root)" {
		if prop, ok := e.Details()["property"].(string); ok {
			field = prop
		}
	}
	return field + ": " + e.Description()
}

// normalize renders scalar numbers and booleans as text.
func normalize(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch x := v.(type) {
		case bool, int, int64, uint64, float64:
			out[k] = fmt.Sprint(x)
		default:
			out[k] = v
		}
	}
	return out
}

// Parse decodes a YAML or JSON values document for tpl.
func Parse(tpl template.Template, data []byte) (template.Values, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return Decode(tpl, doc)
}

// ReadFile reads and decodes a values file for tpl.
func ReadFile(tpl template.Template, path string) (template.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values file: %w", err)
	}
	return Parse(tpl, data)
}

// Skeleton renders a YAML values document with every placeholder of tpl
// set to its empty value, as a starting point for editing.
func Skeleton(tpl template.Template) ([]byte, error) {
	var root yaml.Node
	root.Kind = yaml.MappingNode
	for _, p := range tpl.Placeholders {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: p.Name, HeadComment: p.Kind.Label()}
		var val *yaml.Node
		if p.Kind == template.KindList {
			val = &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		} else {
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ""}
		}
		root.Content = append(root.Content, key, val)
	}
	return yaml.Marshal(&root)
}
