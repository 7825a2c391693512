package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Value is a placeholder value: a single string (text, image storage key,
// choice) or an ordered list of strings. The zero Value is the empty string.
type Value struct {
	text  string
	items []string
	list  bool
}

// Text builds a single-string value.
func Text(s string) Value {
	return Value{text: s}
}

// List builds a list value. A nil or empty argument list yields an empty
// (but non-nil) sequence so it encodes as [] rather than null.
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{items: cp, list: true}
}

// IsList reports whether the value is a sequence.
func (v Value) IsList() bool { return v.list }

// String returns the single-string form. Lists are joined with ", " and
// blank items are skipped, which is how the review screen prints them.
func (v Value) String() string {
	if !v.list {
		return v.text
	}
	return strings.Join(v.NonBlank(), ", ")
}

// Items returns a copy of the list items. Single-string values return nil.
func (v Value) Items() []string {
	if !v.list {
		return nil
	}
	return slices.Clone(v.items)
}

// NonBlank returns the list items that are not blank after trimming.
func (v Value) NonBlank() []string {
	var out []string
	for _, item := range v.items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

// Equal reports whether both values have the same shape and content.
func (v Value) Equal(o Value) bool {
	if v.list != o.list {
		return false
	}
	if !v.list {
		return v.text == o.text
	}
	return slices.Equal(v.items, o.items)
}

// MarshalJSON encodes text values as a JSON string and lists as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.list {
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a string, an array of strings, or null (empty text).
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Text("")
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding list value: %w", err)
		}
		*v = List(items...)
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding text value: %w", err)
		}
		*v = Text(s)
		return nil
	}
}

// Values maps placeholder names to their values.
type Values map[string]Value

// Clone returns a deep copy.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		if v.list {
			v = List(v.items...)
		}
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same keys and values.
func (vs Values) Equal(o Values) bool {
	if len(vs) != len(o) {
		return false
	}
	for k, v := range vs {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// FromAny converts a decoded JSON/YAML scalar or sequence into a Value.
// Used for values files and MCP tool arguments.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Text(""), nil
	case string:
		return Text(x), nil
	case []string:
		return List(x...), nil
	case []any:
		items := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("list item %d is %T, want string", i, item)
			}
			items = append(items, s)
		}
		return List(items...), nil
	case bool, int, int64, float64:
		return Text(fmt.Sprint(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
