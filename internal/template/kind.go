package template

import (
	"fmt"
	"strings"
)

// Kind identifies what shape of value a placeholder accepts.
type Kind string

const (
	KindText   Kind = "text"
	KindImage  Kind = "image"
	KindList   Kind = "list"
	KindChoice Kind = "choice"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindText, KindImage, KindList, KindChoice}

// ParseKind parses a kind name. An empty string is text, which is what the
// service assumes for untyped {{name}} placeholders.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return KindText, nil
	case "image":
		return KindImage, nil
	case "list":
		return KindList, nil
	case "choice":
		return KindChoice, nil
	default:
		return "", fmt.Errorf("unknown placeholder kind: %q", s)
	}
}

// Empty returns the kind's empty default value.
func (k Kind) Empty() Value {
	switch k {
	case KindList:
		return List()
	case KindText, KindImage, KindChoice:
		return Text("")
	default:
		panic(fmt.Sprintf("template: unhandled kind %q", string(k)))
	}
}

// Accepts reports whether v has the shape this kind stores.
func (k Kind) Accepts(v Value) bool {
	switch k {
	case KindList:
		return v.IsList()
	case KindText, KindImage, KindChoice:
		return !v.IsList()
	default:
		return false
	}
}

// Filled reports whether v counts as a provided value for this kind.
// Single-string kinds need non-blank text; lists need at least one
// non-blank item.
func (k Kind) Filled(v Value) bool {
	if !k.Accepts(v) {
		return false
	}
	switch k {
	case KindList:
		for _, item := range v.items {
			if strings.TrimSpace(item) != "" {
				return true
			}
		}
		return false
	case KindText, KindImage, KindChoice:
		return strings.TrimSpace(v.text) != ""
	default:
		return false
	}
}

// Label returns a short human label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindList:
		return "List"
	case KindChoice:
		return "Choice"
	default:
		return string(k)
	}
}
