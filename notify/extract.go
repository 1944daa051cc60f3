// Package notify provides email-address extraction, mail delivery, and
// batch-notification rendering.
package notify

import (
	"reflect"
	"regexp"
)

var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+`)

// Source is one normalized extraction input. Raw values of arbitrary type are
// closed into exactly one variant at the boundary (Text, List, Map, or
// Unsupported) before extraction logic runs on them.
type Source struct {
	text     string
	children []Source
	ok       bool
}

// SourceOf normalizes an arbitrary value into a Source variant.
// Strings and byte slices become Text; slices, arrays, and map values become
// List/Map containers examined recursively; anything else is Unsupported and
// extracts to nothing.
func SourceOf(value any) Source {
	switch v := value.(type) {
	case nil:
		return Source{}
	case string:
		return Source{text: v, ok: true}
	case []byte:
		return Source{text: string(v), ok: true}
	case []string:
		children := make([]Source, len(v))
		for i, s := range v {
			children[i] = Source{text: s, ok: true}
		}
		return Source{children: children, ok: true}
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		children := make([]Source, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			children = append(children, SourceOf(rv.Index(i).Interface()))
		}
		return Source{children: children, ok: true}
	case reflect.Map:
		children := make([]Source, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			children = append(children, SourceOf(rv.MapIndex(key).Interface()))
		}
		return Source{children: children, ok: true}
	}
	// Unsupported types are tolerated as empty sources, which makes
	// extraction from mixed-type collections possible without filtering.
	return Source{}
}

func (s Source) collect(addresses []string) []string {
	if !s.ok {
		return addresses
	}
	if s.text != "" {
		return append(addresses, emailPattern.FindAllString(s.text, -1)...)
	}
	for _, child := range s.children {
		addresses = child.collect(addresses)
	}
	return addresses
}

// ExtractEmailAddresses returns email addresses parsed from various source
// values. Sources can be strings (or byte slices), or containers that may
// hold strings at any depth; unsupported types extract to nothing rather
// than failing.
func ExtractEmailAddresses(sources ...any) []string {
	addresses := []string{}
	for _, source := range sources {
		addresses = SourceOf(source).collect(addresses)
	}
	return addresses
}
