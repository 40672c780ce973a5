// Package template provides {{name}} placeholder substitution and the
// variable binding model used across flow execution.
package template

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// varPattern matches {{name}} placeholders.
var varPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Bindings maps variable names to their resolved runtime string values.
// Bindings are built once per flow invocation and read-only afterwards;
// nested flows receive an independent copy, never a live reference.
type Bindings map[string]string

// Clone returns an independent copy of the bindings.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Substitute replaces every {{name}} placeholder that has a binding.
// Placeholders with no binding are left verbatim.
func (b Bindings) Substitute(input string) string {
	return varPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := b[name]; ok {
			return value
		}
		return match
	})
}

// Child derives the bindings for a nested flow from a variable mapping.
// Each mapped value is either a {{name}} reference resolved against the
// parent's bindings, or a literal carried over as-is. The result is always
// a fresh map, so sibling branches cannot observe each other.
func (b Bindings) Child(mapping map[string]string) Bindings {
	child := make(Bindings, len(mapping))
	for name, value := range mapping {
		if ref, ok := PlaceholderName(value); ok {
			if parent, found := b[ref]; found {
				child[name] = parent
				continue
			}
		}
		child[name] = value
	}
	return child
}

// Placeholders returns the names of all {{name}} placeholders in s,
// in order of appearance.
func Placeholders(s string) []string {
	matches := varPattern.FindAllStringSubmatch(s, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// PlaceholderName reports whether s is exactly one {{name}} placeholder,
// returning the bare name if so.
func PlaceholderName(s string) (string, bool) {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(s, "{{"), "}}")
	if name == "" || strings.ContainsAny(name, "{}") {
		return "", false
	}
	return name, true
}

// Transform names applied to alias variables before substitution.
const (
	// TransformURLToDomain derives a bare hostname from a URL, stripping
	// a leading "www." label.
	TransformURLToDomain = "url_to_domain"
)

// Transform applies a named transform to a value. Unknown transform names
// return the value unchanged.
func Transform(value, transform string) (string, error) {
	switch transform {
	case TransformURLToDomain:
		u, err := url.Parse(value)
		if err != nil {
			return "", fmt.Errorf("parsing URL %q: %w", value, err)
		}
		host := u.Hostname()
		if host == "" {
			// Bare "example.com/path" parses with an empty host.
			host = strings.SplitN(value, "/", 2)[0]
		}
		return strings.TrimPrefix(host, "www."), nil
	case "":
		return value, nil
	}
	return value, nil
}
