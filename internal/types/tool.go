package types

import (
	"fmt"
	"strings"
)

// Tool describes an external command-line tool registered in the catalog.
type Tool struct {
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`

	// RunCommand is the base invocation prepended to every alias template.
	RunCommand string `yaml:"run_command"`

	// AcceptsStdin reports whether the tool can consume piped input.
	AcceptsStdin bool `yaml:"accepts_stdin"`

	// HeaderFlag, when set, is the flag used to inject one HTTP header
	// per occurrence (e.g. "-H").
	HeaderFlag string `yaml:"header_flag,omitempty"`
}

// AliasVar declares a variable consumed by an alias command template.
type AliasVar struct {
	Name string `yaml:"name"`

	// Transform names an optional value transform applied before
	// substitution (e.g. "url_to_domain").
	Transform string `yaml:"transform,omitempty"`
}

// Alias is a named, pre-templated invocation of a tool.
type Alias struct {
	Description string     `yaml:"description,omitempty"`
	Command     string     `yaml:"command"`
	Variables   []AliasVar `yaml:"variables,omitempty"`
}

// AliasFile is the on-disk shape of a tool's aliases.yaml.
type AliasFile struct {
	Aliases map[string]*Alias `yaml:"aliases"`
}

// Header is one HTTP header supplied on the command line.
type Header struct {
	Key   string
	Value string
}

// ParseHeader parses a "Key:Value" header string.
func ParseHeader(s string) (Header, error) {
	key, value, ok := strings.Cut(s, ":")
	if !ok {
		return Header{}, fmt.Errorf("invalid header format %q, use \"Key:Value\"", s)
	}
	return Header{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)}, nil
}
