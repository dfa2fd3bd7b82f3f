package naming

import (
	"fmt"
	"regexp"
	"strings"
)

// partialPattern matches package:path#fragment with package and path optional.
var partialPattern = regexp.MustCompile(`^(?:([^\s:#]+):)?([^\s:#]+)?#([^\s:#]+)$`)

// PartialContext supplies the package and file path used for components a
// partial reference leaves out.
type PartialContext struct {
	Package string
	Path    string // yaml id: relative path without extension, "/" separated
}

// PartialName identifies a specification partial.
type PartialName struct {
	pkg      string
	path     string
	fragment string
}

// IsPartialRef reports whether s references a partial rather than a specification.
func IsPartialRef(s string) bool {
	return strings.Contains(s, "#")
}

// ParsePartialName parses a partial reference. Components present in s are
// kept; missing ones come from ctx. A string without '#' is a bare fragment,
// as written in a partial's own id field.
func ParsePartialName(s string, ctx PartialContext) (PartialName, error) {
	ref := s
	if !IsPartialRef(ref) {
		ref = "#" + ref
	}

	m := partialPattern.FindStringSubmatch(ref)
	if m == nil {
		return PartialName{}, fmt.Errorf("partial %q: %w", s, ErrMalformedName)
	}

	p := PartialName{pkg: m[1], path: m[2], fragment: m[3]}

	if p.pkg == "" {
		p.pkg = ctx.Package
	}

	if p.path == "" {
		p.path = ctx.Path
	}

	return p, nil
}

// Package returns the package component (may be empty).
func (p PartialName) Package() string { return p.pkg }

// Path returns the yaml id component (may be empty).
func (p PartialName) Path() string { return p.path }

// Fragment returns the fragment after '#'.
func (p PartialName) Fragment() string { return p.fragment }

// IsFQ reports whether package, path and fragment are all set.
func (p PartialName) IsFQ() bool {
	return p.pkg != "" && p.path != "" && p.fragment != ""
}

// FQN returns "package:path#fragment", or ErrNotFullyQualified.
func (p PartialName) FQN() (string, error) {
	if !p.IsFQ() {
		return "", fmt.Errorf("partial %q: %w", p.String(), ErrNotFullyQualified)
	}

	return p.String(), nil
}

// String returns the reference form of the components that are set.
func (p PartialName) String() string {
	var b strings.Builder

	if p.pkg != "" {
		b.WriteString(p.pkg)
		b.WriteByte(':')
	}

	b.WriteString(p.path)
	b.WriteByte('#')
	b.WriteString(p.fragment)

	return b.String()
}
