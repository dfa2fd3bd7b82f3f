package naming

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrMalformedName is returned when a string cannot be parsed as a name.
	ErrMalformedName = errors.New("malformed name")
	// ErrNotFullyQualified is returned when a fully-qualified name is required
	// but a component is missing.
	ErrNotFullyQualified = errors.New("name is not fully qualified")
	// ErrConflict is returned when an explicit package or metric disagrees
	// with the component parsed from the name string.
	ErrConflict = errors.New("conflicting name components")
)

// Name identifies a package, a metric, or a specification level.
type Name struct {
	pkg    string
	metric string
	spec   string
}

// NewPackageName returns the name of a package.
func NewPackageName(pkg string) (Name, error) {
	if err := checkComponent(pkg, pkg); err != nil {
		return Name{}, err
	}

	return Name{pkg: pkg}, nil
}

// NewMetricName returns the fully-qualified name of a metric.
func NewMetricName(pkg, metric string) (Name, error) {
	if err := checkComponent(pkg, pkg+"."+metric); err != nil {
		return Name{}, err
	}

	if err := checkComponent(metric, pkg+"."+metric); err != nil {
		return Name{}, err
	}

	return Name{pkg: pkg, metric: metric}, nil
}

// ParseName parses a dotted name by its number of components:
// "pkg" is a package, "pkg.metric" a metric, "pkg.metric.level" a specification.
func ParseName(s string) (Name, error) {
	parts, err := splitDotted(s)
	if err != nil {
		return Name{}, err
	}

	switch len(parts) {
	case 1:
		return Name{pkg: parts[0]}, nil
	case 2:
		return Name{pkg: parts[0], metric: parts[1]}, nil
	default:
		return Name{pkg: parts[0], metric: parts[1], spec: parts[2]}, nil
	}
}

// Option adjusts how ParseSpecName fills in package and metric components.
type Option func(*specOptions)

type specOptions struct {
	pkg, metric string
	defaultPkg  string
}

// WithPackage sets the package explicitly. A different package inside the
// name string is a conflict.
func WithPackage(pkg string) Option {
	return func(o *specOptions) {
		o.pkg = pkg
	}
}

// WithMetric sets the metric explicitly. The metric may itself be
// package-qualified ("pkg.metric"). A different metric inside the name
// string is a conflict.
func WithMetric(metric string) Option {
	return func(o *specOptions) {
		o.metric = metric
	}
}

// WithContextPackage fills the package only when neither the name string
// nor WithPackage/WithMetric provide one.
func WithContextPackage(pkg string) Option {
	return func(o *specOptions) {
		o.defaultPkg = pkg
	}
}

// ParseSpecName parses a specification name "pkg.metric.level", "metric.level"
// or "level". Components not present in s or the options are left unset.
func ParseSpecName(s string, opts ...Option) (Name, error) {
	var o specOptions
	for _, opt := range opts {
		opt(&o)
	}

	parts, err := splitDotted(s)
	if err != nil {
		return Name{}, err
	}

	var n Name

	switch len(parts) {
	case 1:
		n.spec = parts[0]
	case 2:
		n.metric, n.spec = parts[0], parts[1]
	default:
		n.pkg, n.metric, n.spec = parts[0], parts[1], parts[2]
	}

	if o.metric != "" {
		metricParts, err := splitDotted(o.metric)
		if err != nil {
			return Name{}, fmt.Errorf("metric %q: %w", o.metric, err)
		}

		if len(metricParts) > 2 {
			return Name{}, fmt.Errorf("metric %q has too many components: %w", o.metric, ErrMalformedName)
		}

		metric := metricParts[len(metricParts)-1]
		if err := n.assignMetric(metric, s); err != nil {
			return Name{}, err
		}

		if len(metricParts) == 2 {
			if err := n.assignPackage(metricParts[0], s); err != nil {
				return Name{}, err
			}
		}
	}

	if o.pkg != "" {
		if err := checkComponent(o.pkg, o.pkg); err != nil {
			return Name{}, err
		}

		if err := n.assignPackage(o.pkg, s); err != nil {
			return Name{}, err
		}
	}

	if n.pkg == "" && o.defaultPkg != "" {
		n.pkg = o.defaultPkg
	}

	return n, nil
}

func (n *Name) assignMetric(metric, s string) error {
	if n.metric != "" && n.metric != metric {
		return fmt.Errorf("%q has metric %q, not %q: %w", s, n.metric, metric, ErrConflict)
	}

	n.metric = metric

	return nil
}

func (n *Name) assignPackage(pkg, s string) error {
	if n.pkg != "" && n.pkg != pkg {
		return fmt.Errorf("%q has package %q, not %q: %w", s, n.pkg, pkg, ErrConflict)
	}

	n.pkg = pkg

	return nil
}

// Package returns the package component (may be empty).
func (n Name) Package() string { return n.pkg }

// Metric returns the metric component (may be empty).
func (n Name) Metric() string { return n.metric }

// Spec returns the specification level component (may be empty).
func (n Name) Spec() string { return n.spec }

// IsZero reports whether no component is set.
func (n Name) IsZero() bool {
	return n == Name{}
}

// IsPackage reports whether n names a package only.
func (n Name) IsPackage() bool {
	return n.pkg != "" && n.metric == "" && n.spec == ""
}

// IsMetric reports whether n names a metric.
func (n Name) IsMetric() bool {
	return n.metric != "" && n.spec == ""
}

// IsSpec reports whether n names a specification level.
func (n Name) IsSpec() bool {
	return n.spec != ""
}

// IsFQ reports whether every component required by the kind of name is set.
func (n Name) IsFQ() bool {
	switch {
	case n.IsSpec():
		return n.pkg != "" && n.metric != ""
	case n.IsMetric():
		return n.pkg != ""
	default:
		return n.pkg != ""
	}
}

// FQN returns the canonical fully-qualified string.
func (n Name) FQN() (string, error) {
	if !n.IsFQ() {
		return "", fmt.Errorf("%q: %w", n.String(), ErrNotFullyQualified)
	}

	return n.String(), nil
}

// MetricName returns the metric this name belongs to.
func (n Name) MetricName() Name {
	return Name{pkg: n.pkg, metric: n.metric}
}

// PackageName returns the package this name belongs to.
func (n Name) PackageName() Name {
	return Name{pkg: n.pkg}
}

// Contains reports whether other falls under n. A package contains every
// metric and specification of that package; a metric contains its
// specifications. Specifications contain nothing.
func (n Name) Contains(other Name) bool {
	switch {
	case n.IsPackage():
		return other.pkg == n.pkg && (other.metric != "" || other.spec != "")
	case n.IsMetric():
		return n.pkg != "" && other.pkg == n.pkg && other.metric == n.metric && other.spec != ""
	default:
		return false
	}
}

// String returns the dotted form of the components that are set.
func (n Name) String() string {
	parts := make([]string, 0, 3)

	for _, p := range []string{n.pkg, n.metric, n.spec} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ".")
}

// GoString makes %#v output readable in test failures.
func (n Name) GoString() string {
	return fmt.Sprintf("naming.Name{pkg: %q, metric: %q, spec: %q}", n.pkg, n.metric, n.spec)
}

func splitDotted(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("empty name: %w", ErrMalformedName)
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return nil, fmt.Errorf("%q has more than three components: %w", s, ErrMalformedName)
	}

	for _, p := range parts {
		if err := checkComponent(p, s); err != nil {
			return nil, err
		}
	}

	return parts, nil
}

func checkComponent(p, s string) error {
	if p == "" {
		return fmt.Errorf("%q has an empty component: %w", s, ErrMalformedName)
	}

	for _, r := range p {
		if unicode.IsSpace(r) || r == '#' || r == ':' || r == '.' {
			return fmt.Errorf("%q contains %q: %w", s, r, ErrMalformedName)
		}
	}

	return nil
}
