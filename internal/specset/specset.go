package specset

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strings"

	"validate-specs/internal/diagnostic"
	"validate-specs/internal/document"
	"validate-specs/internal/naming"
	"validate-specs/internal/spec"
)

// SpecificationSet is a collection of specifications keyed by name, and of
// the partials they were built from keyed by partial name.
type SpecificationSet struct {
	specs     map[naming.Name]spec.Specification
	partials  map[string]*spec.Partial
	mergeOpts []document.MergeOption
	diags     diagnostic.Diagnostics
}

// New builds a set from already constructed values. Two values with the
// same name are an error.
func New(specs []spec.Specification, partials []*spec.Partial) (*SpecificationSet, error) {
	s := newSet(nil)

	for _, sp := range specs {
		if _, ok := s.specs[sp.Name()]; ok {
			return nil, fmt.Errorf("specification %s: %w", sp.Name(), ErrDuplicateName)
		}

		if err := s.Insert(sp); err != nil {
			return nil, err
		}
	}

	for _, p := range partials {
		if _, ok := s.partials[p.Name()]; ok {
			return nil, fmt.Errorf("partial %s: %w", p.Name(), ErrDuplicateName)
		}

		s.partials[p.Name()] = p
	}

	return s, nil
}

func newSet(opts []document.MergeOption) *SpecificationSet {
	return &SpecificationSet{
		specs:     make(map[naming.Name]spec.Specification),
		partials:  make(map[string]*spec.Partial),
		mergeOpts: opts,
	}
}

// Diagnostics returns the warnings and notes recorded while loading the set.
func (s *SpecificationSet) Diagnostics() diagnostic.Diagnostics { return s.diags }

// Len returns the number of specifications. Partials are not counted.
func (s *SpecificationSet) Len() int { return len(s.specs) }

// PartialCount returns the number of partials.
func (s *SpecificationSet) PartialCount() int { return len(s.partials) }

func (s *SpecificationSet) String() string {
	switch n := s.Len(); n {
	case 0:
		return "<SpecificationSet: empty>"
	case 1:
		return "<SpecificationSet: 1 Specification>"
	default:
		return fmt.Sprintf("<SpecificationSet: %d Specifications>", n)
	}
}

// Contains reports whether key names a stored specification or partial.
// Keys containing '#' are partial names and must match exactly.
func (s *SpecificationSet) Contains(key string) bool {
	if naming.IsPartialRef(key) {
		_, ok := s.partials[key]
		return ok
	}

	name, err := naming.ParseSpecName(key)
	if err != nil {
		return false
	}

	return s.ContainsName(name)
}

// ContainsName reports whether a specification with this name is stored.
func (s *SpecificationSet) ContainsName(name naming.Name) bool {
	_, ok := s.specs[name]
	return ok
}

// Get returns the specification stored under key.
func (s *SpecificationSet) Get(key string) (spec.Specification, error) {
	if naming.IsPartialRef(key) {
		return nil, fmt.Errorf("%q is a partial: %w", key, ErrNotSpecification)
	}

	name, err := naming.ParseSpecName(key)
	if err != nil {
		return nil, err
	}

	return s.GetName(name)
}

// GetName returns the specification with the given name.
func (s *SpecificationSet) GetName(name naming.Name) (spec.Specification, error) {
	if !name.IsSpec() {
		return nil, fmt.Errorf("%q: %w", name, ErrNotSpecification)
	}

	sp, ok := s.specs[name]
	if !ok {
		return nil, fmt.Errorf("specification %s: %w", name, ErrNotFound)
	}

	return sp, nil
}

// GetPartial returns the partial stored under key.
func (s *SpecificationSet) GetPartial(key string) (*spec.Partial, error) {
	p, ok := s.partials[key]
	if !ok {
		return nil, fmt.Errorf("partial %q: %w", key, ErrNotFound)
	}

	return p, nil
}

// Set stores value under key. Partial keys (containing '#') take a
// *spec.Partial, other keys a spec.Specification; the value's name must
// match the key.
func (s *SpecificationSet) Set(key string, value any) error {
	if naming.IsPartialRef(key) {
		p, ok := value.(*spec.Partial)
		if !ok {
			return fmt.Errorf("%q expects a partial, got %T: %w", key, value, ErrWrongType)
		}

		return s.SetPartial(key, p)
	}

	sp, ok := value.(spec.Specification)
	if !ok {
		return fmt.Errorf("%q expects a specification, got %T: %w", key, value, ErrWrongType)
	}

	name, err := naming.ParseSpecName(key)
	if err != nil {
		return err
	}

	if name != sp.Name() {
		return fmt.Errorf("key %q, specification %s: %w", key, sp.Name(), ErrKeyMismatch)
	}

	return s.Insert(sp)
}

// SetPartial stores p under key, which must equal p's name.
func (s *SpecificationSet) SetPartial(key string, p *spec.Partial) error {
	if p == nil {
		return fmt.Errorf("%q: nil partial: %w", key, ErrWrongType)
	}

	if key != p.Name() {
		return fmt.Errorf("key %q, partial %s: %w", key, p.Name(), ErrKeyMismatch)
	}

	s.partials[key] = p

	return nil
}

// Delete removes the specification or partial stored under key.
func (s *SpecificationSet) Delete(key string) error {
	if naming.IsPartialRef(key) {
		if _, ok := s.partials[key]; !ok {
			return fmt.Errorf("partial %q: %w", key, ErrNotFound)
		}

		delete(s.partials, key)

		return nil
	}

	name, err := naming.ParseSpecName(key)
	if err != nil {
		return err
	}

	if _, ok := s.specs[name]; !ok {
		return fmt.Errorf("specification %s: %w", name, ErrNotFound)
	}

	delete(s.specs, name)

	return nil
}

// Insert stores sp under its own name, replacing any specification with the
// same name. The name must be fully qualified.
func (s *SpecificationSet) Insert(sp spec.Specification) error {
	if sp == nil {
		return fmt.Errorf("nil specification: %w", ErrWrongType)
	}

	if !sp.Name().IsSpec() {
		return fmt.Errorf("%q: %w", sp.Name(), ErrNotSpecification)
	}

	if !sp.Name().IsFQ() {
		return fmt.Errorf("%q: %w", sp.Name(), naming.ErrNotFullyQualified)
	}

	s.specs[sp.Name()] = sp

	return nil
}

// Names yields specification names in lexical order of their string form.
func (s *SpecificationSet) Names() iter.Seq[naming.Name] {
	names := s.sortedNames()

	return slices.Values(names)
}

func (s *SpecificationSet) sortedNames() []naming.Name {
	names := make([]naming.Name, 0, len(s.specs))
	for n := range s.specs {
		names = append(names, n)
	}

	slices.SortFunc(names, func(a, b naming.Name) int {
		return strings.Compare(a.String(), b.String())
	})

	return names
}

// Specifications returns the specifications ordered by name.
func (s *SpecificationSet) Specifications() []spec.Specification {
	out := make([]spec.Specification, 0, len(s.specs))
	for _, n := range s.sortedNames() {
		out = append(out, s.specs[n])
	}

	return out
}

// Partials returns the partials ordered by name.
func (s *SpecificationSet) Partials() []*spec.Partial {
	keys := make([]string, 0, len(s.partials))
	for k := range s.partials {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	out := make([]*spec.Partial, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.partials[k])
	}

	return out
}

// Subset returns a new set with the specifications of one package
// ("pkg") or one metric ("pkg.metric"). All partials are carried over.
func (s *SpecificationSet) Subset(scope string) (*SpecificationSet, error) {
	name, err := naming.ParseName(scope)
	if err != nil {
		return nil, err
	}

	if !name.IsPackage() && !name.IsMetric() {
		return nil, fmt.Errorf("%q: %w", scope, ErrInvalidScope)
	}

	sub := newSet(s.mergeOpts)

	for n, sp := range s.specs {
		if name.Contains(n) {
			sub.specs[n] = sp
		}
	}

	for k, p := range s.partials {
		sub.partials[k] = p
	}

	return sub, nil
}

// Fingerprint hashes the canonical JSON of every specification in name
// order. Sets with equal content have equal fingerprints however they were
// loaded.
func (s *SpecificationSet) Fingerprint() (uint64, error) {
	var buf bytes.Buffer

	for _, sp := range s.Specifications() {
		b, err := document.CanonicalJSON(sp.Document())
		if err != nil {
			return 0, fmt.Errorf("specification %s: %w", sp.Name(), err)
		}

		buf.Write(b)
		buf.WriteByte('\n')
	}

	return document.HashBytes(buf.Bytes())
}
