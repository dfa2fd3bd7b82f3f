package specset

import (
	"fmt"
	"slices"

	"validate-specs/internal/document"
	"validate-specs/internal/naming"
)

// BaseRef is a normalized base reference.
type BaseRef struct {
	// Ref is "pkg:path#fragment" for partials and "pkg.metric.spec" for
	// specifications.
	Ref     string
	Partial bool
}

func (b BaseRef) String() string { return b.Ref }

// RawDocument is a normalized document waiting for resolution, or a
// snapshot of one that was partially resolved.
type RawDocument struct {
	Kind    document.Kind
	Package string
	YamlID  string
	// Source is the file the document came from and Index its position
	// among the file's YAML documents.
	Source string
	Index  int
	// Doc holds the document's own fields, without "base".
	Doc *document.Document
	// Bases lists the base references not merged yet.
	Bases []BaseRef
	// Built accumulates the bases merged so far; nil before the first.
	Built *document.Document
}

// Identity names the document for diagnostics: the partial id, the
// specification name as far as it is known, or its source position.
func (r RawDocument) Identity() string {
	key := "name"
	if r.Kind == document.KindPartial {
		key = "id"
	}

	if s, ok := r.Doc.GetString(key); ok && s != "" {
		return s
	}

	return fmt.Sprintf("%s[%d]", r.Source, r.Index)
}

// NewRawDocument normalizes a document read from a file of package pkg.
// yamlID is the file path relative to the package directory, without
// extension. A specification name that cannot be fully qualified yet is
// reported through the returned bool being false.
func NewRawDocument(doc *document.Document, pkg, yamlID string) (RawDocument, bool, error) {
	raw := RawDocument{
		Kind:    document.KindOf(doc),
		Package: pkg,
		YamlID:  yamlID,
		Doc:     doc.Clone(),
	}

	if raw.Doc == nil {
		raw.Doc = document.New()
	}

	raw.Doc.Set("package", pkg)

	qualified := true

	var err error

	switch raw.Kind {
	case document.KindPartial:
		err = raw.normalizePartialID()
	default:
		qualified, err = raw.normalizeSpecName()
	}

	if err != nil {
		return RawDocument{}, false, err
	}

	if err := raw.normalizeBases(); err != nil {
		return RawDocument{}, false, fmt.Errorf("%s: %w", raw.Identity(), err)
	}

	return raw, qualified, nil
}

func (r *RawDocument) partialContext() naming.PartialContext {
	return naming.PartialContext{Package: r.Package, Path: r.YamlID}
}

func (r *RawDocument) normalizePartialID() error {
	id, ok := r.Doc.GetString("id")
	if !ok {
		return fmt.Errorf("partial in %s: id must be a string: %w", r.YamlID, naming.ErrMalformedName)
	}

	name, err := naming.ParsePartialName(id, r.partialContext())
	if err != nil {
		return err
	}

	r.Doc.Set("id", name.String())

	return nil
}

// normalizeSpecName qualifies name with metric and package when it can.
// A name left partly qualified is completed after inheritance.
func (r *RawDocument) normalizeSpecName() (bool, error) {
	raw, ok := r.Doc.GetString("name")
	if !ok {
		return false, fmt.Errorf("specification in %s has no string name: %w", r.YamlID, naming.ErrMalformedName)
	}

	name, err := qualifySpecName(raw, r.Doc, r.Package)
	if err != nil {
		return false, fmt.Errorf("specification %q in %s: %w", raw, r.YamlID, err)
	}

	if !name.IsFQ() {
		return false, nil
	}

	r.Doc.Set("name", name.String())
	r.Doc.Set("metric", name.Metric())

	return true, nil
}

func qualifySpecName(raw string, doc *document.Document, pkg string) (naming.Name, error) {
	opts := []naming.Option{naming.WithContextPackage(pkg)}

	if v, ok := doc.Get("metric"); ok && v != nil {
		metric, ok := v.(string)
		if !ok {
			return naming.Name{}, fmt.Errorf("metric must be a string: %w", naming.ErrMalformedName)
		}

		opts = append(opts, naming.WithMetric(metric))
	}

	return naming.ParseSpecName(raw, opts...)
}

func (r *RawDocument) normalizeBases() error {
	v, ok := r.Doc.Get("base")
	if !ok {
		return nil
	}

	r.Doc.Delete("base")

	var refs []string

	switch tv := v.(type) {
	case nil:
		return nil
	case string:
		refs = []string{tv}
	case []any:
		for _, item := range tv {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("base entry %v: %w", item, ErrMalformedBase)
			}

			refs = append(refs, s)
		}
	default:
		return fmt.Errorf("base %v: %w", v, ErrMalformedBase)
	}

	bases := make([]BaseRef, 0, len(refs))

	for _, ref := range refs {
		b, err := r.normalizeBase(ref)
		if err != nil {
			return err
		}

		bases = append(bases, b)
	}

	r.Bases = bases

	return nil
}

func (r *RawDocument) normalizeBase(ref string) (BaseRef, error) {
	if naming.IsPartialRef(ref) {
		name, err := naming.ParsePartialName(ref, r.partialContext())
		if err != nil {
			return BaseRef{}, err
		}

		return BaseRef{Ref: name.String(), Partial: true}, nil
	}

	name, err := naming.ParseSpecName(ref, naming.WithContextPackage(r.Package))
	if err != nil {
		return BaseRef{}, err
	}

	fqn, err := name.FQN()
	if err != nil {
		return BaseRef{}, fmt.Errorf("base %q: %w", ref, err)
	}

	return BaseRef{Ref: fqn}, nil
}

// snapshot returns a copy of r that has consumed all but rest of its bases.
func (r RawDocument) snapshot(rest []BaseRef, built *document.Document) RawDocument {
	r.Bases = slices.Clone(rest)
	r.Built = built

	return r
}
