package spec

import (
	"fmt"

	"validate-specs/internal/document"
	"validate-specs/internal/naming"
)

// Partial is a named document fragment that can only be used as a base.
// It is immutable: accessors return copies.
type Partial struct {
	name naming.PartialName
	doc  *document.Document
}

// NewPartial builds a Partial from a fully-qualified name and its fields.
// An "id" key in doc is dropped; the name replaces it.
func NewPartial(name naming.PartialName, doc *document.Document) (*Partial, error) {
	if !name.IsFQ() {
		return nil, fmt.Errorf("partial %q: %w", name, naming.ErrNotFullyQualified)
	}

	d := doc.Clone()
	if d == nil {
		d = document.New()
	}

	d.Delete("id")

	return &Partial{name: name, doc: d}, nil
}

// PartialFromDocument builds a Partial from a document whose "id" holds
// the fully-qualified partial name.
func PartialFromDocument(doc *document.Document) (*Partial, error) {
	id, ok := doc.GetString("id")
	if !ok {
		return nil, fmt.Errorf("partial has no id: %w", ErrInvalidDocument)
	}

	name, err := naming.ParsePartialName(id, naming.PartialContext{})
	if err != nil {
		return nil, err
	}

	return NewPartial(name, doc)
}

// Name returns the fully-qualified partial name, "pkg:path#fragment".
func (p *Partial) Name() string { return p.name.String() }

// Document returns a copy of the partial's fields, without "id".
func (p *Partial) Document() *document.Document { return p.doc.Clone() }

// Equal reports whether both partials have the same name and fields.
func (p *Partial) Equal(other *Partial) bool {
	if p == nil || other == nil {
		return p == other
	}

	return p.name == other.name && document.Equal(p.doc, other.doc)
}

// MarshalJSON encodes the partial with its id first.
func (p *Partial) MarshalJSON() ([]byte, error) {
	return p.withID().MarshalJSON()
}

// MarshalYAML encodes the partial with its id first.
func (p *Partial) MarshalYAML() (any, error) {
	return p.withID().MarshalYAML()
}

func (p *Partial) withID() *document.Document {
	return document.Merge(document.FromPairs("id", p.name.String()), p.doc)
}

func (p *Partial) String() string { return p.name.String() }
