package spec

import (
	"validate-specs/internal/document"
	"validate-specs/internal/naming"
	"validate-specs/internal/quantity"
)

// Specification is a named criterion for a metric measurement.
type Specification interface {
	// Name is the specification name; always a specification-kind name.
	Name() naming.Name
	// Type identifies the specification kind, e.g. "threshold".
	Type() string
	// Check reports whether measurement passes. A measurement whose unit
	// cannot be converted to the specification's unit is an error.
	Check(measurement quantity.Quantity) (bool, error)
	// Document returns the serialized form as an ordered document.
	Document() *document.Document
	// Equal reports whether other is the same specification.
	Equal(other Specification) bool
}
