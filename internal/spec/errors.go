package spec

import "errors"

var (
	// ErrUnknownOperator is returned for a threshold operator outside
	// >=, >, <, <=, == and !=.
	ErrUnknownOperator = errors.New("unknown threshold operator")
	// ErrUnsupportedKind is returned when a document describes a kind of
	// specification that has no implementation.
	ErrUnsupportedKind = errors.New("unsupported specification kind")
	// ErrNotSpecName is returned when a name does not denote a specification.
	ErrNotSpecName = errors.New("name does not represent a specification")
	// ErrInvalidDocument is returned when a document lacks required fields or
	// holds values of the wrong type.
	ErrInvalidDocument = errors.New("invalid specification document")
)
