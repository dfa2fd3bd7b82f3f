package document

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind tells a specification document apart from a partial. It is decided
// once, when the document is loaded.
type Kind int

const (
	KindUnknown       Kind = iota // unknown
	KindSpecification             // specification
	KindPartial                   // partial
)

// KindOf classifies a loaded document: documents carrying an "id" are
// partials, everything else is a specification.
func KindOf(d *Document) Kind {
	if d.Has("id") {
		return KindPartial
	}

	return KindSpecification
}
