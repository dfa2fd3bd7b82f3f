package specset

import (
	"errors"
	"fmt"
	"strings"

	"validate-specs/internal/diagnostic"
	"validate-specs/internal/naming"
)

var (
	// ErrDeadlock is matched by a ResolutionError.
	ErrDeadlock = errors.New("specification resolution deadlocked")
	// ErrKeyMismatch is returned when a key does not match the name of the
	// value stored under it.
	ErrKeyMismatch = errors.New("key does not match name")
	// ErrWrongType is returned when a value is neither a specification nor
	// a partial, or the wrong one of the two for its key.
	ErrWrongType = errors.New("wrong value type")
	// ErrNotFound is returned for keys with no stored value.
	ErrNotFound = errors.New("not found")
	// ErrNotSpecification is returned when a key names a partial or a
	// metric where a specification is expected.
	ErrNotSpecification = errors.New("not a specification")
	// ErrDuplicateName is returned when two documents define the same name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrNoSpecsDir is returned when a metrics package has no specs directory.
	ErrNoSpecsDir = errors.New("no specs directory")
	// ErrMalformedBase is returned when a base field is not a string or a
	// list of strings.
	ErrMalformedBase = errors.New("malformed base reference")
	// ErrInvalidScope is returned by Subset for names that are not a
	// package or metric name.
	ErrInvalidScope = errors.New("subset scope must be a package or metric name")
)

// BlockedDocument describes a document that could not be resolved.
type BlockedDocument struct {
	Identity string
	Source   string
	Missing  string
}

// ResolutionError reports every document left unresolved when a pass made
// no progress.
type ResolutionError struct {
	Blocked     []BlockedDocument
	Diagnostics diagnostic.Diagnostics
}

func (e *ResolutionError) Error() string {
	lines := make([]string, 0, len(e.Diagnostics.Errors)+1)
	lines = append(lines, fmt.Sprintf("%v: %d unresolved document(s)", ErrDeadlock, len(e.Blocked)))

	for _, d := range e.Diagnostics.Errors {
		lines = append(lines, "  "+d.String())
	}

	return strings.Join(lines, "\n")
}

// Is makes errors.Is(err, ErrDeadlock) hold.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrDeadlock
}

// LoadError reports every document that could not be normalized or turned
// into a specification or partial. The underlying errors stay reachable
// through errors.Is and errors.As.
type LoadError struct {
	Diagnostics diagnostic.Diagnostics
	errs        []error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("specification load failed: %v", e.Diagnostics.Error())
}

// Unwrap returns the error of each failed document.
func (e *LoadError) Unwrap() []error {
	return e.errs
}

// report collects the problems found during one load.
type report struct {
	diags diagnostic.Diagnostics
	errs  []error
}

// fail records err against the document it occurred in.
func (r *report) fail(doc string, err error) {
	r.diags.AddError(codeFor(err), err.Error(), doc, "")
	r.errs = append(r.errs, fmt.Errorf("%s: %w", doc, err))
}

// err returns a *LoadError when any failure was recorded.
func (r *report) err() error {
	if !r.diags.HasErrors() {
		return nil
	}

	return &LoadError{Diagnostics: r.diags, errs: r.errs}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateName):
		return diagnostic.CodeDuplicateName
	case errors.Is(err, ErrMalformedBase),
		errors.Is(err, naming.ErrMalformedName),
		errors.Is(err, naming.ErrNotFullyQualified),
		errors.Is(err, naming.ErrConflict):
		return diagnostic.CodeMalformedRef
	default:
		return diagnostic.CodeInvalidSpec
	}
}
