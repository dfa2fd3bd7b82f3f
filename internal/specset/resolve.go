package specset

import (
	"context"
	"fmt"
	"log/slog"

	"validate-specs/internal/common"
	"validate-specs/internal/diagnostic"
	"validate-specs/internal/document"
	"validate-specs/internal/match"
	"validate-specs/internal/naming"
	"validate-specs/internal/spec"
)

// maxSuggestions bounds the "did you mean" list of a blocked document.
const maxSuggestions = 3

// State is the outcome of one resolution attempt.
type State int

const (
	StateResolved State = iota + 1
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateBlocked:
		return "blocked"
	default:
		return common.UnknownStr
	}
}

// Resolution is the result of ResolveDocument.
type Resolution struct {
	State State
	// Document is the fully merged document when State is StateResolved.
	Document *document.Document
	// Pending is the input with the bases merged so far consumed, when
	// State is StateBlocked.
	Pending RawDocument
	// Missing is the base reference that is not available yet.
	Missing string
}

// ResolveDocument merges raw with its bases, in order, on top of each
// other; the document's own fields are merged last. Inheriting from a
// specification also sets "metric" to that specification's metric. If a
// base is not in the set yet the result is StateBlocked and Pending keeps
// the progress made. raw is not modified.
func (s *SpecificationSet) ResolveDocument(raw RawDocument) Resolution {
	built := raw.Built
	if built == nil {
		built = document.New()
	}

	for i, ref := range raw.Bases {
		base, metric, ok := s.lookupBase(ref)
		if !ok {
			return Resolution{
				State:   StateBlocked,
				Pending: raw.snapshot(raw.Bases[i:], built),
				Missing: ref.Ref,
			}
		}

		built = document.Merge(built, base, s.mergeOpts...)
		if metric != "" {
			built.Set("metric", metric)
		}
	}

	return Resolution{
		State:    StateResolved,
		Document: document.Merge(built, raw.Doc, s.mergeOpts...),
	}
}

func (s *SpecificationSet) lookupBase(ref BaseRef) (*document.Document, string, bool) {
	if ref.Partial {
		p, ok := s.partials[ref.Ref]
		if !ok {
			return nil, "", false
		}

		return p.Document(), "", true
	}

	name, err := naming.ParseSpecName(ref.Ref)
	if err != nil {
		return nil, "", false
	}

	sp, ok := s.specs[name]
	if !ok {
		return nil, "", false
	}

	return sp.Document(), sp.Name().Metric(), true
}

// resolveAll runs resolution passes until the pool is empty or a pass
// stores nothing.
func (s *SpecificationSet) resolveAll(ctx context.Context, pool []RawDocument, logger *slog.Logger, m *Metrics) error {
	for pass := 1; len(pool) > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.pass()

		var (
			next    []RawDocument
			blocked []Resolution
			rep     report
		)

		for _, raw := range pool {
			res := s.ResolveDocument(raw)
			if res.State == StateBlocked {
				next = append(next, res.Pending)
				blocked = append(blocked, res)

				continue
			}

			if err := s.store(raw, res.Document); err != nil {
				rep.fail(raw.Identity(), fmt.Errorf("%s: %w", raw.Source, err))
			}
		}

		if err := rep.err(); err != nil {
			return err
		}

		logger.Debug("resolution pass",
			"pass", pass,
			"resolved", len(pool)-len(next),
			"pending", len(next))

		if len(next) == len(pool) {
			m.deadlock()
			return s.deadlockError(blocked)
		}

		pool = next
	}

	return nil
}

// store turns a resolved document into a Partial or Specification.
func (s *SpecificationSet) store(raw RawDocument, doc *document.Document) error {
	if raw.Kind == document.KindPartial {
		p, err := spec.PartialFromDocument(doc)
		if err != nil {
			return err
		}

		if _, ok := s.partials[p.Name()]; ok {
			return fmt.Errorf("partial %s: %w", p.Name(), ErrDuplicateName)
		}

		s.partials[p.Name()] = p

		return nil
	}

	if err := finalizeName(doc, raw.Package); err != nil {
		return err
	}

	sp, err := spec.Deserialize(doc)
	if err != nil {
		return err
	}

	if _, ok := s.specs[sp.Name()]; ok {
		return fmt.Errorf("specification %s: %w", sp.Name(), ErrDuplicateName)
	}

	s.specs[sp.Name()] = sp

	return nil
}

// finalizeName fully qualifies "name" using the possibly inherited metric.
func finalizeName(doc *document.Document, pkg string) error {
	raw, ok := doc.GetString("name")
	if !ok {
		return fmt.Errorf("specification has no string name: %w", naming.ErrMalformedName)
	}

	name, err := qualifySpecName(raw, doc, pkg)
	if err != nil {
		return err
	}

	fqn, err := name.FQN()
	if err != nil {
		return err
	}

	doc.Set("name", fqn)

	return nil
}

func (s *SpecificationSet) deadlockError(blocked []Resolution) error {
	pending := make(map[string]struct{}, len(blocked))
	for _, res := range blocked {
		pending[res.Pending.Identity()] = struct{}{}
	}

	known := s.knownNames()

	rerr := &ResolutionError{}

	for _, res := range blocked {
		id := res.Pending.Identity()

		rerr.Blocked = append(rerr.Blocked, BlockedDocument{
			Identity: id,
			Source:   res.Pending.Source,
			Missing:  res.Missing,
		})

		if _, ok := pending[res.Missing]; ok {
			rerr.Diagnostics.AddError(diagnostic.CodeBlockedBase,
				"base is itself unresolved", id, res.Missing)

			continue
		}

		rerr.Diagnostics.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.SeverityError,
			Code:        diagnostic.CodeUnresolvedBase,
			Message:     "base not found",
			Document:    id,
			Reference:   res.Missing,
			Suggestions: match.Suggest(res.Missing, known, maxSuggestions),
		})
	}

	return rerr
}

func (s *SpecificationSet) knownNames() []string {
	known := make([]string, 0, len(s.specs)+len(s.partials))
	for n := range s.Names() {
		known = append(known, n.String())
	}

	for _, p := range s.Partials() {
		known = append(known, p.Name())
	}

	return known
}
