package specset

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"validate-specs/internal/diagnostic"
	"validate-specs/internal/document"
	"validate-specs/internal/spec"
)

func rawDoc(t *testing.T, pkg, yamlID string, kv ...any) RawDocument {
	t.Helper()

	raw, _, err := NewRawDocument(document.FromPairs(kv...), pkg, yamlID)
	require.NoError(t, err)

	return raw
}

func TestResolveDocument(t *testing.T) {
	f := newFixture(t)

	raw := rawDoc(t, "validate_drp", "LPM-17-PA1",
		"name", "PA1.relaxed",
		"base", []any{"PA1.design", "validate_drp:LPM-17-PA1#PA1-Base"},
		"threshold", document.FromPairs("value", 1),
	)

	res := f.set.ResolveDocument(raw)
	require.Equal(t, StateResolved, res.State)

	doc := res.Document
	name, _ := doc.GetString("name")
	assert.Equal(t, "validate_drp.PA1.relaxed", name)
	assert.False(t, doc.Has("base"))

	th, ok := doc.GetDocument("threshold")
	require.True(t, ok, spew.Sdump(doc.ToMap()))

	unit, _ := th.GetString("unit")
	op, _ := th.GetString("operator")
	value, _ := th.Get("value")

	assert.Equal(t, "mag", unit)
	assert.Equal(t, "<", op)
	assert.Equal(t, 1, value)

	metric, _ := doc.GetString("metric")
	assert.Equal(t, "PA1", metric)
}

func TestResolveDocumentIdentity(t *testing.T) {
	set, err := New(nil, nil)
	require.NoError(t, err)

	raw := rawDoc(t, "p", "f", "name", "m.s", "threshold", document.FromPairs("value", 1))

	res := set.ResolveDocument(raw)
	require.Equal(t, StateResolved, res.State)
	assert.True(t, document.Equal(raw.Doc, res.Document), spew.Sdump(res.Document.ToMap()))
}

func TestResolveDocumentLaterBaseWins(t *testing.T) {
	set, err := New(nil, []*spec.Partial{
		partial(t, "p:f#a", "x", "from a", "only_a", 1),
		partial(t, "p:f#b", "x", "from b", "only_b", 2),
	})
	require.NoError(t, err)

	raw := rawDoc(t, "p", "f", "id", "child", "base", []any{"#a", "#b"})
	res := set.ResolveDocument(raw)
	require.Equal(t, StateResolved, res.State)

	x, _ := res.Document.GetString("x")
	assert.Equal(t, "from b", x)
	assert.True(t, res.Document.Has("only_a"))
	assert.True(t, res.Document.Has("only_b"))

	// The child's own value wins over every base.
	raw = rawDoc(t, "p", "f", "id", "child", "base", []any{"#a", "#b"}, "x", "own")
	res = set.ResolveDocument(raw)
	require.Equal(t, StateResolved, res.State)

	x, _ = res.Document.GetString("x")
	assert.Equal(t, "own", x)
}

func TestResolveDocumentBlocked(t *testing.T) {
	set, err := New(nil, []*spec.Partial{partial(t, "p:f#a", "x", 1)})
	require.NoError(t, err)

	raw := rawDoc(t, "p", "f",
		"name", "m.s",
		"base", []any{"#a", "m.missing"},
		"threshold", document.FromPairs("value", 1),
	)

	res := set.ResolveDocument(raw)
	require.Equal(t, StateBlocked, res.State)
	assert.Equal(t, "p.m.missing", res.Missing)

	// Progress is kept: the partial is consumed.
	require.Len(t, res.Pending.Bases, 1)
	assert.Equal(t, "p.m.missing", res.Pending.Bases[0].Ref)
	assert.True(t, res.Pending.Built.Has("x"))

	// The input snapshot is untouched.
	assert.Len(t, raw.Bases, 2)
	assert.Nil(t, raw.Built)
}

func TestResolveDocumentDiamond(t *testing.T) {
	shared := partial(t, "p:f#shared", "threshold", document.FromPairs("unit", "mag", "operator", "<"))
	set, err := New(nil, []*spec.Partial{shared})
	require.NoError(t, err)

	left := rawDoc(t, "p", "f", "id", "left", "base", "#shared", "threshold", document.FromPairs("value", 1))
	right := rawDoc(t, "p", "f", "id", "right", "base", "#shared", "threshold", document.FromPairs("value", 2))

	for _, raw := range []RawDocument{left, right} {
		res := set.ResolveDocument(raw)
		require.Equal(t, StateResolved, res.State)
		require.NoError(t, set.store(raw, res.Document))
	}

	bottom := rawDoc(t, "p", "f", "id", "bottom", "base", []any{"#left", "#right"})
	res := set.ResolveDocument(bottom)
	require.Equal(t, StateResolved, res.State)

	th, _ := res.Document.GetDocument("threshold")
	v, _ := th.Get("value")
	assert.Equal(t, 2, v)

	// The shared partial is not modified by anything built on it.
	stored, err := set.GetPartial("p:f#shared")
	require.NoError(t, err)
	assert.True(t, shared.Equal(stored))

	sth, _ := stored.Document().GetDocument("threshold")
	assert.False(t, sth.Has("value"))
}

func TestResolveAllDiamondOrderIndependent(t *testing.T) {
	docs := func() []RawDocument {
		return []RawDocument{
			rawDoc(t, "p", "f", "id", "shared", "threshold", document.FromPairs("unit", "mag", "operator", "<")),
			rawDoc(t, "p", "f", "id", "left", "base", "#shared", "threshold", document.FromPairs("value", 1)),
			rawDoc(t, "p", "f", "id", "right", "base", "#shared", "threshold", document.FromPairs("value", 2)),
			rawDoc(t, "p", "f", "id", "bottom", "base", []any{"#left", "#right"}),
		}
	}

	orders := map[string][]int{
		"bottom first":         {3, 2, 1, 0},
		"bottom after right":   {0, 2, 3, 1},
		"bottom last":          {0, 1, 2, 3},
		"bottom between sides": {1, 0, 3, 2},
	}

	var want *spec.Partial

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			all := docs()
			pool := make([]RawDocument, 0, len(order))

			for _, i := range order {
				pool = append(pool, all[i])
			}

			set := newSet(nil)
			require.NoError(t, set.resolveAll(context.Background(), pool, slog.Default(), nil))

			got, err := set.GetPartial("p:f#bottom")
			require.NoError(t, err)

			th, _ := got.Document().GetDocument("threshold")
			v, _ := th.Get("value")
			assert.Equal(t, 2, v)

			if want == nil {
				want = got
				return
			}

			assert.True(t, want.Equal(got), "%s\n%s", spew.Sdump(want.Document().ToMap()), spew.Sdump(got.Document().ToMap()))
		})
	}
}

func TestResolveAllForwardReference(t *testing.T) {
	set := newSet(nil)

	pool := []RawDocument{
		rawDoc(t, "p", "a", "name", "m.child", "base", "m.parent", "threshold", document.FromPairs("value", 1)),
		rawDoc(t, "p", "b", "name", "m.parent", "threshold", document.FromPairs("value", 5, "unit", "mag", "operator", "<")),
	}

	require.NoError(t, set.resolveAll(context.Background(), pool, slog.Default(), nil))
	assert.Equal(t, 2, set.Len())

	child, err := set.Get("p.m.child")
	require.NoError(t, err)
	assert.Equal(t, "p.m.child", child.Name().String())
}

func TestResolveAllInheritsMetric(t *testing.T) {
	set := newSet(nil)

	pool := []RawDocument{
		rawDoc(t, "p", "a", "name", "relaxed", "base", "AM1.minimum", "threshold", document.FromPairs("value", 10)),
		rawDoc(t, "p", "a", "name", "AM1.minimum", "threshold", document.FromPairs("value", 5, "unit", "mag", "operator", "<")),
	}

	require.NoError(t, set.resolveAll(context.Background(), pool, slog.Default(), nil))
	assert.True(t, set.Contains("p.AM1.relaxed"))
}

func TestResolveAllUnqualifiedName(t *testing.T) {
	set := newSet(nil)

	pool := []RawDocument{
		rawDoc(t, "p", "a", "name", "lonely", "threshold", document.FromPairs("value", 1, "operator", "<")),
	}

	err := set.resolveAll(context.Background(), pool, slog.Default(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lonely")
}

func TestResolveAllDeadlock(t *testing.T) {
	set := newSet(nil)

	pool := []RawDocument{
		rawDoc(t, "p", "a", "name", "m.ok", "threshold", document.FromPairs("value", 1, "operator", "<")),
		rawDoc(t, "p", "a", "name", "m.first", "base", "m.okk", "threshold", document.FromPairs("value", 1)),
		rawDoc(t, "p", "a", "name", "m.second", "base", "m.first", "threshold", document.FromPairs("value", 1)),
		rawDoc(t, "p", "a", "id", "loop", "base", "#loop"),
	}

	err := set.resolveAll(context.Background(), pool, slog.Default(), nil)
	require.ErrorIs(t, err, ErrDeadlock)

	var rerr *ResolutionError
	require.True(t, errors.As(err, &rerr))
	require.Len(t, rerr.Blocked, 3, spew.Sdump(rerr.Blocked))

	assert.Equal(t, "p.m.first", rerr.Blocked[0].Identity)
	assert.Equal(t, "p.m.okk", rerr.Blocked[0].Missing)
	assert.Equal(t, "p.m.second", rerr.Blocked[1].Identity)
	assert.Equal(t, "p:a#loop", rerr.Blocked[2].Identity)

	diags := rerr.Diagnostics.Errors
	require.Len(t, diags, 3)
	assert.Equal(t, diagnostic.CodeUnresolvedBase, diags[0].Code)
	assert.Equal(t, []string{"p.m.ok"}, diags[0].Suggestions)
	assert.Equal(t, diagnostic.CodeBlockedBase, diags[1].Code)
	assert.Equal(t, diagnostic.CodeBlockedBase, diags[2].Code)

	assert.Contains(t, err.Error(), "3 unresolved")
}

func TestResolveAllDuplicate(t *testing.T) {
	set := newSet(nil)

	pool := []RawDocument{
		rawDoc(t, "p", "a", "name", "m.s", "threshold", document.FromPairs("value", 1, "operator", "<")),
		rawDoc(t, "p", "b", "name", "m.s", "threshold", document.FromPairs("value", 2, "operator", "<")),
	}

	err := set.resolveAll(context.Background(), pool, slog.Default(), nil)
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestResolveAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := []RawDocument{rawDoc(t, "p", "a", "id", "x")}

	err := newSet(nil).resolveAll(ctx, pool, slog.Default(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "resolved", StateResolved.String())
	assert.Equal(t, "blocked", StateBlocked.String())
	assert.Equal(t, "unknown", State(0).String())
}
