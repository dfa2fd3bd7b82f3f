package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeFixtures() (base, override *Document) {
	base = FromPairs(
		"A", "a value",
		"B", "b value",
		"C", []any{1, 2},
		"D", FromPairs(
			"a", "a value",
			"b", "b value",
			"c", FromPairs("alpha", 1, "beta", 3),
		),
		"E", FromPairs("hello", "world"),
	)

	override = FromPairs(
		"B", "over-written value",
		"Z", "new value",
		"C", []any{3, 4},
		"D", FromPairs(
			"d", "d value",
			"c", FromPairs("beta", 2, "gamma", 3),
		),
		"E", "good-bye",
	)

	return base, override
}

func TestMerge(t *testing.T) {
	base, override := mergeFixtures()

	merged := Merge(base, override)

	expected := FromPairs(
		"A", "a value",
		"B", "over-written value",
		"C", []any{3, 4},
		"D", FromPairs(
			"a", "a value",
			"b", "b value",
			"c", FromPairs("alpha", 1, "beta", 2, "gamma", 3),
			"d", "d value",
		),
		"E", "good-bye",
		"Z", "new value",
	)

	assert.True(t, Equal(expected, merged), "got %v", merged.ToMap())
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "Z"}, merged.Keys())

	d, ok := merged.GetDocument("D")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "d"}, d.Keys())

	c, ok := d.GetDocument("c")
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, c.Keys())
}

func TestMergeListAppend(t *testing.T) {
	base, override := mergeFixtures()

	merged := Merge(base, override, WithListAppend())

	v, ok := merged.Get("C")
	require.True(t, ok)
	assert.Equal(t, []any{1, 2, 3, 4}, v)
}

func TestMergeImmutability(t *testing.T) {
	base, override := mergeFixtures()
	baseCopy, overrideCopy := base.Clone(), override.Clone()

	merged := Merge(base, override, WithListAppend())

	assert.True(t, Equal(base, baseCopy))
	assert.True(t, Equal(override, overrideCopy))

	// The result must not alias either input.
	d, _ := merged.GetDocument("D")
	d.Set("a", "changed")

	baseD, _ := base.GetDocument("D")
	a, _ := baseD.GetString("a")
	assert.Equal(t, "a value", a)
}

func TestMergeNil(t *testing.T) {
	doc := FromPairs("x", 1)

	assert.True(t, Equal(doc, Merge(nil, doc)))
	assert.True(t, Equal(doc, Merge(doc, nil)))
	assert.Equal(t, 0, Merge(nil, nil).Len())
}

func TestMergeNestedThreshold(t *testing.T) {
	partial := FromPairs("threshold", FromPairs("unit", "mag"))
	parent := FromPairs("threshold", FromPairs("operator", "<", "value", 3.0))
	child := FromPairs("threshold", FromPairs("value", 5.0))

	built := Merge(Merge(partial, parent), child)

	threshold, ok := built.GetDocument("threshold")
	require.True(t, ok)
	assert.True(t, Equal(FromPairs("unit", "mag", "operator", "<", "value", 5.0), threshold))
}
