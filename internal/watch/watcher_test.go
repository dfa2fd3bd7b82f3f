package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"validate-specs/internal/spec"
	"validate-specs/internal/specset"
)

const specYAML = `
name: AM1.minimum
threshold:
  value: %s
  unit: mag
  operator: "<"
`

func writeSpec(t *testing.T, dir, value string) {
	t.Helper()

	content := []byte(fmt.Sprintf(specYAML, value))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "am1.yaml"), content, 0o600))
}

func nextUpdate(t *testing.T, w *Watcher) Update {
	t.Helper()

	select {
	case u, ok := <-w.Updates():
		require.True(t, ok, "updates channel closed")
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

// waitFor reads updates until one satisfies pred. Intermediate reloads of
// half-written files are skipped.
func waitFor(t *testing.T, w *Watcher, pred func(Update) bool) Update {
	t.Helper()

	deadline := time.After(5 * time.Second)

	for {
		select {
		case u, ok := <-w.Updates():
			require.True(t, ok, "updates channel closed")

			if pred(u) {
				return u
			}
		case <-deadline:
			t.Fatal("timed out waiting for update")
			return Update{}
		}
	}
}

func hasThreshold(value float64) func(Update) bool {
	return func(u Update) bool {
		if u.Err != nil || u.Set == nil {
			return false
		}

		sp, err := u.Set.Get("validate_drp.AM1.minimum")
		if err != nil {
			return false
		}

		th, ok := sp.(*spec.ThresholdSpecification)

		return ok && th.Threshold().Value == value
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "validate_drp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeSpec(t, dir, "5")

	w, err := New(Config{Root: dir, Single: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))

	first := nextUpdate(t, w)
	require.NoError(t, first.Err)
	require.NotNil(t, first.Set)
	assert.True(t, first.Set.Contains("validate_drp.AM1.minimum"))

	writeSpec(t, dir, "6")

	second := waitFor(t, w, hasThreshold(6))
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)

	// A broken file is reported, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("a: ["), 0o600))

	third := waitFor(t, w, func(u Update) bool { return u.Err != nil })
	require.Error(t, third.Err)

	require.NoError(t, os.Remove(filepath.Join(dir, "broken.yaml")))

	fourth := waitFor(t, w, hasThreshold(6))
	assert.Equal(t, second.Fingerprint, fourth.Fingerprint)

	require.NoError(t, w.Stop())

	for range w.Updates() {
	}
}

func TestWatcherCustomLoad(t *testing.T) {
	dir := t.TempDir()

	calls := 0
	w, err := New(Config{
		Root: dir,
		Load: func(ctx context.Context) (*specset.SpecificationSet, error) {
			calls++
			return specset.New(nil, nil)
		},
	})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))

	u := nextUpdate(t, w)
	require.NoError(t, u.Err)
	assert.Equal(t, 0, u.Set.Len())

	require.NoError(t, w.Stop())
	assert.Equal(t, 1, calls)

	require.NoError(t, w.Stop())
}

func TestStopWithoutStart(t *testing.T) {
	w, err := New(Config{Root: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Updates()
	assert.False(t, ok)
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
