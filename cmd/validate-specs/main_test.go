package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const drpSpecs = `
id: base
threshold:
  unit: mag
  operator: "<"
---
name: AM1.minimum
base: "#base"
threshold:
  value: 5
---
name: PA1.design
threshold:
  value: 4.5
  unit: mmag
  operator: "<="
`

const otherSpecs = `
name: AM1.stretch
base: validate_drp.AM1.minimum
`

func writeMetricsPackage(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for rel, content := range files {
		p := filepath.Join(root, "specs", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}

	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, logs bytes.Buffer

	cmd := rootCmd(&logs)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "validate-specs version "+Version+"\n", out)
}

func TestLint(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
		"other/other.yaml":      otherSpecs,
	})

	out, err := execute(t, "lint", root)
	require.NoError(t, err)
	assert.Contains(t, out, "specifications: 3\n")
	assert.Contains(t, out, "partials: 1\n")
	assert.Contains(t, out, "fingerprint: ")
}

func TestLintDeadlock(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
		"other/other.yaml":      "name: AM1.stretch\nbase: validate_drp.AM1.minimun\n",
	})

	out, err := execute(t, "lint", root)
	require.Error(t, err)
	assert.Contains(t, out, "unresolved_base")
	assert.Contains(t, out, "validate_drp.AM1.minimum")
}

func TestLintSingle(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
	})

	out, err := execute(t, "lint", "--single", filepath.Join(root, "specs", "validate_drp"))
	require.NoError(t, err)
	assert.Contains(t, out, "specifications: 2\n")
}

func TestLintSingleRelative(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
	})

	t.Chdir(filepath.Join(root, "specs", "validate_drp"))

	out, err := execute(t, "lint", "--single", ".")
	require.NoError(t, err)
	assert.Contains(t, out, "specifications: 2\n")
}

func TestLintReportsWarnings(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml":   drpSpecs,
		"validate_drp/loose.yaml": "name: loose\nbase: validate_drp.AM1.minimum\n",
	})

	out, err := execute(t, "lint", root)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: [loose]: [name_not_qualified]")
	assert.Contains(t, out, "specifications: 3\n")
}

func TestLintInvalidDocuments(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
		"validate_drp/dup.yaml": "name: AM1.minimum\nthreshold: {value: 1, unit: mag, operator: '<'}\n",
	})

	out, err := execute(t, "lint", root)
	require.Error(t, err)
	assert.Contains(t, out, "error: [validate_drp.AM1.minimum]: [duplicate_name]")
}

func TestShowJSON(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
		"other/other.yaml":      otherSpecs,
	})

	out, err := execute(t, "show", root, "--subset", "other", "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"operator": "<"`)

	var got struct {
		Specifications []map[string]any `json:"specifications"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Specifications, 1)
	assert.Equal(t, "other.AM1.stretch", got.Specifications[0]["name"])

	threshold, ok := got.Specifications[0]["threshold"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "<", threshold["operator"])
	assert.InDelta(t, 5.0, threshold["value"], 1e-12)
}

func TestShowUnknownFormat(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
	})

	_, err := execute(t, "show", root, "--format", "toml")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	root := writeMetricsPackage(t, map[string]string{
		"validate_drp/drp.yaml": drpSpecs,
	})

	tests := []struct {
		name    string
		value   string
		unit    string
		wantOut string
		wantErr bool
	}{
		{name: "pass", value: "2", unit: "mag", wantOut: "PASS validate_drp.AM1.minimum: 2 mag\n"},
		{name: "fail", value: "7000", unit: "mmag", wantOut: "FAIL validate_drp.AM1.minimum: 7000 mmag\n", wantErr: true},
		{name: "incompatible", value: "2", unit: "arcmin", wantErr: true},
		{name: "bad value", value: "two", unit: "mag", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "check", root, "validate_drp.AM1.minimum", tt.value, tt.unit)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out)
			}
		})
	}
}
