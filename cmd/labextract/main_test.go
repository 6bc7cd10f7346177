package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LABEXTRACT_DATA_DIR", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	report := filepath.Join(t.TempDir(), "panel.txt")
	require.NoError(t, os.WriteFile(report, []byte("Glucose: 95.5 mg/dL\nTotal Cholesterol: 180 mg/dL\n"), 0o644))

	t.Run("table from file", func(t *testing.T) {
		out, err := execute(t, "", "extract", report)
		require.NoError(t, err)
		assert.Contains(t, out, "Document type: biomarker")
		assert.Contains(t, out, "BIOMARKER")
		assert.Contains(t, out, "glucose")
		assert.Contains(t, out, "total_cholesterol")
		assert.NotContains(t, out, "Saved:")
	})

	t.Run("json from stdin", func(t *testing.T) {
		out, err := execute(t, "rs1801133: CT\n", "extract", "-", "--format", "json")
		require.NoError(t, err)

		var body struct {
			DocumentType string `json:"document_type"`
			Variants     []struct {
				CanonicalKey string `json:"canonical_key"`
			} `json:"variants"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Equal(t, "genetic", body.DocumentType)
		require.Len(t, body.Variants, 1)
		assert.Equal(t, "mthfr_c677t", body.Variants[0].CanonicalKey)
	})

	t.Run("type hint", func(t *testing.T) {
		out, err := execute(t, "Glucose 95 mg/dL", "extract", "--type", "biomarker")
		require.NoError(t, err)
		assert.Contains(t, out, "glucose")
	})

	t.Run("raised confidence floor", func(t *testing.T) {
		out, err := execute(t, "Glucose 95 mg/dL", "extract", "--type", "biomarker", "--min-confidence", "65")
		require.NoError(t, err)
		assert.Contains(t, out, "No entities found.")
		assert.Contains(t, out, "Needs review:  yes")
	})

	t.Run("save for user", func(t *testing.T) {
		out, err := execute(t, "", "extract", report, "--user", "cli-user")
		require.NoError(t, err)
		assert.Contains(t, out, "Saved:         2 biomarkers, 0 variants")
	})

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"extract", report, "--format", "xml"}},
		{"bad type", []string{"extract", report, "--type", "imaging"}},
		{"bad confidence", []string{"extract", report, "--min-confidence", "101"}},
		{"missing file", []string{"extract", filepath.Join(t.TempDir(), "missing.txt")}},
		{"too many args", []string{"extract", report, report}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestExtractEmptyInput(t *testing.T) {
	_, err := execute(t, "   \n", "extract")
	assert.Error(t, err)
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"biomarker", []string{"resolve", "Ferritin,", "Serum"}, "ferritin\t"},
		{"variant", []string{"resolve", "--kind", "variant", "rs4680"}, "comt_v158m\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tt.want), out)
		})
	}

	_, err := execute(t, "", "resolve", "Widget", "Factor")
	assert.Error(t, err)

	_, err = execute(t, "", "resolve", "--kind", "protein", "x")
	assert.Error(t, err)
}

func TestVocabularyCommand(t *testing.T) {
	out, err := execute(t, "", "vocabulary")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "KEY"))
	assert.Contains(t, out, "glucose")

	out, err = execute(t, "", "vocabulary", "--kind", "variant")
	require.NoError(t, err)
	assert.Contains(t, out, "IDENTIFIER")
	assert.Contains(t, out, "mthfr_c677t")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "labextract dev\n", out)
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "claude_desktop_config.json")
	binary := filepath.Join(dir, "mcp-server-lite")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	out, err := execute(t, "", "setup", "--config", cfgPath, "--binary", binary, "--data-dir", "/srv/lab")
	require.NoError(t, err)
	assert.Contains(t, out, `Registered "labextract"`)

	out, err = execute(t, "", "setup", "status", "--config", cfgPath)
	require.NoError(t, err)

	var status struct {
		Configured bool     `json:"configured"`
		ServerPath string   `json:"server_path"`
		DataDir    string   `json:"data_dir"`
		Issues     []string `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Configured)
	assert.Equal(t, binary, status.ServerPath)
	assert.Equal(t, "/srv/lab", status.DataDir)
	assert.Empty(t, status.Issues)
}
