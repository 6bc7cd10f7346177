package mcp

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	litecfg "github.com/labextract-server/internal/config"
)

func newTestLiteServer(t *testing.T) *LiteServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := litecfg.DefaultLiteConfig()
	cfg.DataDir = t.TempDir()
	s, err := NewLiteServer(cfg, WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func connect(t *testing.T, s *LiteServer) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestNewLiteServer(t *testing.T) {
	s := newTestLiteServer(t)
	assert.NotNil(t, s.Server())
	assert.FileExists(t, s.config.StoreDBPath())
	assert.DirExists(t, s.config.ExportDir())
}

func TestListTools(t *testing.T) {
	cs := connect(t, newTestLiteServer(t))

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.InputSchema)
	}
	assert.ElementsMatch(t, []string{
		"extract_report", "resolve_name", "list_biomarkers", "list_variants", "export_entities",
	}, names)
}

func TestExtractReportTool(t *testing.T) {
	cs := connect(t, newTestLiteServer(t))

	t.Run("genetic report", func(t *testing.T) {
		res, text := callTool(t, cs, "extract_report", map[string]any{"text": "rs1801133: CT", "user_id": "user-1"})
		require.False(t, res.IsError, text)

		var body struct {
			DocumentType string `json:"document_type"`
			NeedsReview  bool   `json:"needs_review"`
			Variants     []struct {
				CanonicalKey string `json:"canonical_key"`
				Zygosity     string `json:"zygosity"`
			} `json:"variants"`
			Saved *struct {
				Variants int `json:"variants"`
			} `json:"saved"`
		}
		require.NoError(t, json.Unmarshal([]byte(text), &body))
		assert.Equal(t, "genetic", body.DocumentType)
		require.Len(t, body.Variants, 1)
		assert.Equal(t, "mthfr_c677t", body.Variants[0].CanonicalKey)
		assert.Equal(t, "heterozygous", body.Variants[0].Zygosity)
		require.NotNil(t, body.Saved)
		assert.Equal(t, 1, body.Saved.Variants)
	})

	t.Run("empty text is a tool error", func(t *testing.T) {
		res, _ := callTool(t, cs, "extract_report", map[string]any{"text": " "})
		assert.True(t, res.IsError)
	})

	t.Run("bad hint is a tool error", func(t *testing.T) {
		res, _ := callTool(t, cs, "extract_report", map[string]any{"text": "Glucose 95", "type_hint": "x-ray"})
		assert.True(t, res.IsError)
	})
}

func TestResolveNameTool(t *testing.T) {
	cs := connect(t, newTestLiteServer(t))

	tests := []struct {
		args    map[string]any
		key     string
		matched bool
	}{
		{map[string]any{"name": "HbA1c"}, "hemoglobin_a1c", true},
		{map[string]any{"name": "COMT Val158Met", "kind": "variant"}, "comt_v158m", true},
		{map[string]any{"name": "Widget Factor", "kind": "biomarker"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.args["name"].(string), func(t *testing.T) {
			res, text := callTool(t, cs, "resolve_name", tt.args)
			require.False(t, res.IsError, text)

			var body struct {
				Key     string `json:"key"`
				Matched bool   `json:"matched"`
			}
			require.NoError(t, json.Unmarshal([]byte(text), &body))
			assert.Equal(t, tt.key, body.Key)
			assert.Equal(t, tt.matched, body.Matched)
		})
	}

	res, _ := callTool(t, cs, "resolve_name", map[string]any{"name": "x", "kind": "protein"})
	assert.True(t, res.IsError)
}

func TestEntityTools(t *testing.T) {
	s := newTestLiteServer(t)
	cs := connect(t, s)

	res, text := callTool(t, cs, "extract_report", map[string]any{
		"text":    "Glucose: 95.5 mg/dL\nTotal Cholesterol: 180 mg/dL",
		"user_id": "user/7",
	})
	require.False(t, res.IsError, text)

	_, text = callTool(t, cs, "list_biomarkers", map[string]any{"user_id": "user/7"})
	assert.Contains(t, text, `"count": 2`)

	_, text = callTool(t, cs, "list_variants", map[string]any{"user_id": "user/7"})
	assert.Contains(t, text, `"count": 0`)

	res, text = callTool(t, cs, "export_entities", map[string]any{"user_id": "user/7"})
	require.False(t, res.IsError, text)

	var body struct {
		Path       string `json:"path"`
		Biomarkers int    `json:"biomarkers"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &body))
	assert.Equal(t, 2, body.Biomarkers)
	assert.Equal(t, s.config.ExportDir(), filepath.Dir(body.Path))
	assert.Contains(t, filepath.Base(body.Path), "user_7-")

	data, err := os.ReadFile(body.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_id": "user/7"`)
}
