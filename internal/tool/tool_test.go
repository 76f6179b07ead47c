package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name    string
	schema  map[string]interface{}
	meta    *ToolMetadata
	execute func(ctx context.Context, input json.RawMessage) (string, error)
	calls   int
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool for tests" }

func (f *fakeTool) Parameters() map[string]interface{} { return f.schema }

func (f *fakeTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	f.calls++
	if f.execute != nil {
		return f.execute(ctx, input)
	}
	return "done", nil
}

func (f *fakeTool) ToolMetadata() ToolMetadata {
	if f.meta == nil {
		return ToolMetadata{}
	}
	return *f.meta
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "echo"})

	got, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "echo"})

	assert.Panics(t, func() {
		r.Register(&fakeTool{name: "echo"})
	})
}

func TestRegistry_DescriptorsMatchDispatchableSet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "write_file", meta: &ToolMetadata{Risk: RiskMedium}})
	r.Register(&fakeTool{name: "delete_file", meta: &ToolMetadata{Risk: RiskHigh}})
	r.Register(&fakeTool{name: "read_file"})

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 3)

	for _, d := range descriptors {
		_, ok := r.Get(d.Definition.Name)
		assert.True(t, ok, "every advertised tool must be dispatchable: %s", d.Definition.Name)
	}

	// Sorted for a deterministic catalogue.
	assert.Equal(t, "delete_file", descriptors[0].Definition.Name)
	assert.Equal(t, "read_file", descriptors[1].Definition.Name)
	assert.Equal(t, "write_file", descriptors[2].Definition.Name)

	assert.Equal(t, RiskHigh, descriptors[0].Metadata.Risk)
	assert.Equal(t, RiskMedium, descriptors[1].Metadata.Risk, "tools without metadata default to medium risk")
}

func TestNormalizeToolMetadata(t *testing.T) {
	meta := normalizeToolMetadata(ToolMetadata{
		Source:       "  Builtin ",
		Capabilities: []string{"FS", "fs", " ", "exec"},
		Risk:         "HIGH",
	})

	assert.Equal(t, "builtin", meta.Source)
	assert.Equal(t, []string{"exec", "fs"}, meta.Capabilities)
	assert.Equal(t, RiskHigh, meta.Risk)

	assert.Equal(t, RiskMedium, normalizeToolMetadata(ToolMetadata{Risk: "bogus"}).Risk)
}

func TestValidateInput(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":  map[string]interface{}{"type": "string"},
			"count": map[string]interface{}{"type": "integer"},
			"tags": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"path"},
	}

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", `{"path":"a.txt","count":3,"tags":["x"]}`, ""},
		{"missing required", `{"count":3}`, "missing required field: path"},
		{"wrong type", `{"path":42}`, "field 'path' expected string"},
		{"bad array item", `{"path":"a","tags":[1]}`, "expected string"},
		{"unknown fields tolerated", `{"path":"a","extra":true}`, ""},
		{"not json", `{"path":`, "invalid JSON input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(schema, json.RawMessage(tt.input))
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
