package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jaycli/jay/internal/model/contract"
)

// Tool represents one executable capability advertised to the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// Registry is the closed set of tool-name -> handler bindings, resolved at
// startup. Adding a tool is an explicit Register call, never reflection.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) {
	name := NormalizeToolName(t.Name())
	if name == "" {
		panic("tool: empty tool name")
	}
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool: duplicate registration: %s", name))
	}

	r.tools[name] = t
	r.order = append(r.order, name)
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[NormalizeToolName(name)]
	return t, ok
}

// Descriptors returns the schema catalogue sent to the model on every
// request. Every entry is dispatchable and every dispatchable tool has an
// entry; the two sets never drift apart because both come from the same map.
func (r *Registry) Descriptors() []ToolDescriptor {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)

	descriptors := make([]ToolDescriptor, 0, len(names))
	for _, name := range names {
		t := r.tools[name]

		meta := normalizeToolMetadata(ToolMetadata{})
		if provider, ok := t.(MetadataProvider); ok {
			meta = normalizeToolMetadata(provider.ToolMetadata())
		}

		descriptors = append(descriptors, ToolDescriptor{
			Definition: contract.ToolDef{
				Name:        name,
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
			Metadata: meta,
		})
	}
	return descriptors
}

// Definitions returns just the wire-format tool defs.
func (r *Registry) Definitions() []contract.ToolDef {
	descriptors := r.Descriptors()
	defs := make([]contract.ToolDef, 0, len(descriptors))
	for _, d := range descriptors {
		defs = append(defs, d.Definition)
	}
	return defs
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(name)
}
