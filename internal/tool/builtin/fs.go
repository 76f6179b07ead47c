package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaycli/jay/internal/sandbox"
	"github.com/jaycli/jay/internal/tool"
)

func pathSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"path"},
	}
}

// ReadFile returns the contents of one file inside the workspace.
type ReadFile struct {
	sandbox *sandbox.Sandbox
}

func NewReadFile(sb *sandbox.Sandbox) *ReadFile {
	return &ReadFile{sandbox: sb}
}

func (t *ReadFile) Name() string { return "read_file" }

func (t *ReadFile) Description() string {
	return "Read the contents of a file. The path is relative to the workspace root."
}

func (t *ReadFile) Parameters() map[string]interface{} {
	return pathSchema("File path relative to the workspace root")
}

func (t *ReadFile) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"fs"}, Risk: tool.RiskLow}
}

func (t *ReadFile) Execute(_ context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}

	resolved, err := t.sandbox.Resolve(args.Path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile creates or replaces one file inside the workspace, creating
// parent directories as needed.
type WriteFile struct {
	sandbox *sandbox.Sandbox
}

func NewWriteFile(sb *sandbox.Sandbox) *WriteFile {
	return &WriteFile{sandbox: sb}
}

func (t *WriteFile) Name() string { return "write_file" }

func (t *WriteFile) Description() string {
	return "Write content to a file, replacing it if it exists. Parent directories are created."
}

func (t *WriteFile) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path relative to the workspace root",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Full file content to write",
			},
		},
		"required": []string{"path", "content"},
	}
}

func (t *WriteFile) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"fs"}, Risk: tool.RiskMedium}
}

func (t *WriteFile) Execute(_ context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}

	resolved, err := t.sandbox.Resolve(args.Path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(resolved, []byte(args.Content), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path), nil
}

// ListDir lists one directory level. Directories carry a trailing slash.
type ListDir struct {
	sandbox *sandbox.Sandbox
}

func NewListDir(sb *sandbox.Sandbox) *ListDir {
	return &ListDir{sandbox: sb}
}

func (t *ListDir) Name() string { return "list_dir" }

func (t *ListDir) Description() string {
	return "List the entries of a directory. Defaults to the workspace root."
}

func (t *ListDir) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory path relative to the workspace root; defaults to '.'",
			},
		},
	}
}

func (t *ListDir) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"fs"}, Risk: tool.RiskLow}
}

func (t *ListDir) Execute(_ context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if args.Path == "" {
		args.Path = "."
	}

	resolved, err := t.sandbox.Resolve(args.Path)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "(empty directory)", nil
	}
	return strings.Join(names, "\n"), nil
}

// DeleteFile removes one file. Destructive, so the executor requires the
// confirm flag before it ever reaches Execute.
type DeleteFile struct {
	sandbox *sandbox.Sandbox
}

func NewDeleteFile(sb *sandbox.Sandbox) *DeleteFile {
	return &DeleteFile{sandbox: sb}
}

func (t *DeleteFile) Name() string { return "delete_file" }

func (t *DeleteFile) Description() string {
	return "Delete a file. Destructive: requires \"confirm\": true in the arguments."
}

func (t *DeleteFile) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path relative to the workspace root",
			},
			"confirm": map[string]interface{}{
				"type":        "boolean",
				"description": "Must be true; confirms the user approved the deletion",
			},
		},
		"required": []string{"path"},
	}
}

func (t *DeleteFile) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"fs"}, Risk: tool.RiskHigh}
}

func (t *DeleteFile) Execute(_ context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}

	resolved, err := t.sandbox.Resolve(args.Path)
	if err != nil {
		return "", err
	}

	info, err := os.Lstat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a file", args.Path)
	}

	if err := os.Remove(resolved); err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted %s", args.Path), nil
}
