package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jaycli/jay/internal/sandbox"
	"github.com/jaycli/jay/internal/tool"
)

const gitTimeout = 10 * time.Second

func runGit(ctx context.Context, sb *sandbox.Sandbox, args ...string) (string, error) {
	argv := append([]string{"git"}, args...)
	result, err := sb.RunProcess(ctx, argv, "", nil, gitTimeout)
	if err != nil {
		return "", err
	}
	if result.TimedOut {
		return "", fmt.Errorf("git timed out after %s", gitTimeout)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("git exited with code %d\n%s", result.ExitCode, formatProcessOutput(result.Stdout, result.Stderr))
	}

	out := formatProcessOutput(result.Stdout, result.Stderr)
	if out == "" {
		return "(no output)", nil
	}
	return out, nil
}

type GitStatus struct {
	sandbox *sandbox.Sandbox
}

func NewGitStatus(sb *sandbox.Sandbox) *GitStatus {
	return &GitStatus{sandbox: sb}
}

func (t *GitStatus) Name() string { return "git_status" }

func (t *GitStatus) Description() string {
	return "Show the git working tree status of the workspace in short format."
}

func (t *GitStatus) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}

func (t *GitStatus) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"git"}, Risk: tool.RiskLow}
}

func (t *GitStatus) Execute(ctx context.Context, _ json.RawMessage) (string, error) {
	return runGit(ctx, t.sandbox, "status", "--short", "--branch")
}

type GitLog struct {
	sandbox *sandbox.Sandbox
}

func NewGitLog(sb *sandbox.Sandbox) *GitLog {
	return &GitLog{sandbox: sb}
}

func (t *GitLog) Name() string { return "git_log" }

func (t *GitLog) Description() string {
	return "Show recent commits of the workspace repository, one line per commit."
}

func (t *GitLog) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of commits to show; defaults to 10",
			},
		},
	}
}

func (t *GitLog) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"git"}, Risk: tool.RiskLow}
}

func (t *GitLog) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}

	return runGit(ctx, t.sandbox, "log", "--oneline", "-n", strconv.Itoa(args.Limit))
}
