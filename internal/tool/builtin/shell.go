package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jaycli/jay/internal/sandbox"
	"github.com/jaycli/jay/internal/tool"
)

// RunShell executes one shell command line inside the workspace. The
// command is classified before it runs; escalation and package-manager
// mutations never reach a subprocess.
type RunShell struct {
	sandbox        *sandbox.Sandbox
	defaultTimeout time.Duration
}

func NewRunShell(sb *sandbox.Sandbox, defaultTimeout time.Duration) *RunShell {
	if defaultTimeout <= 0 {
		defaultTimeout = 15 * time.Second
	}
	return &RunShell{sandbox: sb, defaultTimeout: defaultTimeout}
}

func (t *RunShell) Name() string { return "run_shell" }

func (t *RunShell) Description() string {
	return "Run a shell command in the workspace. Privilege escalation and package installation are blocked."
}

func (t *RunShell) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"description": "The command line to execute",
			},
			"cwd": map[string]interface{}{
				"type":        "string",
				"description": "Working directory relative to the workspace root; defaults to the root",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "number",
				"description": "Wall-clock limit for the command; defaults to 15",
			},
		},
		"required": []string{"command"},
	}
}

func (t *RunShell) ToolMetadata() tool.ToolMetadata {
	return tool.ToolMetadata{Source: "builtin", Capabilities: []string{"exec"}, Risk: tool.RiskMedium}
}

func (t *RunShell) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Command        string  `json:"command"`
		Cwd            string  `json:"cwd"`
		TimeoutSeconds float64 `json:"timeout_seconds"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if strings.TrimSpace(args.Command) == "" {
		return "", fmt.Errorf("command is empty")
	}

	if err := t.sandbox.ClassifyCommand(args.Command); err != nil {
		return "", err
	}

	timeout := t.defaultTimeout
	if args.TimeoutSeconds > 0 {
		timeout = time.Duration(args.TimeoutSeconds * float64(time.Second))
	}

	result, err := t.sandbox.RunProcess(ctx, []string{"/bin/sh", "-c", args.Command}, args.Cwd, nil, timeout)
	if err != nil {
		return "", err
	}

	output := formatProcessOutput(result.Stdout, result.Stderr)
	if result.TimedOut {
		return "", fmt.Errorf("command timed out after %s\n%s", timeout, output)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("exit code %d\n%s", result.ExitCode, output)
	}
	if output == "" {
		return "(no output)", nil
	}
	return output, nil
}

func formatProcessOutput(stdout, stderr string) string {
	stdout = strings.TrimRight(stdout, "\n")
	stderr = strings.TrimRight(stderr, "\n")

	switch {
	case stdout != "" && stderr != "":
		return stdout + "\nstderr:\n" + stderr
	case stderr != "":
		return "stderr:\n" + stderr
	default:
		return stdout
	}
}
