package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaycli/jay/internal/pathutil"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Log     LogConfig     `koanf:"log"`
	Model   ModelConfig   `koanf:"model"`
	Sandbox SandboxConfig `koanf:"sandbox"`
	Agent   AgentConfig   `koanf:"agent"`
	Store   StoreConfig   `koanf:"store"`
	Index   IndexConfig   `koanf:"index"`
	Tools   ToolsConfig   `koanf:"tools"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ModelConfig struct {
	BaseURL        string `koanf:"base_url"`
	APIKey         string `koanf:"api_key"`
	Name           string `koanf:"name"`
	Embedding      string `koanf:"embedding"`
	RequestTimeout string `koanf:"request_timeout"`
}

type SandboxConfig struct {
	Workspace      string `koanf:"workspace"`
	MaxTimeout     string `koanf:"max_timeout"`
	MaxOutputBytes int64  `koanf:"max_output_bytes"`
}

type AgentConfig struct {
	TurnBudget   int    `koanf:"turn_budget"`
	SystemPrompt string `koanf:"system_prompt"`
	WorkspaceID  string `koanf:"workspace_id"`
	DataDir      string `koanf:"data_dir"`
}

type StoreConfig struct {
	LockTimeout              string `koanf:"lock_timeout"`
	LockRetry                string `koanf:"lock_retry"`
	LockMaxRetry             int    `koanf:"lock_max_retry"`
	InboxSize                int    `koanf:"inbox_size"`
	TranscriptRotateMaxBytes int64  `koanf:"transcript_rotate_max_bytes"`
}

type IndexConfig struct {
	Collection string `koanf:"collection"`
	ChunkLines int    `koanf:"chunk_lines"`
	Overlap    int    `koanf:"overlap"`
	TopK       int    `koanf:"top_k"`
}

type ToolsConfig struct {
	Shell     ShellToolConfig     `koanf:"shell"`
	WebSearch WebSearchToolConfig `koanf:"web_search"`
}

type ShellToolConfig struct {
	Timeout string `koanf:"timeout"`
}

type WebSearchToolConfig struct {
	BaseURL    string `koanf:"base_url"`
	Timeout    string `koanf:"timeout"`
	MaxResults int    `koanf:"max_results"`
}

const (
	DefaultLogLevel                     = "info"
	DefaultModelBaseURL                 = "http://localhost:11434/v1"
	DefaultModelAPIKey                  = "ollama" // placeholder required by OpenAI-compatible endpoints
	DefaultModelName                    = "gpt-oss:20b"
	DefaultModelEmbedding               = "nomic-embed-text"
	DefaultModelRequestTimeout          = "120s"
	DefaultSandboxMaxTimeout            = "60s"
	DefaultSandboxMaxOutputBytes        = 64 * 1024
	DefaultAgentTurnBudget              = 8
	DefaultAgentWorkspaceID             = "default"
	DefaultAgentSystemPrompt            = "You are jay, a terminal agent. You help with files, shell commands, git and code search inside the user's workspace. Use tools when needed. Destructive operations require a confirm flag; ask the user before setting it."
	DefaultStoreLockTimeout             = "30s"
	DefaultStoreLockRetry               = "100ms"
	DefaultStoreLockMaxRetry            = 300
	DefaultStoreInboxSize               = 100
	DefaultStoreTranscriptRotateMaxByte = 10 * 1024 * 1024
	DefaultIndexCollection              = "workspace"
	DefaultIndexChunkLines              = 60
	DefaultIndexOverlap                 = 10
	DefaultIndexTopK                    = 5
	DefaultShellToolTimeout             = "15s"
	DefaultWebSearchBaseURL             = "https://serpapi.com/search.json"
	DefaultWebSearchTimeout             = "20s"
	DefaultWebSearchMaxResults          = 5
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"log.level":                         DefaultLogLevel,
		"model.base_url":                    DefaultModelBaseURL,
		"model.api_key":                     DefaultModelAPIKey,
		"model.name":                        DefaultModelName,
		"model.embedding":                   DefaultModelEmbedding,
		"model.request_timeout":             DefaultModelRequestTimeout,
		"sandbox.workspace":                 "",
		"sandbox.max_timeout":               DefaultSandboxMaxTimeout,
		"sandbox.max_output_bytes":          DefaultSandboxMaxOutputBytes,
		"agent.turn_budget":                 DefaultAgentTurnBudget,
		"agent.workspace_id":                DefaultAgentWorkspaceID,
		"agent.system_prompt":               DefaultAgentSystemPrompt,
		"agent.data_dir":                    "",
		"store.lock_timeout":                DefaultStoreLockTimeout,
		"store.lock_retry":                  DefaultStoreLockRetry,
		"store.lock_max_retry":              DefaultStoreLockMaxRetry,
		"store.inbox_size":                  DefaultStoreInboxSize,
		"store.transcript_rotate_max_bytes": int64(DefaultStoreTranscriptRotateMaxByte),
		"index.collection":                  DefaultIndexCollection,
		"index.chunk_lines":                 DefaultIndexChunkLines,
		"index.overlap":                     DefaultIndexOverlap,
		"index.top_k":                       DefaultIndexTopK,
		"tools.shell.timeout":               DefaultShellToolTimeout,
		"tools.web_search.base_url":         DefaultWebSearchBaseURL,
		"tools.web_search.timeout":          DefaultWebSearchTimeout,
		"tools.web_search.max_results":      DefaultWebSearchMaxResults,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".jay", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("JAY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "JAY_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	// The workspace defaults to the process working directory, same as the
	// shell the user launched jay from.
	if cfg.Sandbox.Workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.Sandbox.Workspace = cwd
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Model.APIKey == DefaultModelAPIKey {
		cfg.Model.APIKey = key
	}

	return &cfg, nil
}

func normalizePathFields(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	workspace, err := pathutil.Expand(cfg.Sandbox.Workspace)
	if err != nil {
		return err
	}
	if workspace != "" {
		cfg.Sandbox.Workspace = workspace
	}

	dataDir, err := pathutil.Expand(cfg.Agent.DataDir)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Agent.DataDir = dataDir
	}

	return nil
}
