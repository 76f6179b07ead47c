package main

import (
	"fmt"

	"github.com/jaycli/jay/internal/config"
	"github.com/jaycli/jay/internal/model"
	"github.com/jaycli/jay/internal/rag"
	"github.com/jaycli/jay/internal/sandbox"
	"github.com/jaycli/jay/internal/store"
	"github.com/jaycli/jay/internal/tool"
	"github.com/jaycli/jay/internal/tool/builtin"
)

// components holds the assembled runtime for one command invocation.
type components struct {
	Sandbox  *sandbox.Sandbox
	Client   *model.OpenAIClient
	Index    *rag.Index
	Registry *tool.Registry
	Executor *tool.Executor
	Store    *store.Worker
}

func (c *components) Close() {
	if c.Store != nil {
		c.Store.Stop()
	}
}

// buildComponents wires sandbox, model client, vector index and the tool
// registry from the loaded config. withStore additionally acquires the
// workspace lock and starts the store worker; commands that never touch
// transcripts skip it so two jay invocations can coexist.
func buildComponents(withStore bool) (*components, error) {
	maxTimeout, err := config.DurationOrDefault(cfg.Sandbox.MaxTimeout, config.DefaultSandboxMaxTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse sandbox.max_timeout: %w", err)
	}

	sb, err := sandbox.New(sandbox.Options{
		Workspace:      cfg.Sandbox.Workspace,
		MaxTimeout:     maxTimeout,
		MaxOutputBytes: cfg.Sandbox.MaxOutputBytes,
	})
	if err != nil {
		return nil, err
	}

	requestTimeout, err := config.DurationOrDefault(cfg.Model.RequestTimeout, config.DefaultModelRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse model.request_timeout: %w", err)
	}

	client := model.NewOpenAIClient(model.ClientOptions{
		BaseURL:        cfg.Model.BaseURL,
		APIKey:         cfg.Model.APIKey,
		Model:          cfg.Model.Name,
		EmbeddingModel: cfg.Model.Embedding,
		RequestTimeout: requestTimeout,
	})

	vectorsDir, err := store.GetVectorsDir(cfg.Agent.WorkspaceID, cfg.Agent.DataDir)
	if err != nil {
		return nil, err
	}

	index, err := rag.New(rag.Options{
		Dir:        vectorsDir,
		Embedder:   client,
		Sandbox:    sb,
		Collection: cfg.Index.Collection,
		ChunkLines: cfg.Index.ChunkLines,
		Overlap:    cfg.Index.Overlap,
	})
	if err != nil {
		return nil, err
	}

	shellTimeout, err := config.DurationOrDefault(cfg.Tools.Shell.Timeout, config.DefaultShellToolTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse tools.shell.timeout: %w", err)
	}
	webTimeout, err := config.DurationOrDefault(cfg.Tools.WebSearch.Timeout, config.DefaultWebSearchTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse tools.web_search.timeout: %w", err)
	}

	registry := tool.NewRegistry()
	builtin.Register(registry, builtin.Deps{
		Sandbox:      sb,
		Index:        index,
		ShellTimeout: shellTimeout,
		SearchTopK:   cfg.Index.TopK,
		WebSearch: builtin.WebSearchOptions{
			BaseURL:    cfg.Tools.WebSearch.BaseURL,
			Timeout:    webTimeout,
			MaxResults: cfg.Tools.WebSearch.MaxResults,
		},
	})

	c := &components{
		Sandbox:  sb,
		Client:   client,
		Index:    index,
		Registry: registry,
		Executor: tool.NewExecutor(registry),
	}

	if withStore {
		lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse store.lock_timeout: %w", err)
		}
		lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
		if err != nil {
			return nil, fmt.Errorf("parse store.lock_retry: %w", err)
		}

		worker, err := store.NewWorker(cfg.Agent.WorkspaceID, cfg.Agent.DataDir, store.RuntimeConfig{
			LockTimeout:              lockTimeout,
			LockRetry:                lockRetry,
			LockMaxRetry:             cfg.Store.LockMaxRetry,
			InboxSize:                cfg.Store.InboxSize,
			TranscriptRotateMaxBytes: cfg.Store.TranscriptRotateMaxBytes,
		})
		if err != nil {
			return nil, err
		}
		worker.Start()
		c.Store = worker
	}

	return c, nil
}

func withComponents(withStore bool, fn func(*components) error) error {
	c, err := buildComponents(withStore)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
