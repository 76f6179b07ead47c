// Package builtin holds the concrete tool handlers shipped with jay:
// workspace filesystem access, shell execution, git one-liners, vector
// index search and web search.
package builtin

import (
	"time"

	"github.com/jaycli/jay/internal/rag"
	"github.com/jaycli/jay/internal/sandbox"
	"github.com/jaycli/jay/internal/tool"
)

type Deps struct {
	Sandbox      *sandbox.Sandbox
	Index        *rag.Index
	ShellTimeout time.Duration
	SearchTopK   int
	WebSearch    WebSearchOptions
}

// Register wires every builtin tool into the registry. The index is
// optional; without it search_index is simply not advertised.
func Register(r *tool.Registry, deps Deps) {
	r.Register(NewReadFile(deps.Sandbox))
	r.Register(NewWriteFile(deps.Sandbox))
	r.Register(NewListDir(deps.Sandbox))
	r.Register(NewDeleteFile(deps.Sandbox))
	r.Register(NewRunShell(deps.Sandbox, deps.ShellTimeout))
	r.Register(NewGitStatus(deps.Sandbox))
	r.Register(NewGitLog(deps.Sandbox))
	r.Register(NewWebSearch(deps.WebSearch))

	if deps.Index != nil {
		r.Register(NewSearchIndex(deps.Index, deps.SearchTopK))
	}
}
