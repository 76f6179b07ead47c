package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/sandbox"

	"github.com/philippgille/chromem-go"
)

const defaultCollection = "workspace"

// Embedder computes the vector for one text. Satisfied by model.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the persisted vector store behind the search_index tool. It
// owns no orchestration state; Build and Query are plain request/response
// operations with the caller's context governing timeouts.
type Index struct {
	db         *chromem.DB
	embedder   Embedder
	sandbox    *sandbox.Sandbox
	collection string
	chunkLines int
	overlap    int
}

type Options struct {
	Dir        string
	Embedder   Embedder
	Sandbox    *sandbox.Sandbox
	Collection string
	ChunkLines int
	Overlap    int
}

type Hit struct {
	ChunkID string  `json:"chunk_id"`
	Score   float32 `json:"score"`
	Snippet string  `json:"snippet"`
	Path    string  `json:"path"`
}

func New(opts Options) (*Index, error) {
	if opts.Embedder == nil {
		return nil, jayErrors.InvalidInput("embedder is required")
	}
	if opts.Sandbox == nil {
		return nil, jayErrors.InvalidInput("sandbox is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := chromem.NewPersistentDB(opts.Dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	collection := strings.TrimSpace(opts.Collection)
	if collection == "" {
		collection = defaultCollection
	}

	return &Index{
		db:         db,
		embedder:   opts.Embedder,
		sandbox:    opts.Sandbox,
		collection: collection,
		chunkLines: opts.ChunkLines,
		overlap:    opts.Overlap,
	}, nil
}

// Build chunks and embeds the given workspace-relative paths and upserts
// the documents. Chunk IDs are derived from path and start line, so
// re-indexing a changed file overwrites its previous chunks in place.
// Returns the number of chunks written.
func (ix *Index) Build(ctx context.Context, paths []string) (int, error) {
	// Embeddings are provided manually, so no embedding func on the
	// collection.
	col, err := ix.db.GetOrCreateCollection(ix.collection, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("open collection: %w", err)
	}

	indexed := 0
	for _, path := range paths {
		resolved, err := ix.sandbox.Resolve(path)
		if err != nil {
			return indexed, err
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			return indexed, fmt.Errorf("read %s: %w", path, err)
		}

		rel := ix.relPath(resolved)
		chunks := ChunkLines(string(data), ix.chunkLines, ix.overlap)
		docs := make([]chromem.Document, 0, len(chunks))
		for _, chunk := range chunks {
			vector, err := ix.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return indexed, fmt.Errorf("embed chunk %s:%d: %w", rel, chunk.StartLine, err)
			}
			docs = append(docs, chromem.Document{
				ID: fmt.Sprintf("%s:%d", rel, chunk.StartLine),
				Metadata: map[string]string{
					"path":       rel,
					"start_line": strconv.Itoa(chunk.StartLine),
					"end_line":   strconv.Itoa(chunk.EndLine),
				},
				Embedding: vector,
				Content:   chunk.Text,
			})
		}

		if len(docs) == 0 {
			continue
		}
		// AddDocuments is an upsert in chromem.
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return indexed, fmt.Errorf("upsert %s: %w", rel, err)
		}
		indexed += len(docs)

		slog.Debug("indexed file", "path", rel, "chunks", len(docs))
	}

	return indexed, nil
}

// Query embeds the text and returns up to k hits ordered by descending
// cosine similarity. An index that was never built yields an empty slice.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, jayErrors.InvalidInput("query text is empty")
	}
	if k <= 0 {
		k = 5
	}

	col := ix.db.GetCollection(ix.collection, nil)
	if col == nil {
		return []Hit{}, nil
	}
	if count := col.Count(); k > count {
		if count == 0 {
			return []Hit{}, nil
		}
		k = count
	}

	vector, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	hits := make([]Hit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, Hit{
			ChunkID: doc.ID,
			Score:   doc.Similarity,
			Snippet: doc.Content,
			Path:    doc.Metadata["path"],
		})
	}
	return hits, nil
}

func (ix *Index) relPath(resolved string) string {
	rel, err := filepath.Rel(ix.sandbox.Root(), resolved)
	if err != nil {
		return resolved
	}
	return rel
}
