package rag

import "strings"

// Chunk is one indexable slice of a source file. Lines are 1-based and
// inclusive on both ends.
type Chunk struct {
	Text      string
	StartLine int
	EndLine   int
}

// ChunkLines splits text into overlapping windows of whole lines. Adjacent
// chunks share `overlap` lines so a match near a boundary still carries its
// surrounding context.
func ChunkLines(text string, maxLines, overlap int) []Chunk {
	if maxLines <= 0 {
		maxLines = 60
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxLines {
		overlap = maxLines - 1
	}

	trimmed := strings.TrimRight(text, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")

	step := maxLines - overlap
	var chunks []Chunk
	for start := 0; start < len(lines); start += step {
		end := start + maxLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			Text:      strings.Join(lines[start:end], "\n"),
			StartLine: start + 1,
			EndLine:   end,
		})
		if end == len(lines) {
			break
		}
	}
	return chunks
}
