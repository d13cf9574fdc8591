package service

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how documents are cut into retrievable chunks.
// Sizes are in runes. MaxChunks of zero means no limit per document.
type ChunkConfig struct {
	MaxChars  int
	MinChars  int
	Overlap   int
	MaxChunks int
}

// DefaultChunkConfig sizes chunks to a few newsletter paragraphs.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxChars: 1000, MinChars: 300, Overlap: 150}
}

// chunkText cuts text into windows of at most MaxChars runes. Each window
// ends at a paragraph break if one falls after MinChars, else at the last
// whitespace, else mid-word. Consecutive windows share about Overlap runes,
// starting on a word boundary.
func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(collapseBlankLines(text))
	if clean == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	runes := []rune(clean)
	if len(runes) <= cfg.MaxChars {
		return []string{clean}
	}

	var chunks []string
	for start := 0; start < len(runes); {
		if cfg.MaxChunks > 0 && len(chunks) == cfg.MaxChunks {
			break
		}
		end := cutPoint(runes, start, cfg)
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			chunks = append(chunks, s)
		}
		if end == len(runes) {
			break
		}
		start = overlapStart(runes, start, end, cfg.Overlap)
	}
	return chunks
}

// cutPoint returns the exclusive end of the window beginning at start.
func cutPoint(runes []rune, start int, cfg ChunkConfig) int {
	limit := start + cfg.MaxChars
	if limit >= len(runes) {
		return len(runes)
	}
	floor := start + cfg.MinChars
	if floor >= limit {
		floor = start
	}

	spaceCut := -1
	for i := limit; i > floor; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
		if spaceCut < 0 && unicode.IsSpace(runes[i-1]) {
			spaceCut = i
		}
	}
	if spaceCut > 0 {
		return spaceCut
	}
	return limit
}

// overlapStart backs up overlap runes from end, then skips forward past the
// partial word so the next window begins cleanly. It always advances.
func overlapStart(runes []rune, start, end, overlap int) int {
	if overlap <= 0 || end-start <= overlap {
		return end
	}
	next := end - overlap
	if !unicode.IsSpace(runes[next-1]) {
		for i := next; i < end; i++ {
			if unicode.IsSpace(runes[i]) {
				next = i + 1
				break
			}
		}
	}
	if next <= start {
		return end
	}
	return next
}

// collapseBlankLines normalizes line endings, strips trailing whitespace
// and squeezes runs of blank lines to one.
func collapseBlankLines(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevBlank := false
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		blank := line == ""
		if blank && prevBlank {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		prevBlank = blank
	}
	return b.String()
}
