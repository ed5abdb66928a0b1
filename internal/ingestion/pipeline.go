// Package ingestion splits raw documents into bounded, overlapping chunks
// for ranking. Chunks are recomputed on every document query; nothing is
// persisted.
package ingestion

import (
	"unicode"
)

const (
	// DefaultChunkSize is the maximum number of characters per chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of characters shared by consecutive
	// chunks.
	DefaultChunkOverlap = 200
)

// Document is a raw text document identified by its source file name.
type Document struct {
	// SourceID is the base name of the file the text came from.
	SourceID string
	// Text is the full document text.
	Text string
}

// Chunk is a window of a Document.
type Chunk struct {
	// SourceID is the document the chunk was cut from.
	SourceID string
	// Text is the chunk content with surrounding whitespace removed.
	Text string
	// Offset is the character (rune) offset of Text within the document.
	Offset int
}

// Config holds the splitter configuration.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk.
	// Defaults to DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters to overlap between
	// consecutive chunks. Defaults to DefaultChunkOverlap if zero. Values
	// of at least half of ChunkSize are reduced below that.
	ChunkOverlap int
}

// Splitter cuts documents into chunks.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter returns a Splitter for cfg. A nil cfg uses the defaults.
func NewSplitter(cfg *Config) *Splitter {
	size, overlap := DefaultChunkSize, DefaultChunkOverlap
	if cfg != nil {
		if cfg.ChunkSize > 0 {
			size = cfg.ChunkSize
		}
		if cfg.ChunkOverlap > 0 {
			overlap = cfg.ChunkOverlap
		}
	}
	if overlap >= size/2 {
		overlap = size/2 - 1
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap}
}

// SplitAll splits every document in order.
func (s *Splitter) SplitAll(docs []Document) []Chunk {
	var out []Chunk
	for _, d := range docs {
		out = append(out, s.Split(d)...)
	}
	return out
}

// Split cuts doc into windows of at most ChunkSize characters. Each window
// ends at the last paragraph break, line break or space in its second half
// when one exists, otherwise at the hard limit. The next window starts
// ChunkOverlap characters before the previous end, moved forward to the next
// word start.
func (s *Splitter) Split(doc Document) []Chunk {
	runes := []rune(doc.Text)
	n := len(runes)

	var chunks []Chunk
	start := skipSpace(runes, 0)
	for start < n {
		end := min(start+s.size, n)
		if end < n {
			end = s.breakPoint(runes, start, end)
		}

		e := end
		for e > start && unicode.IsSpace(runes[e-1]) {
			e--
		}
		if e > start {
			chunks = append(chunks, Chunk{
				SourceID: doc.SourceID,
				Text:     string(runes[start:e]),
				Offset:   start,
			})
		}
		if end >= n {
			break
		}

		next := end - s.overlap
		if next <= start {
			next = end
		}
		if next > 0 && !unicode.IsSpace(runes[next-1]) {
			for i := next; i < end; i++ {
				if unicode.IsSpace(runes[i]) {
					next = i
					break
				}
			}
		}
		start = skipSpace(runes, next)
	}

	return chunks
}

// breakPoint returns the preferred end of the window [start, end), searching
// only the second half so chunks stay reasonably full.
func (s *Splitter) breakPoint(runes []rune, start, end int) int {
	lo := start + max(s.size/2, 1)
	for i := end - 2; i >= lo; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i
		}
	}
	for i := end - 1; i >= lo; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	for i := end - 1; i >= lo; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}
