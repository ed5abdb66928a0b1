package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertChunkInvariants checks size bounds, offset ordering and that each
// chunk is a verbatim slice of the source text.
func assertChunkInvariants(t *testing.T, doc Document, chunks []Chunk, size int) {
	t.Helper()
	runes := []rune(doc.Text)
	prev := -1
	for i, c := range chunks {
		n := utf8.RuneCountInString(c.Text)
		assert.LessOrEqual(t, n, size, "chunk %d too long", i)
		assert.Greater(t, c.Offset, prev, "chunk %d offset not increasing", i)
		require.LessOrEqual(t, c.Offset+n, len(runes))
		assert.Equal(t, string(runes[c.Offset:c.Offset+n]), c.Text, "chunk %d is not a slice of the source", i)
		assert.Equal(t, doc.SourceID, c.SourceID)
		assert.Equal(t, strings.TrimSpace(c.Text), c.Text)
		prev = c.Offset
	}
}

func TestSplit_ShortDocumentIsOneChunk(t *testing.T) {
	t.Parallel()

	doc := Document{SourceID: "guide_ai.txt", Text: "  Agents use tools.\n"}
	chunks := NewSplitter(nil).Split(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Agents use tools.", chunks[0].Text)
	assert.Equal(t, 2, chunks[0].Offset)
}

func TestSplit_EmptyAndWhitespace(t *testing.T) {
	t.Parallel()

	s := NewSplitter(nil)
	assert.Empty(t, s.Split(Document{SourceID: "a"}))
	assert.Empty(t, s.Split(Document{SourceID: "a", Text: " \n\t "}))
}

func TestSplit_LongProseOverlaps(t *testing.T) {
	t.Parallel()

	words := make([]string, 0, 600)
	for i := range 600 {
		words = append(words, []string{"agents", "retrieve", "context", "données", "valley"}[i%5])
	}
	doc := Document{SourceID: "long.txt", Text: strings.Join(words, " ")}

	s := NewSplitter(&Config{ChunkSize: 300, ChunkOverlap: 60})
	chunks := s.Split(doc)
	require.Greater(t, len(chunks), 1)
	assertChunkInvariants(t, doc, chunks, 300)

	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].Offset + utf8.RuneCountInString(chunks[i-1].Text)
		assert.Less(t, chunks[i].Offset, prevEnd, "chunk %d should overlap its predecessor", i)
		assert.NotEqual(t, ' ', []rune(doc.Text)[chunks[i].Offset])
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, utf8.RuneCountInString(doc.Text), last.Offset+utf8.RuneCountInString(last.Text))
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	t.Parallel()

	para := strings.Repeat("x", 70)
	doc := Document{SourceID: "p.txt", Text: para + "\n\n" + para + "\n\n" + para}

	chunks := NewSplitter(&Config{ChunkSize: 100, ChunkOverlap: 10}).Split(doc)
	assertChunkInvariants(t, doc, chunks, 100)
	require.NotEmpty(t, chunks)
	assert.Equal(t, para, chunks[0].Text)
}

func TestSplit_UnbrokenTextHardCuts(t *testing.T) {
	t.Parallel()

	doc := Document{SourceID: "blob", Text: strings.Repeat("z", 2500)}
	chunks := NewSplitter(nil).Split(doc)
	assertChunkInvariants(t, doc, chunks, DefaultChunkSize)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{0, 800, 1600}, []int{chunks[0].Offset, chunks[1].Offset, chunks[2].Offset})
}

func TestNewSplitter_ClampsOverlap(t *testing.T) {
	t.Parallel()

	s := NewSplitter(&Config{ChunkSize: 10, ChunkOverlap: 50})
	assert.Less(t, s.overlap, 5)

	doc := Document{SourceID: "x", Text: strings.Repeat("ab ", 40)}
	assertChunkInvariants(t, doc, s.Split(doc), 10)
}

func TestSplitAll_KeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	chunks := NewSplitter(nil).SplitAll([]Document{
		{SourceID: "a.txt", Text: "first"},
		{SourceID: "b.txt", Text: "second"},
	})
	require.Len(t, chunks, 2)
	assert.Equal(t, "a.txt", chunks[0].SourceID)
	assert.Equal(t, "b.txt", chunks[1].SourceID)
}
