package chunker

import (
	"crypto/md5"
	"fmt"
	"strconv"
	"strings"
)

// Metadata describes where a chunk came from within its source document.
type Metadata struct {
	SourceURL    string `json:"source_url"`
	DocumentType string `json:"document_type"`
	ChunkIndex   int    `json:"chunk_index"`
	StartWord    int    `json:"start_word"`
	EndWord      int    `json:"end_word"`
	WordCount    int    `json:"word_count"`
}

// Chunk is a bounded slice of document text, the unit of embedding and retrieval.
// The ID is an MD5 fingerprint of (content, start offset), so chunking the same
// text twice yields identical IDs.
type Chunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Chunker splits text into overlapping fixed-size word windows.
type Chunker struct {
	size    int
	overlap int
}

// New returns a Chunker, or an error when the overlap would produce a
// non-positive window stride.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into overlapping windows of whitespace-delimited words.
// Window tokens are rejoined with single spaces, so the original whitespace is
// not preserved. Empty input yields zero chunks. The final window may be
// shorter than the configured size.
func (c *Chunker) Chunk(text, sourceURL, documentType string) []Chunk {
	words := strings.Fields(text)

	stride := c.size - c.overlap
	var chunks []Chunk
	for start := 0; start < len(words); start += stride {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		content := strings.Join(window, " ")

		chunks = append(chunks, Chunk{
			ID:      Fingerprint(content, start),
			Content: content,
			Metadata: Metadata{
				SourceURL:    sourceURL,
				DocumentType: documentType,
				ChunkIndex:   len(chunks),
				StartWord:    start,
				EndWord:      end,
				WordCount:    len(window),
			},
		})
	}

	return chunks
}

// Fingerprint derives a deterministic chunk ID from content and word offset.
func Fingerprint(content string, startWord int) string {
	sum := md5.Sum([]byte(content + strconv.Itoa(startWord)))
	return fmt.Sprintf("%x", sum)
}
