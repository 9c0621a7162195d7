package llm

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docquery/internal/vectorstore"
)

// DefaultContextChunks bounds how many retrieved chunks go into the prompt.
const DefaultContextChunks = 5

// PrepareContext renders retrieval results into the prompt context block.
// Results are expected in descending score order; at most maxChunks are used.
// Overlapping chunk text is not deduplicated.
func PrepareContext(results []vectorstore.Result, maxChunks int) string {
	if maxChunks <= 0 {
		maxChunks = DefaultContextChunks
	}
	if len(results) > maxChunks {
		results = results[:maxChunks]
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("\nContext %d (Relevance: %.3f):\n%s\n---\n", i+1, r.Score, r.Chunk.Content))
	}
	return strings.Join(parts, "\n")
}

// BuildPrompt embeds the assembled context and the question into a grounding
// prompt that instructs the model to answer only from the context.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf(`You are an expert document analyst specializing in insurance, legal, HR, and compliance domains. Your task is to answer questions based ONLY on the provided context from official documents.

INSTRUCTIONS:
1. Answer the question using ONLY the information provided in the context
2. Be precise and specific with details like numbers, dates, percentages, and conditions
3. If the context doesn't contain enough information to answer the question, say so clearly
4. Provide explanations and rationale when applicable
5. Structure your answer clearly and professionally
6. Include relevant conditions, limitations, or exceptions mentioned in the document

CONTEXT FROM DOCUMENT:
%s

QUESTION: %s

ANSWER: Based on the provided document context, `, context, question)
}
