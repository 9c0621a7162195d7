package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docquery/internal/chunker"
	"github.com/dgallion1/docquery/internal/config"
	"github.com/dgallion1/docquery/internal/document"
	"github.com/dgallion1/docquery/internal/embedder"
	"github.com/dgallion1/docquery/internal/llm"
	"github.com/dgallion1/docquery/internal/vectorstore"
)

// NoInformationAnswer is returned when retrieval finds nothing above the
// score threshold for a question.
const NoInformationAnswer = "I couldn't find relevant information in the document to answer this question."

// Pipeline sequences ingestion and per-question retrieval-augmented answering.
// All stages run synchronously within the calling request.
type Pipeline struct {
	fetcher  *document.Fetcher
	chunker  *chunker.Chunker
	embedder *embedder.Client
	store    *vectorstore.Client
	llm      *llm.Client
	log      *slog.Logger

	retrievalLimit int
	scoreThreshold float64
	contextChunks  int
}

func New(cfg config.Config, fetcher *document.Fetcher, ch *chunker.Chunker, emb *embedder.Client, store *vectorstore.Client, llmClient *llm.Client, log *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:        fetcher,
		chunker:        ch,
		embedder:       emb,
		store:          store,
		llm:            llmClient,
		log:            log,
		retrievalLimit: cfg.RetrievalLimit,
		scoreThreshold: cfg.ScoreThreshold,
		contextChunks:  cfg.ContextChunkLimit,
	}
}

// Ingest downloads, extracts, chunks, embeds, and stores a document. Existing
// points for the same source URL are deleted first, so re-ingesting a URL
// replaces its chunks instead of duplicating them. A document with no
// extractable text succeeds with zero chunks stored.
func (p *Pipeline) Ingest(ctx context.Context, documentURL string) (int, error) {
	p.log.Info("processing document", "url", documentURL)

	data, err := p.fetcher.Download(ctx, documentURL)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}

	format := document.Detect(documentURL, data)
	extractor, err := document.ForFormat(format)
	if err != nil {
		return 0, err
	}
	text, err := extractor.Extract(data)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", format, err)
	}

	chunks := p.chunker.Chunk(text, documentURL, string(format))
	p.log.Info("chunked document", "url", documentURL, "format", format, "chunks", len(chunks))

	if err := p.store.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}
	if err := p.store.DeleteBySource(ctx, documentURL); err != nil {
		return 0, fmt.Errorf("replace existing chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := p.store.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	return len(chunks), nil
}

// Answer resolves one question against the stored document chunks.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	results, err := p.store.Query(ctx, vector, p.retrievalLimit, p.scoreThreshold)
	if err != nil {
		return "", fmt.Errorf("retrieve chunks: %w", err)
	}
	if len(results) == 0 {
		return NoInformationAnswer, nil
	}

	contextBlock := llm.PrepareContext(results, p.contextChunks)
	prompt := llm.BuildPrompt(question, contextBlock)

	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// Run ingests the document and answers every question in order. The returned
// slice always has exactly one entry per question: an ingestion failure fills
// every slot with an error message, and a failure on one question only affects
// that question's slot.
func (p *Pipeline) Run(ctx context.Context, documentURL string, questions []string) []string {
	answers := make([]string, len(questions))

	if _, err := p.Ingest(ctx, documentURL); err != nil {
		p.log.Error("ingestion failed", "url", documentURL, "error", err)
		for i := range answers {
			answers[i] = fmt.Sprintf("Error processing document: %s", err)
		}
		return answers
	}

	for i, question := range questions {
		answer, err := p.Answer(ctx, question)
		if err != nil {
			p.log.Error("question failed", "question", question, "error", err)
			answers[i] = fmt.Sprintf("Unable to answer this question due to an error: %s", err)
			continue
		}
		answers[i] = answer
	}
	return answers
}

// Status reports the models in use and vector index health.
type Status struct {
	Status         string            `json:"status"`
	EmbeddingModel string            `json:"embedding_model"`
	LLMModel       string            `json:"llm_model"`
	VectorIndex    vectorstore.Info  `json:"vector_index"`
	LLMStats       llm.StatsSnapshot `json:"llm_stats"`
}

func (p *Pipeline) Status(ctx context.Context) Status {
	return Status{
		Status:         "operational",
		EmbeddingModel: p.embedder.Model(),
		LLMModel:       p.llm.Model(),
		VectorIndex:    p.store.Describe(ctx),
		LLMStats:       p.llm.Stats.Snapshot(),
	}
}

// ClearIndex drops every stored chunk.
func (p *Pipeline) ClearIndex(ctx context.Context) error {
	return p.store.Clear(ctx)
}
