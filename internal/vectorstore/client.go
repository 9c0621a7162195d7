package vectorstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docquery/internal/chunker"
)

// Client is a REST client for a Qdrant collection. The collection uses cosine
// distance, fixed at creation time.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	log        *slog.Logger
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, collection string, dimension int, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
		dimension:  dimension,
		log:        log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Collection returns the configured collection name.
func (c *Client) Collection() string { return c.collection }

// Result pairs a retrieved chunk with its similarity score and relevance tier.
type Result struct {
	Chunk     chunker.Chunk `json:"chunk"`
	Score     float64       `json:"score"`
	Relevance string        `json:"relevance"`
}

// RelevanceLabel buckets a similarity score into a tier. Boundaries are
// inclusive on the lower bound: 0.8 is high, 0.6 is medium.
func RelevanceLabel(score float64) string {
	switch {
	case score >= 0.8:
		return "high"
	case score >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// EnsureCollection creates the collection if it does not exist. Safe to call
// repeatedly.
func (c *Client) EnsureCollection(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", c.collection), nil, nil)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("check collection %s: status %d", c.collection, status)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     c.dimension,
			"distance": "Cosine",
		},
	}
	status, err = c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", c.collection), body, nil)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("create collection %s: status %d", c.collection, status)
	}
	c.log.Info("created collection", "collection", c.collection, "dimension", c.dimension)
	return nil
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload payload   `json:"payload"`
}

type payload struct {
	Content  string           `json:"content"`
	Metadata chunker.Metadata `json:"metadata"`
}

// Upsert writes chunk points keyed by their fingerprint. Chunks without an
// embedding are skipped with a warning rather than failing the batch.
func (c *Client) Upsert(ctx context.Context, chunks []chunker.Chunk) error {
	points := make([]point, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Embedding == nil {
			c.log.Warn("chunk has no embedding, skipping", "chunk_id", ch.ID)
			continue
		}
		points = append(points, point{
			ID:     PointID(ch.ID),
			Vector: ch.Embedding,
			Payload: payload{
				Content:  ch.Content,
				Metadata: ch.Metadata,
			},
		})
	}
	if len(points) == 0 {
		return nil
	}

	body := map[string]any{"points": points}
	status, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", c.collection), body, nil)
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("upsert points: status %d", status)
	}
	c.log.Info("stored chunks", "collection", c.collection, "count", len(points))
	return nil
}

// DeleteBySource removes all points whose payload references the given source
// URL. Called before re-ingesting a document so repeated ingestion replaces
// rather than duplicates.
func (c *Client) DeleteBySource(ctx context.Context, sourceURL string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "metadata.source_url",
					"match": map[string]any{"value": sourceURL},
				},
			},
		},
	}
	status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", c.collection), body, nil)
	if err != nil {
		return fmt.Errorf("delete by source: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete by source: status %d", status)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      any     `json:"id"`
		Score   float64 `json:"score"`
		Payload payload `json:"payload"`
	} `json:"result"`
}

// Query returns up to limit results with score >= scoreThreshold, in
// descending score order. An empty result set is not an error.
func (c *Client) Query(ctx context.Context, vector []float32, limit int, scoreThreshold float64) ([]Result, error) {
	body := map[string]any{
		"vector":          vector,
		"limit":           limit,
		"score_threshold": scoreThreshold,
		"with_payload":    true,
	}
	var resp searchResponse
	status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", c.collection), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search points: status %d", status)
	}

	results := make([]Result, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, Result{
			Chunk: chunker.Chunk{
				ID:       fmt.Sprintf("%v", r.ID),
				Content:  r.Payload.Content,
				Metadata: r.Payload.Metadata,
			},
			Score:     r.Score,
			Relevance: RelevanceLabel(r.Score),
		})
	}
	return results, nil
}

// Info describes the collection for status reporting.
type Info struct {
	Name          string `json:"name"`
	PointsCount   int64  `json:"points_count"`
	SegmentsCount int64  `json:"segments_count"`
	Status        string `json:"status"`
}

// Describe reports collection statistics. Failures degrade to an empty Info so
// status endpoints stay usable while the store is down.
func (c *Client) Describe(ctx context.Context) Info {
	var resp struct {
		Result struct {
			Status        string `json:"status"`
			PointsCount   int64  `json:"points_count"`
			SegmentsCount int64  `json:"segments_count"`
		} `json:"result"`
	}
	status, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", c.collection), nil, &resp)
	if err != nil || status != http.StatusOK {
		c.log.Warn("collection describe failed", "collection", c.collection, "error", err, "status", status)
		return Info{Name: c.collection}
	}
	return Info{
		Name:          c.collection,
		PointsCount:   resp.Result.PointsCount,
		SegmentsCount: resp.Result.SegmentsCount,
		Status:        resp.Result.Status,
	}
}

// Clear removes every point from the collection.
func (c *Client) Clear(ctx context.Context) error {
	body := map[string]any{"filter": map[string]any{}}
	status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", c.collection), body, nil)
	if err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("clear collection: status %d", status)
	}
	c.log.Info("cleared collection", "collection", c.collection)
	return nil
}

// PointID converts a chunk fingerprint (an MD5 hex digest) into the UUID form
// Qdrant requires for string point IDs. Fingerprints that are not 16 bytes of
// hex fall back to a name-derived UUID, keeping the mapping deterministic.
func PointID(fingerprint string) string {
	raw, err := hex.DecodeString(fingerprint)
	if err == nil && len(raw) == 16 {
		id, err := uuid.FromBytes(raw)
		if err == nil {
			return id.String()
		}
	}
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(fingerprint)).String()
}

// do performs a JSON request and optionally decodes the response body into out.
// It returns the HTTP status code; callers decide which codes are errors.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	} else {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	}
	return resp.StatusCode, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
