package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docquery/internal/config"
	"github.com/dgallion1/docquery/internal/pipeline"
)

type stubService struct {
	runCalls   int
	lastURL    string
	lastQs     []string
	answers    []string
	statusCall int
	clearCall  int
	clearErr   error
}

func (s *stubService) Run(ctx context.Context, documentURL string, questions []string) []string {
	s.runCalls++
	s.lastURL = documentURL
	s.lastQs = questions
	if s.answers != nil {
		return s.answers
	}
	out := make([]string, len(questions))
	for i := range out {
		out[i] = "stub answer"
	}
	return out
}

func (s *stubService) Status(ctx context.Context) pipeline.Status {
	s.statusCall++
	return pipeline.Status{Status: "operational", EmbeddingModel: "emb", LLMModel: "llm"}
}

func (s *stubService) ClearIndex(ctx context.Context) error {
	s.clearCall++
	return s.clearErr
}

func newTestServer(t *testing.T) (*Server, *stubService) {
	t.Helper()
	svc := &stubService{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{APISecret: "secret-token"}
	return NewServer(svc, log, cfg), svc
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQuery_MissingTokenRejectedBeforePipeline(t *testing.T) {
	srv, svc := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/query", "", QueryRequest{
		Documents: "http://example.com/doc.pdf",
		Questions: []string{"q"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.runCalls, "pipeline must not run for unauthenticated requests")
}

func TestQuery_WrongTokenRejected(t *testing.T) {
	srv, svc := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/query", "wrong-token", QueryRequest{
		Documents: "http://example.com/doc.pdf",
		Questions: []string{"q"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.runCalls)
}

func TestQuery_ValidationBeforePipeline(t *testing.T) {
	cases := []struct {
		name string
		req  QueryRequest
	}{
		{"empty url", QueryRequest{Questions: []string{"q"}}},
		{"no questions", QueryRequest{Documents: "http://example.com/doc.pdf"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, svc := newTestServer(t)
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/query", "secret-token", tc.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, svc.runCalls)
		})
	}
}

func TestQuery_AnswersReturnedInOrder(t *testing.T) {
	srv, svc := newTestServer(t)
	svc.answers = []string{"first", "second", "third"}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/query", "secret-token", QueryRequest{
		Documents: "http://example.com/policy.pdf",
		Questions: []string{"q1", "q2", "q3"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"first", "second", "third"}, resp.Answers)
	assert.Equal(t, 1, svc.runCalls)
	assert.Equal(t, "http://example.com/policy.pdf", svc.lastURL)
	assert.Equal(t, []string{"q1", "q2", "q3"}, svc.lastQs)
}

func TestStatus_RequiresAuth(t *testing.T) {
	srv, svc := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.statusCall)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/status", "secret-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status pipeline.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "operational", status.Status)
	assert.Equal(t, "emb", status.EmbeddingModel)
}

func TestClearIndex(t *testing.T) {
	srv, svc := newTestServer(t)
	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/index", "secret-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.clearCall)
}

func TestQuery_MalformedBody(t *testing.T) {
	srv, svc := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.runCalls)
}
