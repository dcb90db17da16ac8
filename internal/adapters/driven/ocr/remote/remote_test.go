package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

func ocrServer(t *testing.T, pageTexts map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/health":
			w.WriteHeader(http.StatusOK)
		case "/v1/ocr":
			if r.Header.Get("Authorization") != "Bearer test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var req ocrRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			image, err := base64.StdEncoding.DecodeString(req.Image)
			require.NoError(t, err)
			json.NewEncoder(w).Encode(ocrResponse{Text: pageTexts[string(image)]})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestExtract_MultiPage(t *testing.T) {
	server := ocrServer(t, map[string]string{
		"page-1": "Monthly Account for March 2024",
		"page-2": "Grand Total: 45,00,000.00",
	})
	defer server.Close()

	engine := NewEngine(Config{BaseURL: server.URL, APIKey: "test-key", RateLimit: 100})
	result, err := engine.Extract(context.Background(), &domain.SourceDocument{
		ID:    "doc-1",
		Pages: [][]byte{[]byte("page-1"), []byte("page-2")},
	})
	require.NoError(t, err)

	assert.Equal(t, "remote", result.Engine)
	assert.Equal(t, "Monthly Account for March 2024\n\nGrand Total: 45,00,000.00", result.Text)
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, 9, result.WordCount)
	assert.InDelta(t, DefaultConfidence, result.Confidence, 1e-9)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 2, result.Pages[1].Number)
	assert.InDelta(t, DefaultConfidence, result.Pages[0].Confidence, 1e-9)
}

func TestExtract_MissingAPIKey(t *testing.T) {
	engine := NewEngine(Config{})

	_, err := engine.Extract(context.Background(), &domain.SourceDocument{
		Pages: [][]byte{[]byte("page-1")},
	})
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
}

func TestExtract_NoPages(t *testing.T) {
	engine := NewEngine(Config{APIKey: "test-key"})

	_, err := engine.Extract(context.Background(), &domain.SourceDocument{ID: "doc-1"})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream OCR worker crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	engine := NewEngine(Config{BaseURL: server.URL, APIKey: "test-key", RateLimit: 100})
	_, err := engine.Extract(context.Background(), &domain.SourceDocument{
		ID:    "doc-1",
		Pages: [][]byte{[]byte("page-1")},
	})
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExtract_RateLimitThrottlesPages(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(ocrResponse{Text: "ok"})
	}))
	defer server.Close()

	// Burst 1 at 1 req/s: the second page has to wait for a token.
	engine := NewEngine(Config{BaseURL: server.URL, APIKey: "test-key", RateLimit: 1})

	start := time.Now()
	_, err := engine.Extract(context.Background(), &domain.SourceDocument{
		ID:    "doc-1",
		Pages: [][]byte{[]byte("p1"), []byte("p2")},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestExtract_RateLimitWaitHonoursCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ocrResponse{Text: "ok"})
	}))
	defer server.Close()

	engine := NewEngine(Config{BaseURL: server.URL, APIKey: "test-key", RateLimit: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := engine.Extract(ctx, &domain.SourceDocument{
		ID:    "doc-1",
		Pages: [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")},
	})
	assert.Error(t, err)
}

func TestAvailable(t *testing.T) {
	server := ocrServer(t, nil)
	defer server.Close()

	engine := NewEngine(Config{BaseURL: server.URL, APIKey: "test-key"})
	assert.NoError(t, engine.Available(context.Background()))

	unconfigured := NewEngine(Config{BaseURL: server.URL})
	assert.ErrorIs(t, unconfigured.Available(context.Background()), domain.ErrEngineUnavailable)
}
