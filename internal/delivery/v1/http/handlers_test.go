package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type mockProcessor struct{ mock.Mock }

func (m *mockProcessor) ProcessImage(ctx context.Context, image []byte) (*domain.SearchResult, error) {
	args := m.Called(ctx, image)
	res, _ := args.Get(0).(*domain.SearchResult)
	return res, args.Error(1)
}

type mockResults struct{ mock.Mock }

func (m *mockResults) GetSearchResult(ctx context.Context, queryID string) (*domain.SearchResult, error) {
	args := m.Called(ctx, queryID)
	res, _ := args.Get(0).(*domain.SearchResult)
	return res, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) RegisterProduct(ctx context.Context, req *usecase.RegisterProductReq) (*usecase.RegisterProductRes, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*usecase.RegisterProductRes)
	return res, args.Error(1)
}

type testServer struct {
	handler   http.Handler
	processor *mockProcessor
	results   *mockResults
	catalog   *mockCatalog
}

func newTestServer(t *testing.T, maxUploadSize int64, maxRequests int, checks map[string]HealthChecker) *testServer {
	t.Helper()

	ts := &testServer{
		processor: &mockProcessor{},
		results:   &mockResults{},
		catalog:   &mockCatalog{},
	}

	r := chi.NewRouter()
	NewRouter(r, logger.NewNopLogger()).Init(Deps{
		ImageProcessor:       ts.processor,
		SearchResults:        ts.results,
		Catalog:              ts.catalog,
		HealthChecks:         checks,
		Gatherer:             prometheus.NewRegistry(),
		MaxUploadSize:        maxUploadSize,
		MaxRequestsPerMinute: maxRequests,
	})
	ts.handler = r

	t.Cleanup(func() {
		ts.processor.AssertExpectations(t)
		ts.results.AssertExpectations(t)
		ts.catalog.AssertExpectations(t)
	})

	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField string, file []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.10:40000"
	return req
}

func sampleResult() *domain.SearchResult {
	product := &domain.Product{ID: "p-1", Brand: "Acme", Name: "Jacket", Price: 1999, Currency: "USD"}
	return domain.NewSearchResult("q-1", []domain.DetectionResponse{
		{
			Product:         product,
			SimilarityScore: 0.9,
			BoundingBox:     domain.BoundingBox{X1: 1, Y1: 2, X2: 3, Y2: 4},
			Confidence:      0.8,
		},
		{BoundingBox: domain.BoundingBox{X1: 5, Y1: 6, X2: 7, Y2: 8}, Confidence: 0.7},
	}, 0.25, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestIdentify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		ts.processor.On("ProcessImage", mock.Anything, pngHeader).Return(sampleResult(), nil).Once()

		rec := ts.do(multipartRequest(t, "/api/v1/identify", nil, "file", pngHeader))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "q-1", body["query_id"])
		assert.Equal(t, 0.25, body["processing_time"])

		results := body["results"].([]any)
		require.Len(t, results, 2)
		first := results[0].(map[string]any)
		assert.Equal(t, []any{1.0, 2.0, 3.0, 4.0}, first["bounding_box"])
		assert.Equal(t, 0.9, first["similarity_score"])
		assert.Equal(t, "p-1", first["product"].(map[string]any)["id"])
		assert.Nil(t, results[1].(map[string]any)["product"])
	})

	t.Run("NotAnImage", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)

		rec := ts.do(multipartRequest(t, "/api/v1/identify", nil, "file", []byte("just some text")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, e.ErrNotAnImage.Error(), decodeError(t, rec).Message)
	})

	t.Run("MissingFile", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)

		rec := ts.do(multipartRequest(t, "/api/v1/identify", map[string]string{"x": "y"}, "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotMultipart", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/identify", bytes.NewReader(pngHeader))
		req.Header.Set("Content-Type", "image/png")
		rec := ts.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, e.ErrExpectedMultipart.Error(), decodeError(t, rec).Message)
	})

	t.Run("TooLarge", func(t *testing.T) {
		ts := newTestServer(t, 16, 10, nil)

		rec := ts.do(multipartRequest(t, "/api/v1/identify", nil, "file", append(pngHeader, make([]byte, 64)...)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, e.ErrFileTooLarge.Error(), decodeError(t, rec).Message)
	})

	t.Run("ProcessingFailed", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		ts.processor.On("ProcessImage", mock.Anything, pngHeader).Return(nil, errors.New("ml-service down")).Once()

		rec := ts.do(multipartRequest(t, "/api/v1/identify", nil, "file", pngHeader))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, e.ErrProcessingFailed.Error(), decodeError(t, rec).Message)
	})

	t.Run("RateLimited", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 1, nil)
		ts.processor.On("ProcessImage", mock.Anything, pngHeader).Return(sampleResult(), nil).Once()

		rec := ts.do(multipartRequest(t, "/api/v1/identify", nil, "file", pngHeader))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = ts.do(multipartRequest(t, "/api/v1/identify", nil, "file", pngHeader))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, e.ErrTooManyRequests.Error(), decodeError(t, rec).Message)
	})
}

func TestGetSearchResult(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		ts.results.On("GetSearchResult", mock.Anything, "q-1").Return(sampleResult(), nil).Once()

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/search/q-1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body SearchResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "q-1", body.QueryID)
		assert.Len(t, body.Results, 2)
	})

	t.Run("NotFound", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		ts.results.On("GetSearchResult", mock.Anything, "missing").
			Return(nil, e.Wrap("SearchResultUC.GetSearchResult", e.ErrSearchResultNotFound)).Once()

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/search/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("InternalError", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		ts.results.On("GetSearchResult", mock.Anything, "q-2").Return(nil, errors.New("db down")).Once()

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/search/q-2", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, e.ErrInternalServerError.Error(), decodeError(t, rec).Message)
	})
}

func TestRegisterProduct(t *testing.T) {
	fields := func(price string) map[string]string {
		return map[string]string{
			"brand":      "Acme",
			"name":       "Jacket",
			"category":   "Outerwear",
			"price":      price,
			"currency":   "usd",
			"source_url": "https://shop.example/jacket",
		}
	}

	t.Run("Created", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		ts.catalog.On("RegisterProduct", mock.Anything, mock.MatchedBy(func(req *usecase.RegisterProductReq) bool {
			return req.Name == "Jacket" &&
				req.CategoryName == "Outerwear" &&
				req.Price == 59999 &&
				req.Currency == "usd" &&
				req.Image.MimeType == "image/png" &&
				req.Image.Name == "photo.png"
		})).Return(usecase.NewRegisterProductRes("p-1", "s3://embeddings/embeddings/p-1.bin"), nil).Once()

		rec := ts.do(multipartRequest(t, "/api/v1/products", fields("599.99"), "image", pngHeader))
		require.Equal(t, http.StatusCreated, rec.Code)

		var body RegisterProductResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "p-1", body.ProductID)
		assert.Equal(t, "s3://embeddings/embeddings/p-1.bin", body.Locator)
	})

	t.Run("BadPrice", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)

		rec := ts.do(multipartRequest(t, "/api/v1/products", fields("12.345"), "image", pngHeader))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, e.ErrPricePrecision.Error(), decodeError(t, rec).Message)
	})

	t.Run("MissingName", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)
		f := fields("10")
		delete(f, "name")

		rec := ts.do(multipartRequest(t, "/api/v1/products", f, "image", pngHeader))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, e.ErrMissingFields.Error(), decodeError(t, rec).Message)
	})

	t.Run("MissingImage", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, nil)

		rec := ts.do(multipartRequest(t, "/api/v1/products", fields("10"), "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, e.ErrNoImages.Error(), decodeError(t, rec).Message)
	})
}

func TestHealth(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })

	t.Run("Healthy", func(t *testing.T) {
		ts := newTestServer(t, 1<<20, 10, map[string]HealthChecker{"postgres": ok, "ml-service": ok})

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, statusHealthy, body.Status)
		assert.Equal(t, statusHealthy, body.Components["postgres"].Status)
		assert.Positive(t, body.Timestamp)
	})

	t.Run("Unhealthy", func(t *testing.T) {
		failing := PingFunc(func(context.Context) error { return errors.New("connection refused") })
		ts := newTestServer(t, 1<<20, 10, map[string]HealthChecker{"postgres": ok, "embedding-store": failing})

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, statusUnhealthy, body.Status)
		assert.Equal(t, ComponentStatus{Status: statusUnhealthy, Error: "connection refused"}, body.Components["embedding-store"])
		assert.Equal(t, statusHealthy, body.Components["postgres"].Status)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, 1<<20, 10, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
