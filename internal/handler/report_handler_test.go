package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"AssetReport/internal/middleware"
	"AssetReport/internal/model"
	"AssetReport/internal/render"
	"AssetReport/internal/repository"
	"AssetReport/internal/service"
	"AssetReport/pkg/config"
	"AssetReport/pkg/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type stubSources struct{}

func (stubSources) FetchQuotes(ctx context.Context, codes []string) map[string]model.Quote {
	quotes := make(map[string]model.Quote, len(codes))
	for _, code := range codes {
		quotes[code] = model.Quote{Price: decimal.NewFromInt(11), PreClose: decimal.NewFromInt(10)}
	}
	return quotes
}

func (stubSources) HKDToCNY(ctx context.Context) decimal.Decimal {
	return decimal.RequireFromString("0.9")
}

func (stubSources) FetchNews(ctx context.Context, codes []string) map[string][]model.NewsItem {
	return map[string][]model.NewsItem{}
}

func setupRouter(t *testing.T, store repository.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := render.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	h := NewReportHandler(
		service.NewConfigService(store, "asset_config"),
		service.NewReportService(stubSources{}, stubSources{}, stubSources{}),
		renderer,
	)
	return NewRouter(h, middleware.NewRateLimiters(config.RateLimitConfig{}))
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestPage_CreatesDefaults(t *testing.T) {
	store := repository.NewMemoryRepository()
	r := setupRouter(t, store)

	w := doRequest(r, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Unexpected Cache-Control %q", got)
	}
	if !strings.Contains(w.Body.String(), "比亚迪") {
		t.Error("Expected default holdings on page")
	}
	if _, found, _ := store.Get(context.Background(), "asset_config"); !found {
		t.Error("Expected defaults persisted on first read")
	}
}

func TestPage_AnyPath(t *testing.T) {
	r := setupRouter(t, repository.NewMemoryRepository())

	w := doRequest(r, http.MethodGet, "/some/deep/path", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "个人资产报告") {
		t.Errorf("Expected report page for unmatched path, got %d", w.Code)
	}
}

func TestPage_StoreNotConfigured(t *testing.T) {
	r := setupRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "配置存储未配置") {
		t.Error("Expected error page")
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	store := repository.NewMemoryRepository()
	r := setupRouter(t, store)

	body := `{"portfolio":{"AAA.SZ":{"shares":100,"name":"X"}},"liabilities":0}`
	w := doRequest(r, http.MethodPost, "/api/update", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status    string          `json:"status"`
		HTML      string          `json:"html"`
		Portfolio model.Portfolio `json:"portfolio"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Unexpected status %q", resp.Status)
	}
	if !strings.Contains(resp.HTML, `data-value="1,100.00"`) || strings.Contains(resp.HTML, "<html") {
		t.Errorf("Unexpected fragment %s", resp.HTML)
	}
	if h, ok := resp.Portfolio.Get("AAA.SZ"); !ok || h.Shares != 100 {
		t.Errorf("Unexpected portfolio echo %+v", resp.Portfolio)
	}

	page := doRequest(r, http.MethodGet, "/", "").Body.String()
	for _, want := range []string{"<td>AAA.SZ</td>", `value="0"`, `data-value="1,100.00"`} {
		if !strings.Contains(page, want) {
			t.Errorf("Page missing %q after update", want)
		}
	}
	for _, stale := range []string{"<td>002594.SZ</td>", "<strong>比亚迪</strong>", `value="2527439"`} {
		if strings.Contains(page, stale) {
			t.Errorf("Default portfolio still rendered: found %q", stale)
		}
	}
}

func TestUpdate_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing liabilities", `{"portfolio":{"AAA.SZ":{"shares":1,"name":"X"}}}`},
		{"missing portfolio", `{"liabilities":10}`},
		{"null liabilities", `{"portfolio":{},"liabilities":null}`},
		{"malformed json", `{"portfolio":`},
		{"not an object", `[]`},
		{"fractional shares", `{"portfolio":{"AAA.SZ":{"shares":1.5,"name":"X"}},"liabilities":0}`},
		{"negative shares", `{"portfolio":{"AAA.SZ":{"shares":-1,"name":"X"}},"liabilities":0}`},
		{"unknown market", `{"portfolio":{"AAPL.US":{"shares":1,"name":"X"}},"liabilities":0}`},
		{"string liabilities", `{"portfolio":{},"liabilities":"100"}`},
		{"array portfolio", `{"portfolio":[],"liabilities":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryRepository()
			original := []byte(`{"portfolio":{"002594.SZ":{"shares":1,"name":"比亚迪"}},"liabilities":5}`)
			store.Set(context.Background(), "asset_config", original)
			r := setupRouter(t, store)

			w := doRequest(r, http.MethodPost, "/api/update", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", w.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
				t.Errorf("Expected JSON error body, got %s", w.Body.String())
			}

			stored, _, _ := store.Get(context.Background(), "asset_config")
			if !bytes.Equal(stored, original) {
				t.Errorf("Store modified by rejected update: %s", stored)
			}
		})
	}
}

func TestUpdate_NegativeLiabilitiesAccepted(t *testing.T) {
	r := setupRouter(t, repository.NewMemoryRepository())

	w := doRequest(r, http.MethodPost, "/api/update", `{"portfolio":{"AAA.SZ":{"shares":100,"name":"X"}},"liabilities":-100}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	// 1100 - (-100)
	if !strings.Contains(w.Body.String(), "1,200.00") {
		t.Errorf("Expected net worth 1,200.00 in fragment: %s", w.Body.String())
	}
}

func TestUpdate_StoreNotConfigured(t *testing.T) {
	r := setupRouter(t, nil)

	w := doRequest(r, http.MethodPost, "/api/update", `{"portfolio":{},"liabilities":0}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("Expected error body, got %s", w.Body.String())
	}
}

type brokenStore struct {
	*repository.MemoryRepository
}

func (brokenStore) Set(ctx context.Context, key string, value []byte) error {
	return context.DeadlineExceeded
}

func TestUpdate_StoreWriteFailure(t *testing.T) {
	r := setupRouter(t, brokenStore{repository.NewMemoryRepository()})

	w := doRequest(r, http.MethodPost, "/api/update", `{"portfolio":{},"liabilities":0}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "An internal error occurred.") {
		t.Errorf("Expected generic error, got %s", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}
