package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerly/ledgerly/internal/config"
	"github.com/ledgerly/ledgerly/internal/service"
	"github.com/ledgerly/ledgerly/internal/testutil"
)

// newTestApp wires the full router over in-memory fakes.
func newTestApp(t *testing.T, rules config.BusinessRules) (*chi.Mux, *testutil.FakeStore) {
	t.Helper()

	store := testutil.NewFakeStore()
	listCache := testutil.NewFakeCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := service.NewUserService(store, listCache, 20*time.Second, logger)
	accounts := service.NewAccountService(store, store, listCache, rules, 20*time.Second, logger)

	router := NewRouter(RouterConfig{
		Base:     New(),
		Health:   NewHealthHandler(nil, nil),
		Users:    NewUserHandler(users, logger),
		Accounts: NewAccountHandler(accounts, logger),
		Logger:   logger,
	})

	return router, store
}

func testRules() config.BusinessRules {
	return config.BusinessRules{MaxAccountsPerUser: 3, AllowAccountCreation: true}
}

// doJSON performs a request against the router and decodes the JSON response.
func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			// List endpoints return arrays; callers decode those themselves.
			decoded = nil
		}
	}
	return rec, decoded
}

func TestHandler_Hello(t *testing.T) {
	router, _ := newTestApp(t, testRules())

	rec, response := doJSON(t, router, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if response["message"] != "Ledgerly API is running" {
		t.Errorf("unexpected message: %v", response["message"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	router, _ := newTestApp(t, testRules())

	rec, response := doJSON(t, router, http.MethodGet, "/nonexistent", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if response["error"] != "resource not found" {
		t.Errorf("unexpected error message: %v", response["error"])
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	router, _ := newTestApp(t, testRules())

	rec, response := doJSON(t, router, http.MethodPatch, "/users/", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
	if response["error"] != "method not allowed" {
		t.Errorf("unexpected error message: %v", response["error"])
	}
}

func TestParseListParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
	}{
		{"defaults", "", 0, 100},
		{"both set", "?skip=10&limit=20", 10, 20},
		{"skip only", "?skip=5", 5, 100},
		{"limit only", "?limit=1", 0, 1},
		{"negative skip ignored", "?skip=-3", 0, 100},
		{"negative limit ignored", "?limit=-1", 0, 100},
		{"garbage ignored", "?skip=abc&limit=xyz", 0, 100},
		{"zero limit honored", "?limit=0", 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.query, nil)
			skip, limit := parseListParams(req)
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("parseListParams(%q) = (%d, %d), want (%d, %d)", tt.query, skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
