package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"centavo/internal/auth"
	"centavo/internal/core"
	"centavo/internal/kv"
	"centavo/internal/log"
	"centavo/internal/services"
	"centavo/internal/storage"
)

const foodID = "00000000-0000-4000-8000-000000000001"

type testAPI struct {
	t      *testing.T
	srv    *Server
	users  *services.UserService
	repo   *storage.SQLiteRepository
	tokens map[string]string // email -> access token
}

func newTestAPI(t *testing.T, rateLimit int) *testAPI {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := log.Discard()
	tokens := auth.NewTokens("0123456789abcdef0123456789abcdef", 15*time.Minute, time.Hour)
	users := services.NewUserService(repo, tokens, services.NewLinker(kv.NewMemory(), repo, 5*time.Minute, logger), "MXN", logger)
	txs := services.NewTransactionService(repo, repo, repo, nil, logger)

	srv, err := NewServer(Config{Addr: ":0", RateLimitPerMinute: rateLimit, CORSOrigins: []string{"http://localhost:3000"}}, Services{
		Users:        users,
		Categories:   services.NewCategoryService(repo, logger),
		Transactions: txs,
		Recurring:    services.NewRecurringService(repo, repo, repo, txs, logger),
		Summary:      services.NewSummaryService(repo, repo),
	}, logger)
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return &testAPI{t: t, srv: srv, users: users, repo: repo, tokens: map[string]string{}}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "198.51.100.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rr, req)
	return rr
}

// login registers email and returns an access token.
func (a *testAPI) login(email string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password123", "display_name": "Tester",
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	var pair auth.Pair
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &pair))
	return pair.AccessToken
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, 60)

	rr := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "centavo_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, 60)

	rr := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "ana@example.com", "password": "password123", "display_name": "Ana",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	u := decode[map[string]any](t, rr)
	require.Equal(t, "ana@example.com", u["email"])
	require.NotContains(t, u, "password_hash")

	rr = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "ana@example.com", "password": "password123", "display_name": "Ana",
	})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ana@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rr.Code)
	pair := decode[auth.Pair](t, rr)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, 900, pair.ExpiresIn)

	rr = api.do(http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodPatch, "/api/v1/auth/me", pair.AccessToken, map[string]string{"default_currency": "usd"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "USD", decode[map[string]any](t, rr)["default_currency"])

	rr = api.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": pair.AccessToken})
	require.Equal(t, http.StatusUnauthorized, rr.Code, "access token is not a refresh token")

	rr = api.do(http.MethodPost, "/api/v1/auth/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Successfully logged out", decode[map[string]string](t, rr)["message"])
}

func TestRequestValidation(t *testing.T) {
	api := newTestAPI(t, 60)

	tests := []struct {
		name   string
		body   any
		status int
		field  string
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest, ""},
		{"empty body", "", http.StatusBadRequest, ""},
		{"unknown field", map[string]string{"email": "a@b.co", "password": "password123", "display_name": "A", "role": "admin"}, http.StatusBadRequest, ""},
		{"bad email", map[string]string{"email": "nope", "password": "password123", "display_name": "A"}, http.StatusUnprocessableEntity, "email"},
		{"short password", map[string]string{"email": "a@b.co", "password": "short", "display_name": "A"}, http.StatusUnprocessableEntity, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(http.MethodPost, "/api/v1/auth/register", "", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			if tt.field != "" {
				body := decode[errorBody](t, rr)
				require.Contains(t, body.Details, tt.field)
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	api := newTestAPI(t, 60)

	rr := api.do(http.MethodGet, "/api/v1/transactions", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))

	rr = api.do(http.MethodGet, "/api/v1/transactions", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	token := api.login("gone@example.com")
	u, err := api.repo.GetUserByEmail(context.Background(), "gone@example.com")
	require.NoError(t, err)
	require.NoError(t, api.repo.DeleteUser(context.Background(), u.ID))

	rr = api.do(http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code, "deleted user keeps no access")
}

func TestTransactionEndpoints(t *testing.T) {
	api := newTestAPI(t, 60)
	token := api.login("t@example.com")
	intruder := api.login("i@example.com")

	rr := api.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type": "expense", "amount": "50.00", "description": "lunch",
		"category_id": foodID, "transaction_date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[core.Transaction](t, rr)
	require.Equal(t, int64(5000), created.Amount.Cents)
	require.Equal(t, "Food & Dining", created.CategoryName)

	rr = api.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type": "expense", "amount": 12.5, "description": "coffee", "transaction_date": "2024-01-16",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = api.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type": "expense", "amount": "-3", "description": "x",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, decode[errorBody](t, rr).Details, "amount")

	rr = api.do(http.MethodGet, "/api/v1/transactions?page=1&page_size=1&type=expense", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[services.Page[core.Transaction]](t, rr)
	require.Equal(t, 2, page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Equal(t, "coffee", page.Items[0].Description)

	rr = api.do(http.MethodGet, "/api/v1/transactions?page_size=500", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = api.do(http.MethodGet, "/api/v1/transactions?start_date=2024-02-01&end_date=2024-01-01", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	path := "/api/v1/transactions/" + created.ID
	require.Equal(t, http.StatusForbidden, api.do(http.MethodGet, path, intruder, nil).Code)
	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/transactions/missing", token, nil).Code)

	rr = api.do(http.MethodPut, path, token, map[string]any{"category_id": nil, "amount": "75"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[core.Transaction](t, rr)
	require.Nil(t, updated.CategoryID)
	require.Equal(t, int64(7500), updated.Amount.Cents)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, token, nil).Code)
	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, token, nil).Code)
}

func TestCategoryEndpoints(t *testing.T) {
	api := newTestAPI(t, 60)
	token := api.login("c@example.com")

	rr := api.do(http.MethodGet, "/api/v1/categories?type=income", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[[]core.Category](t, rr), 6)

	rr = api.do(http.MethodGet, "/api/v1/categories?type=gift", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Pets", "type": "expense", "monthly_limit": "200"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	pets := decode[core.Category](t, rr)
	require.Equal(t, int64(20000), pets.MonthlyLimit.Cents)

	rr = api.do(http.MethodPut, "/api/v1/categories/"+pets.ID, token, map[string]any{"monthly_limit": nil})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, decode[core.Category](t, rr).MonthlyLimit)

	rr = api.do(http.MethodPut, "/api/v1/categories/"+foodID, token, map[string]any{"name": "Mine"})
	require.Equal(t, http.StatusForbidden, rr.Code)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/categories/"+pets.ID, token, nil).Code)
}

func TestRecurringEndpoints(t *testing.T) {
	api := newTestAPI(t, 60)
	token := api.login("r@example.com")

	rr := api.do(http.MethodPost, "/api/v1/recurring-transactions", token, map[string]any{
		"name": "Rent", "amount": "8000", "type": "expense", "day_of_month": 1, "start_date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rt := decode[core.RecurringTransaction](t, rr)
	require.Equal(t, core.Monthly, rt.Frequency)

	rr = api.do(http.MethodPost, "/api/v1/recurring-transactions", token, map[string]any{
		"name": "Bad", "amount": "1", "type": "expense", "day_of_month": 40,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = api.do(http.MethodPost, "/api/v1/recurring-transactions/"+rt.ID+"/pay", token, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, "Rent", decode[core.Transaction](t, rr).Description)

	rr = api.do(http.MethodPut, "/api/v1/recurring-transactions/"+rt.ID, token, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = api.do(http.MethodPost, "/api/v1/recurring-transactions/"+rt.ID+"/pay", token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/recurring-transactions/"+rt.ID, token, nil).Code)
	rr = api.do(http.MethodGet, "/api/v1/recurring-transactions", token, nil)
	require.Empty(t, decode[[]core.RecurringTransaction](t, rr))
}

func TestReportEndpoints(t *testing.T) {
	api := newTestAPI(t, 60)
	token := api.login("rep@example.com")

	rr := api.do(http.MethodGet, "/api/v1/reports/monthly/chart.png", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code, "nothing to chart yet")

	rr = api.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type": "expense", "amount": "50", "description": "lunch", "category_id": foodID, "transaction_date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = api.do(http.MethodGet, "/api/v1/reports/monthly", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sum := decode[core.MonthSummary](t, rr)
	require.Equal(t, "January 2024", sum.Period, "defaults to the current month")
	require.Equal(t, int64(5000), sum.TotalExpenses.Cents)

	rr = api.do(http.MethodGet, "/api/v1/reports/monthly?year=2024&month=13", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = api.do(http.MethodGet, "/api/v1/reports/monthly/chart.png?year=2024&month=1", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
}

func TestLinkCodeEndpoint(t *testing.T) {
	api := newTestAPI(t, 60)
	token := api.login("l@example.com")

	rr := api.do(http.MethodPost, "/api/v1/users/link/code", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[linkCodeResponse](t, rr)
	require.Len(t, body.Code, 6)
	require.Equal(t, 300, body.ExpiresIn)

	ok, err := api.users.LinkTelegram(context.Background(), body.Code, 99)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t, 2)

	for i := 0; i < 2; i++ {
		rr := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "x@example.com", "password": "whatever1"})
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "x@example.com", "password": "whatever1"})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, "only auth routes are limited")
}

func TestWebhookMount(t *testing.T) {
	hit := false
	srv, err := NewServer(Config{
		WebhookPath: "/telegram/webhook",
		Webhook:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = true }),
	}, Services{}, log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/telegram/webhook", nil))
	require.True(t, hit)
}
