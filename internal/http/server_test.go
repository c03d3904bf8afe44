package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

type testEnv struct {
	handler  http.Handler
	sessions *session.Manager
	store    *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "fintrack.db")
	store, err := storage.Open(dbPath, "owner-open-id")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := log.New(log.DefaultConfig())
	sessions := session.NewManager("test-secret", "fin_session", store, logger)
	stats := services.NewStatsService(store, logger, 16, time.Minute)
	ledger := services.NewLedgerService(store, nil, stats, logger)

	srv := NewServer(Options{
		Addr:               ":0",
		Store:              store,
		Ledger:             ledger,
		Stats:              stats,
		Sessions:           sessions,
		Logger:             logger,
		RateLimitPerMinute: 10000,
	})
	t.Cleanup(func() { srv.limiter.Stop() })

	return &testEnv{handler: srv.Handler(), sessions: sessions, store: store}
}

// do runs a request through the full middleware chain. A non-empty
// openID attaches a freshly minted session cookie.
func (e *testEnv) do(t *testing.T, method, target, openID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if openID != "" {
		raw, err := e.sessions.IssueToken(session.Claims{OpenID: openID, Name: "Test User"})
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: e.sessions.CookieName(), Value: raw})
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (code, field string) {
	t.Helper()
	var env struct {
		Error struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"error"`
	}
	decodeInto(t, rec, &env)
	return env.Error.Code, env.Error.Field
}

func TestAuthMe_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/auth.me", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("anonymous auth.me must be null, got %q", got)
	}
}

func TestAuthMe_FirstSignInCreatesAndSeeds(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/auth.me", "open-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var user struct {
		ID     int64  `json:"id"`
		OpenID string `json:"openId"`
		Role   string `json:"role"`
	}
	decodeInto(t, rec, &user)
	if user.OpenID != "open-1" || user.Role != "user" {
		t.Fatalf("unexpected identity: %+v", user)
	}

	rec = env.do(t, http.MethodGet, "/api/categories.list", "open-1", "")
	var cats []map[string]any
	decodeInto(t, rec, &cats)
	if len(cats) != 11 {
		t.Fatalf("first sign-in must seed 11 default categories, got %d", len(cats))
	}
}

func TestAuthMe_OwnerIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/auth.me", "owner-open-id", "")

	var user struct {
		Role string `json:"role"`
	}
	decodeInto(t, rec, &user)
	if user.Role != "admin" {
		t.Fatalf("owner identity must be promoted to admin, got %q", user.Role)
	}
}

func TestAuthLogout(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth.logout", "open-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]bool
	decodeInto(t, rec, &body)
	if !body["success"] {
		t.Fatalf("expected success body, got %s", rec.Body.String())
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "fin_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout must expire the session cookie")
	}
}

func TestProtectedRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	for _, target := range []string{
		"/api/categories.list",
		"/api/transactions.list",
		"/api/stats.summary",
		"/api/preferences.get",
	} {
		rec := env.do(t, http.MethodGet, target, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rec.Code)
		}
		if code, _ := errorCode(t, rec); code != "UNAUTHENTICATED" {
			t.Fatalf("%s: expected UNAUTHENTICATED, got %s", target, code)
		}
	}
}

func TestCategories_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"empty name", `{"name":"","type":"expense","color":"#10b981"}`, "name"},
		{"long name", fmt.Sprintf(`{"name":%q,"type":"expense","color":"#10b981"}`, strings.Repeat("x", 101)), "name"},
		{"bad kind", `{"name":"Food","type":"transfer","color":"#10b981"}`, "type"},
		{"short color", `{"name":"Food","type":"expense","color":"#12345"}`, "color"},
		{"no hash", `{"name":"Food","type":"expense","color":"123456#"}`, "color"},
		{"bad hex", `{"name":"Food","type":"expense","color":"#12345G"}`, "color"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/categories.create", "open-1", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			code, field := errorCode(t, rec)
			if code != "VALIDATION_ERROR" || field != tc.field {
				t.Fatalf("expected VALIDATION_ERROR on %q, got %s on %q", tc.field, code, field)
			}
		})
	}
}

func TestCategories_CreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/categories.create", "open-1",
		`{"name":"Books","type":"expense","color":"#10b981","icon":"book"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Type      string `json:"type"`
		IsDefault bool   `json:"isDefault"`
	}
	decodeInto(t, rec, &created)
	if created.ID == 0 || created.Name != "Books" || created.Type != "expense" {
		t.Fatalf("unexpected created row: %+v", created)
	}
	if created.IsDefault {
		t.Fatal("user-created categories must not be default")
	}

	// The update body smuggles a type change; the field is ignored.
	rec = env.do(t, http.MethodPost, "/api/categories.update", "open-1",
		fmt.Sprintf(`{"id":%d,"name":"Novels","type":"income"}`, created.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/categories.list", "open-1", "")
	var cats []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	decodeInto(t, rec, &cats)
	found := false
	for _, c := range cats {
		if c.ID == created.ID {
			found = true
			if c.Name != "Novels" {
				t.Fatalf("expected renamed category, got %q", c.Name)
			}
			if c.Type != "expense" {
				t.Fatalf("kind must be immutable, got %q", c.Type)
			}
		}
	}
	if !found {
		t.Fatal("created category missing from list")
	}

	rec = env.do(t, http.MethodPost, "/api/categories.delete", "open-1",
		fmt.Sprintf(`{"id":%d}`, created.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
}

func TestTransactions_CreateConvertsToCents(t *testing.T) {
	env := newTestEnv(t)
	catID := createCategory(t, env, "open-1", "Groceries", "expense")

	rec := env.do(t, http.MethodPost, "/api/transactions.create", "open-1",
		fmt.Sprintf(`{"categoryId":%d,"amount":75.50,"type":"expense","transactionDate":"2025-03-10T00:00:00Z"}`, catID))
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tx struct {
		ID     int64 `json:"id"`
		Amount int64 `json:"amount"`
	}
	decodeInto(t, rec, &tx)
	if tx.Amount != 7550 {
		t.Fatalf("75.50 must store as 7550 cents, got %d", tx.Amount)
	}

	// List returns raw cents, not major units.
	rec = env.do(t, http.MethodGet, "/api/transactions.list", "open-1", "")
	var list []struct {
		Amount int64 `json:"amount"`
	}
	decodeInto(t, rec, &list)
	if len(list) != 1 || list[0].Amount != 7550 {
		t.Fatalf("list must return cents, got %+v", list)
	}
}

func TestTransactions_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	catID := createCategory(t, env, "open-1", "Groceries", "expense")

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing category", `{"amount":10,"type":"expense","transactionDate":"2025-03-10T00:00:00Z"}`, "categoryId"},
		{"zero amount", fmt.Sprintf(`{"categoryId":%d,"amount":0,"type":"expense","transactionDate":"2025-03-10T00:00:00Z"}`, catID), "amount"},
		{"negative amount", fmt.Sprintf(`{"categoryId":%d,"amount":-5,"type":"expense","transactionDate":"2025-03-10T00:00:00Z"}`, catID), "amount"},
		{"bad kind", fmt.Sprintf(`{"categoryId":%d,"amount":10,"type":"loan","transactionDate":"2025-03-10T00:00:00Z"}`, catID), "type"},
		{"missing date", fmt.Sprintf(`{"categoryId":%d,"amount":10,"type":"expense"}`, catID), "transactionDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/transactions.create", "open-1", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			code, field := errorCode(t, rec)
			if code != "VALIDATION_ERROR" || field != tc.field {
				t.Fatalf("expected VALIDATION_ERROR on %q, got %s on %q", tc.field, code, field)
			}
		})
	}
}

func TestTransactions_GetByIDAbsentIsNull(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/transactions.getById?id=9999", "open-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("absent lookup must be null, got %q", got)
	}
}

func TestTransactions_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	catID := createCategory(t, env, "open-1", "Groceries", "expense")
	txID := createTransaction(t, env, "open-1", catID, "50.00")

	// Another user cannot see or delete the row.
	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/transactions.getById?id=%d", txID), "open-2", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("foreign lookup must be indistinguishable from absent, got %q", got)
	}

	rec = env.do(t, http.MethodPost, "/api/transactions.delete", "open-2", fmt.Sprintf(`{"id":%d}`, txID))
	if rec.Code != http.StatusOK {
		t.Fatalf("cross-tenant delete must be a silent no-op, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/transactions.getById?id=%d", txID), "open-1", "")
	if got := strings.TrimSpace(rec.Body.String()); got == "null" {
		t.Fatal("owner's row must survive a foreign delete")
	}
}

func TestStats_SummaryInMajorUnits(t *testing.T) {
	env := newTestEnv(t)
	expCat := createCategory(t, env, "open-1", "Groceries", "expense")
	incCat := createCategory(t, env, "open-1", "Wages", "income")

	createTransactionOfKind(t, env, "open-1", incCat, "3000.00", "income")
	createTransaction(t, env, "open-1", expCat, "75.50")

	rec := env.do(t, http.MethodGet, "/api/stats.summary", "open-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sum struct {
		TotalIncome  float64 `json:"totalIncome"`
		TotalExpense float64 `json:"totalExpense"`
		Balance      float64 `json:"balance"`
	}
	decodeInto(t, rec, &sum)
	if sum.TotalIncome != 3000 || sum.TotalExpense != 75.5 {
		t.Fatalf("stats must be in major units: %+v", sum)
	}
	if sum.Balance != sum.TotalIncome-sum.TotalExpense {
		t.Fatalf("balance invariant violated: %+v", sum)
	}
}

func TestStats_SummaryWindow(t *testing.T) {
	env := newTestEnv(t)
	catID := createCategory(t, env, "open-1", "Groceries", "expense")

	env.do(t, http.MethodPost, "/api/transactions.create", "open-1",
		fmt.Sprintf(`{"categoryId":%d,"amount":10,"type":"expense","transactionDate":"2025-01-15T00:00:00Z"}`, catID))
	env.do(t, http.MethodPost, "/api/transactions.create", "open-1",
		fmt.Sprintf(`{"categoryId":%d,"amount":20,"type":"expense","transactionDate":"2025-02-15T00:00:00Z"}`, catID))

	rec := env.do(t, http.MethodGet,
		"/api/stats.summary?startDate=2025-01-01T00:00:00Z&endDate=2025-01-31T23:59:59Z", "open-1", "")
	var sum struct {
		TotalExpense float64 `json:"totalExpense"`
	}
	decodeInto(t, rec, &sum)
	if sum.TotalExpense != 10 {
		t.Fatalf("window must exclude February, got %+v", sum)
	}
}

func TestStats_ByCategory(t *testing.T) {
	env := newTestEnv(t)
	groceries := createCategory(t, env, "open-1", "Groceries", "expense")
	transport := createCategory(t, env, "open-1", "Transport", "expense")

	createTransaction(t, env, "open-1", groceries, "10.00")
	createTransaction(t, env, "open-1", groceries, "20.00")
	createTransaction(t, env, "open-1", transport, "5.00")

	rec := env.do(t, http.MethodGet, "/api/stats.byCategory?type=expense", "open-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stats []struct {
		CategoryName string  `json:"categoryName"`
		Total        float64 `json:"total"`
		Count        int64   `json:"count"`
	}
	decodeInto(t, rec, &stats)
	if len(stats) != 2 {
		t.Fatalf("expected 2 categories with activity, got %d", len(stats))
	}
	byName := map[string]float64{}
	for _, st := range stats {
		byName[st.CategoryName] = st.Total
	}
	if byName["Groceries"] != 30 || byName["Transport"] != 5 {
		t.Fatalf("unexpected totals: %+v", byName)
	}
}

func TestStats_ByCategoryRequiresKind(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/stats.byCategory", "open-1", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code, field := errorCode(t, rec); code != "VALIDATION_ERROR" || field != "type" {
		t.Fatalf("expected VALIDATION_ERROR on type, got %s on %q", code, field)
	}
}

func TestPreferences_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/preferences.get", "open-1", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("unset preferences must be null, got %q", got)
	}

	rec = env.do(t, http.MethodPost, "/api/preferences.update", "open-1", `{"currency":"USD"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/preferences.get", "open-1", "")
	var prefs struct {
		Currency   string `json:"currency"`
		DateFormat string `json:"dateFormat"`
	}
	decodeInto(t, rec, &prefs)
	if prefs.Currency != "USD" || prefs.DateFormat != "DD/MM/YYYY" {
		t.Fatalf("expected USD with default date format, got %+v", prefs)
	}

	rec = env.do(t, http.MethodPost, "/api/preferences.update", "open-1", `{"currency":"EURO"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("4-letter currency must be rejected, got %d", rec.Code)
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/categories.create", "open-1", `{"name":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code, _ := errorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func createCategory(t *testing.T, env *testEnv, openID, name, kind string) int64 {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/categories.create", openID,
		fmt.Sprintf(`{"name":%q,"type":%q,"color":"#10b981"}`, name, kind))
	if rec.Code != http.StatusOK {
		t.Fatalf("create category: %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeInto(t, rec, &created)
	return created.ID
}

func createTransactionOfKind(t *testing.T, env *testEnv, openID string, categoryID int64, amount, kind string) int64 {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/transactions.create", openID,
		fmt.Sprintf(`{"categoryId":%d,"amount":%s,"type":%q,"transactionDate":"2025-03-10T00:00:00Z"}`, categoryID, amount, kind))
	if rec.Code != http.StatusOK {
		t.Fatalf("create transaction: %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeInto(t, rec, &created)
	return created.ID
}

func createTransaction(t *testing.T, env *testEnv, openID string, categoryID int64, amount string) int64 {
	t.Helper()
	return createTransactionOfKind(t, env, openID, categoryID, amount, "expense")
}
