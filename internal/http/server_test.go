package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, core.User, *storage.Repository) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	user, err := repo.EnsureUser(context.Background(), "test@example.com", "Test User")
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}

	logger := log.New(log.DefaultConfig())
	reports := services.NewReportService(repo, logger)
	srv := NewServer(":0", Deps{
		Storage:      repo,
		Categories:   services.NewCategoryService(repo, logger),
		Transactions: services.NewTransactionService(repo, nil, logger),
		Goals:        services.NewGoalService(repo, logger),
		Reports:      reports,
		Dashboard:    services.NewDashboardService(repo, reports, logger),
		User:         user,
		Logger:       logger,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, user, repo
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func createCategoryHTTP(t *testing.T, base, name, typ string) map[string]any {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/categories", map[string]any{
		"name": name,
		"type": typ,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category %s: status %d, body %v", name, resp.StatusCode, body)
	}
	return body["data"].(map[string]any)
}

func TestHealthAndReady(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ready" {
		t.Errorf("readyz = %d %v", resp.StatusCode, body)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)
	groceries := createCategoryHTTP(t, ts.URL, "Groceries", "EXPENSE")

	// Create
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"amount":      42.5,
		"description": "Supermarket",
		"type":        "EXPENSE",
		"date":        "2025-08-15T12:00:00Z",
		"categoryId":  groceries["id"],
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["amount"] != 42.5 {
		t.Errorf("amount = %v, want 42.5", data["amount"])
	}
	if data["category"].(map[string]any)["name"] != "Groceries" {
		t.Errorf("category = %v", data["category"])
	}
	id := data["id"].(string)

	// List with envelope
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d", resp.StatusCode)
	}
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}

	// Get
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/transactions/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get = %d %v", resp.StatusCode, body)
	}

	// Partial update: description only
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/transactions/"+id, map[string]any{
		"description": "Corrected",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d %v", resp.StatusCode, body)
	}
	data = body["data"].(map[string]any)
	if data["description"] != "Corrected" || data["amount"] != 42.5 {
		t.Errorf("after update = %v", data)
	}

	// Delete
	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/transactions/"+id, nil)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Errorf("delete = %d %v", resp.StatusCode, body)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/transactions/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestTransactionValidationErrors(t *testing.T) {
	ts, _, _ := newTestServer(t)
	groceries := createCategoryHTTP(t, ts.URL, "Groceries", "EXPENSE")
	salary := createCategoryHTTP(t, ts.URL, "Salary", "INCOME")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"zero amount", map[string]any{"amount": 0, "description": "x", "type": "EXPENSE",
			"date": "2025-08-15T12:00:00Z", "categoryId": groceries["id"]}, http.StatusBadRequest},
		{"missing description", map[string]any{"amount": 10, "type": "EXPENSE",
			"date": "2025-08-15T12:00:00Z", "categoryId": groceries["id"]}, http.StatusBadRequest},
		{"bad type", map[string]any{"amount": 10, "description": "x", "type": "TRANSFER",
			"date": "2025-08-15T12:00:00Z", "categoryId": groceries["id"]}, http.StatusBadRequest},
		{"unknown category", map[string]any{"amount": 10, "description": "x", "type": "EXPENSE",
			"date": "2025-08-15T12:00:00Z", "categoryId": "nope"}, http.StatusBadRequest},
		{"type mismatch", map[string]any{"amount": 10, "description": "x", "type": "EXPENSE",
			"date": "2025-08-15T12:00:00Z", "categoryId": salary["id"]}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (%v)", resp.StatusCode, tt.want, body)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("missing error envelope: %v", body)
			}
		})
	}
}

func TestTransactionListTotals(t *testing.T) {
	ts, _, _ := newTestServer(t)
	groceries := createCategoryHTTP(t, ts.URL, "Groceries", "EXPENSE")
	salary := createCategoryHTTP(t, ts.URL, "Salary", "INCOME")

	for _, tx := range []map[string]any{
		{"amount": 3100, "description": "Paycheck", "type": "INCOME",
			"date": "2025-08-01T09:00:00Z", "categoryId": salary["id"]},
		{"amount": 1000, "description": "Supermarket", "type": "EXPENSE",
			"date": "2025-08-05T18:00:00Z", "categoryId": groceries["id"]},
		{"amount": 234, "description": "Snacks", "type": "EXPENSE",
			"date": "2025-08-20T18:00:00Z", "categoryId": groceries["id"]},
	} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", tx)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %v: %d %v", tx["description"], resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d %v", resp.StatusCode, body)
	}
	if body["total"] != float64(3) {
		t.Errorf("total = %v, want 3", body["total"])
	}
	totals, ok := body["totals"].(map[string]any)
	if !ok {
		t.Fatalf("missing totals field: %v", body)
	}
	if totals["income"] != float64(3100) || totals["expenses"] != float64(1234) || totals["net"] != float64(1866) {
		t.Errorf("totals = %v, want income 3100 expenses 1234 net 1866", totals)
	}

	// Totals follow the date window but not the type filter, so a typed view
	// still carries the full period summary.
	resp, body = doJSON(t, http.MethodGet,
		ts.URL+"/transactions?type=EXPENSE&startDate=2025-08-01&endDate=2025-08-10", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("filtered list = %d %v", resp.StatusCode, body)
	}
	if body["total"] != float64(1) {
		t.Errorf("filtered total = %v, want 1", body["total"])
	}
	totals = body["totals"].(map[string]any)
	if totals["income"] != float64(3100) || totals["expenses"] != float64(1000) || totals["net"] != float64(2100) {
		t.Errorf("filtered totals = %v, want income 3100 expenses 1000 net 2100", totals)
	}
}

func TestCreateTransactionDateDefaults(t *testing.T) {
	ts, _, _ := newTestServer(t)
	groceries := createCategoryHTTP(t, ts.URL, "Groceries", "EXPENSE")

	before := time.Now().UTC().Add(-time.Minute)
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"amount":      10,
		"description": "No date",
		"type":        "EXPENSE",
		"categoryId":  groceries["id"],
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create without date = %d %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	got, err := time.Parse(time.RFC3339, data["date"].(string))
	if err != nil {
		t.Fatalf("parse date %v: %v", data["date"], err)
	}
	if got.Before(before) || got.After(time.Now().UTC().Add(time.Minute)) {
		t.Errorf("defaulted date = %v, want around now", got)
	}

	// Plain dates in the body pin to midnight UTC, like the query filters.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"amount":      10,
		"description": "Plain date",
		"type":        "EXPENSE",
		"date":        "2025-03-10",
		"categoryId":  groceries["id"],
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create with plain date = %d %v", resp.StatusCode, body)
	}
	data = body["data"].(map[string]any)
	if data["date"] != "2025-03-10T00:00:00Z" {
		t.Errorf("plain date round-trip = %v, want 2025-03-10T00:00:00Z", data["date"])
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"amount":      10,
		"description": "Bad date",
		"type":        "EXPENSE",
		"date":        "not-a-date",
		"categoryId":  groceries["id"],
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("create with bad date = %d, want 400 (%v)", resp.StatusCode, body)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)
	groceries := createCategoryHTTP(t, ts.URL, "Groceries", "EXPENSE")
	id := groceries["id"].(string)

	// Duplicate name conflicts.
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/categories", map[string]any{
		"name": "Groceries", "type": "EXPENSE",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", resp.StatusCode)
	}

	// Delete blocked while a transaction references it.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"amount": 10, "description": "x", "type": "EXPENSE",
		"date": "2025-08-15T12:00:00Z", "categoryId": id,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create tx = %d %v", resp.StatusCode, body)
	}
	txID := body["data"].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/categories/"+id, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete referenced = %d, want 409", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/categories/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get = %d", resp.StatusCode)
	}
	if body["data"].(map[string]any)["usageCount"] != float64(1) {
		t.Errorf("usageCount = %v, want 1", body["data"].(map[string]any)["usageCount"])
	}

	if resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/transactions/"+txID, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete tx = %d", resp.StatusCode)
	}
	if resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/categories/"+id, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("delete after unreference = %d, want 200", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/categories/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete missing = %d, want 404", resp.StatusCode)
	}
}

func TestGoalEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/goals", map[string]any{
		"name":         "Emergency fund",
		"targetAmount": 10000,
		"deadline":     "2026-06-30T00:00:00Z",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal = %d %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "IN_PROGRESS" || data["currentAmount"] != float64(0) {
		t.Errorf("defaults = %v/%v", data["status"], data["currentAmount"])
	}
	id := data["id"].(string)

	// Update progress.
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/goals/"+id, map[string]any{
		"currentAmount": 2500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update goal = %d %v", resp.StatusCode, body)
	}
	if body["data"].(map[string]any)["progressPercent"] != float64(25) {
		t.Errorf("progress = %v, want 25", body["data"].(map[string]any)["progressPercent"])
	}

	// Explicit null clears the deadline; absent leaves it.
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/goals/"+id, map[string]any{
		"deadline": nil,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear deadline = %d %v", resp.StatusCode, body)
	}
	if body["data"].(map[string]any)["deadline"] != nil {
		t.Errorf("deadline = %v, want null", body["data"].(map[string]any)["deadline"])
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/goals?status=PAUSED", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list filtered = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/goals?status=DONE", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad status filter = %d, want 400", resp.StatusCode)
	}
}

func TestReportAndDashboardEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)
	salary := createCategoryHTTP(t, ts.URL, "Salary", "INCOME")
	rent := createCategoryHTTP(t, ts.URL, "Rent", "EXPENSE")

	seed := []struct {
		amount float64
		typ    string
		catID  any
		date   string
	}{
		{3000, "INCOME", salary["id"], "2025-08-01T09:00:00Z"},
		{3100, "INCOME", salary["id"], "2025-09-01T09:00:00Z"},
		{1000, "EXPENSE", rent["id"], "2025-09-02T09:00:00Z"},
	}
	for _, sd := range seed {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
			"amount": sd.amount, "description": "seed", "type": sd.typ,
			"date": sd.date, "categoryId": sd.catID,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed tx = %d %v", resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/reports/monthly?year=2025&month=9", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("monthly report = %d %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	totals := data["totals"].(map[string]any)
	if totals["income"] != float64(3100) || totals["expenses"] != float64(1000) || totals["net"] != float64(2100) {
		t.Errorf("totals = %v", totals)
	}
	breakdown := data["categoryBreakdown"].([]any)
	if len(breakdown) != 1 {
		t.Fatalf("breakdown len = %d, want 1", len(breakdown))
	}
	if breakdown[0].(map[string]any)["percentage"] != float64(100) {
		t.Errorf("single-category share = %v, want 100", breakdown[0].(map[string]any)["percentage"])
	}
	mom := data["monthOverMonth"].(map[string]any)
	if mom["incomeDelta"] != float64(100) {
		t.Errorf("incomeDelta = %v, want 100", mom["incomeDelta"])
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/reports/recent?year=2025&month=9&months=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recent = %d %v", resp.StatusCode, body)
	}
	series := body["data"].([]any)
	if len(series) != 2 {
		t.Fatalf("series len = %d, want 2", len(series))
	}
	if body["total"] != float64(2) {
		t.Errorf("recent total = %v, want 2", body["total"])
	}
	first := series[0].(map[string]any)
	if first["month"] != float64(8) || first["income"] != float64(3000) {
		t.Errorf("series[0] = %v, want August first", first)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/dashboard?year=2025&month=9", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard = %d %v", resp.StatusCode, body)
	}
	dash := body["data"].(map[string]any)
	if dash["netSavings"] != float64(2100) {
		t.Errorf("netSavings = %v, want 2100", dash["netSavings"])
	}
	if len(dash["recentTransactions"].([]any)) != 3 {
		t.Errorf("recent = %v", dash["recentTransactions"])
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/reports/monthly?year=2025&month=13", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("month 13 = %d, want 400", resp.StatusCode)
	}
}

func TestListFilterPassthrough(t *testing.T) {
	ts, _, _ := newTestServer(t)
	groceries := createCategoryHTTP(t, ts.URL, "Groceries", "EXPENSE")
	rent := createCategoryHTTP(t, ts.URL, "Rent", "EXPENSE")

	for i, cat := range []map[string]any{groceries, rent} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
			"amount": 10, "description": fmt.Sprintf("seed %d", i), "type": "EXPENSE",
			"date": "2025-09-01T09:00:00Z", "categoryId": cat["id"],
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed = %d %v", resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/transactions?categoryId="+groceries["id"].(string), nil)
	if resp.StatusCode != http.StatusOK || body["total"] != float64(1) {
		t.Errorf("category filter = %d %v", resp.StatusCode, body["total"])
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/transactions?search=seed", nil)
	if resp.StatusCode != http.StatusOK || body["total"] != float64(2) {
		t.Errorf("search filter = %d %v", resp.StatusCode, body["total"])
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/transactions?type=WRONG", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad type filter = %d, want 400", resp.StatusCode)
	}
}
