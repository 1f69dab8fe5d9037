package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/handlers"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupE2EApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "e2e.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := handlers.NewRouterConfig(dbi, services.NewHomesNotifier(4))
	return NewApp(dbi, cfg, zap.NewNop()), dbi
}

type client struct {
	t    *testing.T
	app  http.Handler
	sess *http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if c.sess != nil {
		req.AddCookie(c.sess)
	}
	w := httptest.NewRecorder()
	c.app.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" && ck.Value != "" {
			c.sess = ck
		}
	}
	return w
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d got %d body=%s", want, w.Code, w.Body.String())
	}
	out := map[string]any{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v body=%s", err, w.Body.String())
		}
	}
	return out
}

func TestRentalFlowE2E(t *testing.T) {
	app, _ := setupE2EApp(t)
	c := &client{t: t, app: app}

	mustStatus(t, c.do(http.MethodGet, "/homes", ""), http.StatusUnauthorized)

	mustStatus(t, c.do(http.MethodPost, "/signup", `{"email":"e2e@example.com","password":"e2e-password"}`), http.StatusCreated)
	if c.sess == nil {
		t.Fatalf("no session cookie after signup")
	}

	home := mustStatus(t, c.do(http.MethodPost, "/homes", `{"name":"Nha E2E"}`), http.StatusCreated)
	homePath := "/homes/" + jsonID(home)
	mustStatus(t, c.do(http.MethodPut, homePath+"/settings", `{"electric_price":3000,"water_price":15000}`), http.StatusOK)
	room := mustStatus(t, c.do(http.MethodPost, homePath+"/rooms",
		`{"room_name":"101","tenant":"A","phone":"1","quantity":2,"room_price":2000000}`), http.StatusCreated)

	created := mustStatus(t, c.do(http.MethodPost, homePath+"/invoices",
		`{"room_id":`+jsonID(room)+`,"readings":{"old_electric":100,"new_electric":150}}`), http.StatusCreated)
	inv := created["invoice"].(map[string]any)
	if inv["total_amount"] != "2180000" {
		t.Fatalf("unexpected total: %v", inv["total_amount"])
	}

	list := mustStatus(t, c.do(http.MethodGet, homePath+"/invoices", ""), http.StatusOK)
	if list["total"] != float64(1) {
		t.Fatalf("expected 1 invoice got %v", list["total"])
	}

	mustStatus(t, c.do(http.MethodPost, "/logout", ""), http.StatusNoContent)
}

func TestRequestIDAndRouteMetrics(t *testing.T) {
	app, _ := setupE2EApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("request id not echoed: %q", got)
	}

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request id not generated")
	}

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `http_requests_total{method="GET",route="GET /health",status="200"}`) {
		t.Fatalf("route label missing from metrics output")
	}
}

func TestHealthzReportsDatabase(t *testing.T) {
	app, dbi := setupE2EApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	sqlDB, err := dbi.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.Close()

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"degraded"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPanicRecovered(t *testing.T) {
	app, _ := setupE2EApp(t)
	app.mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}

func TestHomeEventsSurviveWriteTimeout(t *testing.T) {
	app, _ := setupE2EApp(t)
	c := &client{t: t, app: app}
	mustStatus(t, c.do(http.MethodPost, "/signup", `{"email":"sse@example.com","password":"sse-password"}`), http.StatusCreated)

	srv := httptest.NewUnstartedServer(app)
	srv.Config.WriteTimeout = 300 * time.Millisecond
	srv.Start()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/homes/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.AddCookie(c.sess)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	time.Sleep(700 * time.Millisecond)
	mustStatus(t, c.do(http.MethodPost, "/homes", `{"name":"After timeout"}`), http.StatusCreated)

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() == "event: homes" {
			return
		}
	}
	t.Fatalf("no event received: %v", sc.Err())
}

func jsonID(m map[string]any) string {
	id, _ := m["id"].(float64)
	return strconv.Itoa(int(id))
}
