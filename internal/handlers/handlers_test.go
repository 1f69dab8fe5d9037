package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testAPI struct {
	t       *testing.T
	db      *gorm.DB
	cfg     *RouterConfig
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(models.All()...), "migrate")

	cfg := NewRouterConfig(db, services.NewHomesNotifier(8))
	mux := http.NewServeMux()
	cfg.Register(mux)
	return &testAPI{t: t, db: db, cfg: cfg, handler: auth.Middleware(mux)}
}

// do sends a request as userID (0 for anonymous) and returns the recorder.
func (a *testAPI) do(method, path, body string, userID uint) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testAPI) user(email string) models.User {
	a.t.Helper()
	u := models.User{Email: email, Password: "x"}
	require.NoError(a.t, a.db.Create(&u).Error)
	return u
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d got %d body=%s", want, w.Code, w.Body.String())
	}
}

func idOf(t *testing.T, body map[string]any) string {
	t.Helper()
	id, ok := body["id"].(float64)
	require.True(t, ok, "missing id in %#v", body)
	return strconv.Itoa(int(id))
}

// seedHome creates, through the API, a home priced at 3,000 per kWh and
// 15,000 water per person with one two-person room at 2,000,000.
func (a *testAPI) seedHome(userID uint) (homePath, roomID string) {
	t := a.t
	t.Helper()
	w := a.do(http.MethodPost, "/homes", `{"name":"Nha A","address":"12 Le Loi"}`, userID)
	expectStatus(t, w, http.StatusCreated)
	homePath = "/homes/" + idOf(t, decode(t, w))

	w = a.do(http.MethodPut, homePath+"/settings", `{"electric_price":"3.000","water_price":15000}`, userID)
	expectStatus(t, w, http.StatusOK)

	w = a.do(http.MethodPost, homePath+"/rooms",
		`{"room_name":"101","tenant":"Tran Van B","phone":"0900","quantity":2,"room_price":"2.000.000"}`, userID)
	expectStatus(t, w, http.StatusCreated)
	return homePath, idOf(t, decode(t, w))
}
