package api

import (
	"bytes"
	"io"
	"strings"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/events"
	"carrental/internal/models"
	"carrental/internal/repository"
	"carrental/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func testConfig() config.APIConfig {
	return config.APIConfig{
		HTTP: config.APIHTTPConfig{Port: 0, BasePath: "/api"},
		Auth: config.APIAuthConfig{JWTSecret: testSecret, Issuer: "carrental", TokenTTL: "1h"},
		RateLimit: config.APIRateLimitConfig{
			PerUserRequests: 1000,
			PerUserWindow:   60,
		},
	}
}

type testEnv struct {
	t        *testing.T
	cfg      config.APIConfig
	db       *database.DB
	server   *HTTPServer
	handler  http.Handler
	owner    *models.User
	other    *models.User
	customer *models.User
	car      *models.Car
}

func newTestEnv(t *testing.T, mutate ...func(*config.APIConfig)) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	env := &testEnv{t: t, db: db}
	env.owner = &models.User{Name: "Olga", Email: "olga@example.com", Role: models.RoleOwner}
	require.NoError(t, db.CreateUser(ctx, env.owner))
	env.other = &models.User{Name: "Ivan", Email: "ivan@example.com", Role: models.RoleOwner}
	require.NoError(t, db.CreateUser(ctx, env.other))
	env.customer = &models.User{Name: "Anna", Email: "anna@example.com", Role: models.RoleCustomer}
	require.NoError(t, db.CreateUser(ctx, env.customer))
	env.car = &models.Car{OwnerID: env.owner.ID, Name: "Corolla", Type: "sedan", Image: "corolla.jpg", PricePerDay: 40}
	require.NoError(t, db.CreateCar(ctx, env.car))

	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	env.cfg = cfg

	deps := Deps{
		Bookings:  service.NewBookingService(db, service.NewCarInventory(db, &logger), events.NewEventBus(), &logger),
		Query:     service.NewBookingQuery(db),
		Cars:      service.NewCarService(db, &logger),
		Users:     db,
		Health:    db,
		RateLimit: repository.NewMemoryRateLimitRepository(),
	}
	env.server = NewHTTPServer(cfg, deps, &logger)
	env.handler = env.server.Handler()
	return env
}

func (e *testEnv) token(userID int64) string {
	e.t.Helper()
	tok, _, err := IssueToken(e.cfg.Auth, userID, time.Now())
	require.NoError(e.t, err)
	return tok
}

func (e *testEnv) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
