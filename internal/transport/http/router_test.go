package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votesmart/internal/audit"
	"votesmart/internal/jwttoken"
	"votesmart/internal/platform/middleware"
	"votesmart/internal/registry/handler"
	"votesmart/internal/registry/service"
	"votesmart/internal/registry/store"
	"votesmart/pkg/testutil"
)

type jwtAdapter struct {
	jwt *jwttoken.JWTService
}

func (a *jwtAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.jwt.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{AccountID: claims.AccountID}, nil
}

type noopAuditor struct{}

func (noopAuditor) Record(context.Context, audit.Event) {}

func newTestServer(t *testing.T) (http.Handler, *jwttoken.JWTService) {
	t.Helper()

	mem := store.NewMemory()
	require.NoError(t, mem.EnsureMasterAccountID(context.Background(), "registrar"))

	svc := service.New(mem, nil, noopAuditor{})
	jwtService := jwttoken.New("test-key", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(RouterConfig{
		Logger:   logger,
		Metrics:  nil,
		Registry: handler.New(svc, logger),
		Auth:     middleware.RequireAuth(&jwtAdapter{jwt: jwtService}, logger),
		Checks: map[string]HealthCheck{
			"store": mem.Ping,
		},
	})
	return router, jwtService
}

func TestHealthz(t *testing.T) {
	router, _ := newTestServer(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	require.Equal(t, http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, "ok", (*body)["status"])
}

func TestHealthzDegraded(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	router := NewRouter(RouterConfig{
		Logger:   logger,
		Registry: handler.New(service.New(mem, nil, noopAuditor{}), logger),
		Auth:     func(next http.Handler) http.Handler { return next },
		Checks: map[string]HealthCheck{
			"store": func(context.Context) error { return errors.New("down") },
		},
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMutationsRequireBearerToken(t *testing.T) {
	router, jwtService := newTestServer(t)

	body := handler.AddCampaignRequest{ID: 1, Title: "2026 general"}

	t.Run("no token is 401", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/registry/campaigns", body))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("master token writes", func(t *testing.T) {
		token, err := jwtService.Generate("registrar")
		require.NoError(t, err)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/registry/campaigns", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("authenticated non-master is 401 from the access guard", func(t *testing.T) {
		token, err := jwtService.Generate("intruder")
		require.NoError(t, err)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/registry/campaigns", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	router, _ := newTestServer(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/registry/parties"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestContentTypeEnforcedOnMutations(t *testing.T) {
	router, jwtService := newTestServer(t)

	token, err := jwtService.Generate("registrar")
	require.NoError(t, err)

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/registry/campaigns", `{"id":1,"title":"x"}`)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}
