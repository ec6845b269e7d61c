package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jithinio/brillo-sub004/internal/config"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/provider/polar"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProducts struct {
	products []polar.Product
	err      error
}

func (s stubProducts) ListProducts(ctx context.Context) ([]polar.Product, error) {
	return s.products, s.err
}

func getDebug(t *testing.T, h *DebugHandler) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/debug-polar", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.DebugPolar(e.NewContext(req, rec)))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestDebugPolar(t *testing.T) {
	cfg := config.PolarConfig{
		AccessToken:      "polar_oat_abcdefghijklmnopqrstuvwxyz",
		Server:           "sandbox",
		MonthlyProductID: "prod_monthly",
		YearlyProductID:  "prod_yearly",
	}
	lister := stubProducts{products: []polar.Product{{ID: "prod_monthly", Name: "Pro"}}}

	rec, body := getDebug(t, NewDebugHandler(zap.NewNop(), cfg, lister))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), cfg.AccessToken)
	assert.Equal(t, "polar_oat_ab...", body["accessTokenPrefix"])
	assert.Equal(t, true, body["monthlyProductFound"])
	assert.Equal(t, false, body["yearlyProductFound"])
	assert.Equal(t, false, body["webhookSecretConfigured"])
}

func TestDebugPolar_Unconfigured(t *testing.T) {
	_, body := getDebug(t, NewDebugHandler(zap.NewNop(), config.PolarConfig{}, nil))

	assert.Equal(t, false, body["configured"])
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, body["products"])
}

func TestDebugPolar_ListFailure(t *testing.T) {
	cfg := config.PolarConfig{AccessToken: "polar_oat_abcdefghijklmnopqrstuvwxyz"}

	_, body := getDebug(t, NewDebugHandler(zap.NewNop(), cfg, stubProducts{err: assert.AnError}))

	assert.Equal(t, true, body["configured"])
	assert.Equal(t, assert.AnError.Error(), body["error"])
}
