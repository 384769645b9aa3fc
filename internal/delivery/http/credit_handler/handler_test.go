package creditHandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	creditHandler "skyledger/internal/delivery/http/credit_handler"
	"skyledger/pkg/customerrors"
	errHandler "skyledger/pkg/error_handler"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUsecase struct {
	balanceFn  func(ctx context.Context, userID int64) (int64, error)
	purchaseFn func(ctx context.Context, userID, amount int64) (int64, error)
	spendFn    func(ctx context.Context, userID, amount int64) (int64, error)
}

func (m *mockUsecase) Balance(ctx context.Context, userID int64) (int64, error) {
	if m.balanceFn != nil {
		return m.balanceFn(ctx, userID)
	}
	return 2000, nil
}

func (m *mockUsecase) Purchase(ctx context.Context, userID, amount int64) (int64, error) {
	if m.purchaseFn != nil {
		return m.purchaseFn(ctx, userID, amount)
	}
	return 2000 + amount, nil
}

func (m *mockUsecase) Spend(ctx context.Context, userID, amount int64) (int64, error) {
	if m.spendFn != nil {
		return m.spendFn(ctx, userID, amount)
	}
	return 2000 - amount, nil
}

func newTestServer(uc creditHandler.CreditUsecase) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = errHandler.HandleError

	h := creditHandler.NewCreditHandler(uc)
	asUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("userID", int64(1))
			return next(c)
		}
	}

	e.GET("/api/v2/credits", h.GetCredits, asUser)
	e.POST("/api/v2/credits/purchase", h.Purchase, asUser)
	e.POST("/api/v2/credits/usage", h.Use, asUser)
	return e
}

func do(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestGetCredits(t *testing.T) {
	e := newTestServer(&mockUsecase{})

	rec := do(e, http.MethodGet, "/api/v2/credits")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2000), decode(t, rec)["credits"])
}

func TestPurchase(t *testing.T) {
	var gotAmount int64
	e := newTestServer(&mockUsecase{
		purchaseFn: func(_ context.Context, _ int64, amount int64) (int64, error) {
			gotAmount = amount
			return 2250, nil
		},
	})

	rec := do(e, http.MethodPost, "/api/v2/credits/purchase?amount=250")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(250), gotAmount)
	assert.Equal(t, "250 credits purchased successfully.", decode(t, rec)["message"])
}

func TestPurchaseRejectsNonNumericAmount(t *testing.T) {
	e := newTestServer(&mockUsecase{})

	rec := do(e, http.MethodPost, "/api/v2/credits/purchase?amount=lots")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUse(t *testing.T) {
	var gotAmount int64
	e := newTestServer(&mockUsecase{
		spendFn: func(_ context.Context, _ int64, amount int64) (int64, error) {
			gotAmount = amount
			return 1999, nil
		},
	})

	rec := do(e, http.MethodPost, "/api/v2/credits/usage")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), gotAmount)
	assert.Equal(t, "Credit used successfully", decode(t, rec)["message"])
}

func TestUseInsufficientCredits(t *testing.T) {
	e := newTestServer(&mockUsecase{
		spendFn: func(context.Context, int64, int64) (int64, error) {
			return 0, customerrors.ErrInsufficientCredits
		},
	})

	rec := do(e, http.MethodPost, "/api/v2/credits/usage")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient credits", decode(t, rec)["detail"])
}
