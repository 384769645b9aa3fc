package creditHandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"skyledger/pkg/customerrors"

	"github.com/labstack/echo/v4"
)

// userID reads the authenticated id placed in the context by the auth middleware.
func userID(c echo.Context) int64 {
	id, _ := c.Get("userID").(int64)
	return id
}

type CreditHandler struct {
	CreditUsecase CreditUsecase
}

type CreditUsecase interface {

	//Balance reads the current credit balance.
	Balance(ctx context.Context, userID int64) (int64, error)

	//Purchase adds any positive amount to the balance.
	Purchase(ctx context.Context, userID, amount int64) (int64, error)

	//Spend debits an amount, failing closed when the balance is short.
	Spend(ctx context.Context, userID, amount int64) (int64, error)
}

func NewCreditHandler(creditUsecase CreditUsecase) *CreditHandler {
	return &CreditHandler{CreditUsecase: creditUsecase}
}

func (h *CreditHandler) GetCredits(c echo.Context) error {
	balance, err := h.CreditUsecase.Balance(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"credits": balance})
}

// Purchase takes the amount as a query parameter, matching the public API.
func (h *CreditHandler) Purchase(c echo.Context) error {
	amount, err := strconv.ParseInt(c.QueryParam("amount"), 10, 64)
	if err != nil {
		return customerrors.NewValidation("amount must be an integer")
	}
	if _, err := h.CreditUsecase.Purchase(c.Request().Context(), userID(c), amount); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d credits purchased successfully.", amount),
	})
}

func (h *CreditHandler) Use(c echo.Context) error {
	if _, err := h.CreditUsecase.Spend(c.Request().Context(), userID(c), 1); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Credit used successfully"})
}
