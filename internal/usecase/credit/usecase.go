package credit

import (
	"context"

	"skyledger/domain/entity"
	"skyledger/pkg/customerrors"
)

type Ledger interface {
	GetByID(ctx context.Context, id int64) (entity.User, error)
	Credit(ctx context.Context, id, amount int64) (int64, error)
	Debit(ctx context.Context, id, amount int64) (int64, error)
}

type CreditUsecase struct {
	ledger Ledger
}

func NewCreditUsecase(ledger Ledger) *CreditUsecase {
	return &CreditUsecase{ledger: ledger}
}

// Balance reads the current credit balance.
func (uc *CreditUsecase) Balance(ctx context.Context, userID int64) (int64, error) {
	u, err := uc.ledger.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Credits, nil
}

// Purchase adds amount to the balance. Any positive amount is accepted;
// there is no upper bound and no payment verification behind it.
func (uc *CreditUsecase) Purchase(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, customerrors.NewValidation("amount must be positive")
	}
	return uc.ledger.Credit(ctx, userID, amount)
}

// Spend debits amount, failing closed on a short balance.
func (uc *CreditUsecase) Spend(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, customerrors.NewValidation("amount must be positive")
	}
	return uc.ledger.Debit(ctx, userID, amount)
}
