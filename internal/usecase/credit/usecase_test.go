package credit

import (
	"context"
	"sync"
	"testing"

	"skyledger/domain/entity"
	"skyledger/pkg/customerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger mimics the store's per-row atomicity: check-then-subtract under
// one lock, the way the SQL debit is a single guarded UPDATE.
type memLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
}

func newMemLedger(balances map[int64]int64) *memLedger {
	return &memLedger{balances: balances}
}

func (l *memLedger) GetByID(_ context.Context, id int64) (entity.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[id]
	if !ok {
		return entity.User{}, customerrors.ErrNotFound
	}
	return entity.User{ID: id, Credits: balance}, nil
}

func (l *memLedger) Credit(_ context.Context, id, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[id]; !ok {
		return 0, customerrors.ErrNotFound
	}
	l.balances[id] += amount
	return l.balances[id], nil
}

func (l *memLedger) Debit(_ context.Context, id, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[id]
	if !ok {
		return 0, customerrors.ErrNotFound
	}
	if balance < amount {
		return 0, customerrors.ErrInsufficientCredits
	}
	l.balances[id] -= amount
	return l.balances[id], nil
}

func TestBalance(t *testing.T) {
	uc := NewCreditUsecase(newMemLedger(map[int64]int64{1: 2000}))

	balance, err := uc.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)

	_, err = uc.Balance(context.Background(), 99)
	assert.ErrorIs(t, err, customerrors.ErrNotFound)
}

func TestPurchase(t *testing.T) {
	uc := NewCreditUsecase(newMemLedger(map[int64]int64{1: 2000}))

	balance, err := uc.Purchase(context.Background(), 1, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(2250), balance)
}

func TestPurchaseRejectsNonPositiveAmount(t *testing.T) {
	uc := NewCreditUsecase(newMemLedger(map[int64]int64{1: 2000}))

	for _, amount := range []int64{0, -1, -250} {
		_, err := uc.Purchase(context.Background(), 1, amount)
		assert.ErrorIs(t, err, customerrors.ErrValidation)
	}
}

func TestDebitCreditRoundTrip(t *testing.T) {
	uc := NewCreditUsecase(newMemLedger(map[int64]int64{1: 2000}))

	_, err := uc.Spend(context.Background(), 1, 300)
	require.NoError(t, err)
	balance, err := uc.Purchase(context.Background(), 1, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
}

func TestSpendFailsClosedOnShortBalance(t *testing.T) {
	ledger := newMemLedger(map[int64]int64{1: 5})
	uc := NewCreditUsecase(ledger)

	_, err := uc.Spend(context.Background(), 1, 6)
	assert.ErrorIs(t, err, customerrors.ErrInsufficientCredits)
	assert.Equal(t, int64(5), ledger.balances[1])
}

func TestConcurrentDebitsNeverOversell(t *testing.T) {
	ledger := newMemLedger(map[int64]int64{1: 1})
	uc := NewCreditUsecase(ledger)

	const attempts = 2
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := uc.Spend(context.Background(), 1, 1)
			results <- err
		}()
	}
	start.Done()

	var succeeded, refused int
	for i := 0; i < attempts; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, customerrors.ErrInsufficientCredits)
			refused++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, refused)
	assert.Equal(t, int64(0), ledger.balances[1])
}
