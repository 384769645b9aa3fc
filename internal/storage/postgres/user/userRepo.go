package user

import (
	"context"
	"errors"
	"time"

	"skyledger/domain/entity"
	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UserRepo struct {
	pool    *pgxpool.Pool
	Metrics *metrics.Metrics
}

func NewUserRepo(pool *pgxpool.Pool, metrics *metrics.Metrics) *UserRepo {
	return &UserRepo{
		pool:    pool,
		Metrics: metrics,
	}
}

// CreateUser inserts a new user with the default credit balance. Duplicate
// username or email is rejected by the unique constraints, so two concurrent
// registrations with the same identity cannot both succeed.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (u entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("insert_user", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, password_hash, credits, created_at`,
		username, email, passwordHash).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt,
	)
	if err != nil {
		err = mapUniqueViolation(err)
		return entity.User{}, err
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (u entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_user_by_id", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, credits, created_at
		 FROM users WHERE id = $1`, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.User{}, customerrors.ErrNotFound
	}
	if err != nil {
		return entity.User{}, err
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (u entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_user_by_username", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, credits, created_at
		 FROM users WHERE username = $1`, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.User{}, customerrors.ErrNotFound
	}
	if err != nil {
		return entity.User{}, err
	}
	return u, nil
}

// UpdateIdentity changes username and email. Collisions with another user
// surface as the same conflicts as registration.
func (r *UserRepo) UpdateIdentity(ctx context.Context, id int64, username, email string) (u entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("update_user_identity", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		`UPDATE users SET username = $2, email = $3 WHERE id = $1
		 RETURNING id, username, email, password_hash, credits, created_at`,
		id, username, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.User{}, customerrors.ErrNotFound
	}
	if err != nil {
		err = mapUniqueViolation(err)
		return entity.User{}, err
	}
	return u, nil
}

// DeleteUser removes the account. Owned locations go with it via
// ON DELETE CASCADE, in the same statement's transaction.
func (r *UserRepo) DeleteUser(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("delete_user", start, err)
	}(time.Now())

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = customerrors.ErrNotFound
		return err
	}
	return nil
}

// Credit adds amount to the balance and returns the new balance.
func (r *UserRepo) Credit(ctx context.Context, id, amount int64) (balance int64, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("credit_user", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		`UPDATE users SET credits = credits + $2 WHERE id = $1 RETURNING credits`,
		id, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, customerrors.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	r.Metrics.CreditsMoved.WithLabelValues("credit").Add(float64(amount))
	return balance, nil
}

// Debit subtracts amount from the balance, failing closed when the balance
// is short. The check and the subtraction are one statement, so concurrent
// debits against the same row serialize on the row lock and can never drive
// the balance negative.
func (r *UserRepo) Debit(ctx context.Context, id, amount int64) (balance int64, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("debit_user", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		`UPDATE users SET credits = credits - $2
		 WHERE id = $1 AND credits >= $2
		 RETURNING credits`,
		id, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.disambiguateDebit(ctx, id)
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	r.Metrics.CreditsMoved.WithLabelValues("debit").Add(float64(amount))
	return balance, nil
}

// A zero-row debit means either the user is gone or the balance is short.
func (r *UserRepo) disambiguateDebit(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return customerrors.ErrNotFound
	}
	return customerrors.ErrInsufficientCredits
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return customerrors.ErrUsernameTaken
		case "users_email_key":
			return customerrors.ErrEmailTaken
		}
	}
	return err
}
