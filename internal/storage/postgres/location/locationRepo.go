package location

import (
	"context"
	"errors"
	"time"

	"skyledger/domain/entity"
	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationRepo struct {
	pool    *pgxpool.Pool
	Metrics *metrics.Metrics
}

func NewLocationRepo(pool *pgxpool.Pool, metrics *metrics.Metrics) *LocationRepo {
	return &LocationRepo{
		pool:    pool,
		Metrics: metrics,
	}
}

// ListByUser returns every location owned by the user, newest first.
func (r *LocationRepo) ListByUser(ctx context.Context, userID int64) (locations []entity.Location, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_locations_by_user", start, err)
	}(time.Now())

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, city, country, latitude, longitude, temperature, description, created_at
		 FROM locations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations = []entity.Location{}
	for rows.Next() {
		var l entity.Location
		if err = rows.Scan(&l.ID, &l.UserID, &l.City, &l.Country, &l.Latitude,
			&l.Longitude, &l.Temperature, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

// CreateCharged inserts the location and debits the owner's balance in one
// transaction: the charge lands if and only if the row does. A short balance
// rolls everything back with ErrInsufficientCredits.
func (r *LocationRepo) CreateCharged(ctx context.Context, loc entity.Location, cost int64) (created entity.Location, balance int64, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("insert_location_charged", start, err)
	}(time.Now())

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return entity.Location{}, 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`UPDATE users SET credits = credits - $2
		 WHERE id = $1 AND credits >= $2
		 RETURNING credits`,
		loc.UserID, cost).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		err = customerrors.ErrInsufficientCredits
		return entity.Location{}, 0, err
	}
	if err != nil {
		return entity.Location{}, 0, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO locations (user_id, city, country, latitude, longitude, temperature, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, city, country, latitude, longitude, temperature, description, created_at`,
		loc.UserID, loc.City, loc.Country, loc.Latitude, loc.Longitude, loc.Temperature, loc.Description).Scan(
		&created.ID, &created.UserID, &created.City, &created.Country, &created.Latitude,
		&created.Longitude, &created.Temperature, &created.Description, &created.CreatedAt,
	)
	if err != nil {
		return entity.Location{}, 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return entity.Location{}, 0, err
	}
	r.Metrics.CreditsMoved.WithLabelValues("debit").Add(float64(cost))
	return created, balance, nil
}

// Delete removes a location only when it belongs to the given user.
func (r *LocationRepo) Delete(ctx context.Context, userID, locationID int64) (err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("delete_location", start, err)
	}(time.Now())

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM locations WHERE id = $1 AND user_id = $2`, locationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = customerrors.ErrNotFound
		return err
	}
	return nil
}
