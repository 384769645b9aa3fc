package location

import (
	"context"
	"errors"
	"testing"

	"skyledger/domain/entity"
	"skyledger/internal/provider/geoip"
	"skyledger/internal/provider/weather"
	"skyledger/pkg/customerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLocationRepo struct {
	listFn   func(ctx context.Context, userID int64) ([]entity.Location, error)
	createFn func(ctx context.Context, loc entity.Location, cost int64) (entity.Location, int64, error)
	deleteFn func(ctx context.Context, userID, locationID int64) error

	createCalls int
}

func (m *mockLocationRepo) ListByUser(ctx context.Context, userID int64) ([]entity.Location, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []entity.Location{}, nil
}

func (m *mockLocationRepo) CreateCharged(ctx context.Context, loc entity.Location, cost int64) (entity.Location, int64, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, loc, cost)
	}
	loc.ID = 1
	return loc, 1999, nil
}

func (m *mockLocationRepo) Delete(ctx context.Context, userID, locationID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, locationID)
	}
	return nil
}

type mockGeo struct {
	fn func(ctx context.Context, ip string) (geoip.Geo, error)
}

func (m *mockGeo) Locate(ctx context.Context, ip string) (geoip.Geo, error) {
	if m.fn != nil {
		return m.fn(ctx, ip)
	}
	return geoip.Geo{Latitude: 51.5, Longitude: -0.1, City: "London", Country: "United Kingdom"}, nil
}

type mockWeather struct {
	fn func(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

func (m *mockWeather) ByCoordinates(ctx context.Context, lat, lon float64) (weather.Conditions, error) {
	if m.fn != nil {
		return m.fn(ctx, lat, lon)
	}
	return weather.Conditions{Temperature: 283.2, Description: "light rain"}, nil
}

type mockDescriber struct {
	fn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockDescriber) Describe(ctx context.Context, prompt string) (string, error) {
	if m.fn != nil {
		return m.fn(ctx, prompt)
	}
	return "A drizzly autumn day in London.", nil
}

func TestAddChargesExactlyOnce(t *testing.T) {
	repo := &mockLocationRepo{}
	uc := NewLocationUsecase(repo, &mockGeo{}, &mockWeather{}, &mockDescriber{})

	loc, balance, err := uc.Add(context.Background(), 7, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, int64(1999), balance)
	assert.Equal(t, "London", loc.City)
	assert.Equal(t, int64(7), loc.UserID)
	assert.InDelta(t, 283.2, loc.Temperature, 0.001)
	assert.NotEmpty(t, loc.Description)
}

func TestAddDoesNotChargeWhenGeoFails(t *testing.T) {
	repo := &mockLocationRepo{}
	geo := &mockGeo{fn: func(context.Context, string) (geoip.Geo, error) {
		return geoip.Geo{}, customerrors.WrapUpstream(errors.New("timeout"), "geoip")
	}}
	uc := NewLocationUsecase(repo, geo, &mockWeather{}, &mockDescriber{})

	_, _, err := uc.Add(context.Background(), 7, "203.0.113.9")
	assert.ErrorIs(t, err, customerrors.ErrUpstream)
	assert.Zero(t, repo.createCalls)
}

func TestAddDoesNotChargeWhenWeatherFails(t *testing.T) {
	repo := &mockLocationRepo{}
	w := &mockWeather{fn: func(context.Context, float64, float64) (weather.Conditions, error) {
		return weather.Conditions{}, customerrors.WrapUpstream(errors.New("503"), "weather")
	}}
	uc := NewLocationUsecase(repo, &mockGeo{}, w, &mockDescriber{})

	_, _, err := uc.Add(context.Background(), 7, "203.0.113.9")
	assert.ErrorIs(t, err, customerrors.ErrUpstream)
	assert.Zero(t, repo.createCalls)
}

func TestAddDoesNotChargeWhenDescriberFails(t *testing.T) {
	repo := &mockLocationRepo{}
	d := &mockDescriber{fn: func(context.Context, string) (string, error) {
		return "", customerrors.WrapUpstream(errors.New("quota"), "textgen")
	}}
	uc := NewLocationUsecase(repo, &mockGeo{}, &mockWeather{}, d)

	_, _, err := uc.Add(context.Background(), 7, "203.0.113.9")
	assert.ErrorIs(t, err, customerrors.ErrUpstream)
	assert.Zero(t, repo.createCalls)
}

func TestAddSurfacesInsufficientCredits(t *testing.T) {
	repo := &mockLocationRepo{
		createFn: func(context.Context, entity.Location, int64) (entity.Location, int64, error) {
			return entity.Location{}, 0, customerrors.ErrInsufficientCredits
		},
	}
	uc := NewLocationUsecase(repo, &mockGeo{}, &mockWeather{}, &mockDescriber{})

	_, _, err := uc.Add(context.Background(), 7, "203.0.113.9")
	assert.ErrorIs(t, err, customerrors.ErrInsufficientCredits)
}

func TestDeleteForwardsOwnership(t *testing.T) {
	repo := &mockLocationRepo{
		deleteFn: func(_ context.Context, userID, locationID int64) error {
			if userID != 7 || locationID != 3 {
				return customerrors.ErrNotFound
			}
			return nil
		},
	}
	uc := NewLocationUsecase(repo, &mockGeo{}, &mockWeather{}, &mockDescriber{})

	require.NoError(t, uc.Delete(context.Background(), 7, 3))
	assert.ErrorIs(t, uc.Delete(context.Background(), 8, 3), customerrors.ErrNotFound)
}
