package location

import (
	"context"
	"fmt"

	"skyledger/domain/entity"
	"skyledger/internal/provider/geoip"
	"skyledger/internal/provider/weather"
)

// AddCost is the credits charged for one successful add-location operation.
const AddCost = 1

type LocationRepo interface {
	ListByUser(ctx context.Context, userID int64) ([]entity.Location, error)
	CreateCharged(ctx context.Context, loc entity.Location, cost int64) (entity.Location, int64, error)
	Delete(ctx context.Context, userID, locationID int64) error
}

type Geolocator interface {
	Locate(ctx context.Context, ip string) (geoip.Geo, error)
}

type WeatherProvider interface {
	ByCoordinates(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

type Describer interface {
	Describe(ctx context.Context, prompt string) (string, error)
}

type LocationUsecase struct {
	repo     LocationRepo
	geo      Geolocator
	weather  WeatherProvider
	describe Describer
}

func NewLocationUsecase(repo LocationRepo, geo Geolocator, w WeatherProvider, d Describer) *LocationUsecase {
	return &LocationUsecase{
		repo:     repo,
		geo:      geo,
		weather:  w,
		describe: d,
	}
}

func (uc *LocationUsecase) List(ctx context.Context, userID int64) ([]entity.Location, error) {
	return uc.repo.ListByUser(ctx, userID)
}

// Add resolves the client address to a place, fetches its weather, asks for
// a generated description, and only then commits the location together with
// the one-credit charge. A failure in any upstream call aborts before the
// ledger is touched, so an incomplete operation never costs anything.
func (uc *LocationUsecase) Add(ctx context.Context, userID int64, clientIP string) (entity.Location, int64, error) {
	geo, err := uc.geo.Locate(ctx, clientIP)
	if err != nil {
		return entity.Location{}, 0, err
	}

	cond, err := uc.weather.ByCoordinates(ctx, geo.Latitude, geo.Longitude)
	if err != nil {
		return entity.Location{}, 0, err
	}

	prompt := fmt.Sprintf("Describe the weather in %s, %s: %s at %.1fK.",
		geo.City, geo.Country, cond.Description, cond.Temperature)
	description, err := uc.describe.Describe(ctx, prompt)
	if err != nil {
		return entity.Location{}, 0, err
	}

	loc := entity.Location{
		UserID:      userID,
		City:        geo.City,
		Country:     geo.Country,
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
		Temperature: cond.Temperature,
		Description: description,
	}
	return uc.repo.CreateCharged(ctx, loc, AddCost)
}

func (uc *LocationUsecase) Delete(ctx context.Context, userID, locationID int64) error {
	return uc.repo.Delete(ctx, userID, locationID)
}
