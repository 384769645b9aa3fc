package locationHandler

import (
	"context"
	"net/http"
	"strconv"

	"skyledger/domain/entity"
	"skyledger/pkg/customerrors"

	"github.com/labstack/echo/v4"
)

// userID reads the authenticated id placed in the context by the auth middleware.
func userID(c echo.Context) int64 {
	id, _ := c.Get("userID").(int64)
	return id
}

type LocationHandler struct {
	LocationUsecase LocationUsecase
}

type LocationUsecase interface {

	//List returns every location owned by the user.
	List(ctx context.Context, userID int64) ([]entity.Location, error)

	//Add enriches the client address via the upstream providers and commits
	//the location together with its one-credit charge.
	Add(ctx context.Context, userID int64, clientIP string) (entity.Location, int64, error)

	//Delete removes a location the user owns.
	Delete(ctx context.Context, userID, locationID int64) error
}

func NewLocationHandler(locationUsecase LocationUsecase) *LocationHandler {
	return &LocationHandler{LocationUsecase: locationUsecase}
}

func (h *LocationHandler) List(c echo.Context) error {
	locations, err := h.LocationUsecase.List(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) Add(c echo.Context) error {
	loc, balance, err := h.LocationUsecase.Add(c.Request().Context(), userID(c), c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Location saved successfully.",
		"ip":           c.RealIP(),
		"city":         loc.City,
		"country":      loc.Country,
		"latitude":     loc.Latitude,
		"longitude":    loc.Longitude,
		"temperature":  loc.Temperature,
		"weather_info": loc.Description,
		"credits":      balance,
	})
}

func (h *LocationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return customerrors.NewValidation("location id must be an integer")
	}
	if err := h.LocationUsecase.Delete(c.Request().Context(), userID(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Location deleted successfully"})
}
