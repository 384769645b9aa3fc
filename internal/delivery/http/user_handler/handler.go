package userHandler

import (
	"context"
	"net/http"

	"skyledger/domain/entity"

	"github.com/labstack/echo/v4"
)

// userID reads the authenticated id placed in the context by the auth middleware.
func userID(c echo.Context) int64 {
	id, _ := c.Get("userID").(int64)
	return id
}

type UserHandler struct {
	UserUsecase UserUsecase
}

type UserUsecase interface {

	//RegisterUser registers a new user and returns the created account.
	RegisterUser(ctx context.Context, username, email, password string) (entity.User, error)

	//LoginUser authenticates credentials and returns an access/refresh pair.
	LoginUser(ctx context.Context, username, password string) (entity.TokenPair, error)

	//RefreshSession trades a refresh token for a new pair.
	RefreshSession(ctx context.Context, refreshToken string) (entity.TokenPair, error)

	//GetProfile returns the account for the given id.
	GetProfile(ctx context.Context, id int64) (entity.User, error)

	//UpdateProfile changes identity fields and re-issues tokens.
	UpdateProfile(ctx context.Context, id int64, username, email string) (entity.User, entity.TokenPair, error)

	//DeleteProfile removes the account and everything it owns.
	DeleteProfile(ctx context.Context, id int64) error
}

func NewUserHandler(userUsecase UserUsecase) *UserHandler {
	return &UserHandler{UserUsecase: userUsecase}
}

// DTOs
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	_, err := h.UserUsecase.RegisterUser(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User registered successfully."})
}

// Login accepts the form-encoded credential pair and answers with a bearer
// token set.
func (h *UserHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	pair, err := h.UserUsecase.LoginUser(c.Request().Context(), username, password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":       "User successfully logged in.",
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
	})
}

func (h *UserHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	pair, err := h.UserUsecase.RefreshSession(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	u, err := h.UserUsecase.GetProfile(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":    u.Username,
		"email":   u.Email,
		"credits": u.Credits,
	})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, pair, err := h.UserUsecase.UpdateProfile(c.Request().Context(), userID(c), req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":          map[string]string{"username": u.Username, "email": u.Email},
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *UserHandler) DeleteProfile(c echo.Context) error {
	if err := h.UserUsecase.DeleteProfile(c.Request().Context(), userID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
