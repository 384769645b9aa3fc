package user

import (
	"context"
	"errors"
	"strings"

	"skyledger/domain/entity"
	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"
	"skyledger/pkg/hasher"
	"skyledger/pkg/jwt"
)

// Compared against when a login names an unknown user, so that the miss
// costs the same bcrypt work as a wrong password and leaks nothing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserRepo interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (entity.User, error)
	GetByID(ctx context.Context, id int64) (entity.User, error)
	GetByUsername(ctx context.Context, username string) (entity.User, error)
	UpdateIdentity(ctx context.Context, id int64, username, email string) (entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type UserUsecase struct {
	repo    UserRepo
	tokens  *jwt.JWTManager
	metrics *metrics.Metrics
}

func NewUserUsecase(repo UserRepo, tokens *jwt.JWTManager, m *metrics.Metrics) *UserUsecase {
	return &UserUsecase{
		repo:    repo,
		tokens:  tokens,
		metrics: m,
	}
}

// RegisterUser hashes the password and creates the account. Uniqueness of
// username and email is enforced by the store.
func (uc *UserUsecase) RegisterUser(ctx context.Context, username, email, password string) (entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return entity.User{}, customerrors.NewValidation("username and password are required")
	}

	passwordHash, err := hasher.Hash(password)
	if err != nil {
		return entity.User{}, err
	}
	return uc.repo.CreateUser(ctx, username, email, passwordHash)
}

// LoginUser authenticates the credentials and returns a fresh token pair.
// Unknown usernames and wrong passwords are rejected identically.
func (uc *UserUsecase) LoginUser(ctx context.Context, username, password string) (entity.TokenPair, error) {
	u, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, customerrors.ErrNotFound) {
			_, _ = hasher.Verify(password, dummyHash)
			uc.metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return entity.TokenPair{}, customerrors.ErrInvalidCredentials
		}
		return entity.TokenPair{}, err
	}

	ok, err := hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return entity.TokenPair{}, err
	}
	if !ok {
		uc.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return entity.TokenPair{}, customerrors.ErrInvalidCredentials
	}

	pair, err := uc.issuePair(u.Username, u.ID)
	if err != nil {
		return entity.TokenPair{}, err
	}
	uc.metrics.LoginAttempts.WithLabelValues("success").Inc()
	return pair, nil
}

// RefreshSession trades a valid refresh token for a new pair. The subject is
// re-read from the store so a renamed user gets tokens for the current
// identity; a deleted user cannot refresh.
func (uc *UserUsecase) RefreshSession(ctx context.Context, refreshToken string) (entity.TokenPair, error) {
	claims, err := uc.tokens.Verify(refreshToken, jwt.KindRefresh)
	if err != nil {
		return entity.TokenPair{}, err
	}

	u, err := uc.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, customerrors.ErrNotFound) {
			return entity.TokenPair{}, customerrors.ErrInvalidToken
		}
		return entity.TokenPair{}, err
	}
	return uc.issuePair(u.Username, u.ID)
}

// VerifyUser validates an access token and returns its claims.
func (uc *UserUsecase) VerifyUser(token string) (jwt.Claims, error) {
	return uc.tokens.Verify(token, jwt.KindAccess)
}

func (uc *UserUsecase) GetProfile(ctx context.Context, id int64) (entity.User, error) {
	return uc.repo.GetByID(ctx, id)
}

// UpdateProfile changes username/email and, because the username is baked
// into every token, re-issues the pair. Submitting the values already on
// record is rejected.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, id int64, username, email string) (entity.User, entity.TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || email == "" {
		return entity.User{}, entity.TokenPair{}, customerrors.NewValidation("username and email are required")
	}

	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return entity.User{}, entity.TokenPair{}, err
	}
	if current.Username == username && current.Email == email {
		return entity.User{}, entity.TokenPair{}, customerrors.NewValidation("no changes submitted")
	}

	updated, err := uc.repo.UpdateIdentity(ctx, id, username, email)
	if err != nil {
		return entity.User{}, entity.TokenPair{}, err
	}

	pair, err := uc.issuePair(updated.Username, updated.ID)
	if err != nil {
		return entity.User{}, entity.TokenPair{}, err
	}
	return updated, pair, nil
}

func (uc *UserUsecase) DeleteProfile(ctx context.Context, id int64) error {
	return uc.repo.DeleteUser(ctx, id)
}

func (uc *UserUsecase) issuePair(username string, id int64) (entity.TokenPair, error) {
	access, err := uc.tokens.NewAccessToken(username, id)
	if err != nil {
		return entity.TokenPair{}, err
	}
	refresh, err := uc.tokens.NewRefreshToken(username, id)
	if err != nil {
		return entity.TokenPair{}, err
	}
	return entity.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
