package jwt

import (
	"time"

	"skyledger/pkg/customerrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims carried by every issued token. Username rides in the registered
// subject; the numeric user id and the token kind are custom claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Kind   string `json:"kind"`
}

type JWTManager struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTManager(secretKey string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewAccessToken issues a short-lived access token for the given user.
func (manager *JWTManager) NewAccessToken(username string, userID int64) (string, error) {
	return manager.sign(username, userID, KindAccess, manager.accessTTL)
}

// NewRefreshToken issues a long-lived refresh token for the given user.
func (manager *JWTManager) NewRefreshToken(username string, userID int64) (string, error) {
	return manager.sign(username, userID, KindRefresh, manager.refreshTTL)
}

func (manager *JWTManager) sign(username string, userID int64, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Kind:   kind,
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(manager.secretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify checks signature, expiry and required claims of a token of the
// given kind and returns its claims. Every failure mode collapses to
// ErrInvalidToken: an expired token and a tampered one are indistinguishable
// to the caller.
func (manager *JWTManager) Verify(tokenString, kind string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(manager.secretKey), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, customerrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, customerrors.ErrInvalidToken
	}
	if claims.Subject == "" || claims.UserID == 0 || claims.Kind != kind {
		return Claims{}, customerrors.ErrInvalidToken
	}
	return *claims, nil
}
