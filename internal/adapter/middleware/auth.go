package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Claims carried by the bearer token: sub is the actor id.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Auth resolves the caller from an HS256 bearer token and attaches it to the
// request context. Requests without a valid token get 401.
func Auth(secret []byte, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			caller, err := parseBearer(req.Header.Get(echo.HeaderAuthorization), secret)
			if err != nil {
				log.Debug("auth rejected", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, errBody(identity.ErrUnauthenticated.Error()))
			}
			c.SetRequest(req.WithContext(identity.WithCaller(req.Context(), caller)))
			return next(c)
		}
	}
}

func parseBearer(header string, secret []byte) (identity.Caller, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return identity.Caller{}, errors.New("missing bearer token")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return identity.Caller{}, err
	}
	if claims.Subject == "" {
		return identity.Caller{}, errors.New("token has no subject")
	}
	return identity.Caller{ActorID: claims.Subject, Roles: claims.Roles}, nil
}

// SignToken issues an HS256 token for sub; ttl <= 0 means no expiry.
func SignToken(secret []byte, sub string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  sub,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
