package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/domain"
	"carrental/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	errNoToken     = errors.New("no token")
	errTokenFailed = errors.New("token failed")
)

// Claims carries the user id under "id", the shape issued by the account service.
// Subject is accepted as a fallback.
type Claims struct {
	UserID int64 `json:"id,omitempty"`
	jwt.RegisteredClaims
}

type identityKey struct{}

// Authenticator resolves bearer tokens to users and enforces roles and per-user limits.
type Authenticator struct {
	secret  []byte
	issuer  string
	users   domain.UserStore
	limits  domain.RateLimitRepository
	perUser int
	window  time.Duration
	logger  zerolog.Logger
}

func NewAuthenticator(cfg config.APIConfig, users domain.UserStore, limits domain.RateLimitRepository, logger *zerolog.Logger) *Authenticator {
	return &Authenticator{
		secret:  []byte(cfg.Auth.JWTSecret),
		issuer:  cfg.Auth.Issuer,
		users:   users,
		limits:  limits,
		perUser: cfg.RateLimit.PerUserRequests,
		window:  time.Duration(cfg.RateLimit.PerUserWindow) * time.Second,
		logger:  logger.With().Str("component", "auth").Logger(),
	}
}

// Require wraps next so that only authenticated callers with role reach it.
func (a *Authenticator) Require(role string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		switch {
		case errors.Is(err, errNoToken):
			writeError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		case errors.Is(err, errTokenFailed):
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		case err != nil:
			a.logger.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("resolve caller")
			writeError(w, http.StatusInternalServerError, msgServerError)
			return
		}

		identity := models.Identity{UserID: user.ID, Role: user.Role}
		if !identity.HasRole(role) {
			writeError(w, http.StatusForbidden, roleDenied(role))
			return
		}

		if !a.allow(r.Context(), user.ID) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, identity)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) (*models.User, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return nil, errNoToken
	}
	raw := strings.TrimSpace(header[7:])
	if raw == "" {
		return nil, errNoToken
	}

	userID, err := a.ParseToken(raw)
	if err != nil {
		a.logger.Debug().Err(err).Msg("token rejected")
		return nil, errTokenFailed
	}

	user, err := a.users.GetUserByID(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errTokenFailed
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ParseToken validates an HS256 token and returns the user id it names.
func (a *Authenticator) ParseToken(raw string) (int64, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(_ *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return 0, err
	}

	if claims.UserID > 0 {
		return claims.UserID, nil
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("token does not name a user")
	}
	return id, nil
}

func (a *Authenticator) allow(ctx context.Context, userID int64) bool {
	if a.limits == nil || a.perUser <= 0 || a.window <= 0 {
		return true
	}
	ok, err := a.limits.CheckRateLimit(ctx, "user:"+strconv.FormatInt(userID, 10), a.perUser, a.window)
	if err != nil {
		a.logger.Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed, allowing request")
		return true
	}
	return ok
}

func roleDenied(role string) string {
	if role == models.RoleOwner {
		return "Not authorized as an owner"
	}
	return "Not authorized as a " + role
}

// IssueToken signs a token for userID valid for the configured TTL.
func IssueToken(cfg config.APIAuthConfig, userID int64, now time.Time) (string, time.Time, error) {
	ttl, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse token ttl: %w", err)
	}
	expires := now.Add(ttl)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// IdentityFromContext returns the caller attached by Require.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}
