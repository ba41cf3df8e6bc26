// Package auth issues and validates the bearer tokens protecting the
// candidate-facing API.
package auth

import (
	"errors"
	"time"

	"github.com/astauriabidco-maker/fle-expert/internal/clock"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Claims carries the authenticated identity. OrgID rides along so handlers
// do not need a membership lookup on every request; membership is still
// re-checked where it matters financially.
type Claims struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	jwt.RegisteredClaims
}

type TokenService struct {
	signingKey []byte
	issuer     string
	clock      clock.Clock
}

func NewTokenService(cfg config.Config, clk clock.Clock) (*TokenService, error) {
	secret := cfg.AuthJWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("auth jwt secret is not configured")
		}
		secret = "dev-only-auth-secret"
	}
	return &TokenService{
		signingKey: []byte(secret),
		issuer:     cfg.AppName,
		clock:      clk,
	}, nil
}

func (s *TokenService) Generate(userID, orgID snowflake.ID, expiresIn time.Duration) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID.String(),
		OrgID:  orgID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Identity is the parsed principal a validated token resolves to.
type Identity struct {
	UserID snowflake.ID
	OrgID  snowflake.ID
}

func (s *TokenService) Resolve(tokenString string) (Identity, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return Identity{}, err
	}
	userID, err := snowflake.ParseString(claims.UserID)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	orgID, err := snowflake.ParseString(claims.OrgID)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	return Identity{UserID: userID, OrgID: orgID}, nil
}

var Module = fx.Module("auth",
	fx.Provide(NewTokenService),
)
