package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/astauriabidco-maker/fle-expert/internal/integrity/domain"
	"github.com/bwmarrin/snowflake"
)

type Service struct {
	secret []byte
}

// NewService builds the fingerprint service from the configured secret. The
// secret is kept server-side only; it is never logged and never serialized.
func NewService(cfg config.Config) (domain.Service, error) {
	secret := cfg.IntegritySecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("integrity secret is not configured")
		}
		// Development fallback keeps local runs working; production startup
		// is rejected by config validation before reaching this point.
		secret = "dev-only-integrity-secret"
	}
	return &Service{secret: []byte(secret)}, nil
}

func (s *Service) Fingerprint(userID snowflake.ID, score int, isoDate string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d|%s", userID.String(), score, isoDate)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) Verify(userID snowflake.ID, score int, isoDate string, presentedHash string) bool {
	expected := s.Fingerprint(userID, score, isoDate)
	return hmac.Equal([]byte(expected), []byte(presentedHash))
}
