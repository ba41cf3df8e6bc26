package service

import (
	"regexp"
	"strings"
	"testing"

	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, secret string) *Service {
	t.Helper()
	svc, err := NewService(config.Config{
		Environment:     "test",
		IntegritySecret: secret,
	})
	require.NoError(t, err)
	return svc.(*Service)
}

func TestFingerprint_DeterministicHex(t *testing.T) {
	svc := newTestService(t, "secret-a")
	userID := snowflake.ID(1234567890)

	first := svc.Fingerprint(userID, 280, "2026-03-14")
	second := svc.Fingerprint(userID, 280, "2026-03-14")

	assert.Equal(t, first, second)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), first)
}

func TestFingerprint_SensitiveToEveryInput(t *testing.T) {
	svc := newTestService(t, "secret-a")
	userID := snowflake.ID(1234567890)
	base := svc.Fingerprint(userID, 280, "2026-03-14")

	assert.NotEqual(t, base, svc.Fingerprint(snowflake.ID(1234567891), 280, "2026-03-14"))
	assert.NotEqual(t, base, svc.Fingerprint(userID, 281, "2026-03-14"))
	assert.NotEqual(t, base, svc.Fingerprint(userID, 280, "2026-03-15"))
}

func TestVerify(t *testing.T) {
	svc := newTestService(t, "secret-a")
	userID := snowflake.ID(42)
	hash := svc.Fingerprint(userID, 500, "2026-01-31")

	assert.True(t, svc.Verify(userID, 500, "2026-01-31", hash))
	assert.False(t, svc.Verify(userID, 501, "2026-01-31", hash))
	assert.False(t, svc.Verify(userID, 500, "2026-01-31", strings.Repeat("0", 64)))
	assert.False(t, svc.Verify(userID, 500, "2026-01-31", ""))
}

func TestVerify_DifferentSecretRejects(t *testing.T) {
	a := newTestService(t, "secret-a")
	b := newTestService(t, "secret-b")
	userID := snowflake.ID(42)

	hash := a.Fingerprint(userID, 500, "2026-01-31")
	assert.False(t, b.Verify(userID, 500, "2026-01-31", hash))
}

func TestNewService_ProductionRequiresSecret(t *testing.T) {
	_, err := NewService(config.Config{Environment: "production"})
	assert.Error(t, err)

	svc, err := NewService(config.Config{Environment: "development"})
	require.NoError(t, err)
	assert.NotEmpty(t, svc.Fingerprint(snowflake.ID(1), 0, "2026-01-01"))
}
