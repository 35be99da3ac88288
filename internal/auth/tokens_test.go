package auth

import (
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/learnhub-api/internal/config"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef-extra")

func newTokenServices(t *testing.T) map[string]TokenService {
	t.Helper()

	services := map[string]TokenService{}
	for _, strategy := range []string{config.TokenStrategyJWT, config.TokenStrategyPaseto} {
		svc, err := NewTokenService(config.AuthConfig{TokenSecret: testSecret, TokenStrategy: strategy})
		require.NoError(t, err)
		services[strategy] = svc
	}
	return services
}

func TestTokenService_RoundTrip(t *testing.T) {
	for name, svc := range newTokenServices(t) {
		t.Run(name, func(t *testing.T) {
			id := uuid.New()

			token, err := svc.CreateToken(id, "ann@x.com", time.Hour)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, id.String(), claims.UserID)
			assert.Equal(t, "ann@x.com", claims.Email)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	for name, svc := range newTokenServices(t) {
		t.Run(name, func(t *testing.T) {
			token, err := svc.CreateToken(uuid.New(), "ann@x.com", -time.Minute)
			require.NoError(t, err)

			_, err = svc.VerifyToken(token)
			assert.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestPasetoService_MissingExpiration(t *testing.T) {
	svc, err := NewPasetoService(testSecret[:pasetoKeyLen])
	require.NoError(t, err)

	token := paseto.NewToken()
	token.SetString("user_id", uuid.New().String())
	token.SetString("email", "ann@x.com")
	token.SetIssuedAt(time.Now())

	_, err = svc.VerifyToken(token.V4Encrypt(svc.symmetricKey, nil))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Tampered(t *testing.T) {
	for name, svc := range newTokenServices(t) {
		t.Run(name, func(t *testing.T) {
			token, err := svc.CreateToken(uuid.New(), "ann@x.com", time.Hour)
			require.NoError(t, err)

			_, err = svc.VerifyToken(token + "x")
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = svc.VerifyToken("not-a-token")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_RejectsOtherSecret(t *testing.T) {
	a, err := NewJWTService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	b, err := NewJWTService([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	token, err := a.CreateToken(uuid.New(), "ann@x.com", time.Hour)
	require.NoError(t, err)

	_, err = b.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Errors(t *testing.T) {
	_, err := NewTokenService(config.AuthConfig{TokenSecret: testSecret, TokenStrategy: "saml"})
	assert.Error(t, err)

	_, err = NewTokenService(config.AuthConfig{TokenSecret: []byte("short"), TokenStrategy: config.TokenStrategyPaseto})
	assert.Error(t, err)

	_, err = NewJWTService([]byte("short"))
	assert.Error(t, err)
}
