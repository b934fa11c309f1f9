package identitysvc

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovEducation/Website-sub000/core"
)

func newTestConfig() *core.Config {
	conf := &core.Config{AppName: "CovEducation", SecretKey: "s3cr3t"}
	conf.Server.JWTExpirationDelta = time.Hour
	return conf
}

func TestJWTService(t *testing.T) {
	conf := newTestConfig()
	svc := NewJWTService(conf)
	ctx := context.Background()
	id := core.Identity{UID: "uid-1", Email: "ada@test.cd", Name: "Ada"}

	token, err := svc.GenerateToken(id)
	require.NoError(t, err)

	got, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	t.Run("expired", func(t *testing.T) {
		old := NewJWTService(conf)
		old.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.GenerateToken(id)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.Equal(t, core.ErrInvalidToken, err)
	})

	t.Run("other key", func(t *testing.T) {
		other := newTestConfig()
		other.SecretKey = "lol"
		token, err := NewJWTService(other).GenerateToken(id)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.Equal(t, core.ErrInvalidToken, err)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := newTestConfig()
		other.AppName = "lol"
		token, err := NewJWTService(other).GenerateToken(id)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.Equal(t, core.ErrInvalidToken, err)
	})

	t.Run("no subject", func(t *testing.T) {
		token, err := svc.GenerateToken(core.Identity{Email: "ada@test.cd"})
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.Equal(t, core.ErrInvalidToken, err)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			StandardClaims: jwt.StandardClaims{Issuer: conf.AppName, Subject: "uid-1"},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.Equal(t, core.ErrInvalidToken, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify(ctx, "lol")
		assert.Equal(t, core.ErrInvalidToken, err)
	})
}

func TestNewVerifier(t *testing.T) {
	conf := newTestConfig()

	v, err := NewVerifier(conf)
	require.NoError(t, err)
	assert.IsType(t, &JWTService{}, v)

	conf.Identity.Provider = core.IdentityGoogle
	_, err = NewVerifier(conf)
	assert.Error(t, err)

	conf.Identity.GoogleClientID = "client.apps.googleusercontent.com"
	v, err = NewVerifier(conf)
	require.NoError(t, err)
	assert.IsType(t, &GoogleService{}, v)

	conf.Identity.Provider = "lol"
	_, err = NewVerifier(conf)
	assert.Error(t, err)
}
