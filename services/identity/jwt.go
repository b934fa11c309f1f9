package identitysvc

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

// Claims represents the identity claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// JWTService verifies (and, for development and tests, issues) HS256 tokens signed with the app secret key.
type JWTService struct {
	key        []byte
	issuer     string
	expiration time.Duration
	nowFunc    func() time.Time
}

var _ core.IdentityVerifier = (*JWTService)(nil)

func NewJWTService(conf *core.Config) *JWTService {
	return &JWTService{
		key:        []byte(conf.SecretKey),
		issuer:     conf.AppName,
		expiration: conf.Server.JWTExpirationDelta,
		nowFunc:    time.Now,
	}
}

// GenerateToken generates a signed JWT token string representing the identity.
func (svc *JWTService) GenerateToken(id core.Identity) (string, error) {
	now := svc.nowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    svc.issuer,
			Subject:   id.UID,
			ExpiresAt: now.Add(svc.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: id.Email,
		Name:  id.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(svc.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (svc *JWTService) Verify(_ context.Context, token string) (core.Identity, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return svc.key, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return core.Identity{}, core.ErrInvalidToken
	}
	if claims.Issuer != svc.issuer {
		return core.Identity{}, core.ErrInvalidToken
	}
	return core.Identity{UID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
