package identitysvc

import (
	"context"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"

	"github.com/CovEducation/Website-sub000/core"
)

// GoogleService verifies Google Sign-In ID tokens issued for our OAuth client.
type GoogleService struct {
	clientID string
	verifier googleAuthIDTokenVerifier.Verifier
}

var _ core.IdentityVerifier = (*GoogleService)(nil)

func NewGoogleService(conf *core.Config) *GoogleService {
	return &GoogleService{clientID: conf.Identity.GoogleClientID}
}

func (svc *GoogleService) Verify(ctx context.Context, token string) (core.Identity, error) {
	if err := ctx.Err(); err != nil {
		return core.Identity{}, err
	}
	if err := svc.verifier.VerifyIDToken(token, []string{svc.clientID}); err != nil {
		return core.Identity{}, core.ErrInvalidToken
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(token)
	if err != nil || claimSet.Sub == "" {
		return core.Identity{}, core.ErrInvalidToken
	}
	return core.Identity{UID: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}
