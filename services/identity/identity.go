// Package identitysvc implements the identity verifiers selected by the identity.provider setting.
package identitysvc

import (
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

func NewVerifier(conf *core.Config) (core.IdentityVerifier, error) {
	switch conf.Identity.Provider {
	case core.IdentityJWT, "":
		return NewJWTService(conf), nil
	case core.IdentityGoogle:
		if conf.Identity.GoogleClientID == "" {
			return nil, errors.New("google identity provider requires identity.googleClientID")
		}
		return NewGoogleService(conf), nil
	}
	return nil, errors.Errorf("unknown identity provider %q", conf.Identity.Provider)
}
