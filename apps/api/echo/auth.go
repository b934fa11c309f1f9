package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/user"
)

const (
	bearerScheme       = "Bearer "
	contextIdentityKey = "identity"
	contextAccountKey  = "account"
)

// authMiddleware verifies the bearer token and stores the caller's core.Identity in the context.
func authMiddleware(verifier core.IdentityVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerScheme) {
				return errUnauthorized
			}
			token := strings.TrimSpace(header[len(bearerScheme):])
			if token == "" {
				return errUnauthorized
			}

			id, err := verifier.Verify(ctx.Request().Context(), token)
			if err != nil {
				if errors.Is(err, core.ErrInvalidToken) {
					return errUnauthorized
				}
				return errors.Wrap(err, "verifying token")
			}
			ctx.Set(contextIdentityKey, id)
			return next(ctx)
		}
	}
}

// accountMiddleware requires the verified caller to have registered as a mentor or a parent.
func accountMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := getContextIdentity(ctx)
			if err != nil {
				return err
			}
			acc, err := svc.GetAccount(ctx.Request().Context(), id.UID)
			if err != nil {
				if errors.Is(err, user.ErrAccountNotFound) {
					return errAccountNotFound
				}
				return errors.Wrap(err, "finding account")
			}
			ctx.Set(contextAccountKey, acc)
			return next(ctx)
		}
	}
}

func mentorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if acc, err := getContextAccount(ctx); err != nil || !acc.IsMentor() {
			return errMentorOnly
		}
		return next(ctx)
	}
}

func parentOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if acc, err := getContextAccount(ctx); err != nil || !acc.IsParent() {
			return errParentOnly
		}
		return next(ctx)
	}
}

func getContextIdentity(ctx echo.Context) (core.Identity, error) {
	if id, ok := ctx.Get(contextIdentityKey).(core.Identity); ok {
		return id, nil
	}
	return core.Identity{}, errUnauthorized
}

func getContextAccount(ctx echo.Context) (user.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(user.Account); ok {
		return acc, nil
	}
	return user.Account{}, errAccountNotFound
}
