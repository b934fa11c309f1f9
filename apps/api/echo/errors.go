package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

var (
	errUnauthorized        = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountNotFound     = echo.NewHTTPError(http.StatusForbidden, "account not registered")
	errHttpForbidden       = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errMentorOnly          = echo.NewHTTPError(http.StatusForbidden, "only mentors may do this")
	errParentOnly          = echo.NewHTTPError(http.StatusForbidden, "only parents may do this")
	errNotRequestingParent = echo.NewHTTPError(http.StatusForbidden, "parent must be the caller")
)

// errorResponse is the body of every error response.
type errorResponse struct {
	Err    string            `json:"err"`
	Fields map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var body errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				body.Err = msg
			} else {
				body.Err = http.StatusText(code)
			}
		case validator.ValidationErrors:
			body.Fields = make(map[string]string, len(origErr))
			for i, vErr := range origErr {
				msg := vErr.Translate(translator)
				body.Fields[vErr.Field()] = msg
				if i == 0 {
					body.Err = msg
				}
			}
			code = http.StatusBadRequest
		case *core.ValidationError:
			if origErr.Fields != nil {
				body.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					body.Fields[fErr.Field] = fErr.Error
				}
			}
			body.Err = origErr.Error()
			code = http.StatusBadRequest
		case *core.InvariantError:
			body.Err = origErr.Error()
			code = http.StatusBadRequest
		case *core.NotFoundError:
			body.Err = origErr.Error()
			code = http.StatusNotFound
		case *core.ConflictError:
			body.Err = origErr.Error()
			code = http.StatusConflict
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			body.Err = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if acc, aErr := getContextAccount(ctx); aErr == nil {
				args = append(args, acc)
			} else if id, iErr := getContextIdentity(ctx); iErr == nil {
				args = append(args, id) // not registered yet
			}
			logger.Error(msg, args...)

			if ctx.Echo().Debug {
				body.Err = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
