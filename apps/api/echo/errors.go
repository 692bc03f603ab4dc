package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "token not provided")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

const errMergeWriteMsg = "progress could not be written, run a backfill"

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *curriculum.ScopeConfigurationError:
			code = http.StatusUnprocessableEntity
			message = origErr.Error()
		default:
			switch {
			case origErr == curriculum.ErrReconcileInProgress:
				code = http.StatusConflict
				message = origErr.Error()
			case isMergeWriteError(err):
				code = http.StatusServiceUnavailable
				message = errMergeWriteMsg
				logger.Error(errMergeWriteMsg, err, requestExtras(ctx))
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), requestExtras(ctx))
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func isMergeWriteError(err error) bool {
	var mwe *curriculum.MergeWriteError
	return errors.As(err, &mwe)
}

func requestExtras(ctx echo.Context) map[string]interface{} {
	extras := map[string]interface{}{
		"method": ctx.Request().Method,
		"path":   ctx.Request().URL.Path,
	}
	if claims, err := getContextClaims(ctx); err == nil {
		extras["subject"] = claims.Subject
	}
	return extras
}
