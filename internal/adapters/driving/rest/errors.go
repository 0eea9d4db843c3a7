package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// errProfileUnavailable answers profile routes when no profile service is wired.
var errProfileUnavailable = echo.NewHTTPError(http.StatusServiceUnavailable, "profile service not configured")

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNoGoalSet:
		return http.StatusUnprocessableEntity
	case domain.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError renders domain and echo errors as ErrorBody.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		detail ErrorDetail
		he     *echo.HTTPError
	)
	if errors.As(err, &he) {
		status = he.Code
		detail = ErrorDetail{Kind: httpKind(he.Code), Message: httpMessage(he)}
	} else {
		kind := domain.Kind(err)
		status = statusFor(kind)
		detail = ErrorDetail{Kind: string(kind), Message: err.Error(), Retryable: domain.Retryable(err)}

		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			detail.Field = ve.Field
		}
		if kind == domain.KindInternal {
			s.log.Error("request failed", zap.Error(err))
			detail.Message = "internal error"
		}
	}

	if detail.Retryable {
		c.Response().Header().Set("Retry-After", "1")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorBody{Error: detail})
	}
	if err != nil {
		s.log.Warn("writing error response", zap.Error(err))
	}
}

// httpKind names a status the way domain kinds are named, e.g. "bad_request".
func httpKind(code int) string {
	return strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_"))
}

func httpMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}
