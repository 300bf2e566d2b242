package http

import (
	"errors"
	"net/http"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/executor"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusFor maps domain errors to HTTP codes; anything unknown is a 500.
func statusFor(err error) int {
	var ve *change.ValidationError
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &ve), errors.Is(err, executor.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, change.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, change.ErrNotDraft):
		return http.StatusConflict
	case errors.Is(err, change.ErrNoDraftsToSubmit), errors.Is(err, change.ErrImmutableField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, log *zap.Logger, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	var ve *change.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(code, ErrorResponse{Error: "validation failed", Details: []FieldError{{Field: ve.Field, Message: ve.Message}}})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bindAndValidate writes the 400 response itself and reports whether to continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
