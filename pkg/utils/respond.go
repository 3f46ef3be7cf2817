package utils

import (
	"errors"
	"net/http"

	"fleet-dispatch/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes v as the JSON response body.
func RespondWithJSON(c echo.Context, status int, v interface{}) error {
	return c.JSON(status, v)
}

// RespondWithError writes a uniform error body.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// HandleServiceError maps service-layer sentinel errors onto HTTP status
// codes. Anything unrecognized is a server error; the detailed cause is
// logged, never leaked to the client.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrDriverUnavailable),
		errors.Is(err, models.ErrVehicleInUse):
		return RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		return RespondWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrMissingFields),
		errors.Is(err, models.ErrOrderNotAcceptable),
		errors.Is(err, models.ErrOrderNotCancellable),
		errors.Is(err, models.ErrOrderNotCompletable),
		errors.Is(err, models.ErrOrderNotAssignable),
		errors.Is(err, models.ErrInvalidLoadDetails),
		errors.Is(err, models.ErrNotADriver):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		c.Logger().Error("unhandled service error: ", err)
		return RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
