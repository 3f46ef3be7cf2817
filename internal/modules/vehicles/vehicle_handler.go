package vehicles

import (
	"net/http"

	"fleet-dispatch/internal/models"
	"fleet-dispatch/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the fleet.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new vehicle handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterVehicle(c echo.Context) error {
	var req models.RegisterVehicleRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	vehicle, err := h.svc.RegisterVehicle(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, vehicle)
}

func (h *Handler) ListVehicles(c echo.Context) error {
	if _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	filter := models.VehicleListFilter{
		Sort:          c.QueryParam("sort"),
		AvailableOnly: c.QueryParam("available") == "true",
	}

	views, err := h.svc.ListVehicles(c.Request().Context(), filter)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, views)
}

func (h *Handler) GetVehicle(c echo.Context) error {
	if _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	vehicle, err := h.svc.GetVehicle(c.Request().Context(), c.Param("vehicleId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, vehicle)
}
