package odontogram

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentio/dentio/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("dentist", "assistant", "reception"))
	read.GET("/patients/:id/odontogram", h.Chart)
	read.GET("/patients/:id/odontogram/:tooth", h.Tooth)

	clinical := api.Group("", auth.RequireRole("dentist", "assistant"))
	clinical.PUT("/patients/:id/odontogram/:tooth", h.Record)
}

func (h *Handler) Chart(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	chart, err := h.svc.Chart(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, chart)
}

func (h *Handler) Tooth(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	rec, err := h.svc.Tooth(c.Request().Context(), patientID, c.Param("tooth"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "tooth record not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Record(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in RecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.ToothNumber = c.Param("tooth")

	recordedBy := uuid.Nil
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		if parsed, err := uuid.Parse(uid); err == nil {
			recordedBy = parsed
		}
	}
	rec, err := h.svc.Record(c.Request().Context(), patientID, recordedBy, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}
