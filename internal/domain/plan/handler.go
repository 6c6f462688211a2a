package plan

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("dentist", "assistant", "reception"))
	read.GET("/plans", h.ListPlans)
	read.GET("/plans/:id", h.GetPlan)

	clinical := api.Group("", auth.RequireRole("dentist", "assistant"))
	clinical.POST("/plans", h.CreatePlan)
	clinical.POST("/plans/:id/items", h.AddItem)
	clinical.PATCH("/items/:id", h.EditItem)
	clinical.DELETE("/items/:id", h.RemoveItem)
	clinical.POST("/plans/:id/present", h.Present)
	clinical.POST("/plans/:id/accept", h.Accept)
	clinical.POST("/plans/:id/reject", h.Reject)
	clinical.POST("/plans/:id/cancel", h.Cancel)
	clinical.POST("/items/:id/complete", h.CompleteItem)
	clinical.POST("/items/:id/link", h.LinkEpisode)
}

// httpErr maps domain failures onto status codes so every endpoint reports
// the taxonomy the same way.
func httpErr(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrPlanLocked):
		return echo.NewHTTPError(http.StatusLocked, err.Error())
	case errors.Is(err, ErrConcurrentModification):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrEpisodeLinkConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var in CreatePlanInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePlan(c.Request().Context(), in)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	detail, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{Limit: pg.Limit, Offset: pg.Offset}
	if raw := c.QueryParam("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = patientID
	}
	if st := c.QueryParam("state"); st != "" {
		f.States = append(f.States, State(st))
	}
	plans, total, err := h.svc.ListPlans(c.Request().Context(), f)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(plans, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddItem(c echo.Context) error {
	planID, err := pathID(c)
	if err != nil {
		return err
	}
	var in AddItemInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.AddItem(c.Request().Context(), planID, in)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) EditItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}
	var in EditItemInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.EditItem(c.Request().Context(), itemID, in)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveItem(c.Request().Context(), itemID); err != nil {
		return httpErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Present(c echo.Context) error {
	return h.lifecycle(c, h.svc.Present)
}

func (h *Handler) Accept(c echo.Context) error {
	return h.lifecycle(c, h.svc.Accept)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Cancel(c.Request().Context(), id, body.Reason)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Reject(c.Request().Context(), id, body.Reason)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

// lifecycle factors the shared shape of the parameterless transition
// endpoints.
func (h *Handler) lifecycle(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := fn(c.Request().Context(), id)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.svc.CompleteItemManually(c.Request().Context(), itemID)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) LinkEpisode(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		EpisodeID  uuid.UUID  `json:"episode_id"`
		OccurredAt *time.Time `json:"occurred_at,omitempty"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.LinkEpisodeToItem(c.Request().Context(), itemID, body.EpisodeID, body.OccurredAt)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, item)
}
