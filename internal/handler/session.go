package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/dates"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/session"
	"github.com/dharmasatrya/tripplanner/internal/trip"
)

type SessionHandler struct {
	store  *session.Store
	logger *zap.Logger
}

func NewSessionHandler(store *session.Store, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

type sessionResponse struct {
	ID string `json:"id"`
	session.View
}

func (h *SessionHandler) Create(c echo.Context) error {
	id, ctrl := h.store.Create()
	return c.JSON(http.StatusCreated, sessionResponse{ID: id, View: ctrl.View()})
}

func (h *SessionHandler) Get(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) SetCityCount(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	var req models.CityCountRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}
	if err := ctrl.Model().SetCityCount(req.Count); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

// SetSlotText records typed text for a city field. Suggestions for it
// arrive asynchronously and are read back with Suggestions.
func (h *SessionHandler) SetSlotText(c echo.Context) error {
	ctrl, slot, err := h.slot(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req models.SlotTextRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := ctrl.Model().SetCityName(slot, req.Text); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *SessionHandler) Suggestions(c echo.Context) error {
	ctrl, slot, err := h.slot(c)
	if err != nil {
		return h.fail(c, err)
	}

	suggestions := ctrl.Model().Suggestions(slot)
	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(http.StatusOK, models.SuggestionsResponse{
		Slot:        string(slot),
		Suggestions: suggestions,
	})
}

func (h *SessionHandler) SelectSuggestion(c echo.Context) error {
	ctrl, slot, err := h.slot(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req models.SelectSuggestionRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}
	if err := ctrl.Model().SelectSuggestion(slot, req.City); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) SetStopDays(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return invalidRequest(c, err)
	}

	var req models.StopDaysRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}
	if err := ctrl.Model().SetMiddleDays(index, req.Days); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) SetDates(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	var req models.DatesRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}

	start, err := dates.Parse(req.StartDate)
	if err != nil {
		return h.fail(c, models.ErrInvalidDate)
	}
	var end time.Time
	if req.EndDate != nil {
		if end, err = dates.Parse(*req.EndDate); err != nil {
			return h.fail(c, models.ErrInvalidDate)
		}
	}

	m := ctrl.Model()
	m.SetStartDate(start)
	if req.EndDate != nil {
		if err := m.SetEndDate(end); err != nil {
			return h.fail(c, err)
		}
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) SetPassengers(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	var req models.PassengersRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := ctrl.Model().SetPassengers(req.Passengers()); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

// Submit blocks until the optimizer answers. An unreachable optimizer is
// not an error here: the session moves on to an empty result list.
func (h *SessionHandler) Submit(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := ctrl.Submit(c.Request().Context()); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) SelectItinerary(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return invalidRequest(c, err)
	}
	if _, err := ctrl.SelectItinerary(index); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) Back(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := ctrl.Back(); err != nil {
		return h.fail(c, err)
	}
	return h.view(c, ctrl)
}

func (h *SessionHandler) NewSearch(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	ctrl.NewSearch()
	return h.view(c, ctrl)
}

func (h *SessionHandler) Booking(c echo.Context) error {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	index, err := strconv.Atoi(c.Param("leg"))
	if err != nil {
		return invalidRequest(c, err)
	}

	link, err := ctrl.OpenBooking(c.Request().Context(), index)
	if err != nil {
		return h.fail(c, err)
	}
	comparison, err := ctrl.ComparisonLink(index)
	if err != nil {
		return h.fail(c, err)
	}

	resp := models.BookingResponse{
		Leg:           index,
		URL:           link.URL,
		Source:        string(link.Source),
		ComparisonURL: comparison,
	}
	if legs := ctrl.Legs(); index < len(legs) {
		resp.From = legs[index].From
		resp.To = legs[index].To
		resp.Date = dates.Format(legs[index].Date)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) slot(c echo.Context) (*session.Controller, trip.SlotKey, error) {
	ctrl, err := h.store.Get(c.Param("id"))
	if err != nil {
		return nil, "", err
	}
	slot, err := trip.ParseSlot(c.Param("slot"))
	if err != nil {
		return nil, "", err
	}
	return ctrl, slot, nil
}

func (h *SessionHandler) view(c echo.Context, ctrl *session.Controller) error {
	return c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: ctrl.View()})
}

func (h *SessionHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case models.IsValidationError(err):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	h.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("session_id", c.Param("id")),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func invalidRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Failed to parse request: " + err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
