package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/usecase/checkin"
	"github.com/gin-gonic/gin"
)

type CheckInHandler struct {
	checkInUseCase *checkin.CheckInUseCase
}

func NewCheckInHandler(checkInUseCase *checkin.CheckInUseCase) *CheckInHandler {
	return &CheckInHandler{
		checkInUseCase: checkInUseCase,
	}
}

// Schedule handles POST /check-ins
// @Summary Schedule a safety check-in
// @Description Schedule a check-in for an upcoming in-person meeting
// @Tags check-ins
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body checkin.ScheduleRequest true "Check-in schedule data"
// @Success 201 {object} domain.CheckIn
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /check-ins [post]
func (h *CheckInHandler) Schedule(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req checkin.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.checkInUseCase.Schedule(c.Request.Context(), userID.(int), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSchedule) || errors.Is(err, domain.ErrNoTrustedContacts) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to schedule check-in"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Activate handles POST /check-ins/:id/activate
// @Summary Activate a scheduled check-in
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Check-in ID"
// @Success 200 {object} domain.CheckIn
// @Failure 404 {object} ErrorResponse
// @Router /check-ins/{id}/activate [post]
func (h *CheckInHandler) Activate(c *gin.Context) {
	result, err := h.checkInUseCase.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Complete handles POST /check-ins/:id/complete
// @Summary Confirm safety for an active check-in
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Check-in ID"
// @Success 200 {object} domain.CheckIn
// @Failure 404 {object} ErrorResponse
// @Router /check-ins/{id}/complete [post]
func (h *CheckInHandler) Complete(c *gin.Context) {
	result, err := h.checkInUseCase.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel handles POST /check-ins/:id/cancel
// @Summary Cancel a scheduled or active check-in
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Check-in ID"
// @Success 200 {object} domain.CheckIn
// @Failure 404 {object} ErrorResponse
// @Router /check-ins/{id}/cancel [post]
func (h *CheckInHandler) Cancel(c *gin.Context) {
	result, err := h.checkInUseCase.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TriggerEmergency handles POST /check-ins/:id/emergency
// @Summary Manually raise an emergency for an active check-in
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Check-in ID"
// @Success 200 {object} domain.CheckIn
// @Failure 404 {object} ErrorResponse
// @Router /check-ins/{id}/emergency [post]
func (h *CheckInHandler) TriggerEmergency(c *gin.Context) {
	result, err := h.checkInUseCase.TriggerEmergency(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShareMeeting handles POST /check-ins/:id/share
// @Summary Share meeting details with opted-in trusted contacts
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Check-in ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /check-ins/{id}/share [post]
func (h *CheckInHandler) ShareMeeting(c *gin.Context) {
	if err := h.checkInUseCase.ShareMeeting(c.Request.Context(), c.Param("id")); err != nil {
		h.transitionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /check-ins/:id
// @Summary Get a check-in by id
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Check-in ID"
// @Success 200 {object} domain.CheckIn
// @Failure 404 {object} ErrorResponse
// @Router /check-ins/{id} [get]
func (h *CheckInHandler) Get(c *gin.Context) {
	result, err := h.checkInUseCase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History handles GET /check-ins
// @Summary List the current user's check-ins
// @Tags check-ins
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} domain.CheckIn
// @Failure 401 {object} ErrorResponse
// @Router /check-ins [get]
func (h *CheckInHandler) History(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.checkInUseCase.GetUserHistory(c.Request.Context(), userID.(int), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list check-ins"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CheckInHandler) transitionError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrCheckInNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "check-in not found in the expected state"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "check-in operation failed"})
}
