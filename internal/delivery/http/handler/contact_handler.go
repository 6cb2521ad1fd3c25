package handler

import (
	"errors"
	"net/http"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContactHandler struct {
	contactRepo repository.ContactRepository
}

func NewContactHandler(contactRepo repository.ContactRepository) *ContactHandler {
	return &ContactHandler{
		contactRepo: contactRepo,
	}
}

// ContactRequest is the create/update body for a trusted contact.
type ContactRequest struct {
	DisplayName string  `json:"display_name" binding:"required"`
	Phone       *string `json:"phone" binding:"omitempty,e164"`
	Email       *string `json:"email" binding:"omitempty,email"`
	AlertsOptIn bool    `json:"alerts_opt_in"`
}

// List handles GET /contacts
// @Summary List the current user's trusted contacts
// @Tags contacts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.TrustedContact
// @Failure 401 {object} ErrorResponse
// @Router /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	contacts, err := h.contactRepo.GetUserContacts(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list contacts"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// Create handles POST /contacts
// @Summary Add a trusted contact
// @Tags contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ContactRequest true "Contact data"
// @Success 201 {object} domain.TrustedContact
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	contact := &domain.TrustedContact{
		ID:          uuid.NewString(),
		UserID:      userID.(int),
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Email:       req.Email,
		AlertsOptIn: req.AlertsOptIn,
	}
	if err := h.contactRepo.Create(c.Request.Context(), contact); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create contact"})
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// Update handles PUT /contacts/:id
// @Summary Update a trusted contact
// @Tags contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body ContactRequest true "Contact data"
// @Success 200 {object} domain.TrustedContact
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	contact, err := h.contactRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.contactError(c, err)
		return
	}
	if contact.UserID != userID.(int) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "contact not found"})
		return
	}

	contact.DisplayName = req.DisplayName
	contact.Phone = req.Phone
	contact.Email = req.Email
	contact.AlertsOptIn = req.AlertsOptIn
	if err := h.contactRepo.Update(c.Request.Context(), contact); err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Delete handles DELETE /contacts/:id
// @Summary Remove a trusted contact
// @Tags contacts
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	contact, err := h.contactRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.contactError(c, err)
		return
	}
	if contact.UserID != userID.(int) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "contact not found"})
		return
	}

	if err := h.contactRepo.Delete(c.Request.Context(), contact.ID); err != nil {
		h.contactError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContactHandler) contactError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrContactNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "contact not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "contact operation failed"})
}
