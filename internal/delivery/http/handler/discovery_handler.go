package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/usecase/discovery"
	"github.com/gin-gonic/gin"
)

type DiscoveryHandler struct {
	discoveryUseCase *discovery.DiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase *discovery.DiscoveryUseCase) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUseCase: discoveryUseCase,
	}
}

// Search handles POST /discovery/search
// @Summary Search candidate co-founder profiles
// @Description Evaluate candidates against a filter specification
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.SearchFilter true "Filter specification"
// @Param limit query int false "Max results" default(20)
// @Success 200 {object} discovery.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /discovery/search [post]
func (h *DiscoveryHandler) Search(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var filter domain.SearchFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid filter"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	result, err := h.discoveryUseCase.Search(c.Request.Context(), userID.(int), &filter, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SavePreset handles POST /discovery/presets
// @Summary Save a filter preset
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.SearchFilter true "Filter preset"
// @Success 201 {object} domain.SearchFilter
// @Failure 400 {object} ErrorResponse
// @Router /discovery/presets [post]
func (h *DiscoveryHandler) SavePreset(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var preset domain.SearchFilter
	if err := c.ShouldBindJSON(&preset); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid preset"})
		return
	}

	result, err := h.discoveryUseCase.SavePreset(c.Request.Context(), userID.(int), &preset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save preset"})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListPresets handles GET /discovery/presets
// @Summary List saved filter presets
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.SearchFilter
// @Failure 401 {object} ErrorResponse
// @Router /discovery/presets [get]
func (h *DiscoveryHandler) ListPresets(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	presets, err := h.discoveryUseCase.ListPresets(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list presets"})
		return
	}
	c.JSON(http.StatusOK, presets)
}

// SearchWithPreset handles POST /discovery/presets/:id/search
// @Summary Search using a saved preset
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param id path string true "Preset ID"
// @Param limit query int false "Max results" default(20)
// @Success 200 {object} discovery.SearchResponse
// @Failure 404 {object} ErrorResponse
// @Router /discovery/presets/{id}/search [post]
func (h *DiscoveryHandler) SearchWithPreset(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	result, err := h.discoveryUseCase.SearchWithPreset(c.Request.Context(), userID.(int), c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrPresetNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "preset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeletePreset handles DELETE /discovery/presets/:id
// @Summary Delete a saved preset
// @Tags discovery
// @Security BearerAuth
// @Param id path string true "Preset ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /discovery/presets/{id} [delete]
func (h *DiscoveryHandler) DeletePreset(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.discoveryUseCase.DeletePreset(c.Request.Context(), userID.(int), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrPresetNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "preset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete preset"})
		return
	}
	c.Status(http.StatusNoContent)
}
