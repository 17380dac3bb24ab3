package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zvrva/slotbooker/internal/domain"
	"github.com/zvrva/slotbooker/internal/service/slots"
)

type SlotHandler struct {
	service slots.SlotUseCase
}

type createSlotRequest struct {
	StartAt     string `json:"start_at" binding:"required"`
	EndAt       string `json:"end_at" binding:"required"`
	IsRecurring bool   `json:"is_recurring"`
}

type slotResponse struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"service_id"`
	StartAt     string    `json:"start_at"`
	EndAt       string    `json:"end_at"`
	Status      string    `json:"status"`
	IsRecurring bool      `json:"is_recurring"`
}

func NewSlotHandler(service slots.SlotUseCase) *SlotHandler {
	return &SlotHandler{service: service}
}

func (h *SlotHandler) Register(router *gin.RouterGroup) {
	router.POST("/services/:serviceID/slots", h.create)
	router.GET("/services/:serviceID/slots", h.list)
	router.DELETE("/slots/:id", h.delete)
}

func (h *SlotHandler) create(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}
	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_at must be RFC3339"})
		return
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_at must be RFC3339"})
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), slots.CreateSlotInput{
		ServiceID:   serviceID,
		StartAt:     startAt,
		EndAt:       endAt,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSlotResponse(slot))
}

func (h *SlotHandler) list(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		to = &t
	}

	listed, err := h.service.ListSlots(c.Request.Context(), serviceID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]slotResponse, 0, len(listed))
	for i := range listed {
		out = append(out, toSlotResponse(&listed[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *SlotHandler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteSlot(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toSlotResponse(s *domain.Slot) slotResponse {
	return slotResponse{
		ID:          s.ID,
		ServiceID:   s.ServiceID,
		StartAt:     s.StartAt.Format(time.RFC3339),
		EndAt:       s.EndAt.Format(time.RFC3339),
		Status:      string(s.Status),
		IsRecurring: s.IsRecurring,
	}
}
