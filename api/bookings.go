package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zvrva/slotbooker/internal/domain"
	"github.com/zvrva/slotbooker/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CustomerID  uuid.UUID   `json:"customer_id" binding:"required"`
	ServiceID   uuid.UUID   `json:"service_id" binding:"required"`
	ScheduledAt string      `json:"scheduled_at" binding:"required"`
	SlotIDs     []uuid.UUID `json:"slot_ids"`
	Quantity    int         `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type recordPaymentRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	ProcessorID string `json:"processor_id"`
	Outcome     string `json:"outcome" binding:"required"`
}

type snapshotResponse struct {
	ServiceName    string `json:"service_name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	TotalCents     int64  `json:"total_cents"`
}

type bookingResponse struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	ServiceID   uuid.UUID         `json:"service_id"`
	ScheduledAt string            `json:"scheduled_at"`
	Status      string            `json:"status"`
	SlotIDs     []uuid.UUID       `json:"slot_ids"`
	Snapshot    *snapshotResponse `json:"snapshot,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

type paymentResponse struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	ProcessorID string    `json:"processor_id"`
	Outcome     string    `json:"outcome"`
	CreatedAt   string    `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PATCH("/:id/status", h.updateStatus)
	router.POST("/:id/payments", h.recordPayment)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be RFC3339"})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CustomerID:  req.CustomerID,
		ServiceID:   req.ServiceID,
		ScheduledAt: scheduledAt,
		SlotIDs:     req.SlotIDs,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	var filter domain.BookingFilter
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return
		}
		filter.CustomerID = &id
	}
	if raw := c.Query("vendor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor_id"})
			return
		}
		filter.VendorID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.BookingStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &status
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) recordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), booking.RecordPaymentInput{
		BookingID:   id,
		AmountCents: req.AmountCents,
		ProcessorID: req.ProcessorID,
		Outcome:     domain.PaymentOutcome(req.Outcome),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, paymentResponse{
		ID:          payment.ID,
		BookingID:   payment.BookingID,
		AmountCents: payment.AmountCents,
		ProcessorID: payment.ProcessorID,
		Outcome:     string(payment.Outcome),
		CreatedAt:   payment.CreatedAt.Format(time.RFC3339),
	})
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		ServiceID:   b.ServiceID,
		ScheduledAt: b.ScheduledAt.Format(time.RFC3339),
		Status:      string(b.Status),
		SlotIDs:     b.SlotIDs,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
	if b.Snapshot != nil {
		resp.Snapshot = &snapshotResponse{
			ServiceName:    b.Snapshot.ServiceName,
			UnitPriceCents: b.Snapshot.UnitPriceCents,
			Quantity:       b.Snapshot.Quantity,
			TotalCents:     b.Snapshot.TotalCents,
		}
	}
	return resp
}
