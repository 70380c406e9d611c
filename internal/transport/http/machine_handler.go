package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/you/smart-dobi/internal/service"
)

type MachineHandler struct {
	svc *service.MachineService
}

func NewMachineHandler(svc *service.MachineService) *MachineHandler {
	return &MachineHandler{svc: svc}
}

// GET /api/machines
func (h *MachineHandler) List(c *gin.Context) {
	machines, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GET /api/machines/:id
func (h *MachineHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// POST /api/machines/:id/start
// The amount field is kept for wire compatibility but the charge is
// always the machine's configured price.
func (h *MachineHandler) Start(c *gin.Context) {
	var in struct {
		WhatsappNumber string  `json:"whatsapp_number"`
		Amount         float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	txn, err := h.svc.Reserve(c.Request.Context(), c.Param("id"), in.WhatsappNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	if txn != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Machine started", "transaction_id": txn.TransactionID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine reserved"})
}

// POST /api/machines/:id/verify-payment
func (h *MachineHandler) VerifyPayment(c *gin.Context) {
	var in struct {
		Verified bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	txn, err := h.svc.VerifyPayment(c.Request.Context(), c.Param("id"), in.Verified)
	if err != nil {
		writeError(c, err)
		return
	}
	if txn != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Machine started", "transaction_id": txn.TransactionID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}

// PUT /api/machines/:id/status?status=&time_remaining=
// Controller report; query parameters, no body.
func (h *MachineHandler) UpdateStatus(c *gin.Context) {
	status := c.Query("status")
	timeRemaining, _ := strconv.Atoi(c.DefaultQuery("time_remaining", "0"))
	if timeRemaining < 0 {
		timeRemaining = 0
	}

	if err := h.svc.Report(c.Request.Context(), c.Param("id"), status, timeRemaining); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine status updated"})
}

// POST /api/machines/:id/reminder
func (h *MachineHandler) Reminder(c *gin.Context) {
	if err := h.svc.Reminder(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder sent"})
}

// PATCH /api/machines/:id/admin-status (session required)
func (h *MachineHandler) AdminStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.svc.AdminSetStatus(c.Request.Context(), c.Param("id"), in.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine status updated"})
}
