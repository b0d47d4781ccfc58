package api

import (
	"errors"
	"net/http"

	"flynext/internal/domain/invoice"
	"flynext/internal/handler/middleware"
	"flynext/internal/pkg/errs"
	"flynext/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceQueries queries.InvoiceQueries
}

func NewInvoiceHandler(invoiceQueries queries.InvoiceQueries) *InvoiceHandler {
	return &InvoiceHandler{invoiceQueries: invoiceQueries}
}

// @Summary Get invoice for a booking record
// @Description Structured invoice for a confirmed or cancelled booking. With ?format=document the rendered document bytes are returned instead.
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param format query string false "Set to 'document' for rendered output"
// @Success 200 {object} queries.InvoiceView
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /records/{id}/invoice [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if c.Query("format") == "document" {
		doc, err := h.invoiceQueries.RenderDocument(c.Request.Context(), userID, bookingID)
		if err != nil {
			h.renderInvoiceError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", doc)
		return
	}

	view, err := h.invoiceQueries.GetByBookingID(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.renderInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *InvoiceHandler) renderInvoiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, errs.ErrBookingAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
	case errors.Is(err, invoice.ErrBookingPending):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking has not been checked out"})
	case errors.Is(err, errs.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
