package api

import (
	"net/http"

	reqdto "scanledger/internal/handler/dto/request"
	resdto "scanledger/internal/handler/dto/response"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingCommands commands.BillingCommands
}

func NewBillingHandler(billingCommands commands.BillingCommands) *BillingHandler {
	return &BillingHandler{
		billingCommands: billingCommands,
	}
}

// @Summary Prorate a refund
// @Description Compute the unused remainder of a cancelled billing period
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ProrateRefundRequest true "Proration request"
// @Success 200 {object} resdto.ProrateRefundResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /billing/prorate-refund [post]
func (h *BillingHandler) ProrateRefund(c *gin.Context) {
	var req reqdto.ProrateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	original, err := req.ParseOriginalAmount()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid original amount",
		})
		return
	}

	result, err := h.billingCommands.ProrateRefund(c.Request.Context(), commands.ProrateRefundParams{
		OriginalAmount: original,
		DaysUsed:       req.DaysUsed,
		TotalDays:      req.TotalDays,
	})
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidProration):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Days used must be within the billing period",
			})
		case errs.Is(err, commands.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Original amount cannot be negative",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.ProrateRefundResponse{
		UsedAmount:   result.UsedAmount.StringFixed(2),
		RefundAmount: result.RefundAmount.StringFixed(2),
	})
}
