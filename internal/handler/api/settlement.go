package api

import (
	"net/http"
	"time"

	reqdto "scanledger/internal/handler/dto/request"
	resdto "scanledger/internal/handler/dto/response"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/commands"
	"scanledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettlementHandler struct {
	settlementCommands commands.SettlementCommands
	settlementQueries  queries.SettlementQueries
}

func NewSettlementHandler(settlementCommands commands.SettlementCommands, settlementQueries queries.SettlementQueries) *SettlementHandler {
	return &SettlementHandler{
		settlementCommands: settlementCommands,
		settlementQueries:  settlementQueries,
	}
}

// @Summary Settle transaction
// @Description Split a gross amount into platform commission, business payout
// @Description and agent shares. The transaction ID is the idempotency key:
// @Description a replay returns the original breakdown unchanged.
// @Tags settlements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SettleTransactionRequest true "Settlement request"
// @Success 200 {object} resdto.BreakdownResponse
// @Success 201 {object} resdto.BreakdownResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /settlements [post]
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req reqdto.SettleTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	gross, err := req.ParseGrossAmount()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid gross amount",
		})
		return
	}

	result, err := h.settlementCommands.SettleTransaction(c.Request.Context(), commands.SettleParams{
		TransactionID:   req.TransactionID,
		GrossAmount:     gross,
		TransactionType: req.TransactionType,
		BusinessID:      req.BusinessID,
		AgentID:         req.AgentID,
	})
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Gross amount must be positive",
			})
		case errs.Is(err, commands.ErrAgentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Sales agent not found",
			})
		case errs.Is(err, commands.ErrSettlementRace):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Transaction settlement is in progress",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromBreakdown(req.TransactionID, result.Breakdown, result.IsReplayed))
}

// @Summary Get settlement
// @Description Get the recorded commission breakdown for a transaction
// @Tags settlements
// @Produce json
// @Security BearerAuth
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} resdto.BreakdownResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /settlements/{transaction_id} [get]
func (h *SettlementHandler) Get(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("transaction_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid transaction ID format",
		})
		return
	}

	rec, err := h.settlementQueries.GetByTransactionID(c.Request.Context(), transactionID)
	if err != nil {
		switch {
		case errs.Is(err, queries.ErrSettlementNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Settlement not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromBreakdownRecord(rec))
}

// @Summary Platform commission summary
// @Description Aggregate settled amounts over a period
// @Tags settlements
// @Produce json
// @Security BearerAuth
// @Param from query string true "Period start (RFC 3339)"
// @Param to query string true "Period end (RFC 3339)"
// @Success 200 {object} resdto.CommissionSummaryResponse
// @Failure 400 {object} map[string]string
// @Router /settlements/summary [get]
func (h *SettlementHandler) Summary(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid from timestamp",
		})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid to timestamp",
		})
		return
	}

	view, err := h.settlementQueries.PlatformSummary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromCommissionSummary(view))
}
