package api

import (
	"net/http"

	reqdto "scanledger/internal/handler/dto/request"
	resdto "scanledger/internal/handler/dto/response"
	"scanledger/internal/handler/middleware"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ScanHandler struct {
	scanCommands     commands.ScanCommands
	referralCommands commands.ReferralCommands
}

func NewScanHandler(scanCommands commands.ScanCommands, referralCommands commands.ReferralCommands) *ScanHandler {
	return &ScanHandler{
		scanCommands:     scanCommands,
		referralCommands: referralCommands,
	}
}

// @Summary Process QR scan
// @Description Validate a scan and settle its reward. Anonymous scans are
// @Description allowed; an authenticated customer earns against their account.
// @Tags scans
// @Accept json
// @Produce json
// @Param request body reqdto.ProcessScanRequest true "Scan request"
// @Success 200 {object} resdto.ScanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /scans [post]
func (h *ScanHandler) ProcessScan(c *gin.Context) {
	var req reqdto.ProcessScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	orderTotal, err := req.ParseOrderTotal()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order total",
		})
		return
	}

	params := commands.ScanParams{
		QRCodeID:     req.QRCodeID,
		OrderTotal:   orderTotal,
		Location:     req.Location,
		ReferralCode: req.GetReferralCode(),
	}
	if userID, ok := middleware.GetUserID(c); ok {
		params.CustomerID = &userID
	}

	result, err := h.scanCommands.ProcessScan(c.Request.Context(), params)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrQRCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "QR code not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	// A denied scan is a successful validation with a negative answer, not an
	// HTTP error.
	c.JSON(http.StatusOK, resdto.FromScanResult(result))
}

// @Summary Record referral scan
// @Description Log a visit through a sales agent's referral QR code
// @Tags referrals
// @Accept json
// @Produce json
// @Param request body reqdto.RecordReferralScanRequest true "Referral scan request"
// @Success 201 {object} resdto.ReferralScanResponse
// @Failure 400 {object} map[string]string
// @Router /referral-scans [post]
func (h *ScanHandler) RecordReferralScan(c *gin.Context) {
	var req reqdto.RecordReferralScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.referralCommands.RecordScan(c.Request.Context(), commands.RecordReferralScanParams{
		ReferralCode: req.ReferralCode,
		UserAgent:    c.GetHeader("User-Agent"),
	})
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid referral code",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.ReferralScanResponse{ID: id})
}
