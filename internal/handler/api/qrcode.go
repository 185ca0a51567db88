package api

import (
	"net/http"

	reqdto "scanledger/internal/handler/dto/request"
	resdto "scanledger/internal/handler/dto/response"
	"scanledger/internal/handler/middleware"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/commands"
	"scanledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QRCodeHandler struct {
	qrCodeCommands commands.QRCodeCommands
	qrCodeQueries  queries.QRCodeQueries
}

func NewQRCodeHandler(qrCodeCommands commands.QRCodeCommands, qrCodeQueries queries.QRCodeQueries) *QRCodeHandler {
	return &QRCodeHandler{
		qrCodeCommands: qrCodeCommands,
		qrCodeQueries:  qrCodeQueries,
	}
}

// @Summary Create QR code
// @Description Register a new redeemable QR code for a business
// @Tags qr-codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateQRCodeRequest true "QR code request"
// @Success 201 {object} resdto.QRCodeResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /qr-codes [post]
func (h *QRCodeHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.qrCodeCommands.Create(c.Request.Context(), actor, commands.CreateQRCodeParams{
		BusinessID: req.BusinessID,
		CodeType:   req.CodeType,
		Config:     req.ToConfig(),
	})
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	view, err := h.qrCodeQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, resdto.FromQRCodeView(view))
}

// @Summary Get QR code
// @Description Get QR code by ID
// @Tags qr-codes
// @Produce json
// @Security BearerAuth
// @Param id path string true "QR code ID"
// @Success 200 {object} resdto.QRCodeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /qr-codes/{id} [get]
func (h *QRCodeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid QR code ID format",
		})
		return
	}

	view, err := h.qrCodeQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errs.Is(err, queries.ErrQRCodeNotFound):
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

	c.JSON(http.StatusOK, resdto.FromQRCodeView(view))
}

// @Summary List business QR codes
// @Description List all QR codes belonging to a business
// @Tags qr-codes
// @Produce json
// @Security BearerAuth
// @Param business_id query string true "Business ID"
// @Success 200 {array} resdto.QRCodeResponse
// @Failure 400 {object} map[string]string
// @Router /qr-codes [get]
func (h *QRCodeHandler) List(c *gin.Context) {
	businessID, err := uuid.Parse(c.Query("business_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid business ID format",
		})
		return
	}

	views, err := h.qrCodeQueries.ListByBusiness(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.QRCodeResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromQRCodeView(v)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Deactivate QR code
// @Description Deactivate a QR code; scan history is kept
// @Tags qr-codes
// @Security BearerAuth
// @Param id path string true "QR code ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /qr-codes/{id}/deactivate [post]
func (h *QRCodeHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// @Summary Reactivate QR code
// @Description Reactivate a QR code; its scan counter resumes where it stopped
// @Tags qr-codes
// @Security BearerAuth
// @Param id path string true "QR code ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /qr-codes/{id}/reactivate [post]
func (h *QRCodeHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *QRCodeHandler) setActive(c *gin.Context, active bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid QR code ID format",
		})
		return
	}

	if active {
		err = h.qrCodeCommands.Reactivate(c.Request.Context(), actor, id)
	} else {
		err = h.qrCodeCommands.Deactivate(c.Request.Context(), actor, id)
	}
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *QRCodeHandler) abortWithMappedError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, commands.ErrQRCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "QR code not found",
		})
	case errs.Is(err, commands.ErrBusinessNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Business not found",
		})
	case errs.Is(err, commands.ErrNotCodeOwner):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not the owner of this QR code",
		})
	case errs.Is(err, commands.ErrDomainValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid QR code configuration",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func currentActor(c *gin.Context) (commands.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return commands.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return commands.Actor{}, false
	}
	return commands.Actor{UserID: userID, Role: role}, true
}
