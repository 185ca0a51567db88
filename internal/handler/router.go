package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"scanledger/internal/domain/user"
	"scanledger/internal/handler/api"
	"scanledger/internal/handler/middleware"
	"scanledger/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	qrCodeHandler *api.QRCodeHandler,
	scanHandler *api.ScanHandler,
	settlementHandler *api.SettlementHandler,
	billingHandler *api.BillingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, qrCodeHandler, scanHandler, settlementHandler, billingHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	qrCodeHandler *api.QRCodeHandler,
	scanHandler *api.ScanHandler,
	settlementHandler *api.SettlementHandler,
	billingHandler *api.BillingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: authHandler.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		// Scans stay open: a code on a shop window gets scanned by anyone.
		scans := apiGroup.Group("/scans")
		scans.Use(authMiddleware.OptionalAuth())
		{
			addRoutes(scans, []route{
				{Method: http.MethodPost, Path: "", Handler: scanHandler.ProcessScan},
			})
		}

		referrals := apiGroup.Group("/referral-scans")
		{
			addRoutes(referrals, []route{
				{Method: http.MethodPost, Path: "", Handler: scanHandler.RecordReferralScan},
			})
		}

		qrCodes := apiGroup.Group("/qr-codes")
		qrCodes.Use(authMiddleware.RequireAuth())
		{
			addRoutes(qrCodes, []route{
				{Method: http.MethodGet, Path: "", Handler: qrCodeHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: qrCodeHandler.Get},
			})

			businessOnly := qrCodes.Group("")
			businessOnly.Use(authMiddleware.RequireRoleAtLeast(user.RoleBusiness))
			addRoutes(businessOnly, []route{
				{Method: http.MethodPost, Path: "", Handler: qrCodeHandler.Create},
				{Method: http.MethodPost, Path: "/:id/deactivate", Handler: qrCodeHandler.Deactivate},
				{Method: http.MethodPost, Path: "/:id/reactivate", Handler: qrCodeHandler.Reactivate},
			})
		}

		settlements := apiGroup.Group("/settlements")
		settlements.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleBusiness))
		{
			addRoutes(settlements, []route{
				{Method: http.MethodPost, Path: "", Handler: settlementHandler.Settle},
				{Method: http.MethodGet, Path: "/summary", Handler: settlementHandler.Summary,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleAdmin)}},
				{Method: http.MethodGet, Path: "/:transaction_id", Handler: settlementHandler.Get},
			})
		}

		billing := apiGroup.Group("/billing")
		billing.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleBusiness))
		{
			addRoutes(billing, []route{
				{Method: http.MethodPost, Path: "/prorate-refund", Handler: billingHandler.ProrateRefund},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
