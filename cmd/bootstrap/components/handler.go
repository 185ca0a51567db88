package components

import (
	"scanledger/internal/handler"
	"scanledger/internal/handler/api"
	"scanledger/internal/handler/middleware"
	"scanledger/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		func(cfg config.Config) config.CookieConfig { return cfg.Cookie },
		api.NewAuthHandler,
		api.NewQRCodeHandler,
		api.NewScanHandler,
		api.NewSettlementHandler,
		api.NewBillingHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
