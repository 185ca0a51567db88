package bootstrap

import (
	"scanledger/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	CommissionModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
