package components

import (
	"scanledger/internal/infra/db"
	"scanledger/internal/infra/notify"
	"scanledger/internal/infra/readstore"
	"scanledger/internal/infra/uow"
	"scanledger/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

// Pool-backed read stores serve query endpoints outside any transaction. The
// unit of work builds its own tx-scoped instances for command reads.
var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewQRCodeReadStore,
			fx.As(new(queries.QRCodeReadStore)),
		),
		fx.Annotate(
			readstore.NewSettlementReadStore,
			fx.As(new(queries.SettlementReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
	),
)

var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
		notify.NewLogNotifier,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
