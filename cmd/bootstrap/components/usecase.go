package components

import (
	"scanledger/internal/domain/commission"
	"scanledger/internal/pkg/clock"
	"scanledger/internal/pkg/config"
	"scanledger/internal/usecase"
	"scanledger/internal/usecase/commands"
	"scanledger/internal/usecase/queries"
	"scanledger/internal/usecase/shared"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		NewScanCommands,
		commands.NewSettlementCommands,
		commands.NewQRCodeCommands,
		commands.NewReferralCommands,
		commands.NewBillingCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewQRCodeQueries,
		queries.NewSettlementQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewScanCommands(
	cfg config.Config,
	uow shared.UnitOfWork,
	engine *commission.Engine,
	notifier shared.Notifier,
	clk clock.Clock,
) (commands.ScanCommands, error) {
	signupBonus, err := decimal.NewFromString(cfg.Commission.SignupBonus)
	if err != nil {
		return nil, err
	}
	return commands.NewScanCommands(uow, engine, signupBonus, notifier, clk), nil
}
