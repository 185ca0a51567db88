package bootstrap

import (
	"scanledger/internal/domain/commission"
	"scanledger/internal/pkg/config"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

var CommissionModule = fx.Module("commission",
	fx.Provide(
		NewCommissionEngine,
	),
)

// NewCommissionEngine parses the configured rates. The rates arrive as decimal
// strings, so a typo fails startup instead of silently settling at a wrong
// rate.
func NewCommissionEngine(cfg config.Config) (*commission.Engine, error) {
	engineCfg, err := ParseCommissionConfig(cfg.Commission)
	if err != nil {
		return nil, err
	}
	return commission.NewEngine(engineCfg)
}

func ParseCommissionConfig(cfg config.CommissionConfig) (commission.Config, error) {
	platformRate, err := decimal.NewFromString(cfg.PlatformRate)
	if err != nil {
		return commission.Config{}, err
	}
	agentRate, err := decimal.NewFromString(cfg.DefaultAgentRate)
	if err != nil {
		return commission.Config{}, err
	}
	overrideRate, err := decimal.NewFromString(cfg.OverrideRate)
	if err != nil {
		return commission.Config{}, err
	}
	minCommission, err := decimal.NewFromString(cfg.MinAgentCommission)
	if err != nil {
		return commission.Config{}, err
	}

	return commission.Config{
		PlatformRate:       platformRate,
		DefaultAgentRate:   agentRate,
		OverrideRate:       overrideRate,
		MinAgentCommission: minCommission,
	}, nil
}
