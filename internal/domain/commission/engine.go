package commission

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("gross amount must be positive")
	ErrInvalidRate   = errors.New("commission rate must be between 0 and 1")
	ErrNegativeFloor = errors.New("minimum agent commission cannot be negative")
)

// Config holds the platform's commission policy. All values are decimals so
// the per-transaction math stays exact.
type Config struct {
	PlatformRate       decimal.Decimal
	DefaultAgentRate   decimal.Decimal
	OverrideRate       decimal.Decimal
	MinAgentCommission decimal.Decimal
}

type Engine struct {
	platformRate       decimal.Decimal
	defaultAgentRate   decimal.Decimal
	overrideRate       decimal.Decimal
	minAgentCommission decimal.Decimal
}

func NewEngine(cfg Config) (*Engine, error) {
	one := decimal.NewFromInt(1)
	for _, rate := range []decimal.Decimal{cfg.PlatformRate, cfg.DefaultAgentRate, cfg.OverrideRate} {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return nil, ErrInvalidRate
		}
	}
	if cfg.MinAgentCommission.IsNegative() {
		return nil, ErrNegativeFloor
	}

	return &Engine{
		platformRate:       cfg.PlatformRate,
		defaultAgentRate:   cfg.DefaultAgentRate,
		overrideRate:       cfg.OverrideRate,
		minAgentCommission: cfg.MinAgentCommission,
	}, nil
}

// Agent is the settlement-time view of a referring sales agent. A nil Rate
// means the platform default applies. RecruiterID links the team-override
// cascade.
type Agent struct {
	ID              uuid.UUID
	Active          bool
	Rate            *decimal.Decimal
	RecruiterID     *uuid.UUID
	RecruiterActive bool
}

// Breakdown is the settled split of one gross amount. The invariant
// PlatformCommission + BusinessPayout == Gross holds exactly: the payout is
// the subtraction of the already-rounded commission, never rounded again.
// Agent and override amounts are platform-absorbed and reduce neither side.
type Breakdown struct {
	Gross              decimal.Decimal
	PlatformCommission decimal.Decimal
	BusinessPayout     decimal.Decimal
	AgentID            *uuid.UUID
	AgentCommission    decimal.Decimal
	RecruiterID        *uuid.UUID
	OverrideCommission decimal.Decimal
}

// Settle splits gross between platform and business, then computes the
// referring agent's share when one applies. An inactive agent suppresses the
// agent share rather than failing the settlement: the money must still move.
func (e *Engine) Settle(gross decimal.Decimal, agent *Agent) (Breakdown, error) {
	if gross.LessThanOrEqual(decimal.Zero) {
		return Breakdown{}, ErrInvalidAmount
	}

	// Rounded once, half away from zero to cents. Not compounded.
	platform := gross.Mul(e.platformRate).Round(2)

	b := Breakdown{
		Gross:              gross,
		PlatformCommission: platform,
		BusinessPayout:     gross.Sub(platform),
		AgentCommission:    decimal.Zero,
		OverrideCommission: decimal.Zero,
	}

	if agent == nil || !agent.Active {
		return b, nil
	}

	rate := e.defaultAgentRate
	if agent.Rate != nil {
		rate = *agent.Rate
	}

	// The floor applies to the rounded agent share, not to the platform
	// commission itself.
	share := platform.Mul(rate).Round(2)
	if share.LessThan(e.minAgentCommission) {
		share = e.minAgentCommission
	}

	agentID := agent.ID
	b.AgentID = &agentID
	b.AgentCommission = share

	if agent.RecruiterID != nil && agent.RecruiterActive {
		recruiterID := *agent.RecruiterID
		b.RecruiterID = &recruiterID
		// Parallel pool on top of the agent's own share; no floor.
		b.OverrideCommission = share.Mul(e.overrideRate).Round(2)
	}

	return b, nil
}
