package model

import (
	"time"

	"membership-payments/internal/domain"
)

// Tier enumerates the membership tiers a user can hold.
type Tier string

const (
	TierBasic          Tier = "basic"
	TierMonthlyPremium Tier = "monthly-premium"
	TierYearlyPremium  Tier = "yearly-premium"
)

// Plan is a purchasable membership tier with a fixed price and duration.
// Plans come from configuration; they are never created at runtime.
type Plan struct {
	Tier     Tier
	Price    int64 // minor currency units
	Currency string
	Duration time.Duration
}

// Priced reports whether the plan can actually be bought. The basic tier is
// the non-member default and has no price.
func (p Plan) Priced() bool { return p.Tier != TierBasic && p.Price > 0 }

// Catalog holds the configured plans keyed by tier.
type Catalog struct {
	plans map[Tier]Plan
}

// NewCatalog validates and builds the plan catalog. Every priced plan needs a
// positive price, a currency, and a duration.
func NewCatalog(plans ...Plan) (*Catalog, error) {
	m := make(map[Tier]Plan, len(plans)+1)
	m[TierBasic] = Plan{Tier: TierBasic}
	for _, p := range plans {
		if p.Tier == TierBasic {
			continue
		}
		if p.Price <= 0 || p.Duration <= 0 || p.Currency == "" {
			return nil, domain.ErrInvalidArgument
		}
		m[p.Tier] = p
	}
	return &Catalog{plans: m}, nil
}

// ByTier resolves a tier to its configured plan.
func (c *Catalog) ByTier(t Tier) (Plan, error) {
	p, ok := c.plans[t]
	if !ok {
		return Plan{}, domain.ErrUnknownPlan
	}
	return p, nil
}

// ParseTier maps wire-level plan names (including the short "monthly" and
// "yearly" forms used by the mobile client) onto tiers.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "basic":
		return TierBasic, nil
	case "monthly", "monthly-premium":
		return TierMonthlyPremium, nil
	case "yearly", "yearly-premium":
		return TierYearlyPremium, nil
	default:
		return "", domain.ErrUnknownPlan
	}
}
