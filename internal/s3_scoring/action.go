package s3_scoring

import (
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
)

// ActionDecision is an action label with its table metadata
type ActionDecision struct {
	Action            contracts.Action
	Description       string
	NeedsDeepAnalysis bool
}

// DetermineAction maps a composite score onto the action table
func DetermineAction(composite float64, a strategyconfig.Actions) ActionDecision {
	tiers := []struct {
		action contracts.Action
		tier   strategyconfig.ActionTier
	}{
		{contracts.ActionStrongBuy, a.StrongBuy},
		{contracts.ActionBuy, a.Buy},
		{contracts.ActionSpeculative, a.Speculative},
	}

	for _, t := range tiers {
		if composite >= t.tier.CompositeMin {
			return ActionDecision{
				Action:            t.action,
				Description:       t.tier.Description,
				NeedsDeepAnalysis: t.tier.NeedsDeepAnalysis,
			}
		}
	}

	return ActionDecision{
		Action:      contracts.ActionAvoid,
		Description: a.AvoidDescription,
	}
}

// AlternateAction returns the first rule admitting (valuation, technical).
// Minimums are inclusive, maximums exclusive. No match returns the zero decision.
func AlternateAction(valuation, technical float64, rules []strategyconfig.AlternateRule) ActionDecision {
	for _, r := range rules {
		if valuation < r.ValuationMin {
			continue
		}
		if r.TechnicalMin != nil && technical < *r.TechnicalMin {
			continue
		}
		if r.TechnicalMax != nil && technical >= *r.TechnicalMax {
			continue
		}
		return ActionDecision{
			Action:            r.Action,
			Description:       r.Description,
			NeedsDeepAnalysis: r.NeedsDeepAnalysis,
		}
	}
	return ActionDecision{}
}
