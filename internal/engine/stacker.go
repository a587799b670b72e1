package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/money"
)

// stackOrder is the fixed application order of rule-type groups. Commission
// groups never mutate the sell price; they accumulate a separate commission
// amount computed against the original base.
var stackOrder = []model.RuleType{
	model.RuleMarkupPercent,
	model.RuleMarkupFixed,
	model.RuleCommissionPercent,
	model.RuleCommissionFixed,
}

// Resolution is the outcome of folding matched rules over a base amount.
type Resolution struct {
	FinalAmount      decimal.Decimal
	AppliedRules     []AppliedRule
	CommissionAmount decimal.Decimal
	MarginAmount     decimal.Decimal
	Notes            []string
}

// Stack folds matched rules into a final amount plus commission and margin
// figures. Within each rule-type group rules are ordered by priority
// descending, then created_at ascending; one non-stackable rule in a group
// discards everything in that group except its highest-priority rule.
func Stack(matched []model.PricingRule, base decimal.Decimal) Resolution {
	base = money.Quantize(base)
	res := Resolution{
		FinalAmount:      base,
		CommissionAmount: money.Quantize(decimal.Zero),
	}

	groups := make(map[model.RuleType][]model.PricingRule, len(stackOrder))
	for _, r := range matched {
		groups[r.RuleType] = append(groups[r.RuleType], r)
	}

	for _, ruleType := range stackOrder {
		group := groups[ruleType]
		if len(group) == 0 {
			continue
		}
		sortGroup(group)
		group = collapseGroup(group)

		for _, r := range group {
			switch ruleType {
			case model.RuleMarkupPercent:
				res.FinalAmount = money.ApplyPercent(res.FinalAmount, r.Value)
			case model.RuleMarkupFixed:
				res.FinalAmount = money.AddFixed(res.FinalAmount, r.Value)
			case model.RuleCommissionPercent:
				res.CommissionAmount = money.Quantize(res.CommissionAmount.Add(money.PercentOf(base, r.Value)))
			case model.RuleCommissionFixed:
				res.CommissionAmount = money.Quantize(res.CommissionAmount.Add(r.Value))
			}
			res.AppliedRules = append(res.AppliedRules, AppliedRule{
				RuleID:   r.ID,
				RuleType: r.RuleType,
				Value:    r.Value,
				Priority: r.Priority,
			})
		}
	}

	if clamped, did := money.ClampZero(res.FinalAmount); did {
		res.FinalAmount = clamped
		res.Notes = append(res.Notes, "clamped_to_zero")
	}
	res.MarginAmount = money.Quantize(res.FinalAmount.Sub(base))
	return res
}

// sortGroup orders rules by priority descending, created_at ascending, then
// id ascending so resolution is deterministic for any input order.
func sortGroup(group []model.PricingRule) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Priority != group[j].Priority {
			return group[i].Priority > group[j].Priority
		}
		if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		}
		return group[i].ID < group[j].ID
	})
}

// collapseGroup applies non-stackable dominance: if any rule in the sorted
// group is non-stackable, only the highest-priority rule survives, stack
// flags on the others notwithstanding.
func collapseGroup(group []model.PricingRule) []model.PricingRule {
	for _, r := range group {
		if !r.Stackable {
			return group[:1]
		}
	}
	return group
}
