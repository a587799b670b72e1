package engine

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/money"
	"github.com/tourbase/pricing-engine/internal/store"
)

var (
	one        = decimal.NewFromInt(1)
	hundredPct = decimal.NewFromInt(100)
)

// PriceWithGraph resolves a B2B resale price by walking the buyer's tenant
// hierarchy and applying at most one winning markup_percent rule per level.
// It returns nil when the preconditions are unmet (no buyer, non-positive
// base, or missing currency); the caller then falls back to the base price.
//
// Internal failures never surface as errors: a path-resolution failure
// degrades the whole result to a zero-markup pass-through, and a per-node
// rule-resolution failure degrades only that node while the walk continues.
// Degraded results carry Degraded/DegradedReason plus a trace note.
func (e *Engine) PriceWithGraph(ctx context.Context, req GraphRequest) *GraphResult {
	if req.BuyerTenantID == "" || req.Currency == "" || req.BaseAmount.Sign() <= 0 {
		return nil
	}

	base := money.Quantize(req.BaseAmount)
	result := &GraphResult{
		ModelVersion:   e.modelVersion,
		Currency:       req.Currency,
		BasePrice:      base,
		FinalPrice:     base,
		PricingRuleIDs: []string{},
	}

	// Level 0 is always the untouched base amount.
	result.Steps = append(result.Steps, model.PricingStep{
		Level:       0,
		NodeType:    model.NodeSeller,
		MarkupPct:   decimal.Zero,
		BaseAmount:  base,
		DeltaAmount: decimal.Zero,
		AmountAfter: base,
		Currency:    req.Currency,
	})
	result.Trace = append(result.Trace, traceLine(model.NodeSeller, decimal.Zero, base))

	path, err := ResolvePath(ctx, e.store, req.Scope.OrganizationID, req.BuyerTenantID, e.maxHops)
	result.GraphPath = path
	if err != nil {
		reason := "path_resolution_failed: " + eris.Cause(err).Error()
		result.Degraded = true
		result.DegradedReason = reason
		result.Trace = append(result.Trace, reason)
		zero := money.Quantize(decimal.Zero)
		result.AppliedTotalMarkupPct = &zero
		zap.L().Warn("engine: graph pricing degraded to pass-through",
			zap.String("buyer_tenant_id", req.BuyerTenantID),
			zap.Error(err),
		)
		return result
	}

	current := base
	for i, tenantID := range path {
		level := i + 1
		nodeType := model.NodeReseller
		if i == 0 {
			nodeType = model.NodeBuyer
		}

		step := model.PricingStep{
			Level:      level,
			TenantID:   ptr(tenantID),
			NodeType:   nodeType,
			BaseAmount: current,
			Currency:   req.Currency,
		}

		winner, err := e.resolveNodeMarkup(ctx, req.Scope, tenantID)
		if err != nil {
			// This node degrades to zero markup; the walk continues.
			note := "rule_resolution_failed: " + eris.Cause(err).Error()
			step.Notes = append(step.Notes, note)
			result.Degraded = true
			if result.DegradedReason == "" {
				result.DegradedReason = note
			}
			zap.L().Warn("engine: graph node degraded to zero markup",
				zap.String("tenant_id", tenantID),
				zap.Int("level", level),
				zap.Error(err),
			)
		}

		pct := decimal.Zero
		if winner != nil {
			pct = winner.Value
			step.RuleID = ptr(winner.ID)
			result.PricingRuleIDs = append(result.PricingRuleIDs, winner.ID)
		}

		delta := money.PercentOf(current, pct)
		after := money.Quantize(current.Add(delta))
		if after.Sign() < 0 {
			delta = current.Neg()
			after = money.Quantize(decimal.Zero)
			step.Notes = append(step.Notes, "clamped_to_zero")
		}

		step.MarkupPct = pct
		step.DeltaAmount = delta
		step.AmountAfter = after
		result.Steps = append(result.Steps, step)
		result.Trace = append(result.Trace, traceLine(nodeType, pct, after))

		current = after
	}

	result.FinalPrice = current
	totalPct := money.Quantize(current.Div(base).Sub(one).Mul(hundredPct))
	result.AppliedTotalMarkupPct = &totalPct
	return result
}

// resolveNodeMarkup fetches candidate markup_percent rules for one hierarchy
// node and selects the winner by priority descending, created_at ascending.
// Rules never stack across hierarchy levels; each level contributes at most
// one rule.
func (e *Engine) resolveNodeMarkup(ctx context.Context, scope Context, tenantID string) (*model.PricingRule, error) {
	rules, err := e.store.FindApplicableRules(ctx, scope.OrganizationID, store.RuleFilter{
		TenantID:  tenantID,
		ProductID: scope.ProductID,
		Tags:      scope.Tags,
		RuleTypes: []model.RuleType{model.RuleMarkupPercent},
	})
	if err != nil {
		return nil, err
	}

	nodeScope := scope
	nodeScope.TenantID = tenantID
	matched := Match(rules, nodeScope)
	if len(matched) == 0 {
		return nil, nil
	}
	sortGroup(matched)
	return &matched[0], nil
}

func traceLine(nodeType model.NodeType, pct, amount decimal.Decimal) string {
	return fmt.Sprintf("%s=+%s%% -> %s", nodeType, pct.String(), amount.StringFixed(money.Scale))
}

func ptr(s string) *string { return &s }
