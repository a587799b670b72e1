package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/money"
	"github.com/tourbase/pricing-engine/internal/store"
)

// DefaultModelVersion identifies the current pricing algorithm revision in
// persisted snapshots.
const DefaultModelVersion = "graph-v1"

// Engine resolves prices against a RuleStore. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	store        store.RuleStore
	modelVersion string
	maxHops      int
}

// Options tunes engine construction.
type Options struct {
	ModelVersion string

	// MaxGraphDepth bounds the tenant hierarchy walk; <= 0 means
	// DefaultMaxPathHops.
	MaxGraphDepth int
}

// New creates an Engine backed by the given store.
func New(st store.RuleStore, opts Options) *Engine {
	version := opts.ModelVersion
	if version == "" {
		version = DefaultModelVersion
	}
	return &Engine{store: st, modelVersion: version, maxHops: opts.MaxGraphDepth}
}

// ComputePrice resolves a single-tenant sell price: fetch, match, stack.
func (e *Engine) ComputePrice(ctx context.Context, req QuoteRequest) (*PriceResult, error) {
	rules, err := e.store.FindApplicableRules(ctx, req.Scope.OrganizationID, store.RuleFilter{
		TenantID:   req.Scope.TenantID,
		AgencyID:   req.Scope.AgencyID,
		SupplierID: req.Scope.SupplierID,
		ProductID:  req.Scope.ProductID,
		Tags:       req.Scope.Tags,
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine: find applicable rules")
	}

	matched := Match(rules, req.Scope)
	res := Stack(matched, req.BaseAmount)

	return &PriceResult{
		Currency:         req.Currency,
		BaseAmount:       money.Quantize(req.BaseAmount),
		FinalAmount:      res.FinalAmount,
		AppliedRules:     res.AppliedRules,
		CommissionAmount: res.CommissionAmount,
		MarginAmount:     res.MarginAmount,
		Notes:            res.Notes,
	}, nil
}

// SellerCommission resolves the single best commission rule a seller tenant
// owes for a buyer/product/tag context and the amount it yields on the gross.
// A nil rule means no commission applies and the amount is zero.
func (e *Engine) SellerCommission(ctx context.Context, sellerTenantID, buyerTenantID, productID string, tags []string, gross decimal.Decimal) (*model.CommissionRule, decimal.Decimal, error) {
	candidates, err := e.store.FindCommissionRules(ctx, sellerTenantID)
	if err != nil {
		return nil, decimal.Zero, eris.Wrapf(err, "engine: find commission rules for %s", sellerTenantID)
	}
	best := ResolveCommission(candidates, buyerTenantID, productID, tags)
	return best, ComputeCommission(gross, best), nil
}
