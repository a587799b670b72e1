package engine

import (
	"github.com/shopspring/decimal"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/money"
)

// Commission precedence buckets, lower number = higher precedence.
const (
	bucketBuyerProduct = iota + 1
	bucketBuyerTag
	bucketBuyerAll
	bucketDefaultProduct
	bucketDefaultTag
	bucketDefaultAll
)

// ResolveCommission selects the single best-matching active commission rule
// for a buyer/product/tag context, or nil when none applies. Candidates are
// ranked by precedence bucket (buyer-specific before default, product before
// tag before all), then by priority descending; priority ties fall back to
// created_at ascending, then id ascending.
func ResolveCommission(candidates []model.CommissionRule, buyerTenantID, productID string, tags []string) *model.CommissionRule {
	var (
		best       *model.CommissionRule
		bestBucket int
	)
	for i := range candidates {
		r := &candidates[i]
		if r.Status != model.CommissionActive {
			continue
		}
		bucket, ok := commissionBucket(r, buyerTenantID, productID, tags)
		if !ok {
			continue
		}
		if best == nil || bucket < bestBucket || (bucket == bestBucket && beats(r, best)) {
			best = r
			bestBucket = bucket
		}
	}
	return best
}

// commissionBucket scores a rule into one of the six precedence buckets, or
// reports false when the rule's scope requires a product or tag the context
// does not satisfy.
func commissionBucket(r *model.CommissionRule, buyerTenantID, productID string, tags []string) (int, bool) {
	buyerSpecific := r.BuyerTenantID != ""
	if buyerSpecific && r.BuyerTenantID != buyerTenantID {
		return 0, false
	}

	switch r.ScopeType {
	case model.ScopeProduct:
		if productID == "" || r.ProductID != productID {
			return 0, false
		}
		if buyerSpecific {
			return bucketBuyerProduct, true
		}
		return bucketDefaultProduct, true
	case model.ScopeTag:
		if !containsTag(tags, r.Tag) {
			return 0, false
		}
		if buyerSpecific {
			return bucketBuyerTag, true
		}
		return bucketDefaultTag, true
	case model.ScopeAll:
		if buyerSpecific {
			return bucketBuyerAll, true
		}
		return bucketDefaultAll, true
	default:
		return 0, false
	}
}

// beats reports whether a ranks above b within the same bucket.
func beats(a, b *model.CommissionRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// ComputeCommission returns the commission owed on a gross amount under the
// rule. Unknown rule types yield zero rather than an error.
func ComputeCommission(gross decimal.Decimal, r *model.CommissionRule) decimal.Decimal {
	if r == nil {
		return money.Quantize(decimal.Zero)
	}
	switch r.RuleType {
	case model.CommissionPercentage:
		return money.PercentOf(gross, r.Value)
	case model.CommissionFixed:
		return money.Quantize(r.Value)
	default:
		return money.Quantize(decimal.Zero)
	}
}

// ComputeNet returns gross minus commission, quantized.
func ComputeNet(gross, commission decimal.Decimal) decimal.Decimal {
	return money.Quantize(gross.Sub(commission))
}
