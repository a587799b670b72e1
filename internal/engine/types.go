// Package engine implements the pricing and commission rule-resolution core:
// single-tenant markup/commission stacking and multi-level B2B graph pricing
// with an auditable trace. Evaluation is read-only and safe for concurrent
// use.
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tourbase/pricing-engine/internal/model"
)

// Context carries the request-side scope a rule is matched against.
type Context struct {
	OrganizationID string    `json:"organization_id"`
	TenantID       string    `json:"tenant_id,omitempty"`
	AgencyID       string    `json:"agency_id,omitempty"`
	SupplierID     string    `json:"supplier_id,omitempty"`
	ProductID      string    `json:"product_id,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Now            time.Time `json:"now"`
}

// QuoteRequest asks for a single-tenant price resolution.
type QuoteRequest struct {
	BaseAmount decimal.Decimal `json:"base_amount"`
	Currency   string          `json:"currency"`
	Scope      Context         `json:"scope"`
}

// AppliedRule records one rule that actually contributed to a resolution.
type AppliedRule struct {
	RuleID   string          `json:"rule_id"`
	RuleType model.RuleType  `json:"rule_type"`
	Value    decimal.Decimal `json:"value"`
	Priority int             `json:"priority"`
}

// PriceResult is the outcome of single-tenant price resolution.
type PriceResult struct {
	Currency         string          `json:"currency"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	FinalAmount      decimal.Decimal `json:"final_amount"`
	AppliedRules     []AppliedRule   `json:"applied_rules"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	MarginAmount     decimal.Decimal `json:"margin_amount"`
	Notes            []string        `json:"notes,omitempty"`
}

// GraphRequest asks for a multi-level B2B resale price resolution.
type GraphRequest struct {
	BaseAmount    decimal.Decimal `json:"base_amount"`
	Currency      string          `json:"currency"`
	BuyerTenantID string          `json:"buyer_tenant_id"`
	Scope         Context         `json:"scope"`
}

// GraphResult is the outcome of graph pricing. Degraded results are still
// usable prices; DegradedReason and trace notes say what was skipped.
type GraphResult struct {
	ModelVersion          string              `json:"model_version"`
	Currency              string              `json:"currency"`
	BasePrice             decimal.Decimal     `json:"base_price"`
	FinalPrice            decimal.Decimal     `json:"final_price"`
	AppliedTotalMarkupPct *decimal.Decimal    `json:"applied_total_markup_pct,omitempty"`
	PricingRuleIDs        []string            `json:"pricing_rule_ids"`
	GraphPath             []string            `json:"graph_path"`
	Steps                 []model.PricingStep `json:"steps"`
	Trace                 []string            `json:"trace"`
	Degraded              bool                `json:"degraded,omitempty"`
	DegradedReason        string              `json:"degraded_reason,omitempty"`
}

// Snapshot is the persisted price shape consumed by downstream booking
// records. Callers own persistence; the engine only produces the value.
type Snapshot struct {
	Currency       string          `json:"currency"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	AppliedRuleIDs []string        `json:"applied_rule_ids"`
	ModelVersion   string          `json:"model_version"`
}

// Snapshot extracts the persistable subset of a single-tenant resolution.
func (r *PriceResult) Snapshot(modelVersion string) Snapshot {
	ids := make([]string, 0, len(r.AppliedRules))
	for _, a := range r.AppliedRules {
		ids = append(ids, a.RuleID)
	}
	return Snapshot{
		Currency:       r.Currency,
		BaseAmount:     r.BaseAmount,
		FinalAmount:    r.FinalAmount,
		AppliedRuleIDs: ids,
		ModelVersion:   modelVersion,
	}
}

// Snapshot extracts the persistable subset of a graph resolution.
func (g *GraphResult) Snapshot() Snapshot {
	return Snapshot{
		Currency:       g.Currency,
		BaseAmount:     g.BasePrice,
		FinalAmount:    g.FinalPrice,
		AppliedRuleIDs: g.PricingRuleIDs,
		ModelVersion:   g.ModelVersion,
	}
}
