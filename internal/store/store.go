// Package store provides read access to pricing rules, commission rules, and
// tenant hierarchy links. The engine only reads; rule authoring lives in an
// external admin surface. Import methods on concrete stores exist for
// fixture loading from the CLI.
package store

import (
	"context"

	"github.com/tourbase/pricing-engine/internal/model"
)

// RuleFilter narrows a rule query by indexed scope fields. Structural
// filtering is the store's job; temporal, priority, and stacking resolution
// belong to the engine. Empty fields are not filtered on.
type RuleFilter struct {
	TenantID   string           `json:"tenant_id,omitempty"`
	AgencyID   string           `json:"agency_id,omitempty"`
	SupplierID string           `json:"supplier_id,omitempty"`
	ProductID  string           `json:"product_id,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	RuleTypes  []model.RuleType `json:"rule_types,omitempty"`
}

// RuleStore is the read interface the pricing engine consumes.
type RuleStore interface {
	// FindApplicableRules returns rules for the organization whose scope
	// fields are either wildcards or compatible with the filter.
	FindApplicableRules(ctx context.Context, orgID string, filter RuleFilter) ([]model.PricingRule, error)

	// FindCommissionRules returns all commission rules for a seller tenant,
	// active and inactive; the resolver filters by status.
	FindCommissionRules(ctx context.Context, sellerTenantID string) ([]model.CommissionRule, error)

	// GetParentLink returns the parent tenant id for a tenant, or nil when
	// the tenant has no parent or no link record exists.
	GetParentLink(ctx context.Context, orgID, tenantID string) (*string, error)

	Close() error
}

// Importer is implemented by stores that accept fixture data. The CLI uses
// it for local development; it is not part of the engine's read contract.
type Importer interface {
	ImportRules(ctx context.Context, rules []model.PricingRule) error
	ImportCommissionRules(ctx context.Context, rules []model.CommissionRule) error
	ImportLinks(ctx context.Context, links []model.TenantPricingLink) error
}

// scopeCompatible reports whether a rule's indexed scope fields are wildcards
// or equal to the filter's. Shared by the memory and SQLite stores' row
// filtering; the Postgres store expresses the same predicate in SQL.
func scopeCompatible(r *model.PricingRule, f RuleFilter) bool {
	if r.TenantID != "" && r.TenantID != f.TenantID {
		return false
	}
	if r.AgencyID != "" && r.AgencyID != f.AgencyID {
		return false
	}
	if r.SupplierID != "" && r.SupplierID != f.SupplierID {
		return false
	}
	if r.ProductID != "" && r.ProductID != f.ProductID {
		return false
	}
	if r.Tag != "" {
		found := false
		for _, tag := range f.Tags {
			if tag == r.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.RuleTypes) > 0 {
		ok := false
		for _, t := range f.RuleTypes {
			if r.RuleType == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
