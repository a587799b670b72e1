// Package model defines the rule and trace types shared across the pricing
// engine. All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleType identifies how a pricing rule mutates or annotates an amount.
type RuleType string

const (
	RuleMarkupPercent     RuleType = "markup_percent"
	RuleMarkupFixed       RuleType = "markup_fixed"
	RuleCommissionPercent RuleType = "commission_percent"
	RuleCommissionFixed   RuleType = "commission_fixed"
)

// Valid reports whether t is a member of the closed rule-type set.
func (t RuleType) Valid() bool {
	switch t {
	case RuleMarkupPercent, RuleMarkupFixed, RuleCommissionPercent, RuleCommissionFixed:
		return true
	default:
		return false
	}
}

// IsCommission reports whether t accumulates commission instead of mutating
// the sell price.
func (t RuleType) IsCommission() bool {
	return t == RuleCommissionPercent || t == RuleCommissionFixed
}

// PricingRule is a prioritized markup or commission rule scoped to an
// organization and optionally narrowed to a tenant, agency, supplier,
// product, or tag. Empty scope fields are wildcards.
type PricingRule struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	TenantID       string          `json:"tenant_id,omitempty"`
	AgencyID       string          `json:"agency_id,omitempty"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	ProductID      string          `json:"product_id,omitempty"`
	Tag            string          `json:"tag,omitempty"`
	RuleType       RuleType        `json:"rule_type"`
	Value          decimal.Decimal `json:"value"`
	Priority       int             `json:"priority"`
	Stackable      bool            `json:"stackable"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty"`
	ValidTo        *time.Time      `json:"valid_to,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// maxMarkupPercent bounds markup_percent values; commission percentages are
// bounded at 100.
var (
	maxMarkupPercent     = decimal.NewFromInt(1000)
	maxCommissionPercent = decimal.NewFromInt(100)
)

// Validate checks the rule at write/import time. Rules read back during
// pricing evaluation are assumed pre-validated.
func (r *PricingRule) Validate() error {
	if r.OrganizationID == "" {
		return &ValidationError{Field: "organization_id", Reason: "required"}
	}
	if !r.RuleType.Valid() {
		return &ValidationError{Field: "rule_type", Reason: "unknown rule type " + string(r.RuleType)}
	}
	switch r.RuleType {
	case RuleMarkupPercent:
		if r.Value.Sign() < 0 || r.Value.GreaterThan(maxMarkupPercent) {
			return &ValidationError{Field: "value", Reason: "markup percent must be within 0-1000"}
		}
	case RuleCommissionPercent:
		if r.Value.Sign() < 0 || r.Value.GreaterThan(maxCommissionPercent) {
			return &ValidationError{Field: "value", Reason: "commission percent must be within 0-100"}
		}
	case RuleMarkupFixed, RuleCommissionFixed:
		if r.Value.Sign() < 0 {
			return &ValidationError{Field: "value", Reason: "fixed value must be >= 0"}
		}
	}
	if r.ValidFrom != nil && r.ValidTo != nil && r.ValidTo.Before(*r.ValidFrom) {
		return &ValidationError{Field: "valid_to", Reason: "validity window ends before it starts"}
	}
	return nil
}

// ActiveAt reports whether now falls inside the rule's validity window,
// treating a missing bound as unbounded. Both bounds are inclusive.
func (r *PricingRule) ActiveAt(now time.Time) bool {
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return false
	}
	return true
}
