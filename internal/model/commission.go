package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionScope narrows a commission rule to a product, a tag, or neither.
type CommissionScope string

const (
	ScopeAll     CommissionScope = "all"
	ScopeProduct CommissionScope = "product"
	ScopeTag     CommissionScope = "tag"
)

// CommissionType identifies how a commission rule computes its amount.
type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// CommissionStatus gates whether a rule participates in resolution.
type CommissionStatus string

const (
	CommissionActive   CommissionStatus = "active"
	CommissionInactive CommissionStatus = "inactive"
)

// CommissionRule defines the commission a seller tenant owes when a buyer
// tenant resells its inventory. An empty BuyerTenantID applies to any buyer.
type CommissionRule struct {
	ID             string           `json:"id"`
	SellerTenantID string           `json:"seller_tenant_id"`
	BuyerTenantID  string           `json:"buyer_tenant_id,omitempty"`
	ScopeType      CommissionScope  `json:"scope_type"`
	ProductID      string           `json:"product_id,omitempty"`
	Tag            string           `json:"tag,omitempty"`
	RuleType       CommissionType   `json:"rule_type"`
	Value          decimal.Decimal  `json:"value"`
	Priority       int              `json:"priority"`
	Status         CommissionStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Validate checks scope consistency and value ranges at write/import time.
// scope_type=all forbids product_id/tag; product and tag scopes require
// exactly their matching field.
func (r *CommissionRule) Validate() error {
	if r.SellerTenantID == "" {
		return &ValidationError{Field: "seller_tenant_id", Reason: "required"}
	}
	switch r.ScopeType {
	case ScopeAll:
		if r.ProductID != "" || r.Tag != "" {
			return &ValidationError{Field: "scope_type", Reason: "scope 'all' forbids product_id and tag"}
		}
	case ScopeProduct:
		if r.ProductID == "" {
			return &ValidationError{Field: "product_id", Reason: "scope 'product' requires product_id"}
		}
		if r.Tag != "" {
			return &ValidationError{Field: "tag", Reason: "scope 'product' forbids tag"}
		}
	case ScopeTag:
		if r.Tag == "" {
			return &ValidationError{Field: "tag", Reason: "scope 'tag' requires tag"}
		}
		if r.ProductID != "" {
			return &ValidationError{Field: "product_id", Reason: "scope 'tag' forbids product_id"}
		}
	default:
		return &ValidationError{Field: "scope_type", Reason: "unknown scope " + string(r.ScopeType)}
	}
	switch r.RuleType {
	case CommissionPercentage:
		if r.Value.Sign() < 0 || r.Value.GreaterThan(maxCommissionPercent) {
			return &ValidationError{Field: "value", Reason: "commission percent must be within 0-100"}
		}
	case CommissionFixed:
		if r.Value.Sign() < 0 {
			return &ValidationError{Field: "value", Reason: "fixed value must be >= 0"}
		}
	default:
		return &ValidationError{Field: "rule_type", Reason: "unknown rule type " + string(r.RuleType)}
	}
	if r.Status != CommissionActive && r.Status != CommissionInactive {
		return &ValidationError{Field: "status", Reason: "unknown status " + string(r.Status)}
	}
	return nil
}
