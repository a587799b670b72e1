package model

import "github.com/shopspring/decimal"

// NodeType labels the role a hierarchy level plays in a graph pricing trace.
type NodeType string

const (
	NodeSeller   NodeType = "seller"
	NodeBuyer    NodeType = "buyer"
	NodeReseller NodeType = "reseller"
)

// PricingStep is one level of a graph pricing trace. Level 0 is always the
// untouched base amount. Steps are produced per request and never persisted
// by the engine; callers snapshot whatever subset they need.
type PricingStep struct {
	Level       int             `json:"level"`
	TenantID    *string         `json:"tenant_id,omitempty"`
	NodeType    NodeType        `json:"node_type"`
	RuleID      *string         `json:"rule_id,omitempty"`
	MarkupPct   decimal.Decimal `json:"markup_pct"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	DeltaAmount decimal.Decimal `json:"delta_amount"`
	AmountAfter decimal.Decimal `json:"amount_after"`
	Currency    string          `json:"currency"`
	Notes       []string        `json:"notes,omitempty"`
}
