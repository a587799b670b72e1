package model

// TenantPricingLink maps a tenant to its optional parent in the B2B resale
// hierarchy. Links form a forest that should be acyclic, but the graph walker
// does not trust them to be so.
type TenantPricingLink struct {
	OrganizationID string  `json:"organization_id"`
	TenantID       string  `json:"tenant_id"`
	ParentTenantID *string `json:"parent_tenant_id,omitempty"`
}
