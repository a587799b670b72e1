package engine

import (
	"time"

	"github.com/tourbase/pricing-engine/internal/model"
)

// Match filters rules down to those structurally applicable to the context:
// organization equality, wildcard-or-equal scope fields, and an inclusive
// validity window. Zero matches is a valid quantity, not an error.
func Match(rules []model.PricingRule, mc Context) []model.PricingRule {
	now := mc.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var out []model.PricingRule
	for i := range rules {
		if matches(&rules[i], mc, now) {
			out = append(out, rules[i])
		}
	}
	return out
}

func matches(r *model.PricingRule, mc Context, now time.Time) bool {
	if r.OrganizationID != mc.OrganizationID {
		return false
	}
	if r.TenantID != "" && r.TenantID != mc.TenantID {
		return false
	}
	if r.AgencyID != "" && r.AgencyID != mc.AgencyID {
		return false
	}
	if r.SupplierID != "" && r.SupplierID != mc.SupplierID {
		return false
	}
	if r.ProductID != "" && r.ProductID != mc.ProductID {
		return false
	}
	if r.Tag != "" && !containsTag(mc.Tags, r.Tag) {
		return false
	}
	return r.ActiveAt(now)
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
