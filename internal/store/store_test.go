package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourbase/pricing-engine/internal/model"
)

func fixtureRules() []model.PricingRule {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.PricingRule{
		{
			ID: "r-global", OrganizationID: "org-1",
			RuleType: model.RuleMarkupPercent, Value: decimal.NewFromInt(5),
			Priority: 5, Stackable: true, CreatedAt: created,
		},
		{
			ID: "r-tenant", OrganizationID: "org-1", TenantID: "t-1",
			RuleType: model.RuleMarkupPercent, Value: decimal.NewFromInt(12),
			Priority: 10, CreatedAt: created,
		},
		{
			ID: "r-product", OrganizationID: "org-1", ProductID: "tour-7",
			RuleType: model.RuleMarkupFixed, Value: decimal.NewFromInt(25),
			Priority: 1, Stackable: true, CreatedAt: created,
		},
		{
			ID: "r-tagged", OrganizationID: "org-1", Tag: "beach",
			RuleType: model.RuleCommissionPercent, Value: decimal.NewFromInt(3),
			Priority: 1, Stackable: true, CreatedAt: created,
		},
		{
			ID: "r-other-org", OrganizationID: "org-2",
			RuleType: model.RuleMarkupPercent, Value: decimal.NewFromInt(50),
			Priority: 99, Stackable: true, CreatedAt: created,
		},
	}
}

func ruleIDs(rules []model.PricingRule) []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestMemoryStoreFindApplicableRules(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.ImportRules(ctx, fixtureRules()))

	tests := []struct {
		name   string
		filter RuleFilter
		want   []string
	}{
		{"org wide, no scope", RuleFilter{}, []string{"r-global"}},
		{"tenant scope", RuleFilter{TenantID: "t-1"}, []string{"r-global", "r-tenant"}},
		{"product scope", RuleFilter{ProductID: "tour-7"}, []string{"r-global", "r-product"}},
		{"tag scope", RuleFilter{Tags: []string{"beach", "family"}}, []string{"r-global", "r-tagged"}},
		{"rule type filter", RuleFilter{
			TenantID:  "t-1",
			RuleTypes: []model.RuleType{model.RuleMarkupPercent},
		}, []string{"r-global", "r-tenant"}},
		{"unknown tenant excludes scoped", RuleFilter{TenantID: "t-9"}, []string{"r-global"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := mem.FindApplicableRules(ctx, "org-1", tt.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ruleIDs(got))
		})
	}
}

func TestMemoryStoreCommissionRules(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.ImportCommissionRules(ctx, []model.CommissionRule{
		{ID: "c-1", SellerTenantID: "seller-1", ScopeType: model.ScopeAll, RuleType: model.CommissionPercentage, Value: decimal.NewFromInt(5), Status: model.CommissionActive},
		{ID: "c-2", SellerTenantID: "seller-2", ScopeType: model.ScopeAll, RuleType: model.CommissionPercentage, Value: decimal.NewFromInt(7), Status: model.CommissionActive},
	}))

	got, err := mem.FindCommissionRules(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-1", got[0].ID)

	got, err = mem.FindCommissionRules(ctx, "seller-9")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreParentLinks(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()
	parent := "t-parent"
	require.NoError(t, mem.ImportLinks(ctx, []model.TenantPricingLink{
		{OrganizationID: "org-1", TenantID: "t-child", ParentTenantID: &parent},
		{OrganizationID: "org-1", TenantID: "t-parent"},
	}))

	got, err := mem.GetParentLink(ctx, "org-1", "t-child")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t-parent", *got)

	got, err = mem.GetParentLink(ctx, "org-1", "t-parent")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = mem.GetParentLink(ctx, "org-2", "t-child")
	require.NoError(t, err)
	assert.Nil(t, got)
}
