package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/store"
)

func TestComputePriceEndToEnd(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	ctx := context.Background()

	comm := markupRule("r-comm", "5", 1, true)
	comm.RuleType = model.RuleCommissionPercent
	fixed := markupRule("r-fixed", "100.00", 5, true)
	fixed.RuleType = model.RuleMarkupFixed
	otherOrg := markupRule("r-other-org", "50", 99, true)
	otherOrg.OrganizationID = "org-2"

	require.NoError(t, mem.ImportRules(ctx, []model.PricingRule{
		markupRule("r-pct", "10", 10, true),
		fixed,
		comm,
		otherOrg,
	}))

	e := New(mem, Options{})
	result, err := e.ComputePrice(ctx, QuoteRequest{
		BaseAmount: dec("1000.00"),
		Currency:   "USD",
		Scope:      testContext(),
	})
	require.NoError(t, err)

	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, "1200.00", result.FinalAmount.StringFixed(2))
	assert.Equal(t, "50.00", result.CommissionAmount.StringFixed(2))
	assert.Equal(t, "200.00", result.MarginAmount.StringFixed(2))
	require.Len(t, result.AppliedRules, 3)

	snap := result.Snapshot(DefaultModelVersion)
	assert.Equal(t, DefaultModelVersion, snap.ModelVersion)
	assert.Equal(t, []string{"r-pct", "r-fixed", "r-comm"}, snap.AppliedRuleIDs)
}

func TestComputePriceStoreError(t *testing.T) {
	t.Parallel()

	fs := &flakyStore{
		MemoryStore: store.NewMemory(),
		rulesErrFor: map[string]error{"": assert.AnError},
	}
	e := New(fs, Options{})

	_, err := e.ComputePrice(context.Background(), QuoteRequest{
		BaseAmount: dec("100.00"),
		Currency:   "USD",
		Scope:      testContext(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find applicable rules")
}

func TestSellerCommission(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	ctx := context.Background()

	buyerRule := commissionRule("c-buyer", "buyer-1", model.ScopeAll, 5)
	defaultRule := commissionRule("c-default", "", model.ScopeAll, 50)
	require.NoError(t, mem.ImportCommissionRules(ctx, []model.CommissionRule{defaultRule, buyerRule}))

	e := New(mem, Options{})
	rule, amount, err := e.SellerCommission(ctx, "seller-1", "buyer-1", "", nil, dec("1000.00"))
	require.NoError(t, err)
	require.NotNil(t, rule)
	// Buyer-specific bucket beats the default despite lower priority.
	assert.Equal(t, "c-buyer", rule.ID)
	assert.Equal(t, "50.00", amount.StringFixed(2))

	rule, amount, err = e.SellerCommission(ctx, "seller-2", "buyer-1", "", nil, dec("1000.00"))
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.Equal(t, "0.00", amount.StringFixed(2))
}
