package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tourbase/pricing-engine/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// markupRule builds a markup_percent rule with sane defaults for tests.
func markupRule(id string, value string, priority int, stackable bool) model.PricingRule {
	return model.PricingRule{
		ID:             id,
		OrganizationID: "org-1",
		RuleType:       model.RuleMarkupPercent,
		Value:          dec(value),
		Priority:       priority,
		Stackable:      stackable,
		CreatedAt:      testEpoch,
	}
}

func testContext() Context {
	return Context{
		OrganizationID: "org-1",
		Now:            time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}
