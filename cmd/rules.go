package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/store"
)

var rulesFile string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate and import rule fixture files",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a YAML rule file without touching the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := loadRuleFile(rulesFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d pricing rules, %d commission rules, %d links\n",
			len(bundle.Rules), len(bundle.CommissionRules), len(bundle.Links))
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a YAML rule file into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		bundle, err := loadRuleFile(rulesFile)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		imp, ok := st.(store.Importer)
		if !ok {
			return eris.Errorf("store driver %q does not accept imports", cfg.Store.Driver)
		}

		if err := imp.ImportRules(ctx, bundle.Rules); err != nil {
			return eris.Wrap(err, "import pricing rules")
		}
		if err := imp.ImportCommissionRules(ctx, bundle.CommissionRules); err != nil {
			return eris.Wrap(err, "import commission rules")
		}
		if err := imp.ImportLinks(ctx, bundle.Links); err != nil {
			return eris.Wrap(err, "import links")
		}

		zap.L().Info("rules imported",
			zap.String("file", rulesFile),
			zap.Int("pricing_rules", len(bundle.Rules)),
			zap.Int("commission_rules", len(bundle.CommissionRules)),
			zap.Int("links", len(bundle.Links)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported: %d pricing rules, %d commission rules, %d links\n",
			len(bundle.Rules), len(bundle.CommissionRules), len(bundle.Links))
		return nil
	},
}

// ruleBundle is the parsed, validated content of a rule fixture file.
type ruleBundle struct {
	Rules           []model.PricingRule
	CommissionRules []model.CommissionRule
	Links           []model.TenantPricingLink
}

// Decimal values are YAML strings so they never round-trip through floats.
type ruleFileEntry struct {
	ID             string     `yaml:"id"`
	OrganizationID string     `yaml:"organization_id"`
	TenantID       string     `yaml:"tenant_id"`
	AgencyID       string     `yaml:"agency_id"`
	SupplierID     string     `yaml:"supplier_id"`
	ProductID      string     `yaml:"product_id"`
	Tag            string     `yaml:"tag"`
	RuleType       string     `yaml:"rule_type"`
	Value          string     `yaml:"value"`
	Priority       int        `yaml:"priority"`
	Stackable      bool       `yaml:"stackable"`
	ValidFrom      *time.Time `yaml:"valid_from"`
	ValidTo        *time.Time `yaml:"valid_to"`
}

type commissionFileEntry struct {
	ID             string `yaml:"id"`
	SellerTenantID string `yaml:"seller_tenant_id"`
	BuyerTenantID  string `yaml:"buyer_tenant_id"`
	ScopeType      string `yaml:"scope_type"`
	ProductID      string `yaml:"product_id"`
	Tag            string `yaml:"tag"`
	RuleType       string `yaml:"rule_type"`
	Value          string `yaml:"value"`
	Priority       int    `yaml:"priority"`
	Status         string `yaml:"status"`
}

type linkFileEntry struct {
	OrganizationID string  `yaml:"organization_id"`
	TenantID       string  `yaml:"tenant_id"`
	ParentTenantID *string `yaml:"parent_tenant_id"`
}

type ruleFile struct {
	Rules           []ruleFileEntry       `yaml:"rules"`
	CommissionRules []commissionFileEntry `yaml:"commission_rules"`
	Links           []linkFileEntry       `yaml:"links"`
}

// loadRuleFile parses and validates a YAML rule fixture file. Every entry
// must pass the same write-time validation the admin surface applies.
func loadRuleFile(path string) (*ruleBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read rule file %s", path)
	}

	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, eris.Wrapf(err, "parse rule file %s", path)
	}

	bundle := &ruleBundle{}
	now := time.Now().UTC()

	for i, e := range file.Rules {
		value, err := decimal.NewFromString(e.Value)
		if err != nil {
			return nil, eris.Wrapf(err, "rules[%d]: parse value %q", i, e.Value)
		}
		r := model.PricingRule{
			ID:             e.ID,
			OrganizationID: e.OrganizationID,
			TenantID:       e.TenantID,
			AgencyID:       e.AgencyID,
			SupplierID:     e.SupplierID,
			ProductID:      e.ProductID,
			Tag:            e.Tag,
			RuleType:       model.RuleType(e.RuleType),
			Value:          value,
			Priority:       e.Priority,
			Stackable:      e.Stackable,
			ValidFrom:      e.ValidFrom,
			ValidTo:        e.ValidTo,
			CreatedAt:      now,
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if err := r.Validate(); err != nil {
			return nil, eris.Wrapf(err, "rules[%d] (%s)", i, r.ID)
		}
		bundle.Rules = append(bundle.Rules, r)
	}

	for i, e := range file.CommissionRules {
		value, err := decimal.NewFromString(e.Value)
		if err != nil {
			return nil, eris.Wrapf(err, "commission_rules[%d]: parse value %q", i, e.Value)
		}
		r := model.CommissionRule{
			ID:             e.ID,
			SellerTenantID: e.SellerTenantID,
			BuyerTenantID:  e.BuyerTenantID,
			ScopeType:      model.CommissionScope(e.ScopeType),
			ProductID:      e.ProductID,
			Tag:            e.Tag,
			RuleType:       model.CommissionType(e.RuleType),
			Value:          value,
			Priority:       e.Priority,
			Status:         model.CommissionStatus(e.Status),
			CreatedAt:      now,
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.Status == "" {
			r.Status = model.CommissionActive
		}
		if err := r.Validate(); err != nil {
			return nil, eris.Wrapf(err, "commission_rules[%d] (%s)", i, r.ID)
		}
		bundle.CommissionRules = append(bundle.CommissionRules, r)
	}

	for i, e := range file.Links {
		if e.OrganizationID == "" || e.TenantID == "" {
			return nil, eris.Errorf("links[%d]: organization_id and tenant_id are required", i)
		}
		bundle.Links = append(bundle.Links, model.TenantPricingLink{
			OrganizationID: e.OrganizationID,
			TenantID:       e.TenantID,
			ParentTenantID: e.ParentTenantID,
		})
	}

	return bundle, nil
}

func init() {
	rulesCmd.PersistentFlags().StringVarP(&rulesFile, "file", "f", "", "YAML rule file")
	_ = rulesCmd.MarkPersistentFlagRequired("file")
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rootCmd.AddCommand(rulesCmd)
}
