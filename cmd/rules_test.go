package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourbase/pricing-engine/internal/model"
)

const validRuleYAML = `
rules:
  - id: r-markup
    organization_id: org-1
    tenant_id: tenant-1
    rule_type: markup_percent
    value: "10"
    priority: 5
    stackable: true
  - organization_id: org-1
    rule_type: commission_fixed
    value: "2.50"
    priority: 1
    stackable: true
commission_rules:
  - id: c-default
    seller_tenant_id: seller-1
    scope_type: all
    rule_type: percentage
    value: "8"
    priority: 1
links:
  - organization_id: org-1
    tenant_id: child-1
    parent_tenant_id: parent-1
  - organization_id: org-1
    tenant_id: parent-1
`

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRulesCmd_Metadata(t *testing.T) {
	assert.Equal(t, "rules", rulesCmd.Use)
	require.NotNil(t, rulesCmd.PersistentFlags().Lookup("file"))

	subs := rulesCmd.Commands()
	require.Len(t, subs, 2)
	assert.Equal(t, "import", subs[0].Use)
	assert.Equal(t, "validate", subs[1].Use)
}

func TestLoadRuleFile_Valid(t *testing.T) {
	path := writeRuleFile(t, validRuleYAML)

	bundle, err := loadRuleFile(path)
	require.NoError(t, err)

	require.Len(t, bundle.Rules, 2)
	assert.Equal(t, "r-markup", bundle.Rules[0].ID)
	assert.Equal(t, model.RuleMarkupPercent, bundle.Rules[0].RuleType)
	assert.True(t, bundle.Rules[0].Value.Equal(dec("10")))
	// Missing IDs get generated.
	assert.NotEmpty(t, bundle.Rules[1].ID)

	require.Len(t, bundle.CommissionRules, 1)
	assert.Equal(t, model.CommissionActive, bundle.CommissionRules[0].Status)

	require.Len(t, bundle.Links, 2)
	require.NotNil(t, bundle.Links[0].ParentTenantID)
	assert.Equal(t, "parent-1", *bundle.Links[0].ParentTenantID)
	assert.Nil(t, bundle.Links[1].ParentTenantID)
}

func TestLoadRuleFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "bad decimal",
			yaml: `rules:
  - organization_id: org-1
    rule_type: markup_percent
    value: "ten"
`,
			wantErr: "parse value",
		},
		{
			name: "markup percent out of range",
			yaml: `rules:
  - organization_id: org-1
    rule_type: markup_percent
    value: "1500"
`,
			wantErr: "invalid value",
		},
		{
			name: "commission scope mismatch",
			yaml: `commission_rules:
  - seller_tenant_id: seller-1
    scope_type: product
    rule_type: percentage
    value: "5"
`,
			wantErr: "product_id",
		},
		{
			name: "link missing tenant",
			yaml: `links:
  - organization_id: org-1
`,
			wantErr: "tenant_id",
		},
		{
			name:    "not yaml",
			yaml:    "rules: [",
			wantErr: "parse rule file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRuleFile(t, tt.yaml)
			_, err := loadRuleFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRuleFile_MissingFile(t *testing.T) {
	_, err := loadRuleFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rule file")
}

func TestRulesValidateCmd_OK(t *testing.T) {
	oldFile := rulesFile
	rulesFile = writeRuleFile(t, validRuleYAML)
	defer func() { rulesFile = oldFile }()

	out := captureOutput(t, rulesValidateCmd, func() error {
		return rulesValidateCmd.RunE(rulesValidateCmd, nil)
	})
	assert.Contains(t, out, "2 pricing rules")
	assert.Contains(t, out, "1 commission rules")
	assert.Contains(t, out, "2 links")
}
