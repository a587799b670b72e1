package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "pricing-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"quote", "graph", "rules", "batch"} {
		assert.Truef(t, names[want], "missing subcommand %s", want)
	}
}

func TestQuoteCmd_Flags(t *testing.T) {
	for _, name := range []string{"base", "currency", "org", "tenant", "agency", "supplier", "product", "tags"} {
		require.NotNilf(t, quoteCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestGraphCmd_Flags(t *testing.T) {
	for _, name := range []string{"base", "currency", "org", "buyer", "product", "tags"} {
		require.NotNilf(t, graphCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestBuildQuoteRequest(t *testing.T) {
	oldFlags := quoteFlags
	defer func() { quoteFlags = oldFlags }()

	quoteFlags.base = "100.00"
	quoteFlags.currency = "EUR"
	quoteFlags.org = "org-1"
	quoteFlags.tenant = "tenant-1"

	req, err := buildQuoteRequest()
	require.NoError(t, err)
	assert.True(t, req.BaseAmount.Equal(dec("100")))
	assert.Equal(t, "org-1", req.Scope.OrganizationID)
	assert.Equal(t, "tenant-1", req.Scope.TenantID)
	assert.False(t, req.Scope.Now.IsZero())
}

func TestBuildQuoteRequest_Errors(t *testing.T) {
	oldFlags := quoteFlags
	defer func() { quoteFlags = oldFlags }()

	quoteFlags.base = "nope"
	quoteFlags.org = "org-1"
	_, err := buildQuoteRequest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse base amount")

	quoteFlags.base = "100"
	quoteFlags.org = ""
	_, err = buildQuoteRequest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--org is required")
}
