package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotes.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBatchCmd_Metadata(t *testing.T) {
	assert.Equal(t, "batch", batchCmd.Use)
	assert.NotEmpty(t, batchCmd.Short)
	require.NotNil(t, batchCmd.Flags().Lookup("file"))
}

func TestLoadBatchFile_Valid(t *testing.T) {
	path := writeBatchFile(t, `base,currency,org,tenant,agency,supplier,product,tags
100.00,EUR,org-1,tenant-1,,,prod-1,tour;city
250,USD,org-1,,agency-9,supplier-2,,
`)

	reqs, err := loadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.True(t, reqs[0].BaseAmount.Equal(dec("100")))
	assert.Equal(t, "EUR", reqs[0].Currency)
	assert.Equal(t, "org-1", reqs[0].Scope.OrganizationID)
	assert.Equal(t, "tenant-1", reqs[0].Scope.TenantID)
	assert.Equal(t, []string{"tour", "city"}, reqs[0].Scope.Tags)

	assert.Equal(t, "agency-9", reqs[1].Scope.AgencyID)
	assert.Nil(t, reqs[1].Scope.Tags)
	// Every row in one batch shares the evaluation instant.
	assert.Equal(t, reqs[0].Scope.Now, reqs[1].Scope.Now)
}

func TestLoadBatchFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "wrong header",
			csv:     "amount,currency,org,tenant,agency,supplier,product,tags\n",
			wantErr: `column 1 must be "base"`,
		},
		{
			name:    "short header",
			csv:     "base,currency,org\n",
			wantErr: "batch header must be",
		},
		{
			name: "bad base",
			csv: `base,currency,org,tenant,agency,supplier,product,tags
abc,EUR,org-1,,,,,
`,
			wantErr: "parse base",
		},
		{
			name: "missing org",
			csv: `base,currency,org,tenant,agency,supplier,product,tags
100,EUR,,,,,,
`,
			wantErr: "org is required",
		},
		{
			name:    "no rows",
			csv:     "base,currency,org,tenant,agency,supplier,product,tags\n",
			wantErr: "no quote rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBatchFile(t, tt.csv)
			_, err := loadBatchFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBatchFile_MissingFile(t *testing.T) {
	_, err := loadBatchFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open batch file")
}
