package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// captureOutput runs fn with the command's output redirected to a buffer.
func captureOutput(t *testing.T, cmd *cobra.Command, fn func() error) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	defer cmd.SetOut(nil)
	require.NoError(t, fn())
	return buf.String()
}
