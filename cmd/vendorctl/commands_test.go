package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TIER_POLICY_FILE", "")

	var out bytes.Buffer
	cmd := rootCmd(func() time.Time { return testNow })
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Vendor Data"))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Vendor Data", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "vendors.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vendorctl version "+Version)
}

func TestTemplateThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tier1.xlsx")

	out, err := run(t, "template", "--tier", "tier1", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	out, err = run(t, "validate", "--tier", "tier1", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 rows: 1 valid, 0 invalid")
}

func TestTemplate_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := run(t, "template")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "vendor_import_template_free_2025-06-15.xlsx"))
	assert.NoError(t, err)
}

func TestTemplate_UnknownTier(t *testing.T) {
	_, err := run(t, "template", "--tier", "gold")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidTier)
	assert.Contains(t, err.Error(), `"gold"`)
}

func TestValidate_ReportsRowErrors(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Company Name", "Contact Email", "Website"},
		{"Acme Marine", "sales@acme.example", ""},
		{"", "ops@acme.example", ""},
		{"Blue Water", "info@bluewater.example", "https://bluewater.example"},
	})

	out, err := run(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, "2 of 3 rows are invalid", err.Error())
	assert.Contains(t, out, "row 3: Company Name is required")
	assert.Contains(t, out, "row 4: Website requires Tier 1 or higher")
	assert.Contains(t, out, "3 rows: 1 valid, 2 invalid")

	// Tier 1 unlocks the website column; the blank name still fails.
	_, err = run(t, "validate", "--tier", "1", path)
	require.Error(t, err)
	assert.Equal(t, "1 of 3 rows are invalid", err.Error())
}

func TestValidate_JSON(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Company Name", "Contact Email", "Fax"},
		{"Acme Marine", "sales@acme.example", "n/a"},
	})

	out, err := run(t, "validate", "--json", path)
	require.NoError(t, err)

	var report core.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, core.ValidationSummary{Total: 1, Valid: 1}, report.Summary)
	assert.Equal(t, []string{"Fax"}, report.UnknownColumns)
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(t, "validate", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"filename", "--vendor", "Oceanic Marine, Inc."}, "Oceanic_Marine_Inc_vendor_data_2025-06-15.xlsx\n"},
		{[]string{"filename", "--vendor", "Acme", "--tier", "2"}, "Acme_vendor_data_tier2_2025-06-15.xlsx\n"},
		{[]string{"filename"}, "vendor_vendor_data_2025-06-15.xlsx\n"},
	}
	for _, tt := range tests {
		out, err := run(t, tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out)
	}
}

func TestFields(t *testing.T) {
	out, err := run(t, "fields", "--tier", "tier1")
	require.NoError(t, err)
	assert.Contains(t, out, "COLUMN")
	assert.Contains(t, out, "Website")
	assert.NotContains(t, out, "Awards")
	assert.NotContains(t, out, "Admin Notes")
	assert.Contains(t, out, "Tier 1:")

	out, err = run(t, "fields", "--tier", "tier1", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Awards")
	assert.Contains(t, out, "locked")
	assert.NotContains(t, out, "Admin Notes")
}

func TestPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("location_limits:\n  tier1: 7\n"), 0o644))

	out, err := run(t, "--policy", path, "fields", "--tier", "tier1")
	require.NoError(t, err)
	assert.Contains(t, out, "location limit 7")

	_, err = run(t, "--policy", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	assert.Error(t, err)
}
