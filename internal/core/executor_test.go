package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

func testVendor() vendor.Vendor {
	return vendor.Vendor{
		ID:   "v1",
		Tier: tier.Tier1,
		Values: map[string]any{
			"name":           "Test Corporation",
			"contactEmail":   "info@test.example",
			"certifications": []any{"ISO 9001"},
			"employeeCount":  float64(12),
		},
	}
}

func newTestExecutor(vendors *fakeVendors, history *fakeHistory) *Executor {
	reg := fields.Default()
	tiers := defaultTiers(reg)
	return NewExecutor(vendors, history, reg, tiers, fixedClock)
}

func validRow(n int, data map[string]any) ValidatedRow {
	return ValidatedRow{RowNumber: n, Valid: true, Data: data}
}

func findChange(changes []ChangeRecord, field string) (ChangeRecord, bool) {
	for _, c := range changes {
		if c.Field == field {
			return c, true
		}
	}
	return ChangeRecord{}, false
}

func TestExecute_AppliesChangedFields(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	history := &fakeHistory{}
	exec := newTestExecutor(vendors, history)

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{
			"name":         "Updated Corporation",
			"contactEmail": "info@test.example",
			"website":      "https://updated.example",
		}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true, Filename: "data.xlsx"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 1, res.TotalRows)
	assert.Equal(t, 1, res.SuccessfulRows)
	assert.Equal(t, 0, res.FailedRows)

	name, ok := findChange(res.Changes, "name")
	require.True(t, ok)
	assert.Equal(t, "Test Corporation", name.OldValue)
	assert.Equal(t, "Updated Corporation", name.NewValue)
	assert.True(t, name.Changed)

	email, ok := findChange(res.Changes, "contactEmail")
	require.True(t, ok)
	assert.False(t, email.Changed)

	require.Len(t, vendors.updates, 1)
	assert.Equal(t, []string{"name", "website"}, sortedKeys(vendors.updates[0].Changes))

	require.Len(t, history.records, 1)
	assert.Equal(t, HistorySuccess, history.records[0].Status)
	assert.Equal(t, "data.xlsx", history.records[0].Filename)
	assert.Equal(t, "hist-1", res.HistoryID)
}

func TestExecute_DryRunNeverUpdates(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	history := &fakeHistory{}
	exec := newTestExecutor(vendors, history)

	res := exec.Preview(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{"name": "Updated Corporation"}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	require.True(t, res.Success)
	assert.True(t, res.DryRun)
	c, ok := findChange(res.Changes, "name")
	require.True(t, ok)
	assert.True(t, c.Changed)
	assert.Empty(t, vendors.updates)
	assert.Empty(t, history.records)
}

func TestExecute_KeepsPopulatedValuesWithoutOverwrite(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	exec := newTestExecutor(vendors, &fakeHistory{})

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{
			"name":    "Updated Corporation",
			"website": "https://updated.example",
		}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: false})

	require.True(t, res.Success)
	name, ok := findChange(res.Changes, "name")
	require.True(t, ok)
	assert.False(t, name.Changed)

	require.Len(t, vendors.updates, 1)
	assert.Equal(t, []string{"website"}, sortedKeys(vendors.updates[0].Changes))
}

func TestExecute_StoredFalseIsKeptWithoutOverwrite(t *testing.T) {
	v := testVendor()
	v.Tier = tier.Tier2
	v.Values["warrantyOffered"] = false
	v.Values["employeeCount"] = float64(0)
	vendors := newFakeVendors(v)
	exec := newTestExecutor(vendors, &fakeHistory{})

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{
			"warrantyOffered": true,
			"employeeCount":   float64(40),
		}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: false})

	require.True(t, res.Success, res.Error)
	for _, field := range []string{"warrantyOffered", "employeeCount"} {
		c, ok := findChange(res.Changes, field)
		require.True(t, ok, field)
		assert.False(t, c.Changed, field)
	}
	assert.Empty(t, vendors.updates)
}

func TestExecute_ComparesByValue(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	exec := newTestExecutor(vendors, &fakeHistory{})

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{
			"certifications": []string{"ISO 9001"},
			"employeeCount":  float64(12),
		}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	require.True(t, res.Success)
	assert.Equal(t, 0, res.ChangedFields())
	assert.Empty(t, vendors.updates, "identical values must not be written")
}

func TestExecute_SkipsUnknownAndLockedFields(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	exec := newTestExecutor(vendors, &fakeHistory{})

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{
			"description": "New description",
			"awards":      []string{"Best Supplier"}, // tier2
			"isVerified":  true,                      // admin
			"__proto__":   "x",                       // not a field
		}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	require.True(t, res.Success)
	require.Len(t, vendors.updates, 1)
	assert.Equal(t, []string{"description"}, sortedKeys(vendors.updates[0].Changes))
	for _, c := range res.Changes {
		assert.Contains(t, []string{"description"}, c.Field)
	}
}

func TestExecute_SkipsBlankValues(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	exec := newTestExecutor(vendors, &fakeHistory{})

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{"description": "", "languages": []string{}, "name": nil}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	require.True(t, res.Success)
	assert.Empty(t, res.Changes)
	assert.Empty(t, vendors.updates)
}

func TestExecute_InvalidRowsCountAsFailed(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	history := &fakeHistory{}
	exec := newTestExecutor(vendors, history)

	res := exec.Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{"description": "One"}),
		{RowNumber: 3, Valid: false},
		validRow(4, map[string]any{"description": "Two"}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	require.True(t, res.Success)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 2, res.SuccessfulRows)
	assert.Equal(t, 1, res.FailedRows)
	assert.Len(t, vendors.updates, 2)

	// The second row compares against the first row's result.
	second, ok := findChange(res.Rows[1].Changes, "description")
	require.True(t, ok)
	assert.Equal(t, "One", second.OldValue)

	require.Len(t, history.records, 1)
	assert.Equal(t, HistoryPartial, history.records[0].Status)
}

func TestExecute_Preconditions(t *testing.T) {
	row := []ValidatedRow{validRow(2, map[string]any{"name": "X"})}

	tests := []struct {
		name    string
		rows    []ValidatedRow
		opts    ImportOptions
		getErr  error
		wantErr string
	}{
		{"missing vendor id", row, ImportOptions{UserID: "u1"}, nil, MsgMissingOptions},
		{"missing user id", row, ImportOptions{VendorID: "v1"}, nil, MsgMissingOptions},
		{"no rows", nil, ImportOptions{VendorID: "v1", UserID: "u1"}, nil, MsgNoRows},
		{"unknown vendor", row, ImportOptions{VendorID: "nope", UserID: "u1"}, nil, MsgVendorNotFound},
		{"lookup failure", row, ImportOptions{VendorID: "v1", UserID: "u1"}, errors.New("connection reset"), MsgExecution},
		{"no valid rows", []ValidatedRow{{RowNumber: 2}}, ImportOptions{VendorID: "v1", UserID: "u1"}, nil, MsgNoValidRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendors := newFakeVendors(testVendor())
			vendors.getErr = tt.getErr
			history := &fakeHistory{}
			res := newTestExecutor(vendors, history).Execute(context.Background(), tt.rows, tt.opts)

			assert.False(t, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Equal(t, 0, res.SuccessfulRows)
			assert.Empty(t, vendors.updates)
			assert.Empty(t, history.records)
		})
	}
}

func TestExecute_UpdateFailure(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	vendors.updateErr = errors.New("deadlock detected")
	history := &fakeHistory{}

	res := newTestExecutor(vendors, history).Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{"description": "New"}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	assert.False(t, res.Success)
	assert.Equal(t, MsgSaveFailed, res.Error)
	assert.Equal(t, 0, res.SuccessfulRows)
	assert.Equal(t, 1, res.FailedRows)
	require.Len(t, history.records, 1)
	assert.Equal(t, HistoryFailed, history.records[0].Status)
}

func TestExecute_HistoryFailureIsIgnored(t *testing.T) {
	vendors := newFakeVendors(testVendor())
	history := &fakeHistory{err: errors.New("connection refused")}

	res := newTestExecutor(vendors, history).Execute(context.Background(), []ValidatedRow{
		validRow(2, map[string]any{"description": "New"}),
	}, ImportOptions{VendorID: "v1", UserID: "u1", OverwriteExisting: true})

	assert.True(t, res.Success)
	assert.Empty(t, res.HistoryID)
	assert.Len(t, vendors.updates, 1)
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		typ  fields.DataType
		a, b any
		want bool
	}{
		{"numbers across types", fields.TypeNumber, 12, float64(12), true},
		{"different numbers", fields.TypeNumber, float64(1), float64(2), false},
		{"arrays by content", fields.TypeArray, []any{"a", "b"}, []string{"a", "b"}, true},
		{"array order matters", fields.TypeArray, []any{"b", "a"}, []string{"a", "b"}, false},
		{"booleans", fields.TypeBoolean, false, false, true},
		{"strings trimmed", fields.TypeString, "Acme ", "Acme", true},
		{"nil vs value", fields.TypeString, nil, "Acme", false},
		{"both nil", fields.TypeString, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesEqual(tt.typ, tt.a, tt.b))
		})
	}
}
