package core

// executor.go applies validated spreadsheet rows to a vendor profile.
//
// For every valid row the executor compares the row's values with the
// vendor's current values, field by field, over registry field names only.
// The changed fields of a row are written in a single update. Preview runs
// the same comparison without writing anything.

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/logging"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// Failure messages reported in ExecutionResult.Error.
const (
	MsgMissingOptions = "Missing required options"
	MsgNoRows         = "No rows to import"
	MsgVendorNotFound = "Vendor not found"
	MsgNoValidRows    = "No valid rows"
	MsgSaveFailed     = "Failed to save vendor changes"
	MsgExecution      = "Import execution failed"
)

// ImportOptions controls one import run.
type ImportOptions struct {
	VendorID          string
	UserID            string
	OverwriteExisting bool
	Filename          string
	DryRun            bool
}

// ChangeRecord describes one field of one row.
type ChangeRecord struct {
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"field"`
	OldValue  any    `json:"oldValue"`
	NewValue  any    `json:"newValue"`
	Changed   bool   `json:"changed"`
}

// RowResult is the outcome for one valid row.
type RowResult struct {
	RowNumber int            `json:"rowNumber"`
	Success   bool           `json:"success"`
	Changes   []ChangeRecord `json:"changes"`
	Error     string         `json:"error,omitempty"`
}

// ExecutionResult is the outcome of an import run. Success is false only for
// precondition and persistence failures; row-level problems are counted.
type ExecutionResult struct {
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	DryRun         bool           `json:"dryRun"`
	TotalRows      int            `json:"totalRows"`
	SuccessfulRows int            `json:"successfulRows"`
	FailedRows     int            `json:"failedRows"`
	Changes        []ChangeRecord `json:"changes"`
	Rows           []RowResult    `json:"rows"`
	HistoryID      string         `json:"historyId,omitempty"`
}

// ChangedFields counts the records that were applied or would be.
func (r ExecutionResult) ChangedFields() int {
	n := 0
	for _, c := range r.Changes {
		if c.Changed {
			n++
		}
	}
	return n
}

// Executor runs imports against a VendorStore.
type Executor struct {
	vendors  VendorStore
	history  ImportHistoryStore
	registry *fields.Registry
	tiers    *tier.Service
	now      func() time.Time
}

// NewExecutor creates an executor. history may be nil, in which case no
// history is recorded.
func NewExecutor(vendors VendorStore, history ImportHistoryStore, registry *fields.Registry, tiers *tier.Service, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{
		vendors:  vendors,
		history:  history,
		registry: registry,
		tiers:    tiers,
		now:      now,
	}
}

// Preview computes the changes Execute would make without writing anything.
func (e *Executor) Preview(ctx context.Context, rows []ValidatedRow, opts ImportOptions) ExecutionResult {
	opts.DryRun = true
	return e.Execute(ctx, rows, opts)
}

// Execute applies the valid rows to the vendor named in opts.
func (e *Executor) Execute(ctx context.Context, rows []ValidatedRow, opts ImportOptions) ExecutionResult {
	log := logging.WithFields(ctx, "vendor_id", opts.VendorID, "dry_run", opts.DryRun)

	if opts.VendorID == "" || opts.UserID == "" {
		return failed(MsgMissingOptions, opts)
	}
	if len(rows) == 0 {
		return failed(MsgNoRows, opts)
	}

	v, err := e.vendors.GetVendor(ctx, opts.VendorID)
	if err != nil {
		if errors.Is(err, ErrVendorNotFound) {
			return failed(MsgVendorNotFound, opts)
		}
		log.Error("import vendor lookup failed", "error", err)
		return failed(MsgExecution, opts)
	}

	result := ExecutionResult{
		Success:   true,
		DryRun:    opts.DryRun,
		TotalRows: len(rows),
		Changes:   []ChangeRecord{},
		Rows:      []RowResult{},
	}

	valid := make([]ValidatedRow, 0, len(rows))
	for _, r := range rows {
		if r.Valid {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		res := failed(MsgNoValidRows, opts)
		res.TotalRows = len(rows)
		res.FailedRows = len(rows)
		return res
	}

	log.Info("import started", "rows", len(rows), "valid_rows", len(valid))
	start := e.now()

	current := v.Clone().Values
	if current == nil {
		current = make(map[string]any)
	}

	for _, row := range valid {
		changes, applied := e.computeChanges(v.Tier, current, row, opts.OverwriteExisting)

		if len(applied) > 0 && !opts.DryRun {
			if err := e.vendors.UpdateVendorFields(ctx, opts.VendorID, applied); err != nil {
				log.Error("import row update failed", "row", row.RowNumber, "error", err)
				result.Rows = append(result.Rows, RowResult{
					RowNumber: row.RowNumber,
					Changes:   changes,
					Error:     MsgSaveFailed,
				})
				result.Success = false
				result.Error = MsgSaveFailed
				result.FailedRows = result.TotalRows - result.SuccessfulRows
				e.recordHistory(ctx, log, opts, &result)
				return result
			}
		}

		// Later rows compare against the state earlier rows produced.
		for name, val := range applied {
			current[name] = val
		}

		result.SuccessfulRows++
		result.Changes = append(result.Changes, changes...)
		result.Rows = append(result.Rows, RowResult{
			RowNumber: row.RowNumber,
			Success:   true,
			Changes:   changes,
		})
	}

	result.FailedRows = result.TotalRows - result.SuccessfulRows

	if !opts.DryRun {
		e.recordHistory(ctx, log, opts, &result)
	}

	log.Info("import finished",
		"successful_rows", result.SuccessfulRows,
		"failed_rows", result.FailedRows,
		"changed_fields", result.ChangedFields(),
		"duration", e.now().Sub(start))

	return result
}

// computeChanges compares one row with the current values. It returns every
// considered field and the subset to write.
func (e *Executor) computeChanges(t tier.Level, current map[string]any, row ValidatedRow, overwrite bool) ([]ChangeRecord, map[string]any) {
	changes := []ChangeRecord{}
	applied := make(map[string]any)

	for _, f := range e.registry.All() {
		newVal, ok := row.Data[f.Name]
		if !ok || isBlank(newVal) {
			continue
		}
		if !f.Importable || !e.tiers.ValidateFieldAccess(t, f.Name) {
			continue
		}

		oldVal := current[f.Name]
		if !overwrite && !isBlank(oldVal) {
			changes = append(changes, ChangeRecord{
				RowNumber: row.RowNumber,
				Field:     f.Name,
				OldValue:  oldVal,
				NewValue:  newVal,
				Changed:   false,
			})
			continue
		}

		changed := !valuesEqual(f.Type, oldVal, newVal)
		changes = append(changes, ChangeRecord{
			RowNumber: row.RowNumber,
			Field:     f.Name,
			OldValue:  oldVal,
			NewValue:  newVal,
			Changed:   changed,
		})
		if changed {
			applied[f.Name] = newVal
		}
	}

	return changes, applied
}

func (e *Executor) recordHistory(ctx context.Context, log *slog.Logger, opts ImportOptions, result *ExecutionResult) {
	if e.history == nil || opts.DryRun {
		return
	}

	status := HistorySuccess
	switch {
	case !result.Success:
		status = HistoryFailed
	case result.FailedRows > 0:
		status = HistoryPartial
	}

	h, err := e.history.CreateImportHistory(ctx, ImportHistory{
		VendorID:       opts.VendorID,
		UserID:         opts.UserID,
		Status:         status,
		RowsProcessed:  result.TotalRows,
		SuccessfulRows: result.SuccessfulRows,
		FailedRows:     result.FailedRows,
		Filename:       opts.Filename,
		Changes:        result.Changes,
		CreatedAt:      e.now(),
	})
	if err != nil {
		log.Warn("import history not recorded", "error", err)
		return
	}
	result.HistoryID = h.ID
}

func failed(msg string, opts ImportOptions) ExecutionResult {
	return ExecutionResult{
		Success: false,
		Error:   msg,
		DryRun:  opts.DryRun,
		Changes: []ChangeRecord{},
		Rows:    []RowResult{},
	}
}

// isBlank reports whether a value is unset: nil, a blank string or an
// empty collection. A false boolean or a zero number is a value.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// valuesEqual compares a stored value with an imported one. Numbers compare
// numerically and arrays by content, since stored JSON and parsed cells
// differ in their Go types.
func valuesEqual(t fields.DataType, a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch t {
	case fields.TypeNumber, fields.TypeYear:
		fa, okA := fields.ToFloat(a)
		fb, okB := fields.ToFloat(b)
		if okA && okB {
			return fa == fb
		}
	case fields.TypeArray:
		sa, errA := fields.ToStrings(a)
		sb, errB := fields.ToStrings(b)
		if errA == nil && errB == nil {
			if len(sa) != len(sb) {
				return false
			}
			for i := range sa {
				if sa[i] != sb[i] {
					return false
				}
			}
			return true
		}
	case fields.TypeBoolean:
		ba, okA := a.(bool)
		bb, okB := b.(bool)
		if okA && okB {
			return ba == bb
		}
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.TrimSpace(sa) == strings.TrimSpace(sb)
		}
	}
	return reflect.DeepEqual(a, b)
}
