package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "vendor not found",
			err:         fmt.Errorf("get vendor: %w", ErrVendorNotFound),
			wantCode:    "VEN001",
			wantMessage: "Vendor not found",
		},
		{
			name:        "invalid input",
			err:         &InputError{Field: "rejectionReason", Message: "must be 10-1000 characters"},
			wantCode:    "VEN002",
			wantMessage: "The request contains invalid values",
		},
		{
			name:        "pending request exists",
			err:         ErrPendingRequestExists,
			wantCode:    "TIER001",
			wantMessage: "A tier change request is already pending",
		},
		{
			name:        "downgrade blocked",
			err:         &TierChangeError{Errors: []string{`Field "awards" requires Tier 2 or higher`}},
			wantCode:    "TIER006",
			wantMessage: "The vendor has data the target tier cannot hold",
		},
		{
			name:        "request not pending",
			err:         ErrInvalidTransition,
			wantCode:    "TIER004",
			wantMessage: "This request has already been reviewed or cancelled",
		},
		{
			name:        "request not found",
			err:         ErrRequestNotFound,
			wantCode:    "TIER005",
			wantMessage: "Tier request not found",
		},
		{
			name:        "owner check",
			err:         ErrNotRequestOwner,
			wantCode:    "AUTH002",
			wantMessage: "You do not have access to this resource",
		},
		{
			name:        "import limiter busy",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "header not found",
			err:         spreadsheet.ErrHeaderNotFound,
			wantCode:    "IMP002",
			wantMessage: "No header row with known column names was found",
		},
		{
			name:        "no data rows",
			err:         spreadsheet.ErrNoDataRows,
			wantCode:    "IMP003",
			wantMessage: "The spreadsheet has no data rows",
		},
		{
			name:        "too many rows",
			err:         fmt.Errorf("parse: %w", spreadsheet.ErrTooManyRows),
			wantCode:    "IMP004",
			wantMessage: "The spreadsheet has too many rows",
		},
		{
			name:        "sentinel wins over message text",
			err:         fmt.Errorf("connection reset while waiting: %w", ErrTooManyImports),
			wantCode:    "IMP001",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "wrapped downgrade block",
			err:         fmt.Errorf("set tier: %w", &TierChangeError{Errors: []string{"Location count 4 exceeds the Tier 1 limit of 3"}}),
			wantCode:    "TIER006",
			wantMessage: "The vendor has data the target tier cannot hold",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "IMP006",
			wantMessage: "Request timed out",
		},
		{
			name:        "file too large",
			err:         CheckUpload("big.xlsx", MIMEXLSX, make([]byte, 11), 10),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit (5MB)",
		},
		{
			name:        "invalid workbook",
			err:         spreadsheet.ErrInvalidWorkbook,
			wantCode:    "FILE002",
			wantMessage: "File is not a readable spreadsheet",
		},
		{
			name:        "unsupported type",
			err:         ErrUnsupportedFile,
			wantCode:    "FILE003",
			wantMessage: "Only Excel files can be imported",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB003",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrSameTier)

	expected := "The vendor is already on this tier (Code: TIER002). Choose a different tier"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrEmptyFile, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
