package core

import (
	"errors"
	"strings"
)

var (
	ErrVendorNotFound       = errors.New("vendor not found")
	ErrRequestNotFound      = errors.New("tier request not found")
	ErrInvalidTransition    = errors.New("invalid status transition: request is not pending")
	ErrPendingRequestExists = errors.New("pending tier request already exists for this vendor")
	ErrSameTier             = errors.New("requested tier equals current tier")
	ErrInvalidTier          = errors.New("invalid tier")
	ErrNotRequestOwner      = errors.New("forbidden: tier request belongs to another vendor")
	ErrNoFile               = errors.New("no file provided")
	ErrEmptyFile            = errors.New("empty file")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedFile      = errors.New("unsupported file type: upload an .xlsx or .xls spreadsheet")
)

// TierChangeError is returned when a downgrade would orphan data the target
// tier cannot hold.
type TierChangeError struct {
	Errors []string
}

func (e *TierChangeError) Error() string {
	return "tier change blocked: " + strings.Join(e.Errors, "; ")
}

// InputError wraps a request payload that failed validation.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return "invalid input: " + e.Field + " " + e.Message
}
