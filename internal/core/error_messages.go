package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
)

// UserMessage is what a client is shown for a failed operation. Code is
// quoted to support and grouped by family: VEN vendor, TIER tier requests,
// IMP import, FILE upload, DB database, AUTH access, RATE throttling and
// ERR000 for anything unrecognised.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

var userMessages = map[string]UserMessage{
	"VEN001":  {"Vendor not found", "Check the vendor ID and try again", "VEN001"},
	"VEN002":  {"The request contains invalid values", "Correct the values and submit again", "VEN002"},
	"TIER001": {"A tier change request is already pending", "Wait for the pending request to be reviewed or cancel it", "TIER001"},
	"TIER002": {"The vendor is already on this tier", "Choose a different tier", "TIER002"},
	"TIER003": {"Unknown tier", "Use free, tier1, tier2 or tier3", "TIER003"},
	"TIER004": {"This request has already been reviewed or cancelled", "Refresh the request list", "TIER004"},
	"TIER005": {"Tier request not found", "Refresh the request list", "TIER005"},
	"TIER006": {"The vendor has data the target tier cannot hold", "Clear the listed fields or locations before downgrading", "TIER006"},
	"IMP001":  {"System is busy processing other imports", "Please wait a moment and try again", "IMP001"},
	"IMP002":  {"No header row with known column names was found", "Start from the downloaded template and keep its header row", "IMP002"},
	"IMP003":  {"The spreadsheet has no data rows", "Add your vendor data below the header row", "IMP003"},
	"IMP004":  {"The spreadsheet has too many rows", "Split the data into smaller files", "IMP004"},
	"IMP005":  {"Request was cancelled", "Please try again", "IMP005"},
	"IMP006":  {"Request timed out", "Try a smaller file or check your connection", "IMP006"},
	"FILE001": {"File exceeds maximum size limit (5MB)", "Remove unused rows or split the file", "FILE001"},
	"FILE002": {"File is not a readable spreadsheet", "Save the file as .xlsx and upload it again", "FILE002"},
	"FILE003": {"Only Excel files can be imported", "Upload an .xlsx or .xls file", "FILE003"},
	"FILE004": {"No file was selected", "Please select a spreadsheet to upload", "FILE004"},
	"FILE005": {"The uploaded file is empty", "Please upload a spreadsheet with data rows", "FILE005"},
	"DB001":   {"A record with this ID already exists", "Refresh and try again", "DB001"},
	"DB002":   {"A duplicate value was found", "Refresh and try again", "DB002"},
	"DB003":   {"Unable to connect to database", "Please try again in a few moments", "DB003"},
	"DB004":   {"Database connection was interrupted", "Please try again", "DB004"},
	"DB005":   {"Operation timed out", "Try again later", "DB005"},
	"DB006":   {"Database was busy with conflicting operations", "Please try again", "DB006"},
	"AUTH001": {"You are not signed in", "Sign in and try again", "AUTH001"},
	"AUTH002": {"You do not have access to this resource", "Contact an administrator if you need access", "AUTH002"},
	"RATE001": {"Too many requests", "Please wait a moment before trying again", "RATE001"},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// knownErrors maps this module's sentinels to codes. They are matched with
// errors.Is, so wrapping keeps the code.
var knownErrors = []struct {
	err  error
	code string
}{
	{ErrVendorNotFound, "VEN001"},
	{ErrPendingRequestExists, "TIER001"},
	{ErrSameTier, "TIER002"},
	{ErrInvalidTier, "TIER003"},
	{ErrInvalidTransition, "TIER004"},
	{ErrRequestNotFound, "TIER005"},
	{ErrNotRequestOwner, "AUTH002"},
	{ErrTooManyImports, "IMP001"},
	{spreadsheet.ErrHeaderNotFound, "IMP002"},
	{spreadsheet.ErrNoDataRows, "IMP003"},
	{spreadsheet.ErrTooManyRows, "IMP004"},
	{context.Canceled, "IMP005"},
	{context.DeadlineExceeded, "IMP006"},
	{ErrFileTooLarge, "FILE001"},
	{spreadsheet.ErrInvalidWorkbook, "FILE002"},
	{ErrUnsupportedFile, "FILE003"},
	{ErrNoFile, "FILE004"},
	{ErrEmptyFile, "FILE005"},
}

// foreignPatterns catch errors from drivers and other packages by their
// text, lower-cased. First match wins.
var foreignPatterns = []struct {
	pattern string
	code    string
}{
	{"duplicate key", "DB001"},
	{"unique constraint", "DB002"},
	{"violates unique", "DB002"},
	{"connection refused", "DB003"},
	{"connection reset", "DB004"},
	{"deadlock", "DB006"},
	{"timeout", "DB005"},
	{"unauthorized", "AUTH001"},
	{"forbidden", "AUTH002"},
	{"rate limit", "RATE001"},
}

// MapError turns err into the message shown to clients. Unknown errors map
// to ERR000; the technical error should be logged by the caller.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var tierErr *TierChangeError
	if errors.As(err, &tierErr) {
		return userMessages["TIER006"]
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return userMessages["VEN002"]
	}
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return userMessages[k.code]
		}
	}

	text := strings.ToLower(err.Error())
	for _, p := range foreignPatterns {
		if strings.Contains(text, p.pattern) {
			return userMessages[p.code]
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: X). Action", or "" for nil.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
