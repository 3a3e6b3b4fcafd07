// Package core provides the business logic for vendor spreadsheet imports and
// tier management.
//
// This package holds the domain logic independent of any transport or
// storage. Persistence is reached through the store interfaces in
// repository.go, so web handlers, the CLI and tests share the same code.
//
// # Architecture
//
//   - Validator: checks parsed spreadsheet rows against the field registry
//     and the vendor's tier.
//   - Executor: compares valid rows with the vendor's current values and
//     writes one update per row (or previews the changes).
//   - ImportLimiter: caps concurrent imports and drains on shutdown.
//   - Service: the entry point wiring templates, exports, imports, tier
//     requests, audit logging and the archive scheduler.
//
// # Import Flow
//
//  1. [CheckUpload] rejects empty, oversized and non-Excel files
//  2. [spreadsheet.Parse] locates the header row and maps columns to fields
//  3. [Validator.ValidateSheet] parses and checks each cell
//  4. [Executor.Execute] applies the changes, or [Executor.Preview] reports them
//  5. A history record and an audit entry are written for real runs
//
// # Tier Requests
//
// Vendors file upgrade or downgrade requests; admins approve or reject them
// and vendors may cancel their own. Only pending requests change status.
// Downgrades are refused while the vendor holds data the target tier cannot
// hold.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VEN001-VEN002: Vendor lookups and request payloads
//   - TIER001-TIER006: Tier requests and tier changes
//   - IMP001-IMP006: Import processing
//   - FILE001-FILE005: Uploaded files
//   - DB001-DB006: Database errors
//
// # Audit Logging
//
// Imports and tier changes are recorded in the audit log with severity levels:
//
//   - Low: Tier requests filed or cancelled
//   - Medium: Tier requests approved or rejected
//   - High: Imports and direct tier changes
//
// Old audit entries are archived to cold storage based on the configured
// retention policy.
package core
