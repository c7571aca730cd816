// Package core provides the business logic for case record import and
// report generation.
//
// This package holds the domain logic independent of any UI or transport
// layer. It is used by the operator page, the CLI, and tests alike.
//
// # Records
//
// A [Record] is one case row persisted by a [RecordStore]. Records are
// grouped by the name of the spreadsheet they were imported from, and a
// report is always requested by that file name.
//
// # Report Pipeline
//
//  1. Caller invokes [ReportService.GenerateReport] with a file name
//  2. The store is queried for records whose file name matches exactly
//  3. [BuildReport] writes the header and one row per record into a single
//     sheet workbook and serializes it
//  4. The caller persists the bytes, usually with [WriteArtifact]
//
// # Import
//
// [ImportService.ProcessFile] reads the first sheet of an uploaded workbook
// and persists its rows through a [RecordWriter]. The returned message starts
// with [UploadSuccessPrefix] when the import stored records.
//
// # Error Handling
//
// Failures carry one of four kinds: [ErrValidation], [ErrNotFound], [ErrIO],
// or [ErrUnknown]. Use errors.Is to branch on the kind. [MapError] turns an
// error into a [UserMessage] with a support code:
//
//   - VAL001-VAL099: Validation errors
//   - RPT001-RPT099: Report errors
//   - IO001-IO099: File and serialization errors
//   - DB001-DB099: Database errors
//   - ERR000: Unknown
package core
