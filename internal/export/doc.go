// Package export writes search results to files and remote spreadsheets.
//
// Three formats are supported:
//
//   - CSV: one row per workshop (or per participant for rosters), with a UTF-8 byte order
//     mark so spreadsheet applications detect the encoding
//   - Google Sheets: the same table written to a sheet through the Sheets values API
//   - iCalendar: one event per workshop session
//
// Exports never apply styling; they carry values only.
package export
