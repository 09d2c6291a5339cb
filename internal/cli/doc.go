// Package cli implements the command-line interface for workshop-sync.
//
// The cli package provides the Cobra-based commands: sync (scrape the portal into the
// local cache), search and emails (query the cache), export (CSV, Google Sheets, iCalendar)
// and credentials (update the stored login). It maps the error kinds raised by the lower
// packages to the messages and exit codes a user sees.
package cli
