// Package workshop provides the data model for workshops scraped from the registration portal.
//
// A Workshop is identified by the portal's six character session ID and carries its enrollment,
// schedule, and the roster of signed-up participants. Multi-session workshops keep their dates
// as an ordered list that is persisted as a single "_"-joined string. The package also compares
// two sync results to report added, removed, and re-enrolled workshops.
package workshop
