// Package cache stores the last successful sync in a local SQLite database.
//
// The cache holds two tables, workshops and participant_information. It is never patched
// incrementally: every Rebuild drops and recreates both tables and inserts the full set of
// workshops inside a single transaction. If any statement fails the transaction rolls
// back and the previous rebuild stays visible unchanged.
//
// Reads and rebuilds are serialized with a reader/writer lock, so a query never observes
// a half-dropped table set. The default location is ~/.local/share/workshop-sync/workshops.db.
package cache
