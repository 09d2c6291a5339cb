// Package pipeline runs one sync cycle: sign in to the portal, scrape the listing, fetch
// every workshop's detail and roster pages, and rebuild the local cache.
//
// The cache is rebuilt only after every workshop has been assembled. Any fetch or parse
// failure aborts the cycle and leaves the previous cache untouched, as does cancelling the
// context. Cancellation is checked between workshops, never in the middle of one.
//
// Workshops are processed one at a time in listing order by default. WithWorkers enables a
// small bounded pool that shares the one authenticated session; results keep listing order.
package pipeline
