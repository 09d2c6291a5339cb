package cli

import (
	"context"
	"errors"

	"github.com/Moontok/WorkshopApp/internal/cache"
	"github.com/Moontok/WorkshopApp/internal/config"
	"github.com/Moontok/WorkshopApp/internal/extract"
	"github.com/Moontok/WorkshopApp/internal/portal"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitChanges  = 2
	ExitOffline  = 3
	ExitSetup    = 4
	ExitCanceled = 130
)

// ErrChanges is returned by sync --exit-code when the cache changed. It is not a failure.
var ErrChanges = errors.New("workshops changed since the last sync")

// Messages shown for each error kind
const (
	MsgOffline = "Cannot reach the workshop portal. You appear to be offline.\n" +
		"Cached workshops are still available to search and export."
	MsgServer        = "Something went wrong when connecting to server...\nTry again later."
	MsgConfigMissing = `Missing "connection_info.json". Cannot update database.`
	MsgAuth          = "The portal rejected the user name or password.\n" +
		"Update them with: workshop-sync credentials set --user NAME --password PASSWORD"
	MsgNoCache  = "No cached workshops yet. Run 'workshop-sync sync' to download them."
	MsgCanceled = "Sync canceled. The cache was not changed."
)

// UserMessage returns the text shown to the user for err
func UserMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return MsgCanceled
	case errors.Is(err, config.ErrConfigMissing):
		return MsgConfigMissing
	case errors.Is(err, portal.ErrAuth):
		return MsgAuth
	case errors.Is(err, portal.ErrConnection):
		return MsgOffline
	case errors.Is(err, portal.ErrServer), errors.Is(err, extract.ErrStructure):
		return MsgServer
	case errors.Is(err, cache.ErrNoCache):
		return MsgNoCache
	default:
		return "Error: " + err.Error()
	}
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrChanges):
		return ExitChanges
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.Is(err, portal.ErrConnection):
		return ExitOffline
	case errors.Is(err, config.ErrConfigMissing), errors.Is(err, config.ErrConfigInvalid), errors.Is(err, portal.ErrAuth):
		return ExitSetup
	default:
		return ExitError
	}
}
