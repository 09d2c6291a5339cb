package cli

import (
	"time"

	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/Moontok/WorkshopApp/internal/pipeline"
	"github.com/Moontok/WorkshopApp/internal/portal"
	"github.com/spf13/cobra"
)

type syncOptions struct {
	workers int
	timeout time.Duration
	retries int
	format   string
	exitCode bool
}

func newSyncCmd() *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download every workshop from the portal into the local cache",
		Long: `Signs in to the portal, reads the instructor listing, fetches the detail and
roster page of every workshop and replaces the local cache with the result.
If any page fails the previous cache is kept unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Workshops fetched in parallel (1-4)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", portal.DefaultTimeout, "Per-request HTTP timeout")
	cmd.Flags().IntVar(&opts.retries, "retries", portal.DefaultMaxRetries, "Retries for transient network failures")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Exit with status 2 when workshops were added, removed or changed enrollment")

	return cmd
}

func runSync(cmd *cobra.Command, opts *syncOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	open := pipeline.PortalOpener(cfg,
		portal.WithTimeout(opts.timeout),
		portal.WithMaxRetries(opts.retries),
	)
	p := pipeline.New(open, store, pipeline.WithWorkers(opts.workers))

	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.Info("Cache updated", logger.Fields{
		"run_id": result.RunID,
		"path":   store.Path(),
	})

	err = WriteSync(cmd.OutOrStdout(), &SyncOutput{
		RunID:             result.RunID,
		CheckedAt:         result.StartedAt,
		Duration:          result.Duration.Round(time.Millisecond).String(),
		WorkshopCount:     len(result.Workshops),
		Added:             result.Diff.Added,
		Removed:           result.Diff.Removed,
		EnrollmentChanged: result.Diff.EnrollmentChanged,
	}, format)
	if err != nil {
		return err
	}

	if opts.exitCode && !result.Diff.IsEmpty() {
		return ErrChanges
	}
	return nil
}
