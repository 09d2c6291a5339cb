package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Moontok/WorkshopApp/internal/cache"
	"github.com/Moontok/WorkshopApp/internal/config"
	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagCachePath  string
	flagEnvFile    string
	flagLogLevel   string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workshop-sync",
		Short: "Sync workshops from the registration portal and search them offline",
		Long: `A CLI tool that signs in to the workshop registration portal, scrapes every
workshop with its sessions and roster into a local cache, and searches or exports
the cached workshops without contacting the portal again.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", config.DefaultPath(), "Path to connection_info.json")
	cmd.PersistentFlags().StringVar(&flagCachePath, "cache", cache.DefaultPath(), "Path to the workshop cache database")
	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Optional .env file with credential overrides")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newSyncCmd(),
		newSearchCmd(),
		newEmailsCmd(),
		newExportCmd(),
		newCredentialsCmd(),
	)

	return cmd
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(flagConfigPath, config.Options{EnvFile: flagEnvFile})
}

func openCache() (*cache.Cache, error) {
	c, err := cache.Open(flagCachePath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	if !errors.Is(err, ErrChanges) {
		logger.Debug("Command failed", logger.Fields{"error": err.Error()})
		fmt.Fprintln(os.Stderr, UserMessage(err))
	}
	stop()
	os.Exit(ExitCode(err))
}
