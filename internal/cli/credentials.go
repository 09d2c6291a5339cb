package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/Moontok/WorkshopApp/internal/config"
	"github.com/Moontok/WorkshopApp/internal/crypto"
	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/spf13/cobra"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the stored portal login",
	}
	cmd.AddCommand(newCredentialsSetCmd())
	return cmd
}

func newCredentialsSetCmd() *cobra.Command {
	var user, password, key string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the user name and password in connection_info.json",
		Long: `Rewrites user_name and password in the configuration file and keeps every
other setting. With an encryption key (flag or ` + config.EnvEncryptionKey + `)
the password is stored encrypted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || password == "" {
				return errors.New("both --user and --password are required")
			}
			if key == "" {
				key = os.Getenv(config.EnvEncryptionKey)
			}

			enc := crypto.NewEncryptor(key)
			cred := config.Credential{UserName: user, Password: password}
			if err := config.UpdateCredentials(flagConfigPath, cred, enc); err != nil {
				return err
			}

			logger.Info("Credentials updated", logger.Fields{
				"path":      flagConfigPath,
				"encrypted": enc.Enabled(),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Updated credentials in %s\n", flagConfigPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Portal user name")
	cmd.Flags().StringVarP(&password, "password", "P", "", "Portal password")
	cmd.Flags().StringVar(&key, "encrypt-key", "", "Passphrase used to encrypt the stored password")
	return cmd
}
