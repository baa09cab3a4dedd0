package cli

import (
	"fmt"

	"leadsync_backend/internal/tenantsecret"
	"leadsync_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newSecretsCommand groups webhook secret subcommands.
func newSecretsCommand(connect Connector, val *validator.Validator) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage webhook secrets",
	}
	cmd.AddCommand(newCreateSecretCommand(connect, val))
	return cmd
}

type createSecretOptions struct {
	tenant string
	name   string
	source string
}

type createdSecretOutput struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Source string    `json:"source"`
	Prefix string    `json:"secretPrefix"`
	Secret string    `json:"secret"`
}

func newCreateSecretCommand(connect Connector, val *validator.Validator) *cobra.Command {
	opts := &createSecretOptions{name: "cli"}

	cmd := &cobra.Command{
		Use:   "create --tenant <uuid> [--source <name>]",
		Short: "Create a webhook secret and print its value once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(opts.tenant)
			if err != nil {
				return fmt.Errorf("--tenant must be a UUID")
			}
			if err := val.Var(opts.name, "required,max=100"); err != nil {
				return fmt.Errorf("--name must be 1 to 100 characters")
			}

			return withBackend(cmd, connect, func(b Backend) error {
				created, err := b.CreateSecret(cmd.Context(), tenantsecret.CreateInput{
					TenantID: tenantID,
					Name:     opts.name,
					Source:   opts.source,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), createdSecretOutput{
					ID:     created.ID,
					Name:   created.Name,
					Source: created.Source,
					Prefix: created.SecretPrefix,
					Secret: created.Plaintext,
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "Tenant ID (required)")
	cmd.Flags().StringVar(&opts.name, "name", opts.name, "Display name of the secret")
	cmd.Flags().StringVar(&opts.source, "source", "", "Restrict the secret to one source (default: all sources)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
