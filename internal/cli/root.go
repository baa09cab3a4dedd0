// Package cli implements the leadsync operator command line.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"leadsync_backend/internal/tenantsecret"
	"leadsync_backend/internal/voicesync"
	"leadsync_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Backend is what the commands need from a running installation.
type Backend interface {
	Migrate(ctx context.Context) error
	Sync(ctx context.Context, tenantID uuid.UUID, kinds []voicesync.Kind, params voicesync.CallSyncParams) (voicesync.Report, error)
	CreateSecret(ctx context.Context, in tenantsecret.CreateInput) (tenantsecret.Created, error)
	Close()
}

// Connector opens a Backend. It is called lazily so that --help works
// without a database.
type Connector func(ctx context.Context) (Backend, error)

// NewRootCommand creates the leadsync root command.
func NewRootCommand(connect Connector, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "leadsync",
		Short:         "Operate the lead ingestion and voice sync backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	val := validator.New()
	root.AddCommand(newMigrateCommand(connect))
	root.AddCommand(newSyncCommand(connect, val))
	root.AddCommand(newSecretsCommand(connect, val))
	return root
}

func withBackend(cmd *cobra.Command, connect Connector, fn func(Backend) error) error {
	backend, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(backend)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
