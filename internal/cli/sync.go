package cli

import (
	"fmt"

	"leadsync_backend/internal/voicesync"
	"leadsync_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type syncOptions struct {
	tenant  string
	agentID string
	limit   int
}

func newSyncCommand(connect Connector, val *validator.Validator) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:       "sync <agents|calls|phone-numbers|all>",
		Short:     "Reconcile local voice data with the voice platform",
		Long:      "Runs one reconciliation pass, or every pass in order when the kind is \"all\", and prints the counts as JSON.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"agents", "calls", "phone-numbers", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args[0])
			if err != nil {
				return err
			}
			tenantID, params, err := opts.resolve(val)
			if err != nil {
				return err
			}

			return withBackend(cmd, connect, func(b Backend) error {
				report, err := b.Sync(cmd.Context(), tenantID, kinds, params)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}

	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "Tenant ID (required)")
	cmd.Flags().StringVar(&opts.agentID, "agent-id", "", "Only sync calls of this local agent")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of calls to fetch (default 100, max 1000)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func parseKinds(arg string) ([]voicesync.Kind, error) {
	if arg == "all" {
		return voicesync.AllKinds, nil
	}
	kind, ok := voicesync.ParseKind(arg)
	if !ok {
		return nil, fmt.Errorf("unknown sync kind %q", arg)
	}
	return []voicesync.Kind{kind}, nil
}

func (o *syncOptions) resolve(val *validator.Validator) (uuid.UUID, voicesync.CallSyncParams, error) {
	var params voicesync.CallSyncParams

	tenantID, err := uuid.Parse(o.tenant)
	if err != nil {
		return uuid.Nil, params, fmt.Errorf("--tenant must be a UUID")
	}
	if err := val.Var(o.limit, "omitempty,min=1,max=1000"); err != nil {
		return uuid.Nil, params, fmt.Errorf("--limit must be between 1 and 1000")
	}
	params.Limit = o.limit

	if o.agentID != "" {
		agentID, err := uuid.Parse(o.agentID)
		if err != nil {
			return uuid.Nil, params, fmt.Errorf("--agent-id must be a UUID")
		}
		params.AgentID = &agentID
	}
	return tenantID, params, nil
}
