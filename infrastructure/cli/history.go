package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabricflow/fabricflow/application/usecase/audit"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/infrastructure/adapter/sqlite"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		filter domain.AuditFilter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List audit entries from a SQLite audit store",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlite.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := audit.NewAuditQueryUseCase(sqlite.NewAuditRepository(db)).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTOR\tACTION\tRESOURCE\tSEVERITY")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%s\n",
					e.Timestamp.Format(time.RFC3339), e.Actor.Name, e.Action, e.Resource, e.ResourceID, e.Severity)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "sqlite", "audit.db", "SQLite audit store path")
	cmd.Flags().StringVar(&filter.Resource, "resource", "", "filter by resource")
	cmd.Flags().StringVar(&filter.ResourceID, "resource-id", "", "filter by resource id")
	cmd.Flags().StringVar(&filter.ActorID, "actor", "", "filter by actor id")
	cmd.Flags().StringVar(&filter.Action, "action", "", "filter by action")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum entries (default 50)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
