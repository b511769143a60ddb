package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the auditdiff command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "auditdiff",
		Short:         "Diff purchase order records and inspect the audit trail",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDiffCommand(), newHistoryCommand())
	return root
}

func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}
