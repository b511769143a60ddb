package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fabricflow/fabricflow/domain/changeset"
	domainerr "github.com/fabricflow/fabricflow/domain/error"
)

func newDiffCommand() *cobra.Command {
	var (
		oldPath string
		newPath string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Summarize the changes a patch makes to a record",
		Long: `Reads the current record and a patch (YAML or JSON) and prints the
change summary. Only fields present in the patch are compared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := loadRecord(oldPath)
			if err != nil {
				return err
			}
			patch, err := loadRecord(newPath)
			if err != nil {
				return err
			}

			cs := changeset.Build(old, patch)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cs)
			}
			return writeSummary(cmd.OutOrStdout(), cs)
		},
	}

	cmd.Flags().StringVar(&oldPath, "old", "", "current record file")
	cmd.Flags().StringVar(&newPath, "new", "", "patch file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full change set as JSON")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func loadRecord(path string) (changeset.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseRecord(data)
}

// parseRecord decodes a YAML or JSON mapping. An empty document is an empty record.
func parseRecord(data []byte) (changeset.Record, error) {
	record := changeset.Record{}
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, domainerr.ErrInvalidRecord("record must be a mapping", err)
	}
	return record, nil
}

func writeSummary(w io.Writer, cs changeset.ChangeSet) error {
	if len(cs.Summary) == 0 {
		_, err := fmt.Fprintln(w, "No changes")
		return err
	}
	for _, line := range cs.Summary {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
