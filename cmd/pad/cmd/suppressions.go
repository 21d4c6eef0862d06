package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func suppressionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "suppressions",
		Short:   "List notifications the dedup window dropped for an owner",
		Example: `  pad suppressions --owner alice --limit 20`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, err := ownerID()
			if err != nil {
				return err
			}
			ss, err := newClient().ListSuppressions(context.Background(), owner, limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(ss)
			}
			if len(ss) == 0 {
				fmt.Println("No suppressions found.")
				return nil
			}
			return writeSuppressionTable(os.Stdout, ss)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of results (server default 50)")

	return cmd
}
