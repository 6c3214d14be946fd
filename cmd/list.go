package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/essay-feedback/internal/essay"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List the essays in a batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := essay.LoadBatch(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Redações em %s:\n\n", args[0])
			for i, rec := range batch {
				fmt.Fprintf(out, "  %d. %s\n", i+1, rec.Theme)
				fmt.Fprintf(out, "     Competências: %d\n", len(rec.Competencies))
				if strings.TrimSpace(rec.Commentary) != "" {
					fmt.Fprintf(out, "     Comentários: sim\n")
				}
			}
			return nil
		},
	}
}
