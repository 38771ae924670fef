package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lexikit/wordforge/internal/domain"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the generatable wordlist levels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		levels, err := domain.Catalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tEXAM\tLANGUAGE\tNAME\tBATCH\tOUTPUT")
		_, _ = fmt.Fprintln(w, "---\t----\t--------\t----\t-----\t------")
		for _, l := range levels {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				l.Key, l.Exam, l.Language, l.Name, l.BatchSize, l.Output)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}
