package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"os"
)

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "Print a one-shot table of active sessions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			sessions, err := fetchSessions()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tMEMBERS")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%d\n", s.ID, len(s.Members))
			}
			return w.Flush()
		},
	}
}
