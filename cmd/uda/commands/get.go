package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobyjamez/UDA/internal/client"
)

// get <signal>...: print a one-line summary of each signal.
func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <signal>...",
		Short: "Read signals and print a summary of each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs := make([]client.Request, len(args))
			for i, s := range args {
				reqs[i] = client.Request{Signal: s, Source: source}
			}

			data, err := wire.Client.GetBatch(cmd.Context(), reqs)
			if err != nil {
				return err
			}
			for i, d := range data {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", args[i], d)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "data source, e.g. a shot number")
	return cmd
}
