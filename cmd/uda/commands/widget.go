package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobyjamez/UDA/internal/codec"
)

// widget <signal>: print the widget view of a result as text or JSON.
func widgetCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "widget <signal>",
		Short: "Show the interactive widget description of a result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire.Client.Get(cmd.Context(), args[0], source)
			if err != nil {
				return err
			}
			w, err := d.Widget(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				b, err := codec.JSON().Marshal(w)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), w.Text())
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "data source, e.g. a shot number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}
