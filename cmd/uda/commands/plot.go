package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tobyjamez/UDA/internal/domain"
)

// plot <signal>: render a signal to an image file.
func plotCmd() *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "plot <signal>",
		Short: "Plot a signal to a png or svg file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := wire.Format
			if format != "" {
				var err error
				if f, err = domain.ParseFormat(format); err != nil {
					return err
				}
			}

			d, err := wire.Client.Get(cmd.Context(), args[0], source)
			if err != nil {
				return err
			}
			fig, err := d.Plot(cmd.Context(), f)
			if err != nil {
				return err
			}

			if out == "" {
				out = "plot." + string(fig.Format)
			}
			if err := os.WriteFile(out, fig.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(fig.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "data source, e.g. a shot number")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default plot.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "png or svg (default render.format)")
	return cmd
}
