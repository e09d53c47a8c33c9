package commands

import (
	"github.com/spf13/cobra"

	"github.com/tobyjamez/UDA/internal/server"
)

// serve: expose get/plot/widget as MCP tools over stdio or streamable HTTP.
func serveCmd() *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio unless --http is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(wire.Client, wire.Format, logger.Named("server"))
			srv.RegisterHandlers()

			if httpAddr == "" {
				httpAddr = cfg.Server.HTTPAddr
			}
			if httpAddr != "" {
				return srv.RunHTTP(cmd.Context(), httpAddr)
			}
			return srv.RunStdio(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP address to listen on (default server.http_addr, empty for stdio)")
	return cmd
}
