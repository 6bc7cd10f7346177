package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labextract-server/internal/setup"
)

func newSetupCmd() *cobra.Command {
	var opts setup.Options

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with Claude Desktop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DataDir == "" {
				opts.DataDir = cliConfig(cmd).DataDir
			}
			path, err := setup.Configure(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\nRestart Claude Desktop to load it.\n", setup.ServerName, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "client configuration file (default: platform location)")
	cmd.Flags().StringVar(&opts.BinaryPath, "binary", "", "path to "+setup.BinaryName+" (default: search PATH)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "data directory for the server (default: LABEXTRACT_DATA_DIR)")

	cmd.AddCommand(newSetupStatusCmd())
	return cmd
}

func newSetupStatusCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the MCP server is registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := setup.Inspect(path)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "client configuration file (default: platform location)")
	return cmd
}
