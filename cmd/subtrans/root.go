package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subtrans/internal/config"
)

func newRootCommand() *cobra.Command {
	var addrFlag string
	var configFlag string

	resolveClient := func() (*apiClient, error) {
		addr := addrFlag
		if addr == "" {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return nil, fmt.Errorf("load config: %w", err)
			}
			addr = cfg.Paths.APIBind
		}
		return newAPIClient("http://" + addr), nil
	}

	rootCmd := &cobra.Command{
		Use:           "subtrans",
		Short:         "Subtitle translation CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "Daemon API address (host:port)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newStatusCommand(resolveClient))
	rootCmd.AddCommand(newSubmitCommand(resolveClient))
	rootCmd.AddCommand(newJobsCommand(resolveClient))
	rootCmd.AddCommand(newMetricsCommand(resolveClient))
	rootCmd.AddCommand(newConfigCommand(resolveClient, &configFlag))

	return rootCmd
}
