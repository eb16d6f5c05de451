package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(a *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect distverify configuration",
		Long: `Inspect distverify configuration.

Settings come from built-in defaults, then distverify.{yaml,toml,json}
in the working directory or the user config directory, then
DISTVERIFY_* environment variables, then command-line flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.showConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.cfgUsed == "" {
				fmt.Fprintln(a.Stdout, "(using defaults)")
				return nil
			}
			fmt.Fprintln(a.Stdout, a.cfgUsed)
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig() error {
	data, err := a.cfg.TOML()
	if err != nil {
		return internalError(err)
	}
	if a.cfgUsed != "" {
		fmt.Fprintf(a.Stdout, "# %s\n", a.cfgUsed)
	}
	_, err = a.Stdout.Write(data)
	return err
}
