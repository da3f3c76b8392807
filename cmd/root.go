// Package cmd assembles the vigia command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/acesco/vigia/cmd/config"
	"github.com/acesco/vigia/cmd/control"
	"github.com/acesco/vigia/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings, version string) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "vigia",
		Short:   "Vigia surveillance station controller",
		Version: version,
	}

	if err := setupFlags(rootCmd, settings, &configPath); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		control.Command(settings),
		configcmd.Command(settings),
		versionCommand(version),
	)

	// An explicit --config replaces the settings loaded from the default
	// search paths. Flags bound to viper still take precedence.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		loaded, err := conf.LoadFrom(configPath)
		if err != nil {
			return err
		}
		*settings = *loaded
		return nil
	}

	return rootCmd
}

// setupFlags defines the global flags and binds them to viper so the
// command line takes precedence over config file and environment.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings, configPath *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(configPath, "config", "", "Path to the config file")
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVar(&settings.Server.BaseURL, "server", viper.GetString("server.baseurl"), "Base URL of the station server")
	flags.StringVarP(&settings.Station.Username, "username", "u", viper.GetString("station.username"), "Operator login username")

	bindings := map[string]string{
		"debug":    "debug",
		"server":   "server.baseurl",
		"username": "station.username",
	}
	for flag, key := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

func versionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
