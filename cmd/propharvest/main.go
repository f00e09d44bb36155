// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the propharvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/propharvest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the propharvest CLI.
var rootCmd = &cobra.Command{
	Use:   "propharvest",
	Short: "Collect compound property data from PubChem",
	Long: `propharvest fetches full compound records from PubChem, extracts
physical and chemical properties from their section hierarchies, and
persists the results for querying and reporting.

Each pipeline stage is a subcommand: fetch downloads records, extract
pulls property values out of them, store indexes the extracted records
in SQLite, and report renders them as tables, JSON, or CSV.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./propharvest.yaml or ~/.config/propharvest/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base data directory (contains records/, metadata/, extracted/, index/, reports/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("propharvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "propharvest"))
		}
	}

	viper.SetEnvPrefix("PROPHARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dataDir resolves the base data directory: flag, then config file,
// then the default.
func dataDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("data-dir") {
		dir, _ := cmd.Flags().GetString("data-dir")
		return dir
	}
	if configured := viper.GetString("data_dir"); configured != "" {
		return configured
	}
	return "data"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
