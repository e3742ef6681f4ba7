// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cord-loader CLI.
// cord-loader walks a CORD-19 corpus, flattens article sections into rows,
// optionally splits them into sentences, and prints, exports, or stores the
// resulting table.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the cord-loader CLI.
var rootCmd = &cobra.Command{
	Use:   "cord-loader",
	Short: "Flatten CORD-19 article sections into tables",
	Long: `cord-loader prepares the CORD-19 literature corpus for downstream
processing. It walks a directory of JSON article records, extracts one
section array (abstract or body_text) with a chosen set of fields, can split
each section into sentences, and emits the rows as a table.

Subcommands: paths lists the corpus files, load prints or exports a table,
and store persists tables to a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cord-loader.yaml or ~/.config/cord-loader/config.yaml)")
	rootCmd.PersistentFlags().String("root", "data", "corpus root directory searched recursively for articles")
	rootCmd.PersistentFlags().String("ext", "json", "article file extension")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("ext", rootCmd.PersistentFlags().Lookup("ext"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cord-loader")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cord-loader"))
		}
	}

	viper.SetEnvPrefix("CORD_LOADER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a development logger with --verbose and a warn-level
// console logger otherwise.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
