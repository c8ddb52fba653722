// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the json-summarizer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/secrets"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the json-summarizer CLI.
var rootCmd = &cobra.Command{
	Use:   "json-summarizer",
	Short: "Deterministic, evidence-backed summarization of JSON payloads",
	Long: `json-summarizer turns large JSON payloads into short bullet summaries
where every claim carries citations back to paths in the source document.
Summaries are deterministic by default; an optional LLM engine rephrases
the deterministic output without inventing new facts.

Use "summarize" for one-shot summaries, "serve" to run the HTTP API,
"profiles" to inspect summarization presets, and "baseline" to manage
stored comparison snapshots.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./json-summarizer.yaml or ~/.config/json-summarizer/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("json-summarizer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "json-summarizer"))
		}
	}

	viper.SetEnvPrefix("JSON_SUMMARIZER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
// The OpenAI API key is resolved config-first, then OPENAI_API_KEY,
// then .secrets/openai-api-key.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		if loaded, err := secrets.Load(".secrets/"); err == nil {
			cfg.LLM.APIKey = loaded["openai-api-key"]
		}
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Errors fall back to a no-op logger
// rather than aborting the command.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
