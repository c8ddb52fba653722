// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/profile"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect and validate summarization profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the profiles in the configured directory",
	RunE:  runProfilesList,
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	defer logger.Sync()

	registry := profile.NewRegistry(logger)
	if err := registry.LoadDirectory(cfg.Profiles.Dir); err != nil {
		return err
	}

	profiles := registry.List()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profiles)
	}

	if len(profiles) == 0 {
		fmt.Printf("No profiles found in %s.\n", cfg.Profiles.Dir)
		return nil
	}
	fmt.Printf("%-16s  %-8s  %-30s  %s\n", "ID", "Version", "Title", "Description")
	for _, p := range profiles {
		fmt.Printf("%-16s  %-8s  %-30s  %s\n", p.ID, p.Version, p.Title, p.Description)
	}
	return nil
}

var profilesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a profile YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesValidate,
}

func runProfilesValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var p types.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s: profile %q (version %s) is valid\n", args[0], p.ID, p.Version)
	return nil
}

func init() {
	profilesListCmd.Flags().Bool("json", false, "output profiles as JSON")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesValidateCmd)
	rootCmd.AddCommand(profilesCmd)
}
