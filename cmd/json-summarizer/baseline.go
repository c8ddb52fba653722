// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/store"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage stored baseline snapshots for delta summaries",
	Long: `Baseline manages named JSON snapshots in a local SQLite store. A stored
snapshot can be used as the comparison baseline for a later summary via
"summarize --baseline-name <name>".`,
}

// openBaselineStore opens the snapshot store at the configured path.
func openBaselineStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Path)
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <name> [file]",
	Short: "Save a JSON payload as a named baseline snapshot",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) > 1 {
			file = args[1]
		}
		payload, err := loadPayload(file)
		if err != nil {
			return err
		}

		db, err := openBaselineStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Save(args[0], payload); err != nil {
			return err
		}
		fmt.Printf("Saved baseline %q.\n", args[0])
		return nil
	},
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baseline snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openBaselineStore()
		if err != nil {
			return err
		}
		defer db.Close()

		baselines, err := db.List()
		if err != nil {
			return err
		}
		if len(baselines) == 0 {
			fmt.Println("No baselines stored.")
			return nil
		}
		fmt.Printf("%-24s  %10s  %s\n", "Name", "Bytes", "Updated")
		for _, b := range baselines {
			fmt.Printf("%-24s  %10d  %s\n", b.Name, b.Bytes, b.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var baselineShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored baseline snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openBaselineStore()
		if err != nil {
			return err
		}
		defer db.Close()

		payload, err := db.Get(args[0])
		if err != nil {
			return err
		}
		encoded, err := jsontree.Marshal(payload)
		if err != nil {
			return err
		}
		os.Stdout.Write(encoded)
		fmt.Println()
		return nil
	},
}

var baselineRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a stored baseline snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openBaselineStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted baseline %q.\n", args[0])
		return nil
	},
}

func init() {
	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineListCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineRmCmd)
	rootCmd.AddCommand(baselineCmd)
}
