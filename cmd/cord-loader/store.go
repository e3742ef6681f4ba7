// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cord-loader/internal/store"
	"github.com/pdiddy/cord-loader/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Persist loaded tables and query stored runs",
	Long: `Store keeps loaded tables in a local SQLite database. Each save is a run
identified by a UUID; runs can be listed, printed, or searched by text.`,
}

// --- save subcommand ---

var storeSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Load a table and save it as a new run",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindLoadFlags(cmd)
	},
	RunE: runStoreSave,
}

func runStoreSave(cmd *cobra.Command, args []string) error {
	cfg, err := loaderConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	res, err := loadTable(cmd, cfg)
	if err != nil {
		return err
	}

	s, err := store.Open(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.SaveRun(context.Background(), store.RunMeta{
		SectionKey: cfg.SectionKey,
		Offset:     cfg.Offset,
		Limit:      cfg.Limit,
		Split:      cfg.SplitSentences,
		Discarded:  res.Summary.Discarded,
		Failed:     res.Summary.Failed,
	}, res.Table)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved run %s (%d rows)\n", id, res.Table.Len())

	return reportFailures(cmd.ErrOrStderr(), res)
}

// --- runs subcommand ---

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.Runs(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs stored.")
			return nil
		}
		fmt.Fprintf(w, "%-36s  %-10s  %-6s  %-6s  %-5s  %-8s  %s\n",
			"Run", "Section", "Offset", "Limit", "Split", "Rows", "Created")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for _, r := range runs {
			fmt.Fprintf(w, "%-36s  %-10s  %-6d  %-6d  %-5t  %-8d  %s\n",
				r.ID, r.SectionKey, r.Offset, r.Limit, r.Split, r.Rows,
				r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// --- show subcommand ---

var storeShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the table stored for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		t, err := s.Table(context.Background(), args[0])
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return t.Write(cmd.OutOrStdout(), types.OutputFormat(format))
	},
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find stored rows whose text contains a phrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.SearchOptions{Query: strings.Join(args, " ")}
		opts.RunID, _ = cmd.Flags().GetString("run")
		opts.PaperID, _ = cmd.Flags().GetString("paper")
		opts.MaxResults, _ = cmd.Flags().GetInt("limit")
		if opts.Query == "" && opts.RunID == "" && opts.PaperID == "" {
			return fmt.Errorf("query or filter required: provide a search phrase, --run, or --paper")
		}

		s, err := store.Open(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		t, err := s.Search(context.Background(), opts)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return t.Write(cmd.OutOrStdout(), types.OutputFormat(format))
	},
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dbDir := viper.GetString("db_dir")
	if dbDir == "" {
		dbDir = "index"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.StoreConfig{DBDir: dbDir, MaxResults: maxResults}
}

func init() {
	storeCmd.PersistentFlags().String("db-dir", "index", "directory holding the run database")
	storeCmd.PersistentFlags().Int("max-results", 20, "default maximum number of search results")
	viper.BindPFlag("db_dir", storeCmd.PersistentFlags().Lookup("db-dir"))

	addLoadFlags(storeSaveCmd.Flags())

	storeRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	storeShowCmd.Flags().String("format", string(types.OutputText), "output format: table, csv, json, or yaml")

	storeSearchCmd.Flags().String("run", "", "restrict to one run ID")
	storeSearchCmd.Flags().String("paper", "", "restrict to one paper ID")
	storeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeSearchCmd.Flags().String("format", string(types.OutputText), "output format: table, csv, json, or yaml")

	storeCmd.AddCommand(storeSaveCmd)
	storeCmd.AddCommand(storeRunsCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeSearchCmd)

	rootCmd.AddCommand(storeCmd)
}
