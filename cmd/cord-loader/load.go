// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/cord-loader/internal/corpus"
	"github.com/pdiddy/cord-loader/internal/sentences"
	"github.com/pdiddy/cord-loader/pkg/types"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Extract article sections into a table",
	Long: `Load reads the article files in [offset, offset+limit) of the sorted path
list, extracts every entry of the --key section array with the requested
--keys, and prints the rows. Entries missing a --mandatory field are dropped.
With --sentences each row is split into one row per sentence with a
zero-based position column.

Unreadable or malformed files follow --on-error: abort stops the run, skip
logs a warning, collect (default) reports them after the table and exits
non-zero.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindLoadFlags(cmd)
	},
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loaderConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	res, err := loadTable(cmd, cfg)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := res.Table.Write(out, types.OutputFormat(format)); err != nil {
		return err
	}

	return reportFailures(cmd.ErrOrStderr(), res)
}

// loadTable runs the loader for cfg, printing progress to stderr unless
// --quiet is set.
func loadTable(cmd *cobra.Command, cfg types.LoaderConfig) (*corpus.Result, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	var splitter *sentences.Splitter
	if cfg.SplitSentences {
		tok, err := sentences.NewPunktTokenizer()
		if err != nil {
			return nil, err
		}
		splitter = sentences.NewSplitter(tok)
	}

	loader := corpus.NewLoader(splitter, logger)
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		loader.WithProgress(cmd.ErrOrStderr())
	}
	return loader.LoadDir(context.Background(), cfg)
}

func reportFailures(w io.Writer, res *corpus.Result) error {
	if !res.HasFailures() {
		return nil
	}
	fmt.Fprintln(w, "\nfailed articles:")
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  %s\n", f.Error())
	}
	return fmt.Errorf("%d article(s) failed to load", len(res.Failures))
}

// addLoadFlags registers the flags shared by load and store save.
func addLoadFlags(fs *pflag.FlagSet) {
	def := types.DefaultLoaderConfig("")
	fs.String("key", def.SectionKey, "section array to extract: abstract, body_text, or any top-level array")
	fs.StringSlice("keys", def.Query.Keys, "entry fields to copy, in column order")
	fs.StringSlice("mandatory", def.Query.Mandatory, "entry fields that must be present")
	fs.Int("offset", 0, "index of the first article in the sorted path list")
	fs.Int("limit", 0, "maximum number of articles to load (0 = through the end)")
	fs.Bool("sentences", false, "split each entry's text into sentence rows")
	fs.String("on-error", string(def.OnError), "unreadable file policy: abort, skip, or collect")
	fs.BoolP("quiet", "q", false, "suppress per-file progress output")
}

// loadFlagKeys maps viper keys to the load flags bound to them. The keys
// match the LoaderConfig YAML names, so each option can also come from the
// config file or a CORD_LOADER_* environment variable.
var loadFlagKeys = map[string]string{
	"section_key":     "key",
	"keys":            "keys",
	"mandatory":       "mandatory",
	"offset":          "offset",
	"limit":           "limit",
	"split_sentences": "sentences",
	"on_error":        "on-error",
}

// bindLoadFlags binds cmd's load flags to viper. load and store save share
// the viper keys, so binding happens when one of them runs rather than in
// init.
func bindLoadFlags(cmd *cobra.Command) error {
	for key, flag := range loadFlagKeys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loaderConfigFromFlags builds a LoaderConfig from the settings resolved by
// viper: flags override environment, which overrides the config file.
func loaderConfigFromFlags(cmd *cobra.Command) (types.LoaderConfig, error) {
	cfg := types.DefaultLoaderConfig(viper.GetString("root"))
	if ext := viper.GetString("ext"); ext != "" {
		cfg.Extension = ext
	}

	cfg.SectionKey = viper.GetString("section_key")
	cfg.Query.Keys = stringList("keys")
	cfg.Query.Mandatory = stringList("mandatory")
	cfg.Offset = viper.GetInt("offset")
	cfg.Limit = viper.GetInt("limit")
	cfg.SplitSentences = viper.GetBool("split_sentences")

	policy, err := types.ParseErrorPolicy(viper.GetString("on_error"))
	if err != nil {
		return cfg, err
	}
	cfg.OnError = policy

	cfg.Query = cfg.Query.Normalize()
	if err := cfg.Query.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// stringList reads a list setting. Environment values arrive as a single
// string and are split on commas, matching the flag syntax.
func stringList(key string) []string {
	var out []string
	for _, v := range viper.GetStringSlice(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func init() {
	addLoadFlags(loadCmd.Flags())
	loadCmd.Flags().String("format", string(types.OutputText), "output format: table, csv, json, or yaml")
	loadCmd.Flags().StringP("output", "o", "", "write the table to this file instead of stdout")

	rootCmd.AddCommand(loadCmd)
}
