package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cord-loader/internal/corpus"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List article files under the corpus root",
	Long: `Paths walks the corpus root recursively and prints every file with the
configured extension, in the sorted order used for --offset and --limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := corpus.EnumeratePaths(viper.GetString("root"), viper.GetString("ext"))
		if err != nil {
			return err
		}

		if count, _ := cmd.Flags().GetBool("count"); count {
			fmt.Fprintln(cmd.OutOrStdout(), len(paths))
			return nil
		}
		for i, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", i, p)
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().Bool("count", false, "print only the number of files")

	rootCmd.AddCommand(pathsCmd)
}
