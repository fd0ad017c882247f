// Package cli implements the vramcalc command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"vram-calculator/config"
	"vram-calculator/core/models"
)

// NewRootCmd builds the vramcalc command tree
func NewRootCmd() *cobra.Command {
	var logLevel string
	var language string

	rootCmd := &cobra.Command{
		Use:           "vramcalc",
		Short:         "LLM VRAM calculator",
		Long:          `Estimate the GPU memory a large language model needs for inference or training.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetupLogging(logLevel, "console", cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&language, "lang", envOr("DEFAULT_LANGUAGE", "en"), "Output language (en, zh)")

	lang := func() models.Language { return models.ParseLanguage(language) }

	rootCmd.AddCommand(NewEstimateCmd(lang))
	rootCmd.AddCommand(NewCompareCmd(lang))
	rootCmd.AddCommand(NewPresetsCmd())
	rootCmd.AddCommand(NewGPUsCmd())
	rootCmd.AddCommand(NewInstancesCmd(nil))
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	rootCmd := NewRootCmd()
	rootCmd.SetContext(context.Background())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding(" ")
	table.SetNoWhiteSpace(false)
	return table
}

func gb(v float64) string {
	return fmt.Sprintf("%.2f GB", v)
}
