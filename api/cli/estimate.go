package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vram-calculator/core/estimator"
	"vram-calculator/core/intake"
	"vram-calculator/core/models"
	"vram-calculator/core/report"
	"vram-calculator/storage"
)

type estimateOptions struct {
	input     intake.RawInput
	preset    string
	file      string
	exportDir string
	asJSON    bool
	explain   bool
}

// NewEstimateCmd creates the estimate command
func NewEstimateCmd(lang func() models.Language) *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate VRAM for one model configuration",
		Example: `  vramcalc estimate --parameters 7 --sequence-length 2048
  vramcalc estimate --preset llama-13b --task training --precision int8
  vramcalc estimate --file request.yaml --export ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.configuration()
			if err != nil {
				return intakeError(err, lang())
			}

			detail := estimator.EstimateDetailed(cfg)
			out := cmd.OutOrStdout()

			if opts.exportDir != "" {
				record := storage.NewRecord(cfg, detail.Result, lang(), time.Now())
				path, err := storage.NewExporter(opts.exportDir).Export(cmd.Context(), record)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", path)
			}

			if opts.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Configuration models.Configuration    `json:"configuration"`
					Results       models.EstimationResult `json:"results"`
				}{cfg, detail.Result})
			}

			printEstimate(out, cfg, detail.Result, lang())
			if opts.explain {
				printExplanation(out, cfg, detail, lang())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.input.Parameters, "parameters", "p", "", "Model size in billions of parameters")
	cmd.Flags().StringVarP(&opts.input.SequenceLength, "sequence-length", "s", "", "Sequence length in tokens")
	cmd.Flags().StringVarP(&opts.input.BatchSize, "batch-size", "b", "", "Batch size (default 1)")
	cmd.Flags().StringVar(&opts.input.Precision, "precision", string(intake.DefaultPrecision), "Numeric precision (fp32, fp16, int8, int4)")
	cmd.Flags().StringVar(&opts.input.Task, "task", string(intake.DefaultTask), "Workload (inference, training)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "Model preset that fills parameters and sequence length")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "YAML request document")
	cmd.Flags().StringVar(&opts.exportDir, "export", "", "Write the calculation as JSON into this directory")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Print formulas and raw sizes")

	return cmd
}

func (o *estimateOptions) configuration() (models.Configuration, error) {
	if o.file != "" {
		doc, err := os.ReadFile(o.file)
		if err != nil {
			return models.Configuration{}, fmt.Errorf("failed to read %s: %w", o.file, err)
		}
		return intake.ParseYAML(doc)
	}

	in, err := o.input.WithPreset(o.preset)
	if err != nil {
		return models.Configuration{}, err
	}
	return intake.ParseForm(in)
}

// intakeError localizes configuration errors and passes anything else through
func intakeError(err error, lang models.Language) error {
	if intake.IsValidationError(err) {
		return fmt.Errorf("%s (%s)", intake.Message(err, lang), models.ErrorKind(err))
	}
	return err
}

func printEstimate(w io.Writer, cfg models.Configuration, res models.EstimationResult, lang models.Language) {
	fmt.Fprintln(w, report.Summary(cfg, lang))
	fmt.Fprintln(w)

	table := newTable(w, []string{"Component", "Memory", "Share"})
	for _, c := range report.Components(res, lang) {
		table.Append([]string{c.Label, gb(c.GB), fmt.Sprintf("%.1f%%", c.Percent)})
	}
	table.Append([]string{totalLabel(lang), fmt.Sprintf("%d GB", res.TotalVRAM), ""})
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", recommendedLabel(lang), strings.Join(res.RecommendedGPUs, ", "))
}

func printExplanation(w io.Writer, cfg models.Configuration, d estimator.Detail, lang models.Language) {
	fmt.Fprintln(w)
	for _, f := range report.Formulas(cfg.Task, lang) {
		fmt.Fprintf(w, "%s = %s\n", f.Label, f.Formula)
	}

	fmt.Fprintln(w)
	table := newTable(w, []string{"Term", "Value"})
	table.Append([]string{"Total parameters", humanize.Comma(int64(d.TotalParameters))})
	table.Append([]string{"Hidden size (derived)", fmt.Sprintf("%.1f", d.HiddenSize)})
	table.Append([]string{"Layers (derived)", fmt.Sprintf("%.4f", d.NumLayers)})
	table.Append([]string{"Bytes per value", fmt.Sprintf("%g", d.BytesPerValue)})
	table.Append([]string{"Model weights", humanize.IBytes(uint64(d.ModelWeightsBytes))})
	table.Append([]string{"Attention activations", humanize.IBytes(uint64(d.AttentionActivationsBytes))})
	table.Append([]string{"Feed-forward activations", humanize.IBytes(uint64(d.FeedforwardActivationsBytes))})
	table.Append([]string{"KV cache", humanize.IBytes(uint64(d.KVCacheBytes))})
	table.Append([]string{"Base memory", fmt.Sprintf("%.4f GiB", d.BaseMemory)})
	table.Append([]string{"Framework overhead", fmt.Sprintf("%.4f GiB", d.FrameworkOverhead)})
	table.Render()
}

func totalLabel(lang models.Language) string {
	if lang == models.LanguageChinese {
		return "总计"
	}
	return "Total"
}

func recommendedLabel(lang models.Language) string {
	if lang == models.LanguageChinese {
		return "推荐GPU"
	}
	return "Recommended GPUs"
}
