package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vram-calculator/core/estimator"
	"vram-calculator/core/intake"
	"vram-calculator/core/models"
	"vram-calculator/core/presets"
)

// NewCompareCmd creates the compare command group
func NewCompareCmd(lang func() models.Language) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare estimates across precisions or model presets",
	}
	cmd.AddCommand(newComparePrecisionsCmd(lang))
	cmd.AddCommand(newCompareModelsCmd(lang))
	return cmd
}

func newComparePrecisionsCmd(lang func() models.Language) *cobra.Command {
	var in intake.RawInput
	var preset string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "precisions",
		Short: "Estimate one configuration at every precision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filled, err := in.WithPreset(preset)
			if err != nil {
				return intakeError(err, lang())
			}
			cfg, err := intake.ParseForm(filled)
			if err != nil {
				return intakeError(err, lang())
			}

			results := estimator.CompareAcrossPrecisions(cfg)
			savings := estimator.Savings(results)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Results []models.PrecisionResult     `json:"results"`
					Savings map[models.Precision]float64 `json:"savings"`
				}{results, savings})
			}

			table := newTable(cmd.OutOrStdout(), []string{"Precision", "Weights", "Total", "Saved", "Recommended"})
			for _, r := range results {
				table.Append([]string{
					strings.ToUpper(string(r.Precision)),
					gb(r.ModelWeights),
					fmt.Sprintf("%d GB", r.TotalVRAM),
					fmt.Sprintf("%.1f%%", savings[r.Precision]),
					strings.Join(r.RecommendedGPUs, ", "),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Parameters, "parameters", "p", "", "Model size in billions of parameters")
	cmd.Flags().StringVarP(&in.SequenceLength, "sequence-length", "s", "", "Sequence length in tokens")
	cmd.Flags().StringVarP(&in.BatchSize, "batch-size", "b", "", "Batch size (default 1)")
	cmd.Flags().StringVar(&in.Task, "task", string(intake.DefaultTask), "Workload (inference, training)")
	cmd.Flags().StringVar(&preset, "preset", "", "Model preset that fills parameters and sequence length")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func newCompareModelsCmd(lang func() models.Language) *cobra.Command {
	var precision, task string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Estimate every model preset at batch size 1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePrecision(precision)
			if err != nil {
				return intakeError(err, lang())
			}
			t, err := models.ParseTask(task)
			if err != nil {
				return intakeError(err, lang())
			}

			table := newTable(cmd.OutOrStdout(), []string{"Model", "Parameters", "Weights", "Activations", "KV Cache", "Total", "Recommended"})
			for _, row := range presets.CompareModels(p, t) {
				table.Append([]string{
					row.Name,
					fmt.Sprintf("%gB", row.Parameters),
					gb(row.ModelWeights),
					gb(row.Activations),
					gb(row.KVCache),
					fmt.Sprintf("%d GB", row.TotalVRAM),
					strings.Join(row.RecommendedGPUs, ", "),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&precision, "precision", string(intake.DefaultPrecision), "Numeric precision (fp32, fp16, int8, int4)")
	cmd.Flags().StringVar(&task, "task", string(intake.DefaultTask), "Workload (inference, training)")

	return cmd
}
