package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vram-calculator/core/estimator"
	"vram-calculator/core/intake"
	"vram-calculator/core/models"
	"vram-calculator/core/optimizer"
	"vram-calculator/providers/aws"
)

// NewInstancesCmd creates the instances command. A nil source looks instances up in AWS.
func NewInstancesCmd(source optimizer.InstanceSource) *cobra.Command {
	var in intake.RawInput
	var preset, region string
	var limit int
	var hours float64

	cmd := &cobra.Command{
		Use:   "instances",
		Short: "List cloud GPU instances that can hold an estimate, cheapest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filled, err := in.WithPreset(preset)
			if err != nil {
				return intakeError(err, models.LanguageEnglish)
			}
			cfg, err := intake.ParseForm(filled)
			if err != nil {
				return intakeError(err, models.LanguageEnglish)
			}
			res := estimator.Estimate(cfg)

			src := source
			if src == nil {
				client, err := aws.NewClient(cmd.Context(), region)
				if err != nil {
					return err
				}
				src = client
			}

			ranked, err := optimizer.NewPricingFetcher(src).Rank(cmd.Context(), res.TotalVRAM)
			if err != nil {
				return err
			}
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Total VRAM: %d GB\n\n", res.TotalVRAM)
			table := newTable(cmd.OutOrStdout(), []string{"Instance", "GPU", "GPUs", "GPU Memory", "Price/h", fmt.Sprintf("Cost %gh", hours)})
			for _, instance := range ranked {
				price, cost := "-", "-"
				if instance.PricePerHour != nil {
					price = fmt.Sprintf("$%.3f", *instance.PricePerHour)
				}
				if c, ok := optimizer.CostForHours(instance, hours); ok {
					cost = fmt.Sprintf("$%.2f", c)
				}
				table.Append([]string{
					instance.InstanceType,
					instance.GPUType,
					strconv.Itoa(instance.GPUsPerInstance),
					fmt.Sprintf("%d GB", instance.TotalGPUMemory),
					price,
					cost,
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Parameters, "parameters", "p", "", "Model size in billions of parameters")
	cmd.Flags().StringVarP(&in.SequenceLength, "sequence-length", "s", "", "Sequence length in tokens")
	cmd.Flags().StringVarP(&in.BatchSize, "batch-size", "b", "", "Batch size (default 1)")
	cmd.Flags().StringVar(&in.Precision, "precision", string(intake.DefaultPrecision), "Numeric precision (fp32, fp16, int8, int4)")
	cmd.Flags().StringVar(&in.Task, "task", string(intake.DefaultTask), "Workload (inference, training)")
	cmd.Flags().StringVar(&preset, "preset", "", "Model preset that fills parameters and sequence length")
	cmd.Flags().StringVar(&region, "region", envOr("AWS_REGION", "us-east-1"), "AWS region")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of instances to list (0 for all)")
	cmd.Flags().Float64Var(&hours, "hours", 1, "Hours used for the cost column")

	return cmd
}
