package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vram-calculator/core/catalog"
	"vram-calculator/core/presets"
)

// NewPresetsCmd creates the presets command
func NewPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List model presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := newTable(cmd.OutOrStdout(), []string{"ID", "Name", "Parameters", "Sequence Length"})
			for _, p := range presets.List() {
				table.Append([]string{p.ID, p.DisplayName, fmt.Sprintf("%gB", p.Parameters), strconv.Itoa(p.SequenceLength)})
			}
			table.Render()
			return nil
		},
	}
}

// NewGPUsCmd creates the gpus command
func NewGPUsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gpus",
		Short: "List the GPUs recommendations are drawn from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := newTable(cmd.OutOrStdout(), []string{"Name", "VRAM"})
			for _, gpu := range catalog.GPUs() {
				table.Append([]string{gpu.Name, fmt.Sprintf("%d GB", gpu.VRAM)})
			}
			table.Render()
			return nil
		},
	}
}
