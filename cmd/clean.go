package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanq16/paraget/internal/output"
	"github.com/tanq16/paraget/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [OUTPUT_PATH]",
		Short: "Clean up temporary part files left by a failed download",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			removed, err := utils.Clean(target)
			for _, file := range removed {
				output.PrintDebug("Removed " + file)
			}
			if err != nil {
				return fmt.Errorf("error cleaning up temporary files: %w", err)
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d temporary file(s)", len(removed)))
			return nil
		},
	}
}
