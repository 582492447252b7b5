package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scorevid/pipeline"
)

var inspectInput string

func init() {
	inspectCmd.Flags().StringVarP(&inspectInput, "input", "i", "", "input LilyPond file")
	inspectCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report the extracted alignment without generating video",
	Long: `Runs rendering, extraction and alignment, then reports the
per-page cursor indices, the consumed ticks, and any recoverable
mismatches. Useful for diagnosing source/timeline desynchronization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		cfg.KeepWorkDir = true

		a, err := pipeline.New(cfg, log).Analyze(cmd.Context(), inspectInput)
		if err != nil {
			return err
		}

		fmt.Printf("pages: %d, image width: %d px\n", len(a.Images), a.ImageWidth)
		fmt.Printf("timeline: %d ticks, %d tempo changes, resolution %d, terminal tick %d\n",
			len(a.Timeline.Ticks), len(a.Timeline.Tempos), a.Timeline.Resolution, a.Timeline.Terminal)

		for pageNum, indices := range a.Aligned.Pages {
			fmt.Printf("page %d: %d aligned indices: %v\n", pageNum+1, len(indices), indices)
		}
		if len(a.Aligned.Dropped) > 0 {
			fmt.Printf("dropped ticks (no visual counterpart): %v\n", a.Aligned.Dropped)
		}
		for _, pm := range a.Aligned.Partial {
			fmt.Printf("partial match on page %d at index %d, tick %d: %d/%d pitches\n",
				pm.Page, pm.Index, pm.Tick, pm.Matched, pm.Total)
		}
		if a.Aligned.TrailingTicks > 0 {
			fmt.Printf("warning: %d trailing ticks never matched\n", a.Aligned.TrailingTicks)
		}
		fmt.Printf("working files kept in %s\n", a.Workdir.Root)
		return nil
	},
}
