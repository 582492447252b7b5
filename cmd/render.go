package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scorevid/pipeline"
)

var renderFlags struct {
	input        string
	output       string
	fps          int
	width        int
	height       int
	color        string
	beatmap      string
	titleAtStart bool
	titleDelay   int
	keep         bool
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.input, "input", "i", "", "input LilyPond file")
	f.StringVarP(&renderFlags.output, "output", "o", "", "name of output video (default is input + .avi)")
	f.IntVarP(&renderFlags.fps, "fps", "f", 0, "frame rate of final video")
	f.IntVarP(&renderFlags.width, "width", "x", 0, "pixel width of final video")
	f.IntVarP(&renderFlags.height, "height", "y", 0, "pixel height of final video")
	f.StringVarP(&renderFlags.color, "color", "c", "", "color of the cursor line")
	f.StringVarP(&renderFlags.beatmap, "beatmap", "b", "", "beatmap file for adjusting MIDI tempo")
	f.BoolVar(&renderFlags.titleAtStart, "title-at-start", false, "add a title screen at the start of the video")
	f.IntVar(&renderFlags.titleDelay, "title-delay", 0, "seconds to display the title screen")
	f.BoolVarP(&renderFlags.keep, "keep", "k", false, "don't remove temporary working files")
	renderCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a score into a cursor-synchronized video",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		if renderFlags.fps > 0 {
			cfg.Video.FPS = renderFlags.fps
		}
		if renderFlags.width > 0 {
			cfg.Video.Width = renderFlags.width
		}
		if renderFlags.height > 0 {
			cfg.Video.Height = renderFlags.height
		}
		if renderFlags.color != "" {
			cfg.Video.CursorColor = renderFlags.color
		}
		if renderFlags.beatmap != "" {
			cfg.Beatmap = renderFlags.beatmap
		}
		if renderFlags.titleAtStart {
			cfg.Title.Enabled = true
		}
		if renderFlags.titleDelay > 0 {
			cfg.Title.Seconds = renderFlags.titleDelay
		}
		if renderFlags.keep {
			cfg.KeepWorkDir = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		output := renderFlags.output
		if output == "" {
			base := strings.TrimSuffix(renderFlags.input, filepath.Ext(renderFlags.input))
			output = base + ".avi"
		}
		abs, err := filepath.Abs(output)
		if err != nil {
			return err
		}

		if err := pipeline.New(cfg, log).Run(cmd.Context(), renderFlags.input, abs); err != nil {
			return err
		}
		fmt.Printf("Generated video: %s\n", abs)
		return nil
	},
}
