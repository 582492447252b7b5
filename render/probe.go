package render

import (
	"context"
	"fmt"
	"regexp"

	"scorevid/config"
)

var lilypondVersionRe = regexp.MustCompile(`GNU LilyPond (\d[\d.]+\d)`)

// ToolSet is the probed collaborator toolchain.
type ToolSet struct {
	LilyPond        string
	LilyPondVersion string
	FFmpeg          string
	TiMidity        string
}

// Probe verifies the configured external tools are present and
// determines the LilyPond version.
func Probe(ctx context.Context, r *Runner, tools config.Tools) (*ToolSet, error) {
	out, err := r.Run(ctx, "", tools.LilyPond, "--version")
	if err != nil {
		return nil, fmt.Errorf("LilyPond was not found: %w", err)
	}
	m := lilypondVersionRe.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("couldn't determine LilyPond version from %q", out)
	}

	if _, err := r.Run(ctx, "", tools.FFmpeg, "-version"); err != nil {
		return nil, fmt.Errorf("FFmpeg was not found: %w", err)
	}
	if err := LookPath(tools.TiMidity); err != nil {
		return nil, fmt.Errorf("TiMidity++ was not found: %w", err)
	}

	return &ToolSet{
		LilyPond:        tools.LilyPond,
		LilyPondVersion: m[1],
		FFmpeg:          tools.FFmpeg,
		TiMidity:        tools.TiMidity,
	}, nil
}
