package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConvertVersion upgrades the score to the installed LilyPond's syntax
// with convert-ly, writing the result to dst.
func ConvertVersion(ctx context.Context, r *Runner, convertLy, src, dst string) error {
	out, err := r.Output(ctx, convertLy, src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write converted score: %w", err)
	}
	return nil
}

// GeneratePreview renders the single-system preview image used to
// count staff lines, and returns its path.
func GeneratePreview(ctx context.Context, r *Runner, lilypond, dir, scorePath string) (string, error) {
	if _, err := r.Run(ctx, dir, lilypond, "-dpreview", "-dprint-pages=#f", scorePath); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, "preview") && strings.HasSuffix(name, ".png") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no preview image produced in %s", dir)
}

// RenderScore produces the point-and-click PDF, the per-page PNG
// rasters and the MIDI file for the sanitised score.
func RenderScore(ctx context.Context, r *Runner, lilypond, dir, scorePath string) error {
	_, err := r.Run(ctx, dir, lilypond,
		"-fpdf",
		"--png",
		"-dpoint-and-click",
		"-dmidi-extension=midi",
		scorePath)
	return err
}
