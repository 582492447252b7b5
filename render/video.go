package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
)

// VideoJob describes a final assembly.
type VideoJob struct {
	FramesPattern string // e.g. workdir/notes/frame%d.png
	WAVPath       string
	FPS           int
	Output        string

	// title segment, optional
	TitlePattern string
	TitleWAV     string
	ScratchDir   string
}

// EncodeVideo assembles the frame sequence and audio into the output
// file with FFmpeg. When a title segment is configured, title and
// notes are encoded separately, concatenated, and re-encoded into the
// output container.
func EncodeVideo(ctx context.Context, r *Runner, ffmpeg string, job VideoJob) error {
	fps := strconv.Itoa(job.FPS)

	if job.TitlePattern == "" {
		_, err := r.Run(ctx, "", ffmpeg,
			"-f", "image2",
			"-r", fps,
			"-i", job.FramesPattern,
			"-i", job.WAVPath,
			"-y", job.Output)
		return err
	}

	titlePath := job.ScratchDir + "/title.mpg"
	if _, err := r.Run(ctx, "", ffmpeg,
		"-f", "image2",
		"-r", fps,
		"-i", job.TitlePattern,
		"-i", job.TitleWAV,
		"-y", titlePath); err != nil {
		return err
	}

	notesPath := job.ScratchDir + "/notes.mpg"
	if _, err := r.Run(ctx, "", ffmpeg,
		"-f", "image2",
		"-r", fps,
		"-i", job.FramesPattern,
		"-i", job.WAVPath,
		"-y", notesPath); err != nil {
		return err
	}

	joinedPath := job.ScratchDir + "/joined.mpg"
	if err := concatFiles(joinedPath, titlePath, notesPath); err != nil {
		return err
	}

	_, err := r.Run(ctx, "", ffmpeg, "-i", joinedPath, "-y", job.Output)
	return err
}

// concatFiles byte-concatenates MPEG-PS segments, which tolerate
// simple appending.
func concatFiles(dst string, srcs ...string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	for _, src := range srcs {
		in, err := os.Open(src)
		if err != nil {
			return fmt.Errorf("open %s: %w", src, err)
		}
		_, err = io.Copy(out, in)
		in.Close()
		if err != nil {
			return fmt.Errorf("append %s: %w", src, err)
		}
	}
	return nil
}
