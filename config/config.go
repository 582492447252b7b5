// Package config holds the run configuration for scorevid. Every
// stage receives its settings from here; there is no process-wide
// mutable state.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Video configures the output video geometry and frame rate.
type Video struct {
	FPS         int    `toml:"fps"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	CursorColor string `toml:"cursor_color"`
}

// Timeline configures MIDI timeline extraction.
type Timeline struct {
	// EndOfTrack selects the terminal tick when multiple tracks carry
	// end-of-track markers: "latest" (default) or "earliest".
	EndOfTrack string `toml:"end_of_track"`
}

// Title configures the optional title screen at the start of the video.
type Title struct {
	Enabled bool `toml:"enabled"`
	Seconds int  `toml:"seconds"`
}

// Tools names the external executables the collaborator stages invoke.
type Tools struct {
	LilyPond   string `toml:"lilypond"`
	FFmpeg     string `toml:"ffmpeg"`
	TiMidity   string `toml:"timidity"`
	ConvertLy  string `toml:"convert_ly"`
	MidiRubato string `toml:"midi_rubato"`
}

// Log configures logger construction.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Video    Video    `toml:"video"`
	Timeline Timeline `toml:"timeline"`
	Title    Title    `toml:"title"`
	Tools    Tools    `toml:"tools"`
	Log      Log      `toml:"log"`

	// WorkRoot is where per-run working directories are created.
	WorkRoot string `toml:"work_root"`
	// KeepWorkDir leaves the working directory in place after the run.
	KeepWorkDir bool `toml:"keep_work_dir"`
	// Beatmap optionally names a beatmap file for MIDI tempo adjustment.
	Beatmap string `toml:"beatmap"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Video: Video{
			FPS:         30,
			Width:       1280,
			Height:      720,
			CursorColor: "red",
		},
		Timeline: Timeline{EndOfTrack: "latest"},
		Title:    Title{Enabled: false, Seconds: 3},
		Tools: Tools{
			LilyPond:   "lilypond",
			FFmpeg:     "ffmpeg",
			TiMidity:   "timidity",
			ConvertLy:  "convert-ly",
			MidiRubato: "midi-rubato",
		},
		Log:      Log{Level: "info", Format: "console"},
		WorkRoot: os.TempDir(),
	}
}

// Load reads path over the defaults. A missing file is not an error:
// the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Video.FPS <= 0 {
		return fmt.Errorf("video.fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("video dimensions must be positive, got %dx%d", c.Video.Width, c.Video.Height)
	}
	if c.Timeline.EndOfTrack != "" && c.Timeline.EndOfTrack != "latest" && c.Timeline.EndOfTrack != "earliest" {
		return fmt.Errorf("timeline.end_of_track must be \"latest\" or \"earliest\", got %q", c.Timeline.EndOfTrack)
	}
	if c.Title.Seconds < 0 {
		return fmt.Errorf("title.seconds must not be negative, got %d", c.Title.Seconds)
	}
	return nil
}
