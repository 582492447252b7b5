package render

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SynthesizeWAV runs TiMidity++ on the MIDI file and returns the path
// of the produced WAV. TiMidity++ mangles dots in the input path, so
// it is invoked on the bare file name inside the file's directory.
func SynthesizeWAV(ctx context.Context, r *Runner, timidity, midiPath string) (string, error) {
	dir, file := filepath.Split(midiPath)
	if _, err := r.Run(ctx, dir, timidity, file, "-Ow"); err != nil {
		return "", err
	}
	wavPath := strings.TrimSuffix(midiPath, filepath.Ext(midiPath)) + ".wav"
	if _, err := os.Stat(wavPath); err != nil {
		return "", fmt.Errorf("TiMidity++ did not produce %s: %w", wavPath, err)
	}
	return wavPath, nil
}

// ApplyBeatmap adjusts the MIDI tempo via the external midi-rubato
// tool, writing the adjusted file to dst.
func ApplyBeatmap(ctx context.Context, r *Runner, midiRubato, src, dst, beatmap string) error {
	_, err := r.Run(ctx, "", midiRubato, src, dst, beatmap)
	return err
}

// WriteSilenceWAV writes seconds of silent 16-bit 44.1 kHz stereo PCM,
// used as the audio for the title segment.
func WriteSilenceWAV(path string, seconds int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeSilence(f, seconds); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeSilence(w io.Writer, seconds int) error {
	const (
		channels   = 2
		bps        = 16
		sampleRate = 44100
	)
	dataSize := uint32(seconds * sampleRate * channels * bps / 8)
	fmtSize := uint32(16)

	var werr error
	write := func(v any) {
		if werr == nil {
			werr = binary.Write(w, binary.LittleEndian, v)
		}
	}
	tag := func(s string) {
		if werr == nil {
			_, werr = io.WriteString(w, s)
		}
	}

	tag("RIFF")
	write(uint32(4 + (8 + fmtSize) + (8 + dataSize)))
	tag("WAVE")
	tag("fmt ")
	write(fmtSize)
	write(uint16(1)) // PCM
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(bps / 8 * channels * sampleRate))
	write(uint16(bps / 8 * channels))
	write(uint16(bps))
	tag("data")
	write(dataSize)
	if werr != nil {
		return werr
	}
	_, err := w.Write(make([]byte, dataSize))
	return err
}
