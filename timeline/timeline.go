// Package timeline parses the performance MIDI into the tempo list,
// the tick-indexed note-on mapping, and the terminal tick.
package timeline

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"scorevid/model"
	"scorevid/util"
)

// EndOfTrackRule selects how end-of-track ticks from multiple tracks
// combine into the terminal tick.
type EndOfTrackRule int

const (
	// EndOfTrackLatest takes the maximum end-of-track tick observed.
	EndOfTrackLatest EndOfTrackRule = iota
	// EndOfTrackEarliest takes the minimum.
	EndOfTrackEarliest
)

// ParseEndOfTrackRule maps the config spelling to a rule.
func ParseEndOfTrackRule(s string) (EndOfTrackRule, error) {
	switch s {
	case "", "latest":
		return EndOfTrackLatest, nil
	case "earliest":
		return EndOfTrackEarliest, nil
	}
	return 0, fmt.Errorf("end_of_track: unsupported value %q", s)
}

// Timeline is the extracted temporal description of the performance.
// Ticks is strictly increasing; its last element is the terminal tick,
// which carries no note events.
type Timeline struct {
	Resolution int64
	Tempos     []model.TempoChange
	NotesAt    map[int64][]model.NoteEvent
	Ticks      []int64
	Terminal   int64
	// Truncated counts note-bearing ticks discarded because they fell
	// at or beyond the terminal tick of a shorter track.
	Truncated int
}

// ReadFile parses a standard MIDI file from disk.
func ReadFile(path string) (s *smf.SMF, e error) {
	// the reader can panic on malformed files
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("parsing midi file: %w", err)
	}
	return res, nil
}

// ExtractFile reads and extracts path in one step.
func ExtractFile(path string, rule EndOfTrackRule) (*Timeline, error) {
	s, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(s, rule)
}

// Extract walks every track, accumulating delta times into absolute
// ticks, and collects tempo changes, sounding note-ons (velocity > 0)
// and per-track end-of-track ticks.
func Extract(s *smf.SMF, rule EndOfTrackRule) (*Timeline, error) {
	ticksPerQuarter, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v, expected MetricTicks", s.TimeFormat)
	}

	tl := &Timeline{
		Resolution: int64(ticksPerQuarter),
		NotesAt:    make(map[int64][]model.NoteEvent),
	}

	var endOfTrackTicks []int64
	for _, track := range s.Tracks {
		var abs int64
		for _, event := range track {
			abs += int64(event.Delta)
			msg := event.Message

			var bpm float64
			var ch, key, vel uint8
			switch {
			case msg.GetMetaTempo(&bpm):
				tl.Tempos = append(tl.Tempos, model.TempoChange{
					Tick:          abs,
					MicrosPerBeat: int64(math.Round(60_000_000 / bpm)),
				})
			case msg.GetNoteOn(&ch, &key, &vel):
				// velocity 0 encodes note-off
				if vel == 0 {
					continue
				}
				tl.NotesAt[abs] = append(tl.NotesAt[abs], model.NoteEvent{
					Tick:     abs,
					Channel:  ch,
					Key:      key,
					Velocity: vel,
				})
			case msg.Type() == smf.MetaEndOfTrackMsg:
				endOfTrackTicks = append(endOfTrackTicks, abs)
			}
		}
	}

	sort.Slice(tl.Tempos, func(i, j int) bool {
		return tl.Tempos[i].Tick < tl.Tempos[j].Tick
	})
	if len(tl.Tempos) == 0 {
		// no tempo events: assume 120 BPM
		tl.Tempos = append(tl.Tempos, model.TempoChange{Tick: 0, MicrosPerBeat: 500_000})
	}

	tl.Terminal = terminalTick(endOfTrackTicks, rule)
	if tl.Terminal < 0 {
		return nil, fmt.Errorf("midi contains no end-of-track marker")
	}

	// an early end-of-track truncates the performance: notes at or
	// beyond the terminal tick never sound, and keeping them would
	// break the strict increase of Ticks
	for tick := range tl.NotesAt {
		if tick >= tl.Terminal {
			delete(tl.NotesAt, tick)
			tl.Truncated++
		}
	}

	if len(tl.NotesAt) == 0 {
		return nil, fmt.Errorf("midi contains no sounding note-on events before the terminal tick %d", tl.Terminal)
	}
	tl.Ticks = append(util.SortedKeys(tl.NotesAt), tl.Terminal)

	return tl, nil
}

func terminalTick(ticks []int64, rule EndOfTrackRule) int64 {
	result := int64(-1)
	for _, t := range ticks {
		switch {
		case result < 0:
			result = t
		case rule == EndOfTrackLatest:
			result = util.Max(result, t)
		default:
			result = util.Min(result, t)
		}
	}
	return result
}
