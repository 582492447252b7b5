// Package align sequentially matches per-page pixel indices against
// timeline ticks by comparing notated pitch classes with the MIDI
// pitch classes sounding at each tick.
package align

import (
	"log/slog"
	"slices"

	"scorevid/classify"
	"scorevid/ly"
	"scorevid/model"
	"scorevid/noteindex"
	"scorevid/timeline"
)

// PartialMatch records a tick where some but not all MIDI pitches had
// a notated counterpart, usually an extra voice without visual
// representation. Recoverable.
type PartialMatch struct {
	Page    int
	Index   int
	Tick    int64
	Matched int
	Total   int
}

// Result is the aligned cursor trajectory. Ticks is the surviving tick
// index: the input order with dropped ticks removed, owned by the
// result rather than aliasing the extractor's slice. Each page's
// Pages entry corresponds one-to-one with a consumed prefix of Ticks.
type Result struct {
	Pages         [][]int
	Ticks         []int64
	Dropped       []int64
	Partial       []PartialMatch
	TrailingTicks int
}

// Aligner matches page indices to ticks. The zero value is not usable;
// construct with New.
type Aligner struct {
	classes map[model.SourceLocation]classify.Classified
	log     *slog.Logger
}

func New(classes map[model.SourceLocation]classify.Classified, log *slog.Logger) *Aligner {
	return &Aligner{classes: classes, log: log}
}

// Run advances a cursor through the tick index and, per page, a cursor
// through the page's indices:
//
//   - zero pitch matches at a tick: the tick has no visual counterpart
//     (hidden notation); drop it and retry the same index.
//   - any match: consume the tick and move to the next index, recording
//     a partial match when MIDI pitches were left over.
//   - tick cursor past the end with indices outstanding: fatal.
//
// The tick cursor never moves backwards.
func (a *Aligner) Run(pages []*noteindex.PageIndex, tl *timeline.Timeline) (*Result, error) {
	res := &Result{Ticks: slices.Clone(tl.Ticks)}
	midiIndex := 0

	for pageNum, page := range pages {
		indices := page.Indices()
		var aligned []int

		i := 0
		for i < len(indices) {
			index := indices[i]
			if midiIndex >= len(res.Ticks) {
				return nil, &model.TickExhaustedError{Page: pageNum + 1, Index: index, Ticks: midiIndex}
			}
			tick := res.Ticks[midiIndex]
			events := tl.NotesAt[tick]
			if len(events) == 0 {
				// only the terminal tick carries no events; reaching it
				// with indices outstanding means the timeline is spent
				return nil, &model.TickExhaustedError{Page: pageNum + 1, Index: index, Ticks: midiIndex}
			}

			midiPitches := make(map[int]model.NoteEvent, len(events))
			for _, ev := range events {
				midiPitches[ev.PitchClass()] = ev
			}

			matched := 0
			for _, loc := range page.Sources[index] {
				cl := a.classes[loc]
				pitch, err := ly.ParsePitch(cl.Token)
				if err != nil {
					return nil, &model.UnsupportedPitchError{Token: cl.Token, Loc: loc, Err: err}
				}
				pc, err := pitch.Class()
				if err != nil {
					return nil, &model.UnsupportedPitchError{Token: cl.Token, Loc: loc, Err: err}
				}
				if _, ok := midiPitches[pc]; ok {
					matched++
					delete(midiPitches, pc)
				}
			}

			if matched == 0 {
				res.Dropped = append(res.Dropped, tick)
				res.Ticks = append(res.Ticks[:midiIndex], res.Ticks[midiIndex+1:]...)
				a.log.Debug("dropped tick with no visual counterpart",
					"page", pageNum+1, "tick", tick, "index", index)
				continue
			}

			if len(midiPitches) > 0 {
				res.Partial = append(res.Partial, PartialMatch{
					Page:    pageNum + 1,
					Index:   index,
					Tick:    tick,
					Matched: matched,
					Total:   len(events),
				})
				a.log.Warn("partial pitch match",
					"page", pageNum+1, "tick", tick, "index", index,
					"matched", matched, "events", len(events))
			}

			midiIndex++
			aligned = append(aligned, index)
			i++
		}
		res.Pages = append(res.Pages, aligned)
	}

	// one leftover tick is expected: the terminal end-of-track tick
	if trailing := len(res.Ticks) - midiIndex; trailing > 1 {
		res.TrailingTicks = trailing - 1
		a.log.Warn("timeline has unmatched trailing ticks",
			"consumed", midiIndex, "total", len(res.Ticks))
	}

	return res, nil
}
