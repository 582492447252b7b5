// Package noteindex converts classified annotations into per-page
// pixel indices: the horizontal midpoint of each note's rectangle
// rescaled to the page raster, with tie-silenced notes excluded and
// near-duplicate indices merged.
package noteindex

import (
	"log/slog"
	"math"

	"scorevid/classify"
	"scorevid/model"
	"scorevid/util"
)

// MergeTolerance is the pixel distance below which two adjacent
// indices are considered the same cursor stop. Sub-pixel layout jitter
// otherwise produces spurious extra stops.
const MergeTolerance = 10

// PageIndex maps each pixel index on one raster page to the ordered
// source locations contributing to it.
type PageIndex struct {
	Sources map[int][]model.SourceLocation
}

// Indices returns the page's pixel indices in increasing order.
func (p *PageIndex) Indices() []int {
	return util.SortedKeys(p.Sources)
}

// Merge unions adjacent indices closer than tolerance pixels into the
// left one. The pass is single and non-overlapping: a just-merged key
// is not re-examined as the left endpoint of the next pair, so the
// operation is idempotent.
func (p *PageIndex) Merge(tolerance int) {
	keys := p.Indices()
	skipNext := false
	for i := 0; i+1 < len(keys); i++ {
		if skipNext {
			skipNext = false
			continue
		}
		a, b := keys[i], keys[i+1]
		if b-a < tolerance {
			p.Sources[a] = append(p.Sources[a], p.Sources[b]...)
			delete(p.Sources, b)
			skipNext = true
		}
	}
}

// Build constructs one PageIndex per page. Tie locations produce no
// index of their own; each tie silences the next location in page
// order, or, when that one is already silent, the location right after
// the most recently silenced one (chained ties propagate). A silenced
// note is unmarked when visited and contributes nothing.
func Build(pages [][]model.Annotation, classes map[model.SourceLocation]classify.Classified,
	imageWidth int, pageWidth float64, log *slog.Logger) []*PageIndex {

	res := make([]*PageIndex, 0, len(pages))
	for pageNum, annotations := range pages {
		p := &PageIndex{Sources: make(map[int][]model.SourceLocation)}

		// page-local ordering of every kept location
		order := make([]model.SourceLocation, len(annotations))
		pos := make(map[model.SourceLocation]int, len(annotations))
		for i, a := range annotations {
			order[i] = a.Loc
			pos[a.Loc] = i
		}

		silenced := make(map[model.SourceLocation]bool)
		lastSilenced := -1

		for _, a := range annotations {
			switch classes[a.Loc].Class {
			case model.ClassNote:
				if silenced[a.Loc] {
					delete(silenced, a.Loc)
					continue
				}
				idx := int(math.Round(a.Rect.MidX() * float64(imageWidth) / pageWidth))
				p.Sources[idx] = append(p.Sources[idx], a.Loc)

			case model.ClassTie:
				next := pos[a.Loc] + 1
				if next < len(order) && silenced[order[next]] {
					next = lastSilenced + 1
				}
				if next < len(order) {
					silenced[order[next]] = true
					lastSilenced = next
				}
			}
		}

		p.Merge(MergeTolerance)
		res = append(res, p)
		log.Debug("page indexed",
			"page", pageNum+1,
			"locations", len(annotations),
			"indices", len(p.Sources))
	}
	return res
}
