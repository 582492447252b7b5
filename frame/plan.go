// Package frame turns the aligned index/tick sequence into concrete
// per-frame cursor positions and renders the cursor frames.
package frame

import (
	"fmt"
	"math"

	"scorevid/model"
)

// Plan is the computed cursor trajectory: one pixel position per
// emitted video frame, grouped by page.
type Plan struct {
	Pages   [][]int
	Total   int
	Dropped int
}

// Planner computes frame counts from tick intervals and the active
// tempo. The rounding error of each interval accumulates; whenever the
// accumulator reaches one full frame, a frame is skipped so that total
// timing never drifts however long the performance runs.
type Planner struct {
	Resolution int64
	Tempos     []model.TempoChange
	FPS        int
}

// Plan consumes one tick interval per consecutive index pair. Each
// page's final index is duplicated first so the cursor holds its last
// position while the page's trailing frames render.
func (p *Planner) Plan(pages [][]int, ticks []int64) (*Plan, error) {
	if p.FPS <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %d", p.FPS)
	}
	if p.Resolution <= 0 {
		return nil, fmt.Errorf("midi resolution must be positive, got %d", p.Resolution)
	}
	if len(p.Tempos) == 0 {
		return nil, fmt.Errorf("no tempo changes")
	}

	plan := &Plan{}
	midiIndex := 0
	tempoIndex := 0
	dropFrame := 0.0

	for _, pageIndices := range pages {
		var positions []int
		if len(pageIndices) > 0 {
			indices := append(append([]int(nil), pageIndices...), pageIndices[len(pageIndices)-1])

			for i := 0; i+1 < len(indices); i++ {
				start, end := indices[i], indices[i+1]

				if midiIndex+1 >= len(ticks) {
					return nil, fmt.Errorf("tick index exhausted after %d intervals", midiIndex)
				}
				startTick := ticks[midiIndex]
				midiIndex++
				tickSpan := ticks[midiIndex] - startTick

				// tempo in effect: latest change at or before startTick
				for tempoIndex+1 < len(p.Tempos) && p.Tempos[tempoIndex+1].Tick <= startTick {
					tempoIndex++
				}
				tempo := p.Tempos[tempoIndex].MicrosPerBeat

				ideal := float64(tempo) / float64(p.Resolution) * float64(tickSpan) / 1_000_000 * float64(p.FPS)
				actual := int(math.Round(ideal))
				dropFrame += float64(actual) - ideal

				for k := 0; k < actual; k++ {
					if dropFrame >= 1.0 {
						dropFrame -= 1.0
						plan.Dropped++
						continue
					}
					shift := float64(k) * float64(end-start) / ideal
					positions = append(positions, start+int(math.Round(shift)))
				}
			}
		}
		plan.Pages = append(plan.Pages, positions)
		plan.Total += len(positions)
	}
	return plan, nil
}
