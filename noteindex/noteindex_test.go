package noteindex

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"scorevid/classify"
	"scorevid/model"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pageIndex(indices ...int) *PageIndex {
	p := &PageIndex{Sources: make(map[int][]model.SourceLocation)}
	for i, idx := range indices {
		p.Sources[idx] = []model.SourceLocation{{Line: 1, Col: i}}
	}
	return p
}

func TestMergeCollapsesNearbyIndices(t *testing.T) {
	assert := assert.New(t)
	p := pageIndex(830, 835, 900)

	p.Merge(MergeTolerance)

	assert.Equal([]int{830, 900}, p.Indices())
	// sources of the absorbed index move to the survivor
	assert.Len(p.Sources[830], 2)
	assert.Len(p.Sources[900], 1)
}

func TestMergeIsIdempotent(t *testing.T) {
	p := pageIndex(100, 105, 112, 300)
	p.Merge(MergeTolerance)
	first := p.Indices()
	p.Merge(MergeTolerance)
	assert.Equal(t, first, p.Indices())
}

func TestMergeDistanceExactlyToleranceSurvives(t *testing.T) {
	p := pageIndex(100, 110)
	p.Merge(MergeTolerance)
	assert.Equal(t, []int{100, 110}, p.Indices())
}

func TestMergePassIsNonOverlapping(t *testing.T) {
	// 105 is absorbed into 100; 112 is then not compared against the
	// merged 100, and 112-105 never happens either
	p := pageIndex(100, 105, 112)
	p.Merge(MergeTolerance)
	assert.Equal(t, []int{100, 112}, p.Indices())
}

func note(line, col int, x float64) (model.Annotation, classify.Classified) {
	return model.Annotation{
			Loc:  model.SourceLocation{Line: line, Col: col},
			Rect: model.Rect{X1: x - 5, X2: x + 5},
		},
		classify.Classified{Class: model.ClassNote, Token: "c"}
}

func tie(line, col int) (model.Annotation, classify.Classified) {
	return model.Annotation{Loc: model.SourceLocation{Line: line, Col: col}},
		classify.Classified{Class: model.ClassTie}
}

func build(t *testing.T, entries ...func() (model.Annotation, classify.Classified)) []*PageIndex {
	t.Helper()
	var page []model.Annotation
	classes := make(map[model.SourceLocation]classify.Classified)
	for _, e := range entries {
		a, c := e()
		page = append(page, a)
		classes[a.Loc] = c
	}
	return Build([][]model.Annotation{page}, classes, 1000, 1000, discard())
}

func TestBuildScalesMidpointToRaster(t *testing.T) {
	a := model.Annotation{
		Loc:  model.SourceLocation{Line: 1, Col: 0},
		Rect: model.Rect{X1: 100, X2: 110},
	}
	classes := map[model.SourceLocation]classify.Classified{
		a.Loc: {Class: model.ClassNote, Token: "c"},
	}

	pages := Build([][]model.Annotation{{a}}, classes, 2000, 500, discard())

	// midpoint 105 on a 500-wide page rendered at 2000px -> 420
	assert.Equal(t, []int{420}, pages[0].Indices())
}

func TestBuildTieSilencesContinuation(t *testing.T) {
	assert := assert.New(t)
	pages := build(t,
		func() (model.Annotation, classify.Classified) { return note(1, 0, 100) },
		func() (model.Annotation, classify.Classified) { return tie(1, 3) },
		func() (model.Annotation, classify.Classified) { return note(1, 5, 200) },
		func() (model.Annotation, classify.Classified) { return note(1, 9, 300) },
	)

	// the tied continuation at 200 produces no cursor stop
	assert.Equal([]int{100, 300}, pages[0].Indices())
}

func TestBuildChainedTies(t *testing.T) {
	assert := assert.New(t)
	// c ~ c ~ c d : both continuations are silenced, d survives.
	pages := build(t,
		func() (model.Annotation, classify.Classified) { return note(1, 0, 100) },
		func() (model.Annotation, classify.Classified) { return tie(1, 2) },
		func() (model.Annotation, classify.Classified) { return note(1, 4, 200) },
		func() (model.Annotation, classify.Classified) { return tie(1, 6) },
		func() (model.Annotation, classify.Classified) { return note(1, 8, 300) },
		func() (model.Annotation, classify.Classified) { return note(1, 10, 400) },
	)

	assert.Equal([]int{100, 400}, pages[0].Indices())
}

func TestBuildTrailingTieIsHarmless(t *testing.T) {
	pages := build(t,
		func() (model.Annotation, classify.Classified) { return note(1, 0, 100) },
		func() (model.Annotation, classify.Classified) { return tie(1, 2) },
	)
	assert.Equal(t, []int{100}, pages[0].Indices())
}
