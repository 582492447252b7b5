package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"scorevid/model"
)

func newSMF(tracks ...smf.Track) *smf.SMF {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(480)
	for _, t := range tracks {
		s.Add(t)
	}
	return s
}

func on(key uint8) smf.Message {
	return smf.Message(midi.NoteOn(0, key, 100))
}

func off(key uint8) smf.Message {
	return smf.Message(midi.NoteOn(0, key, 0))
}

func TestExtractSingleTrack(t *testing.T) {
	assert := assert.New(t)
	s := newSMF(smf.Track{
		{Delta: 0, Message: smf.MetaTempo(120)},
		{Delta: 0, Message: on(60)},
		{Delta: 480, Message: off(60)},
		{Delta: 0, Message: on(62)},
		{Delta: 480, Message: smf.EOT},
	})

	tl, err := Extract(s, EndOfTrackLatest)
	assert.NoError(err)
	assert.Equal(int64(480), tl.Resolution)
	assert.Equal([]model.TempoChange{{Tick: 0, MicrosPerBeat: 500000}}, tl.Tempos)
	assert.Equal(int64(960), tl.Terminal)
	assert.Equal([]int64{0, 480, 960}, tl.Ticks)
	assert.Len(tl.NotesAt[0], 1)
	assert.Equal(uint8(60), tl.NotesAt[0][0].Key)
	// the velocity-0 note-off contributes nothing
	assert.Len(tl.NotesAt[480], 1)
	assert.Equal(uint8(62), tl.NotesAt[480][0].Key)
}

func TestExtractMergesTracks(t *testing.T) {
	assert := assert.New(t)
	s := newSMF(
		smf.Track{
			{Delta: 0, Message: on(60)},
			{Delta: 480, Message: smf.EOT},
		},
		smf.Track{
			{Delta: 0, Message: on(64)},
			{Delta: 240, Message: on(65)},
			{Delta: 720, Message: smf.EOT},
		},
	)

	tl, err := Extract(s, EndOfTrackLatest)
	assert.NoError(err)
	assert.Equal([]int64{0, 240, 960}, tl.Ticks)
	// both simultaneous note-ons land on tick 0
	assert.Len(tl.NotesAt[0], 2)
	assert.Equal(int64(960), tl.Terminal)
}

func TestExtractEndOfTrackRules(t *testing.T) {
	build := func() *smf.SMF {
		return newSMF(
			smf.Track{
				{Delta: 0, Message: on(60)},
				{Delta: 480, Message: smf.EOT},
			},
			smf.Track{
				{Delta: 0, Message: on(64)},
				{Delta: 960, Message: smf.EOT},
			},
		)
	}

	tl, err := Extract(build(), EndOfTrackLatest)
	assert.NoError(t, err)
	assert.Equal(t, int64(960), tl.Terminal)

	tl, err = Extract(build(), EndOfTrackEarliest)
	assert.NoError(t, err)
	assert.Equal(t, int64(480), tl.Terminal)
}

func TestExtractEarliestRuleTruncatesLongerTracks(t *testing.T) {
	assert := assert.New(t)
	s := newSMF(
		smf.Track{
			{Delta: 0, Message: on(60)},
			{Delta: 480, Message: smf.EOT},
		},
		smf.Track{
			{Delta: 960, Message: on(64)},
			{Delta: 480, Message: smf.EOT},
		},
	)

	tl, err := Extract(s, EndOfTrackEarliest)
	assert.NoError(err)
	assert.Equal(int64(480), tl.Terminal)
	// the note beyond the terminal tick is discarded so Ticks stays
	// strictly increasing
	assert.Equal([]int64{0, 480}, tl.Ticks)
	assert.NotContains(tl.NotesAt, int64(960))
	assert.Equal(1, tl.Truncated)
	for i := 1; i < len(tl.Ticks); i++ {
		assert.Greater(tl.Ticks[i], tl.Ticks[i-1])
	}
}

func TestExtractAllNotesTruncatedIsAnError(t *testing.T) {
	s := newSMF(
		smf.Track{
			{Delta: 480, Message: smf.EOT},
		},
		smf.Track{
			{Delta: 960, Message: on(64)},
			{Delta: 480, Message: smf.EOT},
		},
	)

	_, err := Extract(s, EndOfTrackEarliest)
	assert.Error(t, err)
}

func TestExtractDefaultsTo120BPM(t *testing.T) {
	s := newSMF(smf.Track{
		{Delta: 0, Message: on(60)},
		{Delta: 480, Message: smf.EOT},
	})

	tl, err := Extract(s, EndOfTrackLatest)
	assert.NoError(t, err)
	assert.Equal(t, []model.TempoChange{{Tick: 0, MicrosPerBeat: 500000}}, tl.Tempos)
}

func TestExtractSortsTempoChanges(t *testing.T) {
	// tempo events can arrive from different tracks in any order
	s := newSMF(
		smf.Track{
			{Delta: 960, Message: smf.MetaTempo(60)},
			{Delta: 0, Message: smf.EOT},
		},
		smf.Track{
			{Delta: 0, Message: smf.MetaTempo(120)},
			{Delta: 0, Message: on(60)},
			{Delta: 1440, Message: smf.EOT},
		},
	)

	tl, err := Extract(s, EndOfTrackLatest)
	assert.NoError(t, err)
	assert.Equal(t, []model.TempoChange{
		{Tick: 0, MicrosPerBeat: 500000},
		{Tick: 960, MicrosPerBeat: 1000000},
	}, tl.Tempos)
}

func TestExtractNoNotesIsAnError(t *testing.T) {
	s := newSMF(smf.Track{
		{Delta: 0, Message: smf.MetaTempo(120)},
		{Delta: 480, Message: smf.EOT},
	})

	_, err := Extract(s, EndOfTrackLatest)
	assert.Error(t, err)
}

func TestParseEndOfTrackRule(t *testing.T) {
	assert := assert.New(t)

	rule, err := ParseEndOfTrackRule("")
	assert.NoError(err)
	assert.Equal(EndOfTrackLatest, rule)

	rule, err = ParseEndOfTrackRule("latest")
	assert.NoError(err)
	assert.Equal(EndOfTrackLatest, rule)

	rule, err = ParseEndOfTrackRule("earliest")
	assert.NoError(err)
	assert.Equal(EndOfTrackEarliest, rule)

	_, err = ParseEndOfTrackRule("longest")
	assert.Error(err)
}
