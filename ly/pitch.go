package ly

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMicrotone is returned when a pitch carries an alteration that is
// not a whole number of half-steps. Microtonal content is rejected.
var ErrMicrotone = errors.New("microtonal alteration not supported")

// cMajorScaleSteps maps steps of the C major scale to semitones above
// C, needed to turn a scale step into a MIDI-comparable pitch value.
var cMajorScaleSteps = [7]int{
	0,  // c
	2,  // d
	4,  // e
	5,  // f
	7,  // g
	9,  // a
	11, // b
}

// Pitch is an absolute pitch: a C-major scale step, an alteration in
// quarter-tone units (sharp = +2, flat = -2), and an octave where 0 is
// the octave of an unmarked c.
type Pitch struct {
	Step    int
	Quarter int
	Octave  int
}

// pitchNames maps note names to (step, quarter-tone alteration). The
// table is the union of the nederlands (LilyPond default input) and
// english name sets. On the few ambiguous names (es, as and friends)
// the nederlands reading wins.
var pitchNames = map[string]struct{ step, quarter int }{}

func init() {
	letters := "cdefgab"
	type suffix struct {
		text    string
		quarter int
	}
	nederlands := []suffix{
		{"", 0},
		{"is", 2}, {"isis", 4},
		{"es", -2}, {"eses", -4},
		{"ih", 1}, {"isih", 3},
		{"eh", -1}, {"eseh", -3},
	}
	english := []suffix{
		{"s", 2}, {"ss", 4}, {"x", 4},
		{"f", -2}, {"ff", -4},
		{"sharp", 2}, {"sharpsharp", 4},
		{"flat", -2}, {"flatflat", -4},
		{"qs", 1}, {"qf", -1},
		{"tqs", 3}, {"tqf", -3},
	}
	for step := 0; step < len(letters); step++ {
		base := string(letters[step])
		for _, sfx := range append(nederlands, english...) {
			pitchNames[base+sfx.text] = struct{ step, quarter int }{step, sfx.quarter}
		}
	}
	// nederlands contractions
	pitchNames["as"] = struct{ step, quarter int }{5, -2}
	pitchNames["ases"] = struct{ step, quarter int }{5, -4}
	pitchNames["es"] = struct{ step, quarter int }{2, -2}
	pitchNames["eses"] = struct{ step, quarter int }{2, -4}
}

func lookupPitchName(name string) (step, quarter int, ok bool) {
	v, ok := pitchNames[name]
	if !ok {
		return 0, 0, false
	}
	return v.step, v.quarter, true
}

// ParsePitch parses a pitch token such as "cis'" or "bf,," into an
// absolute Pitch. Rest names are not pitches.
func ParsePitch(text string) (Pitch, error) {
	name := strings.TrimRight(text, "',")
	octave := 0
	for _, c := range text[len(name):] {
		switch c {
		case '\'':
			octave++
		case ',':
			octave--
		}
	}
	if isRestName(name) {
		return Pitch{}, fmt.Errorf("%q is a rest, not a pitch", text)
	}
	step, quarter, ok := lookupPitchName(name)
	if !ok {
		return Pitch{}, fmt.Errorf("unknown pitch name %q", text)
	}
	return Pitch{Step: step, Quarter: quarter, Octave: octave}, nil
}

// Semitones returns the pitch as half-steps relative to the unmarked c,
// suitable for modulo-12 comparison against MIDI keys. A quarter-tone
// alteration yields ErrMicrotone.
func (p Pitch) Semitones() (int, error) {
	if p.Quarter%2 != 0 {
		return 0, ErrMicrotone
	}
	return p.Octave*12 + cMajorScaleSteps[p.Step] + p.Quarter/2, nil
}

// Class returns the octave-invariant pitch class in [0, 11].
func (p Pitch) Class() (int, error) {
	s, err := p.Semitones()
	if err != nil {
		return 0, err
	}
	return ((s % 12) + 12) % 12, nil
}
