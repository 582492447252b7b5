package model

import "fmt"

// SourceLocation addresses one token in the sanitised LilyPond source.
// Line is 1-based, Col is the 0-based byte offset within the line.
// Locations are never mutated after creation and act as globally unique
// keys across the whole run.
type SourceLocation struct {
	Line int
	Col  int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// Less orders locations by line, then column.
func (l SourceLocation) Less(o SourceLocation) bool {
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Col < o.Col
}

// Rect holds two opposite corners of an annotation rectangle in PDF
// document units.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// MidX returns the horizontal midpoint of the rectangle.
func (r Rect) MidX() float64 {
	return (r.X1 + r.X2) / 2
}

// Annotation links a rendered page region to a source location.
type Annotation struct {
	Loc  SourceLocation
	Rect Rect
}

// TokenClass is the result of classifying the source token an
// annotation points at.
type TokenClass int

const (
	ClassNote TokenClass = iota
	ClassTie
	ClassRest
)

func (c TokenClass) String() string {
	switch c {
	case ClassNote:
		return "note"
	case ClassTie:
		return "tie"
	case ClassRest:
		return "rest"
	}
	return fmt.Sprintf("TokenClass(%d)", int(c))
}

// TempoChange is a tick-stamped tempo in microseconds per quarter note.
type TempoChange struct {
	Tick          int64
	MicrosPerBeat int64
}

// NoteEvent is a sounding note-on extracted from the MIDI timeline.
// Velocity is always > 0; velocity-0 note-ons are filtered out at
// extraction since they encode note-off.
type NoteEvent struct {
	Tick     int64
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// PitchClass returns the octave-invariant semitone position of the note.
func (e NoteEvent) PitchClass() int {
	return int(e.Key) % 12
}
