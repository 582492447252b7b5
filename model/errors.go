package model

import "fmt"

// MalformedReferenceError reports an annotation whose referenced source
// text cannot be tokenized or addressed. It indicates a mismatch
// between renderer output and source layout and always aborts the run.
type MalformedReferenceError struct {
	Page int
	Loc  SourceLocation
	Text string
	Err  error
}

func (e *MalformedReferenceError) Error() string {
	msg := fmt.Sprintf("malformed reference on page %d at %s", e.Page, e.Loc)
	if e.Text != "" {
		msg += fmt.Sprintf(" (source text %q)", e.Text)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedReferenceError) Unwrap() error {
	return e.Err
}

// UnsupportedPitchError reports pitch content the aligner cannot map to
// a semitone, i.e. an alteration that is not a half-step multiple.
type UnsupportedPitchError struct {
	Token string
	Loc   SourceLocation
	Err   error
}

func (e *UnsupportedPitchError) Error() string {
	return fmt.Sprintf("unsupported pitch %q at %s: %v", e.Token, e.Loc, e.Err)
}

func (e *UnsupportedPitchError) Unwrap() error {
	return e.Err
}

// TickExhaustedError reports that visual notes remain with no timeline
// left to align against, a structural desynchronization of the inputs.
type TickExhaustedError struct {
	Page  int
	Index int
	Ticks int
}

func (e *TickExhaustedError) Error() string {
	return fmt.Sprintf("ran out of MIDI ticks after %d with index %d outstanding on page %d",
		e.Ticks, e.Index, e.Page)
}
