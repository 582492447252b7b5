// Package classify decides, for every annotated source location,
// whether it denotes a sounding note, a tie continuation, or a rest.
package classify

import (
	"fmt"

	"scorevid/ly"
	"scorevid/model"
)

// Classified couples a token class with the pitch token text it was
// derived from. Token is empty for ties.
type Classified struct {
	Class model.TokenClass
	Token string
}

// Run tokenizes the text at every annotation and classifies it. Rests
// are dropped from the returned pages entirely: they never produce a
// pixel index and are not tracked further. An annotation pointing at
// anything other than a pitch or tie is fatal.
//
// A pitch immediately followed by \rest (before any further pitch on
// the line) is notated as a rest and reclassified accordingly:
// http://lilypond.org/doc/v2.14/Documentation/notation/writing-rests
func Run(pages [][]model.Annotation, srcLines []string) ([][]model.Annotation, map[model.SourceLocation]Classified, error) {
	kept := make([][]model.Annotation, 0, len(pages))
	classes := make(map[model.SourceLocation]Classified)

	for pageNum, annotations := range pages {
		var inPage []model.Annotation
		for _, a := range annotations {
			text := srcLines[a.Loc.Line-1][a.Loc.Col:]
			tok := ly.NewScanner(text).Next()

			switch {
			case tok.Kind == ly.Tie:
				classes[a.Loc] = Classified{Class: model.ClassTie}
				inPage = append(inPage, a)

			case tok.Kind == ly.PitchTok:
				if tok.IsRest() || followedByRestMarker(text[len(tok.Text):]) {
					continue
				}
				classes[a.Loc] = Classified{Class: model.ClassNote, Token: tok.Text}
				inPage = append(inPage, a)

			default:
				return nil, nil, &model.MalformedReferenceError{
					Page: pageNum + 1,
					Loc:  a.Loc,
					Text: text,
					Err:  fmt.Errorf("expected a pitch or tie, found %s token %q", tok.Kind, tok.Text),
				}
			}
		}
		kept = append(kept, inPage)
	}
	return kept, classes, nil
}

// followedByRestMarker scans the rest of the line to the right of a
// pitch token. A \rest command appearing before the next pitch means
// the token was a positioned rest, not a note; another pitch first
// means it is a genuine note.
func followedByRestMarker(rest string) bool {
	sc := ly.NewScanner(rest)
	for {
		tok := sc.Next()
		switch {
		case tok.Kind == ly.EOF || tok.Kind == ly.PitchTok:
			return false
		case tok.Kind == ly.Command && tok.Text == `\rest`:
			return true
		}
	}
}
