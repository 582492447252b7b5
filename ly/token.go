// Package ly provides a minimal tokenizer for LilyPond music
// expressions plus pitch-name parsing, enough to classify the tokens
// that point-and-click annotations reference and to compare notated
// pitches against MIDI pitch classes.
package ly

import "strings"

// Kind discriminates scanned tokens.
type Kind int

const (
	EOF Kind = iota
	PitchTok
	Command
	Tie
	Duration
	StringQuoted
	Word
	Symbol
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case PitchTok:
		return "pitch"
	case Command:
		return "command"
	case Tie:
		return "tie"
	case Duration:
		return "duration"
	case StringQuoted:
		return "string"
	case Word:
		return "word"
	case Symbol:
		return "symbol"
	}
	return "unknown"
}

// Token is one lexical unit of a music expression. For PitchTok tokens,
// Text includes any trailing octave marks (' and ,).
type Token struct {
	Kind Kind
	Text string
}

// Scanner walks a single line of LilyPond source. A '%' comment ends
// the scan; durations, articulations and structural symbols come back
// as their own tokens so callers can scan past them.
type Scanner struct {
	src string
	pos int
}

func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Next returns the next token, or an EOF token when the line (or a
// comment) ends.
func (s *Scanner) Next() Token {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
	if s.pos >= len(s.src) || s.src[s.pos] == '%' {
		s.pos = len(s.src)
		return Token{Kind: EOF}
	}

	start := s.pos
	c := s.src[s.pos]

	switch {
	case c == '\\':
		s.pos++
		for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
			s.pos++
		}
		return Token{Kind: Command, Text: s.src[start:s.pos]}

	case c == '~':
		s.pos++
		return Token{Kind: Tie, Text: "~"}

	case c == '"':
		s.pos++
		for s.pos < len(s.src) && s.src[s.pos] != '"' {
			if s.src[s.pos] == '\\' && s.pos+1 < len(s.src) {
				s.pos++
			}
			s.pos++
		}
		if s.pos < len(s.src) {
			s.pos++
		}
		return Token{Kind: StringQuoted, Text: s.src[start:s.pos]}

	case isLetter(c):
		for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
			s.pos++
		}
		name := s.src[start:s.pos]
		if _, _, ok := lookupPitchName(name); ok || isRestName(name) {
			// octave marks belong to the pitch token
			for s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == ',') {
				s.pos++
			}
			return Token{Kind: PitchTok, Text: s.src[start:s.pos]}
		}
		return Token{Kind: Word, Text: name}

	case isDigit(c):
		for s.pos < len(s.src) && (isDigit(s.src[s.pos]) || s.src[s.pos] == '.' || s.src[s.pos] == '*' || s.src[s.pos] == '/') {
			s.pos++
		}
		return Token{Kind: Duration, Text: s.src[start:s.pos]}

	default:
		s.pos++
		return Token{Kind: Symbol, Text: s.src[start : start+1]}
	}
}

// isRestName reports whether the word is an r/R style rest.
func isRestName(name string) bool {
	return name == "r" || name == "R"
}

// IsRest reports whether a PitchTok token denotes a rest rather than a
// sounding note.
func (t Token) IsRest() bool {
	return t.Kind == PitchTok && isRestName(strings.TrimRight(t.Text, "',"))
}
