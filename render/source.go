package render

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"scorevid/ly"
)

// SourceInfo carries the title metadata captured while sanitising.
type SourceInfo struct {
	Title    string
	Composer string
}

// SanitizeOptions controls the generated paper block.
type SanitizeOptions struct {
	Width           int
	Height          int
	StaffLines      int
	LilyPondVersion string
}

// SourceVersion finds the \version declaration in a LilyPond file.
func SourceVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, `\version`) {
			continue
		}
		sc := ly.NewScanner(line)
		for tok := sc.Next(); tok.Kind != ly.EOF; tok = sc.Next() {
			if tok.Kind == ly.StringQuoted && len(tok.Text) >= 2 {
				return tok.Text[1 : len(tok.Text)-1], nil
			}
		}
	}
	return "", scanner.Err()
}

// Sanitize rewrites the input score so the renderer produces one
// continuous line per page with predictable margins: page-breaking
// commands and articulation are stripped, the header and paper blocks
// are replaced by generated ones, repeats are unfolded. The title and
// composer of the original header are captured for the title screen.
func Sanitize(srcPath, dstPath string, opts SanitizeOptions, log *slog.Logger) (*SourceInfo, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer dst.Close()

	info := &SourceInfo{}
	wrotePaper := false

	inHeader := false
	headerBraces := 0
	inPaper := false
	paperBraces := 0

	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := scanner.Text()
		done := false

		if strings.Contains(line, `\partial`) {
			log.Warn(`score contains \partial, which can desynchronize alignment`)
		}

		// commands that would fight the generated layout
		if strings.Contains(line, `\include "articulate.ly"`) ||
			strings.Contains(line, `\pointAndClickOff`) ||
			strings.Contains(line, "#(set-global-staff-size") ||
			strings.Contains(line, `\bookOutputName`) {
			continue
		}

		if strings.Contains(line, `\version`) {
			done = true
			fmt.Fprintln(dst, line)
			writePaperHeader(dst, opts)
			wrotePaper = true
		}

		if (strings.Contains(line, `\header`) || inHeader) && !done {
			if strings.Contains(line, `\header`) {
				fmt.Fprint(dst, "\\header {\n   tagline = ##f composer = ##f\n}\n")
				inHeader = true
			}
			done = true

			if strings.Contains(line, "title = ") {
				info.Title = headerValue(line)
			}
			if strings.Contains(line, "composer = ") {
				info.Composer = headerValue(line)
			}

			headerBraces += strings.Count(line, "{") - strings.Count(line, "}")
			if headerBraces == 0 {
				inHeader = false
			}
		}

		if (strings.Contains(line, `\paper`) || inPaper) && !done {
			if strings.Contains(line, `\paper`) {
				inPaper = true
			}
			done = true
			paperBraces += strings.Count(line, "{") - strings.Count(line, "}")
			if paperBraces == 0 {
				inPaper = false
			}
		}

		if strings.Contains(line, `\score {`) && !done {
			done = true
			fmt.Fprintln(dst, line+" \\unfoldRepeats")
		}

		if !inHeader && !inPaper && !done {
			for _, cmd := range []string{`\break`, `\noBreak`, `\pageBreak`, `\articulate`} {
				line = strings.Replace(line, cmd, "", 1)
			}
			fmt.Fprintln(dst, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", srcPath, err)
	}

	if !wrotePaper {
		writePaperHeader(dst, opts)
	}
	log.Info("wrote sanitised score", "source", srcPath, "sanitised", dstPath)
	return info, nil
}

func headerValue(line string) string {
	v := strings.TrimSpace(line[strings.LastIndex(line, "=")+1:])
	return strings.Trim(v, `"`)
}

// writePaperHeader emits a paper block sized so each rendered page is
// one continuous system matching the video frame geometry.
func writePaperHeader(w io.Writer, opts SanitizeOptions) {
	const pixelsPerMm = 181.0 / 720 // 1 px = 0.251375 mm

	fmt.Fprint(w, "\\paper {\n")

	// one-line-breaking is available as of 2.15.41
	oneLineBreaking := versionAtLeast(opts.LilyPondVersion, "2.15.41")
	if oneLineBreaking {
		fmt.Fprint(w, "   page-breaking = #ly:one-line-breaking\n")
	} else {
		fmt.Fprintf(w, "   paper-width   = %d\\mm\n", round(10*float64(opts.Width)*pixelsPerMm))
		fmt.Fprintf(w, "   paper-height  = %d\\mm\n", round(float64(opts.Height)*pixelsPerMm))
	}

	fmt.Fprintf(w, "   top-margin    = %d\\mm\n", round(float64(opts.Height)*pixelsPerMm/20))
	fmt.Fprintf(w, "   bottom-margin = %d\\mm\n", round(float64(opts.Height)*pixelsPerMm/20))
	fmt.Fprintf(w, "   left-margin   = %d\\mm\n", round(float64(opts.Width)*pixelsPerMm/2))
	fmt.Fprintf(w, "   right-margin  = %d\\mm\n", round(float64(opts.Width)*pixelsPerMm/2))

	if !oneLineBreaking {
		fmt.Fprint(w, "   print-page-number = ##f\n")
	}

	fmt.Fprint(w, "}\n")

	staffLines := opts.StaffLines
	if staffLines < 1 {
		staffLines = 1
	}
	fmt.Fprintf(w, "#(set-global-staff-size %d)\n\n",
		round(float64(opts.Height-2*(opts.Height/10))/float64(staffLines)))
}

func round(v float64) int {
	return int(math.Round(v))
}

// versionAtLeast compares dotted version strings numerically.
func versionAtLeast(version, min string) bool {
	va := strings.Split(version, ".")
	vb := strings.Split(min, ".")
	for i := 0; i < len(va) || i < len(vb); i++ {
		a, b := 0, 0
		if i < len(va) {
			a, _ = strconv.Atoi(va[i])
		}
		if i < len(vb) {
			b, _ = strconv.Atoi(vb[i])
		}
		if a != b {
			return a > b
		}
	}
	return true
}
