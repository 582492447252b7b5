// Package annot extracts point-and-click link annotations from the
// rendered PDF and resolves each one to a location in the sanitised
// LilyPond source.
package annot

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"scorevid/model"
)

// Result holds the extracted annotations for one rendered document.
// Pages has one entry per document page, each sorted by source
// location; PageWidth is the first page's MediaBox width in PDF units
// (all pages are assumed to share it).
type Result struct {
	Pages     [][]model.Annotation
	PageWidth float64
}

// Extract reads every link annotation in the PDF whose URI references
// srcName and resolves it against srcLines. A reference outside the
// source text is fatal: it means renderer output and source layout
// disagree.
func Extract(pdfPath, srcName string, srcLines []string) (*Result, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", pdfPath, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", pdfPath)
	}

	mediaBox := r.Page(1).V.Key("MediaBox")
	if mediaBox.IsNull() || mediaBox.Len() < 4 {
		return nil, fmt.Errorf("pdf %s: first page has no usable MediaBox", pdfPath)
	}
	pageWidth := numeric(mediaBox.Index(2))
	if pageWidth <= 0 {
		return nil, fmt.Errorf("pdf %s: non-positive page width %f", pdfPath, pageWidth)
	}

	// LilyPond percent-encodes the source path inside textedit URIs.
	escaped := (&url.URL{Path: srcName}).EscapedPath()

	res := &Result{PageWidth: pageWidth}
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		annots := r.Page(pageNum).V.Key("Annots")
		var inPage []model.Annotation
		for i := 0; annots.Kind() == pdf.Array && i < annots.Len(); i++ {
			link := annots.Index(i)
			uri := link.Key("A").Key("URI")
			if uri.Kind() != pdf.String {
				continue
			}
			target := uri.RawString()
			if !strings.Contains(target, escaped) && !strings.Contains(target, srcName) {
				continue
			}

			loc, err := parseTextEditURI(target)
			if err != nil {
				return nil, &model.MalformedReferenceError{Page: pageNum, Text: target, Err: err}
			}
			if loc.Line < 1 || loc.Line > len(srcLines) {
				return nil, &model.MalformedReferenceError{
					Page: pageNum, Loc: loc,
					Err: fmt.Errorf("line %d outside source (%d lines)", loc.Line, len(srcLines)),
				}
			}
			if loc.Col < 0 || loc.Col >= len(srcLines[loc.Line-1]) {
				return nil, &model.MalformedReferenceError{
					Page: pageNum, Loc: loc,
					Text: srcLines[loc.Line-1],
					Err:  fmt.Errorf("column %d outside line", loc.Col),
				}
			}

			rect := link.Key("Rect")
			if rect.Kind() != pdf.Array || rect.Len() < 4 {
				return nil, &model.MalformedReferenceError{
					Page: pageNum, Loc: loc,
					Err: fmt.Errorf("annotation has no rectangle"),
				}
			}
			inPage = append(inPage, model.Annotation{
				Loc: loc,
				Rect: model.Rect{
					X1: numeric(rect.Index(0)),
					Y1: numeric(rect.Index(1)),
					X2: numeric(rect.Index(2)),
					Y2: numeric(rect.Index(3)),
				},
			})
		}
		sort.Slice(inPage, func(a, b int) bool {
			return inPage[a].Loc.Less(inPage[b].Loc)
		})
		res.Pages = append(res.Pages, inPage)
	}
	return res, nil
}

// parseTextEditURI pulls the (line, char, column) triple off the end of
// a textedit URI. The char field is the byte offset of the token start,
// which is what the rest of the pipeline keys on.
func parseTextEditURI(uri string) (model.SourceLocation, error) {
	parts := strings.Split(uri, ":")
	if len(parts) < 4 {
		return model.SourceLocation{}, fmt.Errorf("uri %q has no line:char:column suffix", uri)
	}
	line, err := strconv.Atoi(parts[len(parts)-3])
	if err != nil {
		return model.SourceLocation{}, fmt.Errorf("uri %q: bad line number: %w", uri, err)
	}
	char, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return model.SourceLocation{}, fmt.Errorf("uri %q: bad char offset: %w", uri, err)
	}
	if _, err := strconv.Atoi(parts[len(parts)-1]); err != nil {
		return model.SourceLocation{}, fmt.Errorf("uri %q: bad column: %w", uri, err)
	}
	return model.SourceLocation{Line: line, Col: char}, nil
}

// numeric reads a PDF number whether it is stored as integer or real.
func numeric(v pdf.Value) float64 {
	if v.Kind() == pdf.Integer {
		return float64(v.Int64())
	}
	return v.Float64()
}
