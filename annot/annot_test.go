package annot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scorevid/model"
)

func TestParseTextEditURI(t *testing.T) {
	assert := assert.New(t)

	loc, err := parseTextEditURI("textedit:///tmp/work/sanitised.ly:42:17:18")
	assert.NoError(err)
	assert.Equal(model.SourceLocation{Line: 42, Col: 17}, loc)
}

func TestParseTextEditURIEscapedPath(t *testing.T) {
	// colons inside the path do not confuse the suffix split
	loc, err := parseTextEditURI("textedit://C:/scores/sanitised.ly:7:4:5")
	assert.NoError(t, err)
	assert.Equal(t, model.SourceLocation{Line: 7, Col: 4}, loc)
}

func TestParseTextEditURIMalformed(t *testing.T) {
	for _, uri := range []string{
		"textedit:///tmp/sanitised.ly",
		"textedit:///tmp/sanitised.ly:x:2:3",
		"textedit:///tmp/sanitised.ly:1:y:3",
		"textedit:///tmp/sanitised.ly:1:2:z",
	} {
		t.Run(uri, func(t *testing.T) {
			_, err := parseTextEditURI(uri)
			assert.Error(t, err)
		})
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract("/nonexistent/sanitised.pdf", "sanitised.ly", nil)
	assert.Error(t, err)
}
