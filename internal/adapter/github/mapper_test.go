package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnstone/prreview/internal/diff"
	"github.com/njohnstone/prreview/internal/domain"
)

const mapperDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"

 func main() {}
`

func TestMapSuggestions(t *testing.T) {
	files := diff.ParseFiles(mapperDiff)
	require.Len(t, files, 1)

	suggestions := []domain.Suggestion{
		{Path: "main.go", Line: 2, Body: "group imports"},      // added line, maps
		{Path: "main.go", Line: 99, Body: "outside the diff"},  // unmappable
		{Path: "other.go", Line: 1, Body: "file not in diff"},  // unknown path
		{Path: "", Line: 1, Body: "missing path"},              // dropped
		{Path: "main.go", Line: 0, Body: "no line number"},     // unmappable
	}

	comments, skipped := MapSuggestions(suggestions, files)

	require.Len(t, comments, 1)
	assert.Equal(t, 4, skipped)
	assert.Equal(t, "main.go", comments[0].GetPath())
	assert.Equal(t, "group imports", comments[0].GetBody())
	// Position 2: first content line after @@ is 1, the added line is 2.
	assert.Equal(t, 2, comments[0].GetPosition())
}

func TestMapSuggestions_Empty(t *testing.T) {
	comments, skipped := MapSuggestions(nil, nil)

	assert.Empty(t, comments)
	assert.Zero(t, skipped)
}
