package main

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// highlightSource colours markup for the source pane. Highlighting
// failures fall back to the plain markup.
func highlightSource(src, style string) string {
	var sb strings.Builder
	if err := quick.Highlight(&sb, src, "html", "terminal256", style); err != nil {
		debugLog.Debugf("Failed to highlight source: %v", err)
		return src
	}
	return sb.String()
}
