package capture

import (
	"strings"

	"golang.org/x/net/html"
)

// Clean strips scripts, styles, comments and similar noise from captured
// markup while keeping everything a reader navigates, frames included.
// Markup that fails to parse is returned unchanged.
func Clean(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	prune(doc)

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return markup
	}
	return b.String()
}

func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isNoise(c) {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

func isNoise(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "link", "meta":
			return true
		}
	}
	return false
}
