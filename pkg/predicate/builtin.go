package predicate

import (
	"fmt"
	"strings"

	"github.com/entrhq/cursornav/pkg/dom"
)

// Built-in predicate names.
const (
	Heading    = "heading"
	Link       = "link"
	Table      = "table"
	List       = "list"
	ListItem   = "listItem"
	FormField  = "formField"
	Button     = "button"
	Landmark   = "landmark"
	Graphic    = "graphic"
	Math       = "math"
	Frame      = "frame"
	Blockquote = "blockquote"
)

var landmarkElements = map[string]bool{
	"nav": true, "main": true, "header": true, "footer": true, "aside": true, "form": true,
}

var landmarkRoles = map[string]bool{
	"navigation": true, "main": true, "banner": true, "contentinfo": true,
	"complementary": true, "search": true, "region": true, "form": true,
}

func builtins() map[string]Func {
	preds := map[string]Func{
		Heading: func(n dom.Node) bool {
			return headingLevel(n) > 0 || roleIs(n, "heading")
		},
		Link: func(n dom.Node) bool {
			return (n.Name() == "a" && dom.HasAttr(n, "href")) || roleIs(n, "link")
		},
		Table:    named("table"),
		List:     named("ul", "ol", "dl"),
		ListItem: named("li", "dt"),
		FormField: func(n dom.Node) bool {
			switch n.Name() {
			case "input":
				return !strings.EqualFold(dom.AttrValue(n, "type"), "hidden")
			case "select", "textarea", "button":
				return true
			}
			return false
		},
		Button: func(n dom.Node) bool {
			if n.Name() == "button" || roleIs(n, "button") {
				return true
			}
			switch strings.ToLower(dom.AttrValue(n, "type")) {
			case "button", "submit", "reset", "image":
				return n.Name() == "input"
			}
			return false
		},
		Landmark: func(n dom.Node) bool {
			return landmarkElements[n.Name()] || landmarkRoles[strings.ToLower(dom.AttrValue(n, "role"))]
		},
		Graphic:    func(n dom.Node) bool { return n.Name() == "img" || n.Name() == "svg" || roleIs(n, "img") },
		Math:       named("math"),
		Frame:      named("iframe", "frame"),
		Blockquote: named("blockquote"),
	}
	for level := 1; level <= 6; level++ {
		level := level
		preds[fmt.Sprintf("%s%d", Heading, level)] = func(n dom.Node) bool {
			return headingLevel(n) == level
		}
	}
	return preds
}

func named(names ...string) Func {
	return func(n dom.Node) bool {
		name := n.Name()
		for _, want := range names {
			if name == want {
				return true
			}
		}
		return false
	}
}

func roleIs(n dom.Node, role string) bool {
	return strings.EqualFold(dom.AttrValue(n, "role"), role)
}

func headingLevel(n dom.Node) int {
	name := n.Name()
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}
