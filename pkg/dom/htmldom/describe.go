package htmldom

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
)

// Describer produces spoken and braille output for selections in an HTML
// document.
type Describer struct {
	doc dom.Document

	// Verbose adds container context ("Navigation", "List with 3 items")
	// when the cursor enters a container.
	Verbose bool
}

// NewDescriber creates a verbose describer for doc.
func NewDescriber(doc dom.Document) *Describer {
	return &Describer{doc: doc, Verbose: true}
}

// Describe implements description.Provider.
func (d *Describer) Describe(prev, cur *cursor.Selection) []description.Description {
	node := cur.Node()
	if node == nil {
		return nil
	}

	var out []description.Description
	if d.Verbose {
		if ctx := d.enteredContext(prev.Node(), node); ctx != "" {
			out = append(out, description.Description{Context: ctx})
		}
	}

	desc := description.Description{}
	if start, end := cur.AbsStart(), cur.AbsEnd(); start.Node != end.Node {
		desc.Text = d.rangeText(start.Node, end.Node)
		if el := meaningfulAncestor(start.Node.Parent()); el != nil {
			desc.Annotation = Role(el)
		}
	} else if dom.IsText(node) {
		desc.Text = selectedText(cur)
		if el := meaningfulAncestor(node.Parent()); el != nil {
			desc.Annotation = Role(el)
		}
	} else {
		desc.Text, desc.UserValue = d.elementText(node)
		desc.Annotation = Role(node)
	}
	if desc.IsEmpty() {
		return out
	}
	return append(out, desc)
}

// Braille implements description.Provider. Whitespace is mapped rune for rune
// so the span indices stay aligned with the selection.
func (d *Describer) Braille(_, cur *cursor.Selection) description.Braille {
	node := cur.Node()
	if node == nil {
		return description.Braille{}
	}
	if !dom.IsText(node) {
		text, value := d.elementText(node)
		line := strings.TrimSpace(strings.Join([]string{text, value, brailleRole(node)}, " "))
		return description.Braille{Text: line, EndIndex: utf8.RuneCountInString(line)}
	}

	runes := []rune(node.Text())
	for i, r := range runes {
		if unicode.IsSpace(r) {
			runes[i] = ' '
		}
	}
	start, end := cur.AbsStart().Index, cur.AbsEnd().Index
	if start == end {
		start, end = 0, len(runes)
	}
	return description.Braille{
		Text:       string(runes),
		StartIndex: clamp(start, 0, len(runes)),
		EndIndex:   clamp(end, 0, len(runes)),
	}
}

// Role names what an element is, as spoken after its text.
func Role(n dom.Node) string {
	if n == nil || dom.IsText(n) {
		return ""
	}
	if r, ok := n.Attr("role"); ok {
		if name, known := ariaRoles[strings.ToLower(r)]; known {
			return name
		}
	}
	name := n.Name()
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return "Heading " + name[1:]
	}
	if name == "input" {
		t := strings.ToLower(dom.AttrValue(n, "type"))
		if role, ok := inputRoles[t]; ok {
			return role
		}
		return "Edit text"
	}
	if name == "a" && !dom.HasAttr(n, "href") {
		return ""
	}
	return elementRoles[name]
}

func (d *Describer) elementText(n dom.Node) (text, value string) {
	switch n.Name() {
	case "img", "area":
		return dom.AttrValue(n, "alt"), ""
	case "input":
		label := firstNonEmpty(dom.AttrValue(n, "aria-label"), dom.AttrValue(n, "placeholder"), dom.AttrValue(n, "name"))
		switch strings.ToLower(dom.AttrValue(n, "type")) {
		case "checkbox", "radio":
			if dom.HasAttr(n, "checked") {
				return label, "checked"
			}
			return label, "not checked"
		case "button", "submit", "reset":
			return firstNonEmpty(dom.AttrValue(n, "value"), label), ""
		}
		return label, dom.AttrValue(n, "value")
	case "textarea":
		return dom.AttrValue(n, "aria-label"), dom.TextContent(d.doc, n)
	case "select":
		return dom.AttrValue(n, "aria-label"), selectedOption(d.doc, n)
	case "iframe", "frame":
		return dom.AttrValue(n, "title"), ""
	case "meter", "progress":
		return dom.AttrValue(n, "aria-label"), dom.AttrValue(n, "value")
	}
	if label, ok := n.Attr("aria-label"); ok {
		return label, ""
	}
	return dom.TextContent(d.doc, n), ""
}

// enteredContext describes containers around cur that prev was not inside,
// outermost first.
func (d *Describer) enteredContext(prev, cur dom.Node) string {
	var entered []string
	for anc := cur.Parent(); anc != nil; anc = anc.Parent() {
		if prev != nil && dom.Contains(anc, prev) {
			break
		}
		name, ok := containerRoles[anc.Name()]
		if !ok {
			if r, hasRole := anc.Attr("role"); hasRole {
				name, ok = landmarkRoles[strings.ToLower(r)]
			}
		}
		if !ok {
			continue
		}
		switch anc.Name() {
		case "ul", "ol", "dl":
			name = fmt.Sprintf("%s with %d items", name, countChildren(d.doc, anc, "li", "dt"))
		case "table":
			name = fmt.Sprintf("%s with %d rows", name, countRows(d.doc, anc))
		}
		entered = append([]string{name}, entered...)
	}
	return strings.Join(entered, ", ")
}

// rangeText joins the visible text of the objects from first to last.
func (d *Describer) rangeText(first, last dom.Node) string {
	var parts []string
	for cur := first; cur != nil; cur = dom.Next(d.doc.Root(), cur) {
		if dom.IsObject(d.doc, cur) {
			text := dom.TextContent(d.doc, cur)
			if !dom.IsText(cur) {
				text, _ = d.elementText(cur)
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
		if cur == last {
			break
		}
	}
	return strings.Join(parts, " ")
}

func selectedText(sel *cursor.Selection) string {
	runes := []rune(sel.Node().Text())
	start, end := sel.AbsStart().Index, sel.AbsEnd().Index
	if start == end || sel.AbsStart().Node != sel.AbsEnd().Node {
		return strings.Join(strings.Fields(string(runes)), " ")
	}
	start, end = clamp(start, 0, len(runes)), clamp(end, 0, len(runes))
	return strings.Join(strings.Fields(string(runes[start:end])), " ")
}

// meaningfulAncestor is the closest ancestor element with a role worth
// announcing after a text node.
func meaningfulAncestor(n dom.Node) dom.Node {
	return dom.Ancestor(n, func(c dom.Node) bool {
		switch c.Name() {
		case "body", "#document":
			return true
		}
		return Role(c) != ""
	})
}

func selectedOption(doc dom.Document, sel dom.Node) string {
	var first dom.Node
	found := dom.FindNext(doc, sel, nil, func(n dom.Node) bool {
		if n.Name() != "option" {
			return false
		}
		if first == nil {
			first = n
		}
		return dom.HasAttr(n, "selected")
	}, false, false)
	if found == nil {
		found = first
	}
	return dom.TextContent(doc, found)
}

func countChildren(doc dom.Document, n dom.Node, names ...string) int {
	count := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if !doc.IsVisible(c) {
			continue
		}
		for _, name := range names {
			if c.Name() == name {
				count++
			}
		}
	}
	return count
}

func countRows(doc dom.Document, table dom.Node) int {
	count := 0
	for cur := dom.Next(table, table); cur != nil; cur = dom.Next(table, cur) {
		if cur.Name() == "tr" && doc.IsVisible(cur) && dom.AncestorNamed(cur.Parent(), "table") == table {
			count++
		}
	}
	return count
}

func brailleRole(n dom.Node) string {
	name := n.Name()
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return "h" + name[1:]
	}
	if abbr, ok := brailleRoles[name]; ok {
		return abbr
	}
	return strings.ToLower(Role(n))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var elementRoles = map[string]string{
	"a":          "Link",
	"button":     "Button",
	"img":        "Image",
	"area":       "Image map area",
	"select":     "Combo box",
	"textarea":   "Text area",
	"hr":         "Separator",
	"iframe":     "Frame",
	"frame":      "Frame",
	"li":         "List item",
	"td":         "Cell",
	"th":         "Column header",
	"tr":         "Row",
	"table":      "Table",
	"blockquote": "Blockquote",
	"video":      "Video",
	"audio":      "Audio",
	"meter":      "Meter",
	"progress":   "Progress bar",
	"math":       "Math",
	"mfrac":      "Fraction",
	"msqrt":      "Square root",
	"mroot":      "Root",
	"msup":       "Superscript",
	"msub":       "Subscript",
	"msubsup":    "Subscript and superscript",
	"mi":         "Identifier",
	"mn":         "Number",
	"mo":         "Operator",
}

var inputRoles = map[string]string{
	"checkbox": "Check box",
	"radio":    "Radio button",
	"button":   "Button",
	"submit":   "Button",
	"reset":    "Button",
	"image":    "Button",
	"range":    "Slider",
	"search":   "Search text",
	"password": "Password text",
}

var ariaRoles = map[string]string{
	"link":     "Link",
	"button":   "Button",
	"heading":  "Heading",
	"img":      "Image",
	"checkbox": "Check box",
	"slider":   "Slider",
	"tab":      "Tab",
	"math":     "Math",
}

var containerRoles = map[string]string{
	"nav":        "Navigation",
	"main":       "Main",
	"header":     "Banner",
	"footer":     "Content info",
	"aside":      "Complementary",
	"form":       "Form",
	"ul":         "List",
	"ol":         "List",
	"dl":         "List",
	"table":      "Table",
	"blockquote": "Blockquote",
	"math":       "Math",
}

var landmarkRoles = map[string]string{
	"navigation":    "Navigation",
	"main":          "Main",
	"banner":        "Banner",
	"contentinfo":   "Content info",
	"complementary": "Complementary",
	"search":        "Search",
	"region":        "Region",
	"form":          "Form",
}

var brailleRoles = map[string]string{
	"a":        "lnk",
	"button":   "btn",
	"img":      "grph",
	"select":   "cbx",
	"textarea": "edt",
	"input":    "edt",
	"hr":       "-----",
	"iframe":   "frm",
	"frame":    "frm",
	"li":       "lstitm",
	"math":     "mth",
}
