package shifter

import (
	"fmt"
	"strconv"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
)

// TableName is the name of the table strategy.
const TableName = "table"

// Table granularities.
const (
	TableRow    = 0 // TableRow moves across the cells of a row.
	TableColumn = 1 // TableColumn moves down a column.
)

// Named table actions.
const (
	ActionGoToFirstCell    = "goToFirstCell"
	ActionGoToLastCell     = "goToLastCell"
	ActionGoToRowFirstCell = "goToRowFirstCell"
	ActionGoToRowLastCell  = "goToRowLastCell"
	ActionGoToColFirstCell = "goToColFirstCell"
	ActionGoToColLastCell  = "goToColLastCell"
	ActionNextRow          = "nextRow"
	ActionPreviousRow      = "previousRow"
	ActionNextCol          = "nextCol"
	ActionPreviousCol      = "previousCol"
)

var tableActions = map[string]bool{
	ActionGoToFirstCell: true, ActionGoToLastCell: true,
	ActionGoToRowFirstCell: true, ActionGoToRowLastCell: true,
	ActionGoToColFirstCell: true, ActionGoToColLastCell: true,
	ActionNextRow: true, ActionPreviousRow: true,
	ActionNextCol: true, ActionPreviousCol: true,
}

// TableShifter walks the cells of one table. Cells spanning several columns
// occupy each of them in the grid; rowspan is not modelled.
type TableShifter struct {
	env         Env
	table       dom.Node
	grid        [][]dom.Node
	granularity int
	subnav      bool
}

// NewTableShifter returns a table strategy when sel lies inside a table with
// at least one cell.
func NewTableShifter(env Env, sel *cursor.Selection) Shifter {
	if sel == nil {
		return nil
	}
	table := dom.AncestorNamed(sel.Node(), "table")
	if table == nil || !dom.Contains(env.Root, table) {
		return nil
	}
	s := &TableShifter{env: env, table: table}
	s.buildGrid()
	if len(s.grid) == 0 {
		return nil
	}
	return s
}

// maxColSpan is the largest colspan HTML honours.
const maxColSpan = 1000

func (s *TableShifter) buildGrid() {
	for cur := dom.Next(s.table, s.table); cur != nil; cur = dom.Next(s.table, cur) {
		if cur.Name() != "tr" || !s.env.Doc.IsVisible(cur) || dom.AncestorNamed(cur.Parent(), "table") != s.table {
			continue
		}
		var row []dom.Node
		for c := cur.FirstChild(); c != nil; c = c.NextSibling() {
			if (c.Name() != "td" && c.Name() != "th") || !s.env.Doc.IsVisible(c) {
				continue
			}
			span, err := strconv.Atoi(dom.AttrValue(c, "colspan"))
			if err != nil || span < 1 {
				span = 1
			}
			span = min(span, maxColSpan)
			for i := 0; i < span; i++ {
				row = append(row, c)
			}
		}
		if len(row) > 0 {
			s.grid = append(s.grid, row)
		}
	}
}

// Name implements Shifter.
func (s *TableShifter) Name() string { return TableName }

// Table returns the table element being walked.
func (s *TableShifter) Table() dom.Node { return s.table }

// position finds the grid coordinates of the cell containing n.
func (s *TableShifter) position(n dom.Node) (row, col int, ok bool) {
	cell := dom.Ancestor(n, func(c dom.Node) bool {
		return (c.Name() == "td" || c.Name() == "th") && dom.AncestorNamed(c.Parent(), "table") == s.table
	})
	if cell == nil {
		return 0, 0, false
	}
	for r, cells := range s.grid {
		for c, candidate := range cells {
			if candidate == cell {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

func (s *TableShifter) cellAt(row, col int) dom.Node {
	if row < 0 || row >= len(s.grid) || col < 0 || col >= len(s.grid[row]) {
		return nil
	}
	return s.grid[row][col]
}

// Next implements Shifter.
func (s *TableShifter) Next(sel *cursor.Selection) *cursor.Selection {
	if sel == nil {
		return s.Begin(false)
	}
	reversed := sel.IsReversed()
	row, col, ok := s.position(sel.Node())
	if !ok {
		return s.Begin(reversed)
	}
	if s.subnav {
		return directed(cursor.FromNode(s.nextInCell(s.grid[row][col], sel.Node(), reversed)), reversed)
	}

	step := 1
	if reversed {
		step = -1
	}
	current := s.grid[row][col]
	if s.granularity == TableColumn {
		for r := row + step; r >= 0 && r < len(s.grid); r += step {
			if cell := s.cellAt(r, col); cell != nil && cell != current {
				return directed(cursor.FromNode(cell), reversed)
			}
		}
		return nil
	}
	for c := col + step; c >= 0 && c < len(s.grid[row]); c += step {
		if cell := s.grid[row][c]; cell != current {
			return directed(cursor.FromNode(cell), reversed)
		}
	}
	return nil
}

func (s *TableShifter) nextInCell(cell, from dom.Node, reversed bool) dom.Node {
	if from == cell {
		from = nil
	}
	return dom.NextObject(s.env.Doc, cell, from, reversed)
}

// Sync implements Shifter.
func (s *TableShifter) Sync(sel *cursor.Selection) *cursor.Selection {
	if sel == nil {
		return nil
	}
	reversed := sel.IsReversed()
	row, col, ok := s.position(sel.Node())
	if !ok {
		return s.Begin(reversed)
	}
	cell := s.grid[row][col]
	if s.subnav {
		if obj := dom.ObjectAt(s.env.Doc, cell, sel.Node()); obj != nil && dom.Contains(cell, obj) {
			return directed(cursor.FromNode(obj), reversed)
		}
	}
	return directed(cursor.FromNode(cell), reversed)
}

// Begin implements Shifter.
func (s *TableShifter) Begin(reversed bool) *cursor.Selection {
	if reversed {
		last := s.grid[len(s.grid)-1]
		return directed(cursor.FromNode(last[len(last)-1]), true)
	}
	return cursor.FromNode(s.grid[0][0])
}

// Description implements Shifter. A cell move is prefixed with its
// coordinates and column header.
func (s *TableShifter) Description(prev, cur *cursor.Selection) []description.Description {
	var out []description.Description
	if s.env.Provider != nil {
		out = s.env.Provider.Describe(prev, cur)
	}
	if cur == nil {
		return out
	}
	row, col, ok := s.position(cur.Node())
	if !ok {
		return out
	}
	if prevRow, prevCol, prevOK := s.position(prev.Node()); prevOK && prevRow == row && prevCol == col {
		return out
	}
	ctx := fmt.Sprintf("Row %d Column %d", row+1, col+1)
	if header := s.columnHeader(row, col); header != "" {
		ctx = header + ", " + ctx
	}
	return append([]description.Description{{Context: ctx}}, out...)
}

func (s *TableShifter) columnHeader(row, col int) string {
	if row == 0 {
		return ""
	}
	header := s.cellAt(0, col)
	if header == nil || header.Name() != "th" {
		return ""
	}
	return dom.TextContent(s.env.Doc, header)
}

// Braille implements Shifter.
func (s *TableShifter) Braille(prev, cur *cursor.Selection) description.Braille {
	if s.env.Provider == nil {
		return description.Braille{}
	}
	return s.env.Provider.Braille(prev, cur)
}

// Granularity implements Shifter.
func (s *TableShifter) Granularity() int { return s.granularity }

// SetGranularity implements Shifter.
func (s *TableShifter) SetGranularity(g int) {
	if g == TableColumn {
		s.granularity = TableColumn
		return
	}
	s.granularity = TableRow
}

// GranularityName implements Shifter.
func (s *TableShifter) GranularityName() string {
	if s.granularity == TableColumn {
		return "Column"
	}
	return "Row"
}

// MakeMoreGranular implements Shifter.
func (s *TableShifter) MakeMoreGranular() { s.granularity = TableRow }

// MakeLessGranular implements Shifter.
func (s *TableShifter) MakeLessGranular() { s.granularity = TableColumn }

// HasAction implements Shifter.
func (s *TableShifter) HasAction(name string) bool { return tableActions[name] }

// PerformAction implements Shifter.
func (s *TableShifter) PerformAction(name string, sel *cursor.Selection) *cursor.Selection {
	if !tableActions[name] {
		return nil
	}
	row, col, _ := s.position(sel.Node())
	lastRow := len(s.grid) - 1

	var cell dom.Node
	switch name {
	case ActionGoToFirstCell:
		cell = s.cellAt(0, 0)
	case ActionGoToLastCell:
		cell = s.cellAt(lastRow, len(s.grid[lastRow])-1)
	case ActionGoToRowFirstCell:
		cell = s.cellAt(row, 0)
	case ActionGoToRowLastCell:
		cell = s.cellAt(row, len(s.grid[row])-1)
	case ActionGoToColFirstCell:
		for r := 0; r <= lastRow && cell == nil; r++ {
			cell = s.cellAt(r, col)
		}
	case ActionGoToColLastCell:
		for r := lastRow; r >= 0 && cell == nil; r-- {
			cell = s.cellAt(r, col)
		}
	case ActionNextRow:
		cell = s.cellAt(row+1, col)
	case ActionPreviousRow:
		cell = s.cellAt(row-1, col)
	case ActionNextCol:
		cell = s.cellAt(row, col+1)
	case ActionPreviousCol:
		cell = s.cellAt(row, col-1)
	}
	if cell == nil {
		debugLog.Debugf("Table action %s has no target from row %d column %d", name, row, col)
		return nil
	}
	return directed(cursor.FromNode(cell), isReversed(sel))
}

// CommitContent moves the cursor to the table's last object so the parent
// strategy resumes after the table.
func (s *TableShifter) CommitContent(sel *cursor.Selection) *cursor.Selection {
	last := dom.FirstObject(s.env.Doc, s.table, true)
	if last == nil {
		return sel
	}
	return directed(cursor.FromNode(last), isReversed(sel))
}

func (s *TableShifter) IsSubnavigating() bool  { return s.subnav }
func (s *TableShifter) EnsureSubnavigating()    { s.subnav = true }
func (s *TableShifter) EnsureNotSubnavigating() { s.subnav = false }

// StoreOn implements Shifter.
func (s *TableShifter) StoreOn(st *State) {
	st.Version = StateVersion
	st.Shifter = TableName
	st.Granularity = s.granularity
	st.Subnavigating = s.subnav
}

// ReadFrom implements Shifter.
func (s *TableShifter) ReadFrom(st State) {
	s.SetGranularity(st.Granularity)
	s.subnav = st.Subnavigating
}
