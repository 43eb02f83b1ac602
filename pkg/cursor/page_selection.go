package cursor

// PageSelection tracks an extended "select to here" range. The anchor stays
// where selection started; the focus follows the cursor.
type PageSelection struct {
	anchor *Selection
	focus  *Selection
}

// NewPageSelection starts a page selection at sel.
func NewPageSelection(sel *Selection) *PageSelection {
	return &PageSelection{anchor: sel.Clone(), focus: sel.Clone()}
}

// Extend moves the focus to sel. It reports whether the selected range grew;
// false means the cursor moved back towards the anchor and content was
// unselected.
func (p *PageSelection) Extend(sel *Selection) bool {
	oldStart, oldEnd := p.Range()
	p.focus = sel.Clone()
	newStart, newEnd := p.Range()
	return ComparePositions(newStart, oldStart) <= 0 && ComparePositions(newEnd, oldEnd) >= 0 &&
		(newStart != oldStart || newEnd != oldEnd)
}

// Range returns the selected span in document order.
func (p *PageSelection) Range() (Position, Position) {
	start, end := p.anchor.AbsStart(), p.anchor.AbsEnd()
	if fs := p.focus.AbsStart(); ComparePositions(fs, start) < 0 {
		start = fs
	}
	if fe := p.focus.AbsEnd(); ComparePositions(fe, end) > 0 {
		end = fe
	}
	return start, end
}

// Anchor returns a copy of where the selection started.
func (p *PageSelection) Anchor() *Selection {
	return p.anchor.Clone()
}

// Focus returns a copy of the moving end.
func (p *PageSelection) Focus() *Selection {
	return p.focus.Clone()
}

// Contains reports whether pos lies inside the selected span.
func (p *PageSelection) Contains(pos Position) bool {
	start, end := p.Range()
	return ComparePositions(pos, start) >= 0 && ComparePositions(pos, end) <= 0
}
