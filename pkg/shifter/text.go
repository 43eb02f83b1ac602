package shifter

import "unicode"

// span is a half-open rune range inside a text node.
type span struct {
	start, end int
}

func (s span) contains(i int) bool {
	return i >= s.start && i < s.end
}

// characterSpans returns one span per rune between the first and last
// non-space rune.
func characterSpans(text string) []span {
	runes := []rune(text)
	first, last := -1, -1
	for i, r := range runes {
		if !unicode.IsSpace(r) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}
	spans := make([]span, 0, last-first+1)
	for i := first; i <= last; i++ {
		spans = append(spans, span{i, i + 1})
	}
	return spans
}

// wordSpans returns maximal runs of non-space runes.
func wordSpans(text string) []span {
	return runsOf([]rune(text), func(r rune) bool { return !unicode.IsSpace(r) })
}

// lineSpans returns newline-separated runs trimmed of surrounding spaces,
// skipping blank lines.
func lineSpans(text string) []span {
	runes := []rune(text)
	var spans []span
	start := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != '\n' {
			continue
		}
		s, e := start, i
		for s < e && unicode.IsSpace(runes[s]) {
			s++
		}
		for e > s && unicode.IsSpace(runes[e-1]) {
			e--
		}
		if s < e {
			spans = append(spans, span{s, e})
		}
		start = i + 1
	}
	return spans
}

func runsOf(runes []rune, in func(rune) bool) []span {
	var spans []span
	start := -1
	for i, r := range runes {
		switch {
		case in(r) && start < 0:
			start = i
		case !in(r) && start >= 0:
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(runes)})
	}
	return spans
}

// spanAfter returns the first span starting at or after index.
func spanAfter(spans []span, index int) (span, bool) {
	for _, s := range spans {
		if s.start >= index {
			return s, true
		}
	}
	return span{}, false
}

// spanBefore returns the last span ending at or before index.
func spanBefore(spans []span, index int) (span, bool) {
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].end <= index {
			return spans[i], true
		}
	}
	return span{}, false
}

// spanAt returns the span containing index, the next one after it, or the
// last span.
func spanAt(spans []span, index int) (span, bool) {
	if len(spans) == 0 {
		return span{}, false
	}
	for _, s := range spans {
		if s.contains(index) || s.start >= index {
			return s, true
		}
	}
	return spans[len(spans)-1], true
}
