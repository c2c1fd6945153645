// Package cloze analyzes cloze-deletion markers inside a templated text
// field. Markers have the form {{cN::content}} or {{cN::content::hint}}
// with N >= 1; one note field containing K distinct indices yields K
// cards. All functions are pure text analysis with no store access.
package cloze

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mask replaces a hidden occurrence in previews.
const Mask = "[...]"

// placeholder is the body inserted by InsertAt when the selection is
// empty, returned selected so the caller can type over it.
const placeholder = "text"

// marker is one parsed {{cN::...}} occurrence.
type marker struct {
	start   int // offset of "{{"
	end     int // offset just past "}}"
	index   int
	content string
	hint    string
}

// scan parses all well-formed markers in order of appearance.
// Malformed fragments (no closing braces, bad index) are left alone.
func scan(text string) []marker {
	var out []marker
	for i := 0; i+4 < len(text); {
		open := strings.Index(text[i:], "{{c")
		if open < 0 {
			break
		}
		open += i

		rest := text[open+3:]
		digits := 0
		for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
			digits++
		}
		if digits == 0 || !strings.HasPrefix(rest[digits:], "::") {
			i = open + 3
			continue
		}
		idx, err := strconv.Atoi(rest[:digits])
		if err != nil || idx < 1 {
			i = open + 3
			continue
		}

		bodyStart := open + 3 + digits + 2
		closing := strings.Index(text[bodyStart:], "}}")
		if closing < 0 {
			break
		}
		body := text[bodyStart : bodyStart+closing]

		m := marker{
			start:   open,
			end:     bodyStart + closing + 2,
			index:   idx,
			content: body,
		}
		if sep := strings.Index(body, "::"); sep >= 0 {
			m.content = body[:sep]
			m.hint = body[sep+2:]
		}
		out = append(out, m)
		i = m.end
	}
	return out
}

// Indices returns the distinct cloze indices in text, ascending.
func Indices(text string) []int {
	seen := make(map[int]struct{})
	for _, m := range scan(text) {
		seen[m.index] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Count returns the number of distinct cloze indices in text, which is
// the number of cards a cloze note over this text produces.
func Count(text string) int {
	return len(Indices(text))
}

// NextIndex returns the next unused cloze index: max+1, or 1 when text
// has no markers.
func NextIndex(text string) int {
	indices := Indices(text)
	if len(indices) == 0 {
		return 1
	}
	return indices[len(indices)-1] + 1
}

// Renumber remaps indices to a gap-free 1..K sequence preserving
// first-appearance order. Text without gaps comes back unchanged, so
// the operation is idempotent.
func Renumber(text string) string {
	markers := scan(text)
	if len(markers) == 0 {
		return text
	}

	remap := make(map[int]int)
	next := 1
	for _, m := range markers {
		if _, ok := remap[m.index]; !ok {
			remap[m.index] = next
			next++
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range markers {
		b.WriteString(text[prev:m.start])
		b.WriteString("{{c")
		b.WriteString(strconv.Itoa(remap[m.index]))
		b.WriteString("::")
		b.WriteString(m.content)
		if m.hint != "" {
			b.WriteString("::")
			b.WriteString(m.hint)
		}
		b.WriteString("}}")
		prev = m.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// Preview is the human-readable rendering of text for one cloze index.
type Preview struct {
	Index int
	Text  string
}

// Previews returns one entry per distinct index, ascending. In each
// entry that index's occurrences are masked (with the hint when one is
// present) and every other index's content is shown verbatim. Used for
// a "this creates K cards" affordance.
func Previews(text string) []Preview {
	markers := scan(text)
	if len(markers) == 0 {
		return nil
	}

	var out []Preview
	for _, idx := range Indices(text) {
		var b strings.Builder
		b.Grow(len(text))
		prev := 0
		for _, m := range markers {
			b.WriteString(text[prev:m.start])
			if m.index == idx {
				if m.hint != "" {
					b.WriteString("[" + m.hint + "]")
				} else {
					b.WriteString(Mask)
				}
			} else {
				b.WriteString(m.content)
			}
			prev = m.end
		}
		b.WriteString(text[prev:])
		out = append(out, Preview{Index: idx, Text: b.String()})
	}
	return out
}

// Resolve strips all markers from text, revealing every deletion's
// content. Used for the answer side of a cloze card.
func Resolve(text string) string {
	markers := scan(text)
	if len(markers) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range markers {
		b.WriteString(text[prev:m.start])
		b.WriteString(m.content)
		prev = m.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// IssueKind classifies a validation finding.
type IssueKind string

const (
	// IssueGap flags a numbering gap: some index below the maximum has
	// no marker.
	IssueGap IssueKind = "gap"

	// IssueEmptyContent flags a marker whose content is empty.
	IssueEmptyContent IssueKind = "empty-content"
)

// Issue is one validation finding. Validation reports, it never
// rejects: malformed input still schedules whatever cards it yields.
type Issue struct {
	Kind  IssueKind
	Index int
}

// Message renders the issue for display.
func (i Issue) Message() string {
	switch i.Kind {
	case IssueGap:
		return fmt.Sprintf("cloze numbering skips c%d", i.Index)
	case IssueEmptyContent:
		return fmt.Sprintf("cloze c%d has empty content", i.Index)
	}
	return "unknown issue"
}

// Validate reports numbering gaps and empty-content markers in text.
func Validate(text string) []Issue {
	var issues []Issue

	indices := Indices(text)
	if len(indices) > 0 {
		present := make(map[int]struct{}, len(indices))
		for _, idx := range indices {
			present[idx] = struct{}{}
		}
		for want := 1; want < indices[len(indices)-1]; want++ {
			if _, ok := present[want]; !ok {
				issues = append(issues, Issue{Kind: IssueGap, Index: want})
			}
		}
	}

	reported := make(map[int]struct{})
	for _, m := range scan(text) {
		if m.content != "" {
			continue
		}
		if _, dup := reported[m.index]; dup {
			continue
		}
		reported[m.index] = struct{}{}
		issues = append(issues, Issue{Kind: IssueEmptyContent, Index: m.index})
	}
	return issues
}

// Selection is a half-open [Start, End) rune-agnostic byte range inside
// a text field.
type Selection struct {
	Start int
	End   int
}

// InsertAt wraps the selected substring of text in a cloze marker. An
// index of 0 means "use NextIndex". An empty selection inserts a
// placeholder body and returns a selection covering it so the caller
// can type over it; otherwise the returned selection covers the whole
// new marker.
func InsertAt(text string, sel Selection, index int) (string, Selection) {
	if sel.Start < 0 {
		sel.Start = 0
	}
	if sel.End > len(text) {
		sel.End = len(text)
	}
	if sel.End < sel.Start {
		sel.Start, sel.End = sel.End, sel.Start
	}
	if index <= 0 {
		index = NextIndex(text)
	}

	body := text[sel.Start:sel.End]
	empty := body == ""
	if empty {
		body = placeholder
	}

	head := "{{c" + strconv.Itoa(index) + "::"
	out := text[:sel.Start] + head + body + "}}" + text[sel.End:]

	if empty {
		start := sel.Start + len(head)
		return out, Selection{Start: start, End: start + len(placeholder)}
	}
	return out, Selection{Start: sel.Start, End: sel.Start + len(head) + len(body) + 2}
}
