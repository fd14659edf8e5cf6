package commands

import (
	"context"
	"regexp"
	"strings"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/syntax"
)

const (
	blockOpen  = "{/* "
	blockClose = " */}"
	lineOpen   = "// "
	emptyBlock = "{/*  */}"
)

// blockComment matches a whole block comment and captures the optional space
// after the opening marker and before the closing one.
var blockComment = regexp.MustCompile(`^\{/\*( ?)([\s\S]*?)( ?)\*/\}$`)

type commentStyle int

const (
	styleBlock commentStyle = iota
	styleLine
)

func (s commentStyle) String() string {
	if s == styleLine {
		return "line"
	}
	return "block"
}

// commentFacts is what the style decision looks at, taken at the first
// non-blank character of a span.
type commentFacts struct {
	role          syntax.Role
	scope         syntax.Scope
	multiLine     bool
	wholeLineExpr bool
	lineMarker    bool
}

type styleRule struct {
	name  string
	when  func(commentFacts) bool
	style commentStyle
}

// styleRules is evaluated top to bottom; the first match wins.
var styleRules = []styleRule{
	{"leading line marker", func(f commentFacts) bool { return f.lineMarker }, styleLine},
	{"attribute list", func(f commentFacts) bool { return f.scope == syntax.ScopeAttributes }, styleLine},
	{"element body", func(f commentFacts) bool { return f.role == syntax.RoleElementBody }, styleBlock},
	{"multi-line", func(f commentFacts) bool { return f.multiLine }, styleBlock},
	{"whole-line expression", func(f commentFacts) bool { return f.wholeLineExpr }, styleBlock},
	{"embedded expression", func(f commentFacts) bool { return f.role == syntax.RoleEmbeddedExpression }, styleBlock},
}

func decideStyle(f commentFacts) commentStyle {
	for _, rule := range styleRules {
		if rule.when(f) {
			return rule.style
		}
	}
	return styleBlock
}

// marker is one delimiter inserted into or removed from a line.
type marker struct {
	col    int
	length int
	remove bool
	// landing is how far an endpoint sitting exactly on an insertion point
	// moves: 0 keeps it before an opening marker, length pushes it past a
	// closing one.
	landing int
}

func (m marker) shift(col int) int {
	if m.remove {
		switch {
		case col <= m.col:
			return 0
		case col < m.col+m.length:
			return m.col - col
		default:
			return -m.length
		}
	}
	switch {
	case col < m.col:
		return 0
	case col == m.col:
		return m.landing
	default:
		return m.length
	}
}

// commentPlan collects the delimiter edits of one toggle. Delimiters never
// contain line breaks, so an endpoint only moves within its own line.
type commentPlan struct {
	edits   []buffer.Edit
	markers map[int][]marker
}

func (p *commentPlan) insert(at buffer.Pos, text string, landing int) {
	n := len([]rune(text))
	p.edits = append(p.edits, buffer.Insert(at, text))
	p.markers[at.Line] = append(p.markers[at.Line], marker{col: at.Col, length: n, landing: landing})
}

func (p *commentPlan) remove(at buffer.Pos, length int) {
	p.edits = append(p.edits, buffer.Delete(at, buffer.Pos{Line: at.Line, Col: at.Col + length}))
	p.markers[at.Line] = append(p.markers[at.Line], marker{col: at.Col, length: length, remove: true})
}

func (p *commentPlan) remap(pos buffer.Pos) buffer.Pos {
	delta := 0
	for _, m := range p.markers[pos.Line] {
		delta += m.shift(pos.Col)
	}
	pos.Col += delta
	return pos
}

func toggleComment(_ context.Context, in Input) (Result, bool) {
	b := in.Buffer
	cls := classifier(in)
	plan := &commentPlan{markers: make(map[int][]marker)}
	for _, blk := range mergeBlocks(in.Selections, false) {
		toggleSpan(plan, b, cls, blk.start, blk.end)
	}
	if len(plan.edits) == 0 {
		return Result{}, false
	}
	sels := make(buffer.Selections, len(in.Selections))
	for i, r := range in.Selections {
		from, to := r.Ordered()
		sels[i] = buffer.Oriented(plan.remap(from), plan.remap(to), r.Reversed())
	}
	return Result{Edits: plan.edits, Selections: sels, Occurrence: in.Occurrence}, true
}

func toggleSpan(plan *commentPlan, b *buffer.Buffer, cls syntax.Classifier, first, last int) {
	start, end, ok := trimmedSpan(b, first, last)
	if !ok {
		plan.insert(buffer.Pos{Line: first, Col: b.LineLen(first)}, emptyBlock, len(blockOpen))
		return
	}
	text := b.Slice(start, end)
	if m := blockComment.FindStringSubmatchIndex(text); m != nil {
		open := len("{/*") + m[3] - m[2]
		closing := len("*/}") + m[7] - m[6]
		plan.remove(start, open)
		plan.remove(buffer.Pos{Line: end.Line, Col: end.Col - closing}, closing)
		return
	}

	tok := cls.Classify(start)
	facts := commentFacts{
		role:       tok.Role,
		scope:      tok.Scope,
		multiLine:  start.Line != end.Line,
		lineMarker: strings.HasPrefix(text, "//"),
	}
	facts.wholeLineExpr = !facts.multiLine && tok.Role == syntax.RoleEmbeddedExpression &&
		strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")

	switch decideStyle(facts) {
	case styleLine:
		if facts.lineMarker {
			uncommentLines(plan, b, first, last)
			return
		}
		for line := first; line <= last; line++ {
			if col := firstNonBlank(b.LineRunes(line)); col >= 0 {
				plan.insert(buffer.Pos{Line: line, Col: col}, lineOpen, 0)
			}
		}
	default:
		plan.insert(start, blockOpen, 0)
		plan.insert(end, blockClose, len(blockClose))
	}
}

// uncommentLines strips the leading marker and at most one space from every
// line that starts with one. Markers later in a line are left alone.
func uncommentLines(plan *commentPlan, b *buffer.Buffer, first, last int) {
	for line := first; line <= last; line++ {
		runes := b.LineRunes(line)
		col := firstNonBlank(runes)
		if col < 0 || !strings.HasPrefix(string(runes[col:]), "//") {
			continue
		}
		n := 2
		if col+2 < len(runes) && runes[col+2] == ' ' {
			n = 3
		}
		plan.remove(buffer.Pos{Line: line, Col: col}, n)
	}
}

// trimmedSpan returns the span of lines first..last without leading and
// trailing whitespace. ok is false when the lines are blank.
func trimmedSpan(b *buffer.Buffer, first, last int) (start, end buffer.Pos, ok bool) {
	found := false
	for line := first; line <= last; line++ {
		if col := firstNonBlank(b.LineRunes(line)); col >= 0 {
			start = buffer.Pos{Line: line, Col: col}
			found = true
			break
		}
	}
	if !found {
		return start, end, false
	}
	for line := last; line >= start.Line; line-- {
		if col := lastNonBlank(b.LineRunes(line)); col >= 0 {
			end = buffer.Pos{Line: line, Col: col + 1}
			break
		}
	}
	return start, end, true
}
