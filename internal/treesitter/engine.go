package treesitter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/syntax"
)

// Engine parses component markup with the tsx grammar.
type Engine struct {
	parser *sitter.Parser
	mu     sync.Mutex
}

func New() *Engine {
	p := sitter.NewParser()
	p.SetLanguage(tsx.GetLanguage())
	return &Engine{parser: p}
}

// A buffer may hold several sibling elements. The grammar only accepts one
// expression, so the text is parsed inside a fragment whose opening and
// closing lines are dropped from the result.
const (
	fragmentOpen  = "<>\n"
	fragmentClose = "\n</>"
)

// Parse parses text as the content of path and returns its classifier.
func (e *Engine) Parse(path, text string) (*Snapshot, error) {
	source := []byte(fragmentOpen + text + fragmentClose)
	e.mu.Lock()
	if e.parser == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("parse %s: engine closed", path)
	}
	tree, err := e.parser.ParseCtx(context.Background(), nil, source)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s: no tree", path)
	}
	return newSnapshot(tree, source), nil
}

// Close releases the parser. Parse fails afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser != nil {
		e.parser.Close()
		e.parser = nil
	}
}

// Snapshot classifies one parsed version of a document. Rows of the tree and
// of lineStarts count the fragment line; tokens do not.
type Snapshot struct {
	tree       *sitter.Tree
	source     []byte
	lineStarts []int
	tokens     [][]syntax.Token
}

var _ syntax.Classifier = (*Snapshot)(nil)

func newSnapshot(tree *sitter.Tree, source []byte) *Snapshot {
	s := &Snapshot{tree: tree, source: source, lineStarts: []int{0}}
	for i, b := range source {
		if b == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	s.tokens = make([][]syntax.Token, len(s.lineStarts))
	if root := tree.RootNode(); root != nil {
		s.walk(root, syntax.RoleEmbeddedExpression, syntax.ScopeCode)
	}
	s.tokens = s.tokens[1 : len(s.tokens)-1]
	for line := range s.tokens {
		toks := s.tokens[line]
		for i := range toks {
			toks[i].Pos.Line = line
		}
		sort.SliceStable(toks, func(i, j int) bool { return toks[i].Pos.Col < toks[j].Pos.Col })
	}
	return s
}

func (s *Snapshot) Classify(pos buffer.Pos) syntax.Token {
	if pos.Line < 0 || pos.Line >= len(s.tokens) {
		return syntax.Token{Pos: pos, Role: syntax.RoleWhitespace}
	}
	toks := s.tokens[pos.Line]
	for _, tok := range toks {
		if pos.Col >= tok.Pos.Col && pos.Col < tok.End() {
			return tok
		}
	}
	return syntax.TokenAt(nil, pos.Line, pos.Col, s.scopeAt(pos))
}

func (s *Snapshot) Tokens(line int) []syntax.Token {
	if line < 0 || line >= len(s.tokens) {
		return nil
	}
	return append([]syntax.Token(nil), s.tokens[line]...)
}

func (s *Snapshot) walk(n *sitter.Node, role syntax.Role, scope syntax.Scope) {
	switch n.Type() {
	case "comment":
		s.emit(n, syntax.RoleComment, scope)
		return
	case "jsx_text":
		s.emitText(n)
		return
	case "jsx_opening_element", "jsx_self_closing_element":
		s.walkTag(n)
		return
	case "jsx_closing_element":
		s.emit(n, syntax.RoleTagName, syntax.ScopeMarkup)
		return
	case "jsx_expression":
		s.walkExpression(n, scope)
		return
	case "jsx_element", "jsx_fragment":
		role, scope = syntax.RoleElementBody, syntax.ScopeMarkup
	}
	count := int(n.ChildCount())
	if count == 0 {
		s.emit(n, role, scope)
		return
	}
	for i := 0; i < count; i++ {
		if child := n.Child(i); child != nil {
			s.walk(child, role, scope)
		}
	}
}

func (s *Snapshot) walkTag(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch {
		case name != nil && sameNode(child, name):
			s.emit(child, syntax.RoleTagName, syntax.ScopeMarkup)
		case !child.IsNamed():
			s.emit(child, syntax.RoleTagName, syntax.ScopeMarkup)
		case child.Type() == "jsx_attribute":
			s.walkAttribute(child)
		case child.Type() == "jsx_expression":
			s.walkExpression(child, syntax.ScopeAttributes)
		default:
			s.walk(child, syntax.RoleAttributeName, syntax.ScopeAttributes)
		}
	}
}

func (s *Snapshot) walkAttribute(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "string":
			s.emit(child, syntax.RoleAttributeValue, syntax.ScopeAttributes)
		case "jsx_expression":
			s.walkExpression(child, syntax.ScopeAttributes)
		case "jsx_element", "jsx_self_closing_element":
			s.walk(child, syntax.RoleElementBody, syntax.ScopeMarkup)
		default:
			s.walk(child, syntax.RoleAttributeName, syntax.ScopeAttributes)
		}
	}
}

// walkExpression classifies {...}. The braces belong to the outer region,
// the inside is code; {/* ... */} is a comment as a whole.
func (s *Snapshot) walkExpression(n *sitter.Node, outer syntax.Scope) {
	if n.NamedChildCount() == 1 {
		if only := n.NamedChild(0); only != nil && only.Type() == "comment" {
			s.emit(n, syntax.RoleComment, outer)
			return
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "{", "}":
			s.emit(child, syntax.RoleEmbeddedExpression, outer)
		default:
			s.walk(child, syntax.RoleEmbeddedExpression, syntax.ScopeCode)
		}
	}
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func (s *Snapshot) emit(n *sitter.Node, role syntax.Role, scope syntax.Scope) {
	s.emitRange(int(n.StartByte()), int(n.EndByte()), role, scope)
}

// emitText splits element text into body and whitespace runs.
func (s *Snapshot) emitText(n *sitter.Node) {
	start, end := int(n.StartByte()), int(n.EndByte())
	runStart := start
	runSpace := false
	for i := start; i < end; {
		r, size := utf8.DecodeRune(s.source[i:])
		space := unicode.IsSpace(r)
		if i > runStart && space != runSpace {
			s.emitRange(runStart, i, textRole(runSpace), syntax.ScopeMarkup)
			runStart = i
		}
		runSpace = space
		i += size
	}
	if end > runStart {
		s.emitRange(runStart, end, textRole(runSpace), syntax.ScopeMarkup)
	}
}

func textRole(space bool) syntax.Role {
	if space {
		return syntax.RoleWhitespace
	}
	return syntax.RoleElementBody
}

// emitRange records a byte range as one token per line it touches.
func (s *Snapshot) emitRange(start, end int, role syntax.Role, scope syntax.Scope) {
	if end <= start || start < 0 || end > len(s.source) {
		return
	}
	for start < end {
		line := s.lineOf(start)
		lineEnd := len(s.source)
		if line+1 < len(s.lineStarts) {
			lineEnd = s.lineStarts[line+1] - 1
		}
		stop := end
		if stop > lineEnd {
			stop = lineEnd
		}
		if stop > start {
			col := utf8.RuneCount(s.source[s.lineStarts[line]:start])
			s.tokens[line] = append(s.tokens[line], syntax.Token{
				Pos:    buffer.Pos{Line: line, Col: col},
				Length: utf8.RuneCount(s.source[start:stop]),
				Role:   role,
				Scope:  scope,
			})
		}
		if line+1 >= len(s.lineStarts) {
			return
		}
		start = s.lineStarts[line+1]
	}
}

func (s *Snapshot) lineOf(offset int) int {
	return sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
}

// byteOffset converts a tree row and rune column to a source offset.
func (s *Snapshot) byteOffset(row, col int) int {
	start := s.lineStarts[row]
	end := len(s.source)
	if row+1 < len(s.lineStarts) {
		end = s.lineStarts[row+1] - 1
	}
	off := start
	for c := 0; c < col && off < end; c++ {
		_, size := utf8.DecodeRune(s.source[off:end])
		off += size
	}
	return off
}

// scopeAt finds the region around a position no token covers.
func (s *Snapshot) scopeAt(pos buffer.Pos) syntax.Scope {
	root := s.tree.RootNode()
	if root == nil {
		return syntax.ScopeMarkup
	}
	row := pos.Line + 1
	off := s.byteOffset(row, pos.Col)
	pt := sitter.Point{Row: uint32(row), Column: uint32(off - s.lineStarts[row])}
	for n := root.NamedDescendantForPointRange(pt, pt); n != nil; n = n.Parent() {
		switch n.Type() {
		case "jsx_expression":
			return syntax.ScopeCode
		case "jsx_opening_element", "jsx_self_closing_element":
			if name := n.ChildByFieldName("name"); name != nil && off >= int(name.EndByte()) {
				return syntax.ScopeAttributes
			}
			return syntax.ScopeMarkup
		case "jsx_element", "jsx_fragment", "jsx_closing_element":
			return syntax.ScopeMarkup
		}
	}
	return syntax.ScopeMarkup
}
