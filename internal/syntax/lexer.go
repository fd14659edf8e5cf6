package syntax

import (
	"strings"
	"unicode"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

// Lexer is a hand-written markup scanner. It classifies every character of a
// snapshot up front and also records how deeply each line start is nested,
// which the reindenting printer uses.
type Lexer struct {
	tokens [][]Token
	depth  []int
	ends   []Scope
}

// Lex scans the buffer text.
func Lex(b *buffer.Buffer) *Lexer {
	return NewLexer(b.Text())
}

func NewLexer(text string) *Lexer {
	s := &scanner{
		runes: []rune(text),
		stack: []frame{{kind: frameMarkup}},
		lx: &Lexer{
			tokens: [][]Token{nil},
			depth:  []int{0},
			ends:   []Scope{ScopeMarkup},
		},
	}
	for s.i < len(s.runes) {
		s.step()
	}
	s.lx.ends[s.line] = s.scope()
	return s.lx
}

func (lx *Lexer) Classify(pos buffer.Pos) Token {
	if pos.Line < 0 || pos.Line >= len(lx.tokens) {
		return Token{Pos: pos, Role: RoleWhitespace}
	}
	return TokenAt(lx.tokens[pos.Line], pos.Line, pos.Col, lx.ends[pos.Line])
}

func (lx *Lexer) Tokens(line int) []Token {
	if line < 0 || line >= len(lx.tokens) {
		return nil
	}
	return append([]Token(nil), lx.tokens[line]...)
}

// Depth is the nesting level at the start of line: open tags, elements,
// expressions and braces within expressions.
func (lx *Lexer) Depth(line int) int {
	if line < 0 || line >= len(lx.depth) {
		return 0
	}
	return lx.depth[line]
}

func (lx *Lexer) LineCount() int {
	return len(lx.tokens)
}

func (lx *Lexer) emit(line, col int, role Role, scope Scope) {
	toks := lx.tokens[line]
	if n := len(toks); n > 0 {
		last := &toks[n-1]
		if last.Role == role && last.Scope == scope && last.End() == col {
			last.Length++
			return
		}
	}
	lx.tokens[line] = append(toks, Token{
		Pos:    buffer.Pos{Line: line, Col: col},
		Length: 1,
		Role:   role,
		Scope:  scope,
	})
}

type frameKind int

const (
	frameMarkup frameKind = iota
	frameTag
	frameExpr
)

type frame struct {
	kind    frameKind
	scope   Scope // region an expression frame returns to
	named   bool
	closing bool
	braces  int
}

type scanner struct {
	runes []rune
	i     int
	line  int
	col   int
	stack []frame
	lx    *Lexer

	sig  rune
	word string
}

func (s *scanner) top() *frame {
	return &s.stack[len(s.stack)-1]
}

func (s *scanner) push(f frame) {
	s.stack = append(s.stack, f)
}

func (s *scanner) pop() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *scanner) scope() Scope {
	f := s.top()
	switch f.kind {
	case frameTag:
		if f.named && !f.closing {
			return ScopeAttributes
		}
		return ScopeMarkup
	case frameExpr:
		return ScopeCode
	default:
		return ScopeMarkup
	}
}

// nesting counts open tags, elements, expressions and braces inside
// expressions.
func (s *scanner) nesting() int {
	n := len(s.stack) - 1
	for _, f := range s.stack {
		n += f.braces
	}
	return n
}

func (s *scanner) peek(n int) rune {
	if j := s.i + n; j >= 0 && j < len(s.runes) {
		return s.runes[j]
	}
	return 0
}

func (s *scanner) hasPrefix(p string) bool {
	j := s.i
	for _, r := range p {
		if j >= len(s.runes) || s.runes[j] != r {
			return false
		}
		j++
	}
	return true
}

// put classifies the current rune and advances.
func (s *scanner) put(role Role, scope Scope) {
	r := s.runes[s.i]
	s.i++
	if r == '\n' {
		s.lx.ends[s.line] = s.scope()
		s.line++
		s.col = 0
		s.lx.tokens = append(s.lx.tokens, nil)
		s.lx.depth = append(s.lx.depth, s.nesting())
		s.lx.ends = append(s.lx.ends, ScopeMarkup)
		return
	}
	s.lx.emit(s.line, s.col, role, scope)
	s.col++
}

func (s *scanner) until(open int, close string, role Role, scope Scope) {
	for k := 0; k < open && s.i < len(s.runes); k++ {
		s.put(role, scope)
	}
	for s.i < len(s.runes) {
		if s.hasPrefix(close) {
			for range close {
				s.put(role, scope)
			}
			return
		}
		s.put(role, scope)
	}
}

func (s *scanner) lineComment(scope Scope) {
	for s.i < len(s.runes) && s.peek(0) != '\n' {
		s.put(RoleComment, scope)
	}
}

func (s *scanner) quoted(role Role, scope Scope, multiline bool) {
	q := s.peek(0)
	s.put(role, scope)
	for s.i < len(s.runes) {
		r := s.peek(0)
		if r == '\n' && !multiline {
			return
		}
		s.put(role, scope)
		if r == '\\' && s.i < len(s.runes) && s.peek(0) != '\n' {
			s.put(role, scope)
			continue
		}
		if r == q {
			return
		}
	}
}

func (s *scanner) step() {
	switch f := s.top(); f.kind {
	case frameTag:
		s.stepTag(f)
	case frameExpr:
		s.stepExpr(f)
	default:
		s.stepMarkup()
	}
}

func (s *scanner) stepMarkup() {
	r := s.peek(0)
	switch {
	case unicode.IsSpace(r):
		s.put(RoleWhitespace, ScopeMarkup)
	case s.hasPrefix("{/*"):
		s.until(3, "*/}", RoleComment, ScopeMarkup)
	case r == '{':
		s.put(RoleEmbeddedExpression, ScopeMarkup)
		s.push(frame{kind: frameExpr, scope: ScopeMarkup})
	case r == '<' && startsTag(s.peek(1), true):
		s.openTag()
	default:
		s.put(RoleElementBody, ScopeMarkup)
	}
}

func (s *scanner) openTag() {
	s.put(RoleTagName, ScopeMarkup)
	closing := false
	if s.peek(0) == '/' {
		s.put(RoleTagName, ScopeMarkup)
		closing = true
	}
	s.push(frame{kind: frameTag, closing: closing})
}

func (s *scanner) stepTag(f *frame) {
	r := s.peek(0)
	attrs := ScopeMarkup
	if f.named && !f.closing {
		attrs = ScopeAttributes
	}
	switch {
	case unicode.IsSpace(r):
		s.put(RoleWhitespace, attrs)
	case r == '/' && s.peek(1) == '>':
		s.put(RoleTagName, ScopeMarkup)
		s.put(RoleTagName, ScopeMarkup)
		s.pop()
		s.sig = '>'
	case r == '>':
		s.put(RoleTagName, ScopeMarkup)
		closing := f.closing
		s.pop()
		if !closing {
			s.push(frame{kind: frameMarkup})
		} else if s.top().kind == frameMarkup {
			s.pop()
		}
		s.sig = '>'
	case r == '{':
		s.put(RoleEmbeddedExpression, attrs)
		s.push(frame{kind: frameExpr, scope: attrs})
	case r == '"' || r == '\'':
		s.quoted(RoleAttributeValue, attrs, true)
	case s.hasPrefix("//"):
		s.lineComment(attrs)
	case s.hasPrefix("/*"):
		s.until(2, "*/", RoleComment, attrs)
	case !f.named && isNameRune(r):
		for s.i < len(s.runes) && isNameRune(s.peek(0)) {
			s.put(RoleTagName, ScopeMarkup)
		}
		f.named = true
	default:
		s.put(RoleAttributeName, attrs)
	}
}

func (s *scanner) stepExpr(f *frame) {
	r := s.peek(0)
	switch {
	case unicode.IsSpace(r):
		s.put(RoleWhitespace, ScopeCode)
	case s.hasPrefix("//"):
		s.lineComment(ScopeCode)
	case s.hasPrefix("/*"):
		s.until(2, "*/", RoleComment, ScopeCode)
	case r == '"' || r == '\'':
		s.quoted(RoleEmbeddedExpression, ScopeCode, false)
		s.sig = r
	case r == '`':
		s.quoted(RoleEmbeddedExpression, ScopeCode, true)
		s.sig = r
	case r == '{':
		f.braces++
		s.code(r)
	case r == '}' && f.braces > 0:
		f.braces--
		s.code(r)
	case r == '}':
		scope := f.scope
		s.pop()
		s.put(RoleEmbeddedExpression, scope)
		s.sig = r
	case r == '<' && s.markupAllowed() && startsTag(s.peek(1), false):
		s.openTag()
	default:
		s.code(r)
	}
}

func (s *scanner) code(r rune) {
	if isNameRune(r) {
		if !isNameRune(s.sig) {
			s.word = ""
		}
		s.word += string(r)
	}
	s.sig = r
	s.put(RoleEmbeddedExpression, ScopeCode)
}

// markupAllowed guesses whether a '<' in script starts an element rather than
// a comparison.
func (s *scanner) markupAllowed() bool {
	if s.sig == 0 || strings.ContainsRune("(,=?:&|{[;>!", s.sig) {
		return true
	}
	return isNameRune(s.sig) && s.word == "return"
}

func startsTag(next rune, closingAllowed bool) bool {
	return unicode.IsLetter(next) || next == '>' || (closingAllowed && next == '/')
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == ':' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
