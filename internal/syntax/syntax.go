// Package syntax is the query surface the editing commands use to ask what
// kind of text sits at a position. Implementations live here (Lexer) and in
// the treesitter package.
package syntax

import "github.com/kobzarvs/jsxpad/internal/buffer"

// Role is the syntactic role of a span of text.
type Role int

const (
	RoleWhitespace Role = iota
	RoleTagName
	RoleAttributeName
	RoleAttributeValue
	RoleElementBody
	RoleEmbeddedExpression
	RoleComment
)

var roleNames = [...]string{
	RoleWhitespace:         "whitespace",
	RoleTagName:            "tag",
	RoleAttributeName:      "attribute",
	RoleAttributeValue:     "value",
	RoleElementBody:        "body",
	RoleEmbeddedExpression: "expression",
	RoleComment:            "comment",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Scope is the region that contains a span.
type Scope int

const (
	// ScopeMarkup is element content or top-level markup.
	ScopeMarkup Scope = iota
	// ScopeAttributes is the attribute list of an opening tag, after the tag name.
	ScopeAttributes
	// ScopeCode is script inside an embedded expression.
	ScopeCode
)

func (s Scope) String() string {
	switch s {
	case ScopeAttributes:
		return "attributes"
	case ScopeCode:
		return "code"
	default:
		return "markup"
	}
}

// Token is a classified span within one line. Length counts characters.
type Token struct {
	Pos    buffer.Pos
	Length int
	Role   Role
	Scope  Scope
}

func (t Token) End() int {
	return t.Pos.Col + t.Length
}

// Classifier answers role queries against one buffer snapshot.
type Classifier interface {
	// Classify returns the token covering pos. Positions past the end of a
	// line classify as whitespace in the scope the line ends in.
	Classify(pos buffer.Pos) Token
	// Tokens returns the tokens of one line in column order.
	Tokens(line int) []Token
}

// TokenAt finds the token covering col in a column-ordered token list. When
// nothing covers col it returns whitespace in the fallback scope.
func TokenAt(tokens []Token, line, col int, fallback Scope) Token {
	for _, tok := range tokens {
		if col >= tok.Pos.Col && col < tok.End() {
			return tok
		}
	}
	return Token{Pos: buffer.Pos{Line: line, Col: col}, Role: RoleWhitespace, Scope: fallback}
}
