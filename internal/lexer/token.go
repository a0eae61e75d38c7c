package lexer

import (
	"fmt"
	"strconv"
)

// Kind discriminates the token variants.
type Kind int

const (
	INTEGER Kind = iota
	IDENTIFIER
	KEYWORD
	OPERATOR
)

func (k Kind) String() string {
	switch k {
	case INTEGER:
		return "INTEGER"
	case IDENTIFIER:
		return "IDENTIFIER"
	case KEYWORD:
		return "KEYWORD"
	case OPERATOR:
		return "OPERATOR"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Keyword enumerates the reserved words.
type Keyword int

const (
	LET Keyword = iota
	END
	RECUR
	IF
	THEN
	ELSE
	IN
	AND
	LOOP
)

var keywordWords = [...]string{
	LET:   "let",
	END:   "end",
	RECUR: "recur",
	IF:    "if",
	THEN:  "then",
	ELSE:  "else",
	IN:    "in",
	AND:   "and",
	LOOP:  "loop",
}

// keywords maps source spellings to keywords. It is built once and never mutated.
var keywords = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordWords))
	for kw, word := range keywordWords {
		m[word] = Keyword(kw)
	}
	return m
}()

// String returns the source spelling of the keyword.
func (k Keyword) String() string {
	if k < 0 || int(k) >= len(keywordWords) {
		return "invalid-keyword"
	}
	return keywordWords[k]
}

// LookupKeyword reports whether ident is a reserved word.
func LookupKeyword(ident string) (Keyword, bool) {
	kw, ok := keywords[ident]
	return kw, ok
}

// Operator enumerates the operator tokens.
type Operator int

const (
	// single operators
	OPEN_PAREN Operator = iota
	CLOSE_PAREN
	PLUS
	TIMES
	NOT
	LESS_THAN
	UNARY_MINUS
	ASSIGN
	// double operators
	EQUALS
	LOGICAL_OR
	LOGICAL_AND
)

var operatorInfo = [...]struct {
	symbol string
	name   string
}{
	OPEN_PAREN:  {"(", "open-paren-operator"},
	CLOSE_PAREN: {")", "close-paren-operator"},
	PLUS:        {"+", "plus-operator"},
	TIMES:       {"*", "times-operator"},
	NOT:         {"!", "not-operator"},
	LESS_THAN:   {"<", "less-than-operator"},
	UNARY_MINUS: {"-", "unary-minus-operator"},
	ASSIGN:      {"=", "assign-operator"},
	EQUALS:      {"==", "equals-operator"},
	LOGICAL_OR:  {"||", "logical-or-operator"},
	LOGICAL_AND: {"&&", "logical-and-operator"},
}

// String returns the operator's source symbol.
func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorInfo) {
		return "?"
	}
	return operatorInfo[op].symbol
}

// Name returns the descriptive operator name used by the token dumper.
func (op Operator) Name() string {
	if op < 0 || int(op) >= len(operatorInfo) {
		return "invalid-operator"
	}
	return operatorInfo[op].name
}

// IsBinary reports whether op may appear between two operands.
func (op Operator) IsBinary() bool {
	switch op {
	case PLUS, TIMES, EQUALS, LOGICAL_AND, LOGICAL_OR, LESS_THAN:
		return true
	default:
		return false
	}
}

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // index in []rune
	End      int    // exclusive end index
}

// String renders the span as file:line:column.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Token is a classified lexical unit. Exactly one of Int, Text, Keyword or Op
// is meaningful, selected by Kind.
type Token struct {
	Kind    Kind
	Int     int64    // INTEGER
	Text    string   // IDENTIFIER
	Keyword Keyword  // KEYWORD
	Op      Operator // OPERATOR
	Raw     string   // exact runes from source
	Span    Span
}

// String renders the token the way the token dumper prints it: integers as
// their source digits, identifiers as their name, keywords and operators by
// their descriptive names ("let-keyword", "plus-operator").
func (t Token) String() string {
	switch t.Kind {
	case INTEGER:
		if t.Raw != "" {
			return t.Raw
		}
		return strconv.FormatInt(t.Int, 10)
	case IDENTIFIER:
		return t.Text
	case KEYWORD:
		return t.Keyword.String() + "-keyword"
	case OPERATOR:
		return t.Op.Name()
	default:
		return "invalid-token"
	}
}

// Lexeme returns the token as it would be written in source.
func (t Token) Lexeme() string {
	switch t.Kind {
	case INTEGER:
		if t.Raw != "" {
			return t.Raw
		}
		return strconv.FormatInt(t.Int, 10)
	case IDENTIFIER:
		return t.Text
	case KEYWORD:
		return t.Keyword.String()
	case OPERATOR:
		return t.Op.String()
	default:
		return t.Raw
	}
}

// Location renders the token position in the dumper's long form.
func (t Token) Location() string {
	return fmt.Sprintf(" in file:%q\ton line:%d\tat position:%d", t.Span.Filename, t.Span.Line, t.Span.Column)
}

// IsKeyword reports whether t is the keyword kw.
func (t Token) IsKeyword(kw Keyword) bool {
	return t.Kind == KEYWORD && t.Keyword == kw
}

// IsOperator reports whether t is the operator op.
func (t Token) IsOperator(op Operator) bool {
	return t.Kind == OPERATOR && t.Op == op
}
