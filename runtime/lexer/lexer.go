// Package lexer turns Teeny source text into a token stream. It uses a
// maximal-munch, rune-based scanner in the style of the teacher
// pipeline's hand-written scanners: an explicit position/line/column
// cursor, ASCII fast paths for the common single-character tokens, and
// longest-match ordering for multi-character operators.
package lexer

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/IANYEYZ/teeny/core/token"
)

// LexicalError is raised for a character no lexical rule recognizes.
type LexicalError struct {
	Message string
	Line    int
	Col     int
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%d:%d: lexical error: %s", e.Line, e.Col, e.Message)
}

// multi-character operators, longest lexeme first so maximal-munch falls out
// of a simple linear scan.
var operators = []struct {
	lexeme string
	kind   token.Kind
}{
	{"...", token.SPREAD},
	{":=", token.DEFINE},
	{"==", token.EQEQ},
	{"!=", token.NEQ},
	{">=", token.GEQ},
	{"<=", token.LEQ},
	{"=~", token.MATCHOP},
	{"&&", token.ANDAND},
	{"||", token.OROR},
	{"|>", token.PIPE},
	{"=>", token.ARROW},
	{"?=", token.DEFASSIGN},
	{"??", token.QQ},
	{"?:", token.QCOLON},
	{"..", token.RANGE},
	{"+=", token.PLUSEQ},
	{"-=", token.MINUSEQ},
	{"*=", token.STAREQ},
	{"/=", token.SLASHEQ},
	{"%=", token.MODEQ},
	{"=", token.ASSIGN},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.MOD},
	{">", token.GT},
	{"<", token.LT},
	{"!", token.NOT},
	{":", token.COLON},
	{",", token.COMMA},
	{".", token.DOT},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"[", token.LSQPAREN},
	{"]", token.RSQPAREN},
	{"{", token.LBRACE},
	{"}", token.RBRACE},
	{";", token.SEMI},
	{"@", token.AT},
}

// Lexer scans a single source string into tokens.
type Lexer struct {
	src     string
	pos     int // byte offset
	line    int
	col     int
	log     *slog.Logger
	pending []token.Token // extra tokens produced by lexString's interpolation splitting
}

// New creates a Lexer over src. log may be nil to use slog.Default().
func New(src string, log *slog.Logger) *Lexer {
	if log == nil {
		log = slog.Default()
	}
	return &Lexer{src: src, pos: 0, line: 1, col: 1, log: log}
}

// Tokenize is the package entry point used by the parser and REPL:
// scan all of src and return its tokens (including a trailing EOF) or
// the first LexicalError encountered.
func Tokenize(src string) ([]token.Token, error) {
	return New(src, nil).Lex()
}

// Lex scans the whole source and returns the token stream.
func (l *Lexer) Lex() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	l.log.Debug("lexed source", "tokens", len(out))
	return out, nil
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advanceByte() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool  { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isAlnum(b byte) bool  { return isAlpha(b) || isDigit(b) }
func isSpace(b byte) bool  { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }

// skipTrivia discards whitespace and line comments ("#" to end of line).
func (l *Lexer) skipTrivia() {
	for !l.eof() {
		b := l.peekByte()
		if isSpace(b) {
			l.advanceByte()
			continue
		}
		if b == '#' {
			for !l.eof() && l.peekByte() != '\n' {
				l.advanceByte()
			}
			continue
		}
		break
	}
}

func (l *Lexer) next() (token.Token, error) {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}
	l.skipTrivia()
	if l.eof() {
		return token.Token{Kind: token.EOF, Line: l.line, Col: l.col}, nil
	}
	line, col := l.line, l.col
	b := l.peekByte()

	switch {
	case b == '"' || b == '\'':
		return l.lexString(b)
	case b == '`':
		return l.lexRegex()
	case isDigit(b) || (b == '.' && isDigit(l.peekByteAt(1))):
		return l.lexNumber()
	case isAlpha(b):
		return l.lexIdent()
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op.lexeme) {
			for range op.lexeme {
				l.advanceByte()
			}
			return token.Token{Kind: op.kind, Lexeme: op.lexeme, Line: line, Col: col}, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return token.Token{}, &LexicalError{
		Message: fmt.Sprintf("unknown character %q", r),
		Line:    line, Col: col,
	}
}

func (l *Lexer) lexNumber() (token.Token, error) {
	line, col := l.line, l.col
	start := l.pos
	for !l.eof() && isDigit(l.peekByte()) {
		l.advanceByte()
	}
	// fractional part: consume '.' only if not the start of a ".." range
	if l.peekByte() == '.' && l.peekByteAt(1) != '.' {
		l.advanceByte()
		for !l.eof() && isDigit(l.peekByte()) {
			l.advanceByte()
		}
	}
	if b := l.peekByte(); b == 'e' || b == 'E' {
		save := l.pos
		savedLine, savedCol := l.line, l.col
		l.advanceByte()
		if b := l.peekByte(); b == '+' || b == '-' {
			l.advanceByte()
		}
		if isDigit(l.peekByte()) {
			for !l.eof() && isDigit(l.peekByte()) {
				l.advanceByte()
			}
		} else {
			l.pos, l.line, l.col = save, savedLine, savedCol
		}
	}
	return token.Token{Kind: token.NUMBER, Lexeme: l.src[start:l.pos], Line: line, Col: col}, nil
}

func (l *Lexer) lexIdent() (token.Token, error) {
	line, col := l.line, l.col
	start := l.pos
	for !l.eof() && isAlnum(l.peekByte()) {
		l.advanceByte()
	}
	lexeme := l.src[start:l.pos]
	if kw, ok := token.Keywords[lexeme]; ok {
		return token.Token{Kind: kw, Lexeme: lexeme, Line: line, Col: col}, nil
	}
	return token.Token{Kind: token.NAME, Lexeme: lexeme, Line: line, Col: col}, nil
}

func (l *Lexer) lexRegex() (token.Token, error) {
	line, col := l.line, l.col
	l.advanceByte() // opening `
	var sb strings.Builder
	for {
		if l.eof() {
			return token.Token{}, &LexicalError{Message: "unterminated regex literal", Line: line, Col: col}
		}
		b := l.peekByte()
		if b == '\\' {
			l.advanceByte()
			if l.eof() {
				break
			}
			sb.WriteByte(decodeEscape(l.advanceByte()))
			continue
		}
		if b == '`' {
			l.advanceByte()
			break
		}
		sb.WriteByte(l.advanceByte())
	}
	return token.Token{Kind: token.REGEX, Lexeme: sb.String(), Line: line, Col: col}, nil
}

func decodeEscape(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case '\\':
		return '\\'
	case '"':
		return '"'
	case '\'':
		return '\''
	default:
		return b
	}
}

// lexString scans a quoted string, splitting interpolation segments
// "a{expr}b" into STRING("a") INTE_START <tokens of expr> INTE_END
// STRING("b"). Brace nesting inside the embedded expression is
// tracked by an explicit counter that respects "\{"/"\}" escaping, per
// the lexer/parser boundary the design notes call out. Since a single
// quoted string can expand into several tokens, lexString appends
// directly to an internal pending queue drained by next().
func (l *Lexer) lexString(quote byte) (token.Token, error) {
	line, col := l.line, l.col
	l.advanceByte() // opening quote
	var segments []token.Token
	var cur strings.Builder
	flushLiteral := func() {
		segments = append(segments, token.Token{Kind: token.STRING, Lexeme: cur.String(), Line: line, Col: col})
		cur.Reset()
	}
	for {
		if l.eof() {
			return token.Token{}, &LexicalError{Message: "unterminated string literal", Line: line, Col: col}
		}
		b := l.peekByte()
		if b == quote {
			l.advanceByte()
			break
		}
		if b == '\\' {
			l.advanceByte()
			if l.eof() {
				break
			}
			nb := l.peekByte()
			if nb == '{' || nb == '}' {
				cur.WriteByte(l.advanceByte())
			} else {
				cur.WriteByte(decodeEscape(l.advanceByte()))
			}
			continue
		}
		if b == '{' {
			flushLiteral()
			exprSrc, err := l.sliceBalancedBraces()
			if err != nil {
				return token.Token{}, err
			}
			segments = append(segments, token.Token{Kind: token.INTE_START, Line: l.line, Col: l.col})
			inner, err := Tokenize(exprSrc)
			if err != nil {
				return token.Token{}, err
			}
			for _, t := range inner {
				if t.Kind != token.EOF {
					segments = append(segments, t)
				}
			}
			segments = append(segments, token.Token{Kind: token.INTE_END, Line: l.line, Col: l.col})
			continue
		}
		cur.WriteByte(l.advanceByte())
	}
	flushLiteral()

	if len(segments) > 1 {
		l.pending = append(l.pending, segments[1:]...)
	}
	return segments[0], nil
}

// sliceBalancedBraces consumes bytes from just after an opening '{' up
// to (and including) its matching '}', respecting "\{"/"\}" escapes,
// and returns the text strictly between the braces.
func (l *Lexer) sliceBalancedBraces() (string, error) {
	line, col := l.line, l.col
	l.advanceByte() // consume '{'
	start := l.pos
	depth := 1
	for depth > 0 {
		if l.eof() {
			return "", &LexicalError{Message: "unterminated interpolation", Line: line, Col: col}
		}
		b := l.peekByte()
		if b == '\\' {
			l.advanceByte()
			if !l.eof() {
				l.advanceByte()
			}
			continue
		}
		if b == '{' {
			depth++
		} else if b == '}' {
			depth--
			if depth == 0 {
				end := l.pos
				l.advanceByte()
				return l.src[start:end], nil
			}
		}
		l.advanceByte()
	}
	return "", &LexicalError{Message: "unterminated interpolation", Line: line, Col: col}
}
