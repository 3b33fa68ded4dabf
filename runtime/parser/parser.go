// Package parser implements Teeny's Pratt expression parser. Binding
// powers follow spec.md's precedence table; statement-shaped forms
// (if/while/for/match/try/fn) are parsed as ordinary primaries, the
// same approach the teacher's hand-written recursive-descent parser
// uses for its decorator and control-flow blocks.
package parser

import (
	"fmt"

	"github.com/IANYEYZ/teeny/core/ast"
	"github.com/IANYEYZ/teeny/core/token"
)

// SyntaxError is raised for an unexpected token or a parse that makes
// no progress (the latter is the termination guard spec.md §4.2
// requires of the driver).
type SyntaxError struct {
	Message string
	Line    int
	Col     int
	Hint    string
}

func (e *SyntaxError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%d:%d: syntax error: %s (%s)", e.Line, e.Col, e.Message, e.Hint)
	}
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Col, e.Message)
}

// Parser consumes a fixed token slice produced by the lexer.
type Parser struct {
	toks     []token.Token
	pos      int
	prevLine int
}

// New creates a Parser over toks (which must end in an EOF token).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// ParseProgram parses statements until EOF, guaranteeing progress each
// iteration so a malformed token stream cannot loop forever.
func ParseProgram(toks []token.Token) ([]*ast.Node, error) {
	p := New(toks)
	var stmts []*ast.Node
	for !p.at(token.EOF) {
		p.skipSemis()
		if p.at(token.EOF) {
			break
		}
		before := p.pos
		stmt, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.pos == before {
			tok := p.cur()
			return nil, &SyntaxError{Message: "parser made no progress", Line: tok.Line, Col: tok.Col}
		}
	}
	return stmts, nil
}

// ParseOne parses a single top-level statement, returning the number
// of tokens consumed. Used by the REPL's :ast directive to print the
// tree of a single expression.
func ParseOne(toks []token.Token) (*ast.Node, int, error) {
	p := New(toks)
	p.skipSemis()
	n, err := p.parseExpr(0)
	if err != nil {
		return nil, 0, err
	}
	return n, p.pos, nil
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.prevLine = t.Line
	return t
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		tok := p.cur()
		return token.Token{}, &SyntaxError{
			Message: fmt.Sprintf("expected %s, found %s %q", k, tok.Kind, tok.Lexeme),
			Line:    tok.Line, Col: tok.Col,
		}
	}
	return p.advance(), nil
}

func (p *Parser) skipSemis() {
	for p.at(token.SEMI) {
		p.advance()
	}
}

func pos(t token.Token) ast.Position { return ast.Position{Line: t.Line, Col: t.Col} }

// --- binding powers -------------------------------------------------

type bp struct{ l, r int }

var assignOps = map[token.Kind]string{
	token.ASSIGN: "=", token.DEFINE: ":=", token.DEFASSIGN: "?=",
	token.PLUSEQ: "+=", token.MINUSEQ: "-=", token.STAREQ: "*=",
	token.SLASHEQ: "/=", token.MODEQ: "%=", token.PIPE: "|>",
}

var binOps = map[token.Kind]struct {
	sym string
	bp  bp
}{
	token.OROR:    {"||", bp{5, 6}},
	token.ANDAND:  {"&&", bp{7, 8}},
	token.EQEQ:    {"==", bp{9, 10}},
	token.NEQ:     {"!=", bp{9, 10}},
	token.GT:      {">", bp{9, 10}},
	token.LT:      {"<", bp{9, 10}},
	token.GEQ:     {">=", bp{9, 10}},
	token.LEQ:     {"<=", bp{9, 10}},
	token.MATCHOP: {"=~", bp{9, 10}},
	token.QQ:      {"??", bp{9, 10}},
	token.QCOLON:  {"?:", bp{9, 10}},
	token.PLUS:    {"+", bp{13, 14}},
	token.MINUS:   {"-", bp{13, 14}},
	token.RANGE:   {"..", bp{13, 14}},
	token.STAR:    {"*", bp{15, 16}},
	token.SLASH:   {"/", bp{15, 16}},
	token.MOD:     {"%", bp{15, 16}},
}

const (
	assignLBp, assignRBp   = 1, 2
	memberLBp, memberRBp   = 19, 20
	customInfixLBp, customInfixRBp = 13, 14
	prefixBp               = 15
	suffixBp                = 17
)

func canStartExpr(k token.Kind) bool {
	switch k {
	case token.NUMBER, token.STRING, token.REGEX, token.NAME,
		token.LPAREN, token.LSQPAREN, token.LBRACE,
		token.IF, token.WHILE, token.FOR, token.MATCH, token.TRY, token.FN,
		token.PLUS, token.MINUS, token.NOT, token.SPREAD:
		return true
	default:
		return false
	}
}

// parseExpr is the Pratt loop: parse one primary/prefix term, then
// repeatedly fold in suffix/infix operators whose left binding power
// is at least minBp.
func (p *Parser) parseExpr(minBp int) (*ast.Node, error) {
	lhs, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if assignSym, ok := assignOps[tok.Kind]; ok {
			if assignLBp < minBp {
				break
			}
			p.advance()
			// Assignments are right-associative ("a := b := 1" is
			// "a := (b := 1)"); "|>" stays left-associative so pipes chain.
			rhsBp := assignLBp
			if assignSym == "|>" {
				rhsBp = assignRBp
			}
			rhs, err := p.parseExpr(rhsBp)
			if err != nil {
				return nil, err
			}
			lhs = ast.New(ast.OP, pos(tok), assignSym, lhs, rhs)
			continue
		}
		if op, ok := binOps[tok.Kind]; ok {
			if op.bp.l < minBp {
				break
			}
			p.advance()
			rhs, err := p.parseExpr(op.bp.r)
			if err != nil {
				return nil, err
			}
			lhs = ast.New(ast.OP, pos(tok), op.sym, lhs, rhs)
			continue
		}
		switch tok.Kind {
		case token.DOT:
			if memberLBp < minBp {
				break
			}
			p.advance()
			nameTok, err := p.expect(token.NAME)
			if err != nil {
				return nil, err
			}
			nameNode := ast.New(ast.NAME, pos(nameTok), nameTok.Lexeme)
			lhs = ast.New(ast.OP, pos(tok), ".", lhs, nameNode)
			continue
		case token.LPAREN:
			if suffixBp < minBp {
				break
			}
			call, err := p.parseCallSuffix(lhs)
			if err != nil {
				return nil, err
			}
			lhs = call
			continue
		case token.LSQPAREN:
			if suffixBp < minBp {
				break
			}
			p.advance()
			idx, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RSQPAREN); err != nil {
				return nil, err
			}
			lhs = ast.New(ast.OP, pos(tok), "[]", lhs, idx)
			continue
		case token.NOT:
			if suffixBp < minBp {
				break
			}
			p.advance()
			lhs = ast.New(ast.SUFOP, pos(tok), "!", lhs)
			continue
		case token.NAME:
			// Custom infix `a name b`, only recognized on the same
			// source line as the left operand: block statements are
			// newline-separated with no required terminator, so a NAME
			// starting a new line must be a new statement, not an
			// infix operator applied to the previous one.
			if customInfixLBp < minBp || tok.Line != p.prevLine {
				break
			}
			p.advance()
			rhs, err := p.parseExpr(customInfixRBp)
			if err != nil {
				return nil, err
			}
			lhs = ast.New(ast.OP, pos(tok), "<"+tok.Lexeme+">", lhs, rhs)
			continue
		}
		break
	}
	return lhs, nil
}

func (p *Parser) parsePrefix() (*ast.Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.PLUS, token.MINUS, token.NOT, token.SPREAD:
		p.advance()
		operand, err := p.parseExpr(prefixBp)
		if err != nil {
			return nil, err
		}
		sym := tok.Lexeme
		if tok.Kind == token.SPREAD {
			return ast.New(ast.SPREAD, pos(tok), nil, operand), nil
		}
		return ast.New(ast.PREOP, pos(tok), sym, operand), nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return ast.New(ast.NUMBER, pos(tok), tok.Lexeme), nil
	case token.REGEX:
		p.advance()
		return ast.New(ast.REGEX, pos(tok), tok.Lexeme), nil
	case token.STRING:
		return p.parseStringLiteral()
	case token.NAME:
		if p.peekKind(1) == token.ARROW {
			return p.parseArrowFn(tok)
		}
		p.advance()
		return ast.New(ast.NAME, pos(tok), tok.Lexeme), nil
	case token.LPAREN:
		if n, ok, err := p.tryParseParenFn(); err != nil {
			return nil, err
		} else if ok {
			return n, nil
		}
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACE:
		return p.parseBlock()
	case token.LSQPAREN:
		return p.parseTable()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.MATCH:
		return p.parseMatch()
	case token.TRY:
		return p.parseTry()
	case token.FN:
		return p.parseFn()
	case token.RETURN, token.BREAK, token.CONTINUE:
		return p.parseControlFlow()
	default:
		return nil, &SyntaxError{
			Message: fmt.Sprintf("unexpected token %s %q", tok.Kind, tok.Lexeme),
			Line:    tok.Line, Col: tok.Col,
		}
	}
}

func (p *Parser) peekKind(offset int) token.Kind {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return token.EOF
	}
	return p.toks[idx].Kind
}

// parseStringLiteral consumes one lexer-produced STRING, and if it is
// immediately followed by INTE_START, folds the whole
// STRING INTE_START tokens INTE_END STRING... run into a single
// STRING node whose children are the interpolated sub-expressions (a
// nil Value marks "interpolated" per spec.md §4.4: "a STRING with a
// non-null scalar value is literal; otherwise it is a sequence").
func (p *Parser) parseStringLiteral() (*ast.Node, error) {
	tok, _ := p.expect(token.STRING)
	if !p.at(token.INTE_START) {
		return ast.New(ast.STRING, pos(tok), tok.Lexeme), nil
	}
	parts := []*ast.Node{ast.New(ast.STRING, pos(tok), tok.Lexeme)}
	for p.at(token.INTE_START) {
		p.advance()
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		parts = append(parts, expr)
		if _, err := p.expect(token.INTE_END); err != nil {
			return nil, err
		}
		if p.at(token.STRING) {
			t2 := p.advance()
			parts = append(parts, ast.New(ast.STRING, pos(t2), t2.Lexeme))
		}
	}
	return ast.New(ast.STRING, pos(tok), nil, parts...), nil
}

func (p *Parser) parseArrowFn(nameTok token.Token) (*ast.Node, error) {
	p.advance() // NAME
	arrow, err := p.expect(token.ARROW)
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	params := []ast.Param{{Name: nameTok.Lexeme}}
	return ast.New(ast.FN, pos(arrow), params, body), nil
}

// tryParseParenFn speculatively parses "(params) [@] => expr"; on
// failure it rewinds and returns ok=false so the caller falls back to
// an ordinary parenthesized expression.
func (p *Parser) tryParseParenFn() (*ast.Node, bool, error) {
	start := p.pos
	startTok := p.cur()
	params, ok := p.tryParseParamList()
	if !ok {
		p.pos = start
		return nil, false, nil
	}
	isDynamic := false
	if p.at(token.AT) {
		p.advance()
		isDynamic = true
	}
	if !p.at(token.ARROW) {
		p.pos = start
		return nil, false, nil
	}
	p.advance()
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, false, err
	}
	kind := ast.FN
	if isDynamic {
		kind = ast.FNDYNAMIC
	}
	return ast.New(kind, pos(startTok), params, body), true, nil
}

// tryParseParamList parses "( name | name = expr | name... , ... )"
// without reporting an error on mismatch; ok is false if the token run
// does not look like a parameter list, leaving p.pos unspecified (the
// caller always restores it).
func (p *Parser) tryParseParamList() ([]ast.Param, bool) {
	if !p.at(token.LPAREN) {
		return nil, false
	}
	p.advance()
	var params []ast.Param
	for !p.at(token.RPAREN) {
		if !p.at(token.NAME) {
			return nil, false
		}
		name := p.advance().Lexeme
		param := ast.Param{Name: name}
		switch {
		case p.at(token.SPREAD):
			p.advance()
			param.Rest = true
		case p.at(token.ASSIGN):
			p.advance()
			def, err := p.parseExpr(assignRBp)
			if err != nil {
				return nil, false
			}
			param.Default = def
		}
		params = append(params, param)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(token.RPAREN) {
		return nil, false
	}
	p.advance()
	return params, true
}

func (p *Parser) parseFn() (*ast.Node, error) {
	fnTok, _ := p.expect(token.FN)
	isDynamic := false
	if p.at(token.AT) {
		p.advance()
		isDynamic = true
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(token.RPAREN) {
		nameTok, err := p.expect(token.NAME)
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: nameTok.Lexeme}
		switch {
		case p.at(token.SPREAD):
			p.advance()
			param.Rest = true
		case p.at(token.ASSIGN):
			p.advance()
			def, err := p.parseExpr(assignRBp)
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	kind := ast.FN
	if isDynamic {
		kind = ast.FNDYNAMIC
	}
	return ast.New(kind, pos(fnTok), params, body), nil
}

func (p *Parser) parseBlock() (*ast.Node, error) {
	brace, _ := p.expect(token.LBRACE)
	var stmts []*ast.Node
	p.skipSemis()
	for !p.at(token.RBRACE) {
		stmt, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipSemis()
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.New(ast.BLOCK, pos(brace), nil, stmts...), nil
}

// parseTable parses "[ elem (, elem)* ]" where each elem is a bare
// expression, "key: value", ": value" (anonymous pair, appended), or
// "... expr" (spread).
func (p *Parser) parseTable() (*ast.Node, error) {
	brace, _ := p.expect(token.LSQPAREN)
	var children []*ast.Node
	for !p.at(token.RSQPAREN) {
		if p.at(token.SPREAD) {
			spreadTok := p.advance()
			val, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			children = append(children, ast.New(ast.SPREAD, pos(spreadTok), nil, val))
		} else if p.at(token.COLON) {
			colon := p.advance()
			val, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			children = append(children, ast.New(ast.PAIR, pos(colon), nil, nil, val))
		} else {
			first, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if p.at(token.COLON) {
				colon := p.advance()
				val, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				children = append(children, ast.New(ast.PAIR, pos(colon), nil, first, val))
			} else {
				children = append(children, first)
			}
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if _, err := p.expect(token.RSQPAREN); err != nil {
		return nil, err
	}
	return ast.New(ast.TABLE, pos(brace), nil, children...), nil
}

func (p *Parser) parseIf() (*ast.Node, error) {
	ifTok, _ := p.expect(token.IF)
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	thenBody, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	children := []*ast.Node{cond, thenBody}
	for p.at(token.ELIF) {
		elifTok := p.advance()
		econd, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		ebody, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.New(ast.ELIF, pos(elifTok), nil, econd, ebody))
	}
	if p.at(token.ELSE) {
		elseTok := p.advance()
		ebody, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.New(ast.ELSE, pos(elseTok), nil, ebody))
	}
	return ast.New(ast.IF, pos(ifTok), nil, children...), nil
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	whileTok, _ := p.expect(token.WHILE)
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.WHILE, pos(whileTok), nil, cond, body), nil
}

func (p *Parser) parseFor() (*ast.Node, error) {
	forTok, _ := p.expect(token.FOR)
	binder, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.FOR, pos(forTok), nil, binder, iter, body), nil
}

func (p *Parser) parseMatch() (*ast.Node, error) {
	matchTok, _ := p.expect(token.MATCH)
	scrutinee, err := p.parseExpr(assignRBp) // stop before a bare "as" name would be swallowed
	if err != nil {
		return nil, err
	}
	binder := ""
	if p.at(token.AS) {
		p.advance()
		nameTok, err := p.expect(token.NAME)
		if err != nil {
			return nil, err
		}
		binder = nameTok.Lexeme
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	children := []*ast.Node{scrutinee}
	for !p.at(token.RBRACE) {
		patTok := p.cur()
		pattern, err := p.parseExpr(assignRBp)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.New(ast.OPT, pos(patTok), nil, pattern, body))
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.New(ast.MATCH, pos(matchTok), binder, children...), nil
}

func (p *Parser) parseTry() (*ast.Node, error) {
	tryTok, _ := p.expect(token.TRY)
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CATCH); err != nil {
		return nil, err
	}
	handler, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.TRY, pos(tryTok), nil, body, handler), nil
}

func (p *Parser) parseControlFlow() (*ast.Node, error) {
	tok := p.advance()
	kind := map[token.Kind]ast.Kind{token.RETURN: ast.RETURN, token.BREAK: ast.BREAK, token.CONTINUE: ast.CONTINUE}[tok.Kind]
	if !canStartExpr(p.cur().Kind) {
		return ast.New(kind, pos(tok), nil), nil
	}
	val, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(kind, pos(tok), nil, val), nil
}

// parseCallSuffix parses the "(" arg, ... ")" suffix already
// positioned at LPAREN, producing a CALL node whose first child is
// callee and remaining children are plain expressions, KWARG, or
// SPREAD nodes.
func (p *Parser) parseCallSuffix(callee *ast.Node) (*ast.Node, error) {
	lparen, _ := p.expect(token.LPAREN)
	children := []*ast.Node{callee}
	for !p.at(token.RPAREN) {
		arg, err := p.parseCallArg()
		if err != nil {
			return nil, err
		}
		children = append(children, arg)
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.New(ast.CALL, pos(lparen), nil, children...), nil
}

func (p *Parser) parseCallArg() (*ast.Node, error) {
	if p.at(token.SPREAD) {
		tok := p.advance()
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return ast.New(ast.SPREAD, pos(tok), nil, val), nil
	}
	if p.at(token.NAME) && p.peekKind(1) == token.ASSIGN {
		nameTok := p.advance()
		p.advance() // ASSIGN
		val, err := p.parseExpr(assignRBp)
		if err != nil {
			return nil, err
		}
		return ast.New(ast.KWARG, pos(nameTok), nameTok.Lexeme, val), nil
	}
	return p.parseExpr(0)
}
