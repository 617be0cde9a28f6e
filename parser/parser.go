package parser

import "fmt"

// Parse translates source text into the ordered top-level statements of a
// program. The first error aborts the parse; no partial result is returned.
func Parse(src string) ([]Stmt, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var stmts []Stmt
	for p.peek().Type != tokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	Renumber(stmts, 1)
	return stmts, nil
}

// ParseExpression parses source text consisting of exactly one expression.
func ParseExpression(src string) (Expr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(precNone, false)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != tokenEOF {
		return nil, p.errorf(tok.Pos, "unexpected %s after expression", tok.Kind())
	}
	numberNodes([]Node{expr}, 1)
	return expr, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func newParser(src string) (*parser, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	lx := newLexer(src)
	lx.advance(len(src))
	tokens = append(tokens, Token{Type: tokenEOF, Pos: positionFromState(lx.mark())})
	return &parser{tokens: tokens}, nil
}

// peek returns the current token without consuming it.
func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != tokenEOF {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it has the given type.
func (p *parser) accept(tt TokenType) (Token, bool) {
	if p.peek().Type != tt {
		return Token{}, false
	}
	return p.advance(), true
}

// expect consumes a token of the given type or fails with message.
func (p *parser) expect(tt TokenType, message string) (Token, error) {
	tok := p.peek()
	if tok.Type == tt {
		return p.advance(), nil
	}
	if tok.Type == tokenEOF {
		return Token{}, &Error{Pos: tok.Pos, Msg: message, Incomplete: true}
	}
	return Token{}, p.errorf(tok.Pos, "%s", message)
}

func (p *parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case tokenIf:
		return p.parseIf()
	case tokenProcedure:
		return p.parseProcedure()
	case tokenRepeat:
		return p.parseRepeat()
	case tokenFor:
		return p.parseForEach()
	case tokenReturn:
		return p.parseReturn()
	case tokenBreakpoint:
		tok := p.advance()
		return &BreakpointStmt{meta: metaFrom(tok)}, nil
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses an expression in statement position, turning it
// into an assignment when it is followed by "<-".
func (p *parser) parseSimpleStatement() (Stmt, error) {
	expr, err := p.parseExpression(precNone, true)
	if err != nil {
		return nil, err
	}
	arrow, ok := p.accept(tokenArrow)
	if !ok {
		return &ExprStmt{meta: meta{Posn: expr.Pos()}, Expr: expr}, nil
	}
	if !IsAssignable(expr) {
		return nil, p.errorf(expr.Pos(), "cannot assign to this expression")
	}
	value, err := p.parseExpression(precAssign, false)
	if err != nil {
		return nil, err
	}
	return &AssignStmt{
		meta:   metaFrom(arrow),
		Target: expr,
		Value:  value,
	}, nil
}

func (p *parser) parseBlock() (Block, error) {
	if _, err := p.expect(tokenLBrace, "expected '{' to open a block"); err != nil {
		return nil, err
	}
	block := Block{}
	for {
		if _, ok := p.accept(tokenRBrace); ok {
			return block, nil
		}
		if p.peek().Type == tokenEOF {
			return nil, newIncompleteError(p.peek().Pos, "expected '}' to close the block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block = append(block, stmt)
	}
}

// parseCondition parses the condition of IF and REPEAT UNTIL. The customary
// parentheses are parsed as part of the expression.
func (p *parser) parseCondition(keyword string) (Expr, error) {
	if p.peek().Type == tokenLBrace {
		return nil, p.errorf(p.peek().Pos, "expected a condition after %s", keyword)
	}
	return p.parseExpression(precNone, false)
}

func (p *parser) parseIf() (Stmt, error) {
	ifTok := p.advance()
	cond, err := p.parseCondition("IF")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{
		meta: metaFrom(ifTok),
		Cond: cond,
		Then: then,
	}
	if _, ok := p.accept(tokenElse); ok {
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
	}
	return stmt, nil
}

func (p *parser) parseProcedure() (Stmt, error) {
	procTok := p.advance()
	nameTok, err := p.expect(tokenVariable, "expected a procedure name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "expected '(' after the procedure name"); err != nil {
		return nil, err
	}
	var params []string
	if _, ok := p.accept(tokenRParen); !ok {
		for {
			param, err := p.expect(tokenVariable, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Name())
			if _, ok := p.accept(tokenComma); !ok {
				break
			}
		}
		if _, err := p.expect(tokenRParen, "expected ')' after the parameters"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ProcedureStmt{
		meta:   metaFrom(procTok),
		Name:   nameTok.Name(),
		Params: params,
		Body:   body,
	}, nil
}

func (p *parser) parseRepeat() (Stmt, error) {
	repeatTok := p.advance()
	if _, ok := p.accept(tokenUntil); ok {
		cond, err := p.parseCondition("REPEAT UNTIL")
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &RepeatUntilStmt{
			meta: metaFrom(repeatTok),
			Cond: cond,
			Body: body,
		}, nil
	}
	count, err := p.parseExpression(precNone, false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenTimes, "expected TIMES after the repeat count"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &RepeatTimesStmt{
		meta:  metaFrom(repeatTok),
		Count: count,
		Body:  body,
	}, nil
}

func (p *parser) parseForEach() (Stmt, error) {
	forTok := p.advance()
	if _, err := p.expect(tokenEach, "expected EACH after FOR"); err != nil {
		return nil, err
	}
	target, err := p.parseExpression(precNone, false)
	if err != nil {
		return nil, err
	}
	variable, ok := target.(*VariableExpr)
	if !ok {
		return nil, p.errorf(target.Pos(), "the loop variable must be a plain variable")
	}
	if _, err := p.expect(tokenIn, "expected IN after the loop variable"); err != nil {
		return nil, err
	}
	list, err := p.parseExpression(precNone, false)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForEachStmt{
		meta: metaFrom(forTok),
		Var:  variable,
		List: list,
		Body: body,
	}, nil
}

func (p *parser) parseReturn() (Stmt, error) {
	retTok := p.advance()
	stmt := &ReturnStmt{meta: metaFrom(retTok)}
	switch p.peek().Type {
	case tokenRBrace, tokenEOF:
		return stmt, nil
	}
	value, err := p.parseExpression(precNone, false)
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

// parseExpression is a precedence-climbing loop. A token continues the
// expression only while its binding precedence exceeds minPrec. When
// statement is true a trailing "<-" is left for the caller.
func (p *parser) parseExpression(minPrec int, statement bool) (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		prec, ok := precedences[tok.Type]
		if !ok || prec <= minPrec {
			return left, nil
		}
		switch tok.Type {
		case tokenArrow:
			if statement {
				return left, nil
			}
			return nil, p.errorf(tok.Pos, "assignment is only allowed as a statement")
		case tokenLParen:
			p.advance()
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			left = &CallExpr{
				meta:   metaFrom(tok),
				Callee: left,
				Args:   args,
			}
		case tokenLBracket:
			p.advance()
			index, err := p.parseExpression(precNone, false)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRBracket, "expected ']' after the index"); err != nil {
				return nil, err
			}
			left = &SubscriptExpr{
				meta:  metaFrom(tok),
				List:  left,
				Index: index,
			}
		default:
			p.advance()
			right, err := p.parseExpression(prec, false)
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{
				meta:  metaFrom(tok),
				Op:    binaryOperators[tok.Type],
				Left:  left,
				Right: right,
			}
		}
	}
}

func (p *parser) parseArguments() ([]Expr, error) {
	var args []Expr
	if _, ok := p.accept(tokenRParen); ok {
		return args, nil
	}
	for {
		arg, err := p.parseExpression(precNone, false)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok := p.accept(tokenComma); !ok {
			break
		}
	}
	if _, err := p.expect(tokenRParen, "expected ')' after the arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case tokenNot:
		p.advance()
		operand, err := p.parseExpression(precPostfix-1, false)
		if err != nil {
			return nil, err
		}
		return &NotExpr{meta: metaFrom(tok), Expr: operand}, nil
	case tokenMinus:
		p.advance()
		operand, err := p.parseExpression(precPostfix-1, false)
		if err != nil {
			return nil, err
		}
		if lit, ok := operand.(*NumberLit); ok {
			return &NumberLit{meta: metaFrom(tok), Value: -lit.Value}, nil
		}
		return &NegateExpr{meta: metaFrom(tok), Expr: operand}, nil
	case tokenNumber:
		p.advance()
		value, _ := tok.Value.(float64)
		return &NumberLit{meta: metaFrom(tok), Value: value}, nil
	case tokenString:
		p.advance()
		value, _ := tok.Value.(string)
		return &StringLit{meta: metaFrom(tok), Value: value}, nil
	case tokenBoolean:
		p.advance()
		value, _ := tok.Value.(bool)
		return &BoolLit{meta: metaFrom(tok), Value: value}, nil
	case tokenVariable:
		p.advance()
		return &VariableExpr{meta: metaFrom(tok), Name: tok.Name()}, nil
	case tokenLParen:
		p.advance()
		expr, err := p.parseExpression(precNone, false)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, "expected ')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case tokenLBracket:
		return p.parseList()
	case tokenRParen, tokenRBracket:
		return nil, p.errorf(tok.Pos, "no matching open bracket")
	case tokenEOF:
		return nil, newIncompleteError(tok.Pos, "expected an expression (or statement)")
	default:
		return nil, p.errorf(tok.Pos, "expected an expression (or statement)")
	}
}

func (p *parser) parseList() (Expr, error) {
	startTok := p.advance()
	list := &ListExpr{meta: metaFrom(startTok)}
	if _, ok := p.accept(tokenRBracket); ok {
		return list, nil
	}
	for {
		el, err := p.parseExpression(precNone, false)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, el)
		if _, ok := p.accept(tokenComma); !ok {
			break
		}
	}
	if _, err := p.expect(tokenRBracket, "expected ']' to close the list"); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *parser) errorf(pos Position, format string, args ...any) error {
	return newError(pos, fmt.Sprintf(format, args...))
}

func metaFrom(tok Token) meta {
	return meta{Posn: tok.Pos}
}
