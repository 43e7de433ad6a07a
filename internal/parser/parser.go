// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parser implements a recursive-descent parser turning a token
// stream into a statement list.
//
// Token access goes through a small cursor type modeled on a tokenReader
// (peek/advance/check/match, lookahead-by-one): generalized here from raw strings
// read off a bufio.Scanner to typed token.Token values read off an
// already-scanned slice, since the scanner stage already produced the full
// token list before the parser runs.
//
// Expression precedence (low to high): assignment, or, and, equality,
// comparison, term, factor, unary, call, primary. Errors are fail-fast: the
// first ParseError aborts parsing with no synchronisation.
package parser

import (
	"fmt"

	"github.com/EngFlow/liquidox/internal/ast"
	"github.com/EngFlow/liquidox/internal/diag"
	"github.com/EngFlow/liquidox/internal/token"
)

const maxParams = 255

// cursor is a thin wrapper around a token slice providing peek/advance/
// check/match primitives, the typed counterpart to a string-based tokenReader.
type cursor struct {
	tokens []token.Token
	pos    int
}

func (c *cursor) peek() token.Token     { return c.tokens[c.pos] }
func (c *cursor) previous() token.Token { return c.tokens[c.pos-1] }
func (c *cursor) atEnd() bool           { return c.peek().Type == token.EOF }

func (c *cursor) advance() token.Token {
	if !c.atEnd() {
		c.pos++
	}
	return c.previous()
}

func (c *cursor) check(t token.Type) bool {
	return !c.atEnd() && c.peek().Type == t
}

// match consumes and returns true if the next token has one of the given
// types.
func (c *cursor) match(types ...token.Type) bool {
	for _, t := range types {
		if c.check(t) {
			c.advance()
			return true
		}
	}
	return false
}

type parser struct {
	c *cursor
}

// Parse parses source tokens (as produced by scanner.Scan, terminated by an
// EOF token) into a flat statement list, or returns the first ParseError.
func Parse(tokens []token.Token) ([]ast.Stmt, *diag.ParseError) {
	p := &parser{c: &cursor{tokens: tokens}}
	var stmts []ast.Stmt
	for !p.c.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *parser) errorf(pos token.Cursor, lexeme, format string, args ...any) *diag.ParseError {
	return diag.NewParseError(fmt.Sprintf(format, args...), lexeme, pos)
}

func (p *parser) expect(t token.Type, message string) (token.Token, *diag.ParseError) {
	if p.c.check(t) {
		return p.c.advance(), nil
	}
	next := p.c.peek()
	return token.Token{}, p.errorf(next.Pos, next.Lexeme, "%s", message)
}

// ---- declarations ----

func (p *parser) declaration() (ast.Stmt, *diag.ParseError) {
	switch {
	case p.c.match(token.Var):
		return p.varDecl()
	case p.c.match(token.Fun):
		return p.funDecl("function")
	case p.c.match(token.Class):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *parser) varDecl() (ast.Stmt, *diag.ParseError) {
	name, err := p.expect(token.Identifier, "Expected var name")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.c.match(token.Equal) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon, "Expected ';'"); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: ast.Named{Name: name.Lexeme, Pos: name.Pos}, Init: init}, nil
}

func (p *parser) funDecl(kind string) (*ast.FunctionStmt, *diag.ParseError) {
	name, err := p.expect(token.Identifier, "Expected "+kind+" name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "Expected '('"); err != nil {
		return nil, err
	}
	var params []ast.Named
	if !p.c.check(token.RightParen) {
		for {
			if len(params) >= maxParams {
				next := p.c.peek()
				return nil, p.errorf(next.Pos, next.Lexeme, ">= 255 params")
			}
			param, err := p.expect(token.Identifier, "Expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Named{Name: param.Lexeme, Pos: param.Pos})
			if !p.c.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(token.RightParen, "Expected ')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace, "Expected '{'"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStmt{Name: ast.Named{Name: name.Lexeme, Pos: name.Pos}, Params: params, Body: body}, nil
}

func (p *parser) classDecl() (ast.Stmt, *diag.ParseError) {
	name, err := p.expect(token.Identifier, "Expected class name")
	if err != nil {
		return nil, err
	}

	var superclass *ast.VariableExpr
	if p.c.match(token.Less) {
		super, err := p.expect(token.Identifier, "Expected superclass name")
		if err != nil {
			return nil, err
		}
		superclass = &ast.VariableExpr{Name: ast.Named{Name: super.Lexeme, Pos: super.Pos}}
	}

	if _, err := p.expect(token.LeftBrace, "Expected '{'"); err != nil {
		return nil, err
	}

	var methods []*ast.FunctionStmt
	for !p.c.check(token.RightBrace) && !p.c.atEnd() {
		method, err := p.funDecl("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.expect(token.RightBrace, "Expected '}'"); err != nil {
		return nil, err
	}

	return &ast.ClassStmt{Name: ast.Named{Name: name.Lexeme, Pos: name.Pos}, Superclass: superclass, Methods: methods}, nil
}

// ---- statements ----

func (p *parser) statement() (ast.Stmt, *diag.ParseError) {
	switch {
	case p.c.match(token.Print):
		return p.printStmt()
	case p.c.match(token.LeftBrace):
		brace := p.c.previous().Pos
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Stmts: stmts, Brace: brace}, nil
	case p.c.match(token.If):
		return p.ifStmt()
	case p.c.match(token.While):
		return p.whileStmt()
	case p.c.match(token.For):
		return p.forStmt()
	case p.c.match(token.Return):
		return p.returnStmt()
	default:
		return p.exprStmt()
	}
}

func (p *parser) block() ([]ast.Stmt, *diag.ParseError) {
	var stmts []ast.Stmt
	for !p.c.check(token.RightBrace) && !p.c.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RightBrace, "Expected '}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) printStmt() (ast.Stmt, *diag.ParseError) {
	keyword := p.c.previous().Pos
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "Expected ';'"); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{X: value, Keyword: keyword}, nil
}

func (p *parser) exprStmt() (ast.Stmt, *diag.ParseError) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(token.Semicolon, "Expected ';'")
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: value, Semicolon: semi.Pos}, nil
}

func (p *parser) ifStmt() (ast.Stmt, *diag.ParseError) {
	keyword := p.c.previous().Pos
	if _, err := p.expect(token.LeftParen, "Expected '('"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "Expected ')'"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Stmt
	if p.c.match(token.Else) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseBranch, Keyword: keyword}, nil
}

func (p *parser) whileStmt() (ast.Stmt, *diag.ParseError) {
	keyword := p.c.previous().Pos
	if _, err := p.expect(token.LeftParen, "Expected '('"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "Expected ')'"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body, Keyword: keyword}, nil
}

// forStmt desugars `for (init; cond; inc) body` into
// `{ init; while (cond) { body; inc; } }`, a missing cond becoming `true`.
func (p *parser) forStmt() (ast.Stmt, *diag.ParseError) {
	keyword := p.c.previous().Pos
	if _, err := p.expect(token.LeftParen, "Expected '('"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err *diag.ParseError
	switch {
	case p.c.match(token.Semicolon):
		// no initializer
	case p.c.match(token.Var):
		init, err = p.varDecl()
	default:
		init, err = p.exprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.c.check(token.Semicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon, "Expected ';'"); err != nil {
		return nil, err
	}

	var inc ast.Expr
	if !p.c.check(token.RightParen) {
		inc, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RightParen, "Expected ')'"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if inc != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{body, &ast.ExprStmt{X: inc, Semicolon: keyword}}, Brace: keyword}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralBool, Bool: true}, At: keyword}
	}
	body = &ast.WhileStmt{Cond: cond, Body: body, Keyword: keyword}
	if init != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{init, body}, Brace: keyword}
	}
	return body, nil
}

func (p *parser) returnStmt() (ast.Stmt, *diag.ParseError) {
	keyword := p.c.previous().Pos
	var value ast.Expr
	var err *diag.ParseError
	if !p.c.check(token.Semicolon) {
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon, "Expected ';'"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: value, Keyword: keyword}, nil
}

// ---- expressions ----

func (p *parser) expression() (ast.Expr, *diag.ParseError) { return p.assignment() }

// assignment is right-associative and legal only when the LHS is a Variable
// or a Get expression.
func (p *parser) assignment() (ast.Expr, *diag.ParseError) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.c.match(token.Equal) {
		equals := p.c.previous().Pos
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Name: target.Name, Value: value}, nil
		case *ast.GetExpr:
			return &ast.SetExpr{Object: target.Object, Name: target.Name, Value: value}, nil
		default:
			return nil, p.errorf(equals, "=", "Invalid target")
		}
	}
	return expr, nil
}

func (p *parser) or() (ast.Expr, *diag.ParseError) {
	return p.logical(token.Or, p.and)
}

func (p *parser) and() (ast.Expr, *diag.ParseError) {
	return p.logical(token.And, p.equality)
}

func (p *parser) logical(op token.Type, operand func() (ast.Expr, *diag.ParseError)) (ast.Expr, *diag.ParseError) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.c.match(op) {
		opPos := p.c.previous().Pos
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &ast.LogicalExpr{Op: op, OpPos: opPos, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *parser) equality() (ast.Expr, *diag.ParseError) {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() (ast.Expr, *diag.ParseError) {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() (ast.Expr, *diag.ParseError) {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() (ast.Expr, *diag.ParseError) {
	return p.binary(p.unary, token.Slash, token.Star)
}

func (p *parser) binary(operand func() (ast.Expr, *diag.ParseError), ops ...token.Type) (ast.Expr, *diag.ParseError) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.c.match(ops...) {
		op := p.c.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Op: op.Type, OpPos: op.Pos, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *parser) unary() (ast.Expr, *diag.ParseError) {
	if p.c.match(token.Bang, token.Minus) {
		op := p.c.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op.Type, OpPos: op.Pos, Right: right}, nil
	}
	return p.call()
}

// call parses zero or more trailing '(' arg-list ')' or '.' name
// accessors after a primary expression, enabling f(1)(2).m(3).
func (p *parser) call() (ast.Expr, *diag.ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.c.match(token.LeftParen):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.c.match(token.Dot):
			name, err := p.expect(token.Identifier, "Expected property name")
			if err != nil {
				return nil, err
			}
			expr = &ast.GetExpr{Object: expr, Name: ast.Named{Name: name.Lexeme, Pos: name.Pos}}
		default:
			return expr, nil
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) (ast.Expr, *diag.ParseError) {
	calleePos := callee.Pos()
	var args []ast.Expr
	if !p.c.check(token.RightParen) {
		for {
			if len(args) >= maxParams {
				next := p.c.peek()
				return nil, p.errorf(next.Pos, next.Lexeme, ">= 255 args")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.c.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(token.RightParen, "Expected ')'"); err != nil {
		return nil, err
	}
	return &ast.CallExpr{Callee: callee, CalleePos: calleePos, Args: args}, nil
}

func (p *parser) primary() (ast.Expr, *diag.ParseError) {
	switch {
	case p.c.match(token.False):
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralBool, Bool: false}, At: p.c.previous().Pos}, nil
	case p.c.match(token.True):
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralBool, Bool: true}, At: p.c.previous().Pos}, nil
	case p.c.match(token.Nil):
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralNil}, At: p.c.previous().Pos}, nil
	case p.c.match(token.Number):
		tok := p.c.previous()
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralNumber, Num: tok.Number}, At: tok.Pos}, nil
	case p.c.match(token.String):
		tok := p.c.previous()
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralString, Str: tok.Literal}, At: tok.Pos}, nil
	case p.c.match(token.This):
		return &ast.ThisExpr{At: p.c.previous().Pos}, nil
	case p.c.match(token.Super):
		at := p.c.previous().Pos
		if _, err := p.expect(token.Dot, "Expected '.'"); err != nil {
			return nil, err
		}
		method, err := p.expect(token.Identifier, "Expected superclass method name")
		if err != nil {
			return nil, err
		}
		return &ast.SuperExpr{At: at, Method: ast.Named{Name: method.Lexeme, Pos: method.Pos}}, nil
	case p.c.match(token.Identifier):
		tok := p.c.previous()
		return &ast.VariableExpr{Name: ast.Named{Name: tok.Lexeme, Pos: tok.Pos}}, nil
	case p.c.match(token.LeftParen):
		parenPos := p.c.previous().Pos
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "Expected ')'"); err != nil {
			return nil, err
		}
		return &ast.GroupingExpr{X: expr, Parenthes: parenPos}, nil
	default:
		next := p.c.peek()
		return nil, p.errorf(next.Pos, next.Lexeme, "Expected expr")
	}
}
