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

// Package scanner turns source text into a token stream.
//
// It follows the shape of a small lexer struct holding the bytes not yet
// consumed and the current Cursor, advanced one token at a time by a switch
// on the lookahead byte, with regexp-backed helpers for the variable-length
// lexemes (numbers, identifiers). Unlike an AllTokens-style iterator that
// skips malformed lexemes, Scan is fail-fast: the first malformed lexeme
// aborts scanning with a *diag.ScanError.
package scanner

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/EngFlow/liquidox/internal/diag"
	"github.com/EngFlow/liquidox/internal/token"
)

var (
	reNumber     = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
)

type scanner struct {
	src    []byte
	cursor token.Cursor
}

// Scan tokenizes source in full, returning the token list terminated by an
// EOF token, or the first ScanError encountered.
func Scan(source string) ([]token.Token, *diag.ScanError) {
	s := &scanner{src: []byte(source), cursor: token.CursorInit}
	var tokens []token.Token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// advance consumes the first n bytes of the remaining source, moving the
// cursor past the consumed lexeme, and returns the consumed text.
func (s *scanner) advance(n int) string {
	lexeme := string(s.src[:n])
	s.src = s.src[n:]
	s.cursor = s.cursor.AdvancedBy(lexeme)
	return lexeme
}

func (s *scanner) emit(typ token.Type, pos token.Cursor, n int) token.Token {
	lexeme := s.advance(n)
	return token.Token{Type: typ, Lexeme: lexeme, Pos: pos}
}

// next skips whitespace and comments and returns the following token.
func (s *scanner) next() (token.Token, *diag.ScanError) {
	for {
		if len(s.src) == 0 {
			return token.Token{Type: token.EOF, Lexeme: "EOF", Pos: s.cursor}, nil
		}

		c := s.src[0]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance(1)
			continue

		case c == '/' && len(s.src) > 1 && s.src[1] == '/':
			end := bytes.IndexByte(s.src, '\n')
			if end < 0 {
				end = len(s.src)
			}
			s.advance(end)
			continue

		default:
			return s.scanToken()
		}
	}
}

func (s *scanner) scanToken() (token.Token, *diag.ScanError) {
	pos := s.cursor
	c := s.src[0]

	switch c {
	case '(':
		return s.emit(token.LeftParen, pos, 1), nil
	case ')':
		return s.emit(token.RightParen, pos, 1), nil
	case '{':
		return s.emit(token.LeftBrace, pos, 1), nil
	case '}':
		return s.emit(token.RightBrace, pos, 1), nil
	case ',':
		return s.emit(token.Comma, pos, 1), nil
	case '.':
		return s.emit(token.Dot, pos, 1), nil
	case '-':
		return s.emit(token.Minus, pos, 1), nil
	case '+':
		return s.emit(token.Plus, pos, 1), nil
	case ';':
		return s.emit(token.Semicolon, pos, 1), nil
	case '*':
		return s.emit(token.Star, pos, 1), nil
	case '/':
		return s.emit(token.Slash, pos, 1), nil

	case '!':
		return s.emit(s.twoCharOr('=', token.BangEqual, token.Bang), pos, s.twoCharLen('=')), nil
	case '=':
		return s.emit(s.twoCharOr('=', token.EqualEqual, token.Equal), pos, s.twoCharLen('=')), nil
	case '<':
		return s.emit(s.twoCharOr('=', token.LessEqual, token.Less), pos, s.twoCharLen('=')), nil
	case '>':
		return s.emit(s.twoCharOr('=', token.GreaterEqual, token.Greater), pos, s.twoCharLen('=')), nil

	case '"':
		return s.scanString(pos)

	default:
		if isDigit(c) {
			return s.scanNumber(pos)
		}
		if isAlpha(c) {
			return s.scanIdentifier(pos)
		}
		lexeme := string(c)
		s.advance(1)
		return token.Token{}, diag.NewScanError("Unidentified token", lexeme, pos)
	}
}

// twoCharLen reports how many bytes the lookahead operator starting at
// s.src[0] occupies, given that a following 'second' byte extends it to two.
func (s *scanner) twoCharLen(second byte) int {
	if len(s.src) > 1 && s.src[1] == second {
		return 2
	}
	return 1
}

func (s *scanner) twoCharOr(second byte, wide, narrow token.Type) token.Type {
	if len(s.src) > 1 && s.src[1] == second {
		return wide
	}
	return narrow
}

func (s *scanner) scanNumber(pos token.Cursor) (token.Token, *diag.ScanError) {
	match := reNumber.Find(s.src)
	lexeme := s.advance(len(match))
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		// unreachable: reNumber only matches valid float syntax
		return token.Token{}, diag.NewScanError("Unidentified token", lexeme, pos)
	}
	return token.Token{Type: token.Number, Lexeme: lexeme, Number: value, Pos: pos}, nil
}

func (s *scanner) scanIdentifier(pos token.Cursor) (token.Token, *diag.ScanError) {
	match := reIdentifier.Find(s.src)
	lexeme := s.advance(len(match))
	if kw, ok := token.Keywords[lexeme]; ok {
		return token.Token{Type: kw, Lexeme: lexeme, Pos: pos}, nil
	}
	return token.Token{Type: token.Identifier, Lexeme: lexeme, Pos: pos}, nil
}

// scanString scans a double-quoted string literal. Strings may span
// newlines and do not support escape sequences.
func (s *scanner) scanString(pos token.Cursor) (token.Token, *diag.ScanError) {
	end := bytes.IndexByte(s.src[1:], '"')
	if end < 0 {
		lexeme := s.advance(len(s.src))
		return token.Token{}, diag.NewScanError("Unterminated string", lexeme, pos)
	}
	end += 1 // position within s.src, relative to the opening quote
	content := string(s.src[1:end])
	lexeme := s.advance(end + 1)
	return token.Token{Type: token.String, Lexeme: lexeme, Literal: content, Pos: pos}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

